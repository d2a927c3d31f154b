package dataprocessing

import (
	"fmt"
	"strings"

	"invdash/pkg/contracts/domain"
)

// StrategyAttempt records why one parse strategy rejected the input.
type StrategyAttempt struct {
	Strategy Strategy
	Err      error
}

// LoadError is returned when an export cannot be opened or parsed by any strategy.
// It matches domain.ErrLoadFailure with errors.Is, as well as its terminal cause.
type LoadError struct {
	Path     string
	Attempts []StrategyAttempt
	Cause    error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("load %s: %v", e.Path, e.Cause)
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("load %s: all %d strategies failed, last (%s): %v",
		e.Path, len(e.Attempts), last.Strategy, e.Cause)
}

// Unwrap exposes both the failure kind and the terminal cause.
func (e *LoadError) Unwrap() []error {
	return []error{domain.ErrLoadFailure, e.Cause}
}

// SchemaError lists required columns absent from a loaded export.
type SchemaError struct {
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Unwrap allows errors.Is(err, domain.ErrSchemaFailure).
func (e *SchemaError) Unwrap() error {
	return domain.ErrSchemaFailure
}
