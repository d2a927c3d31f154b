package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Validation failures
var (
	ErrNotFound    = errors.New("file does not exist")
	ErrNotFile     = errors.New("path is a directory")
	ErrUnreadable  = errors.New("file is not readable")
	ErrTempFile    = errors.New("file is a temporary workbook")
	ErrNotWritable = errors.New("directory is not writable")
)

// SourceValidator checks inventory exports and export directories before
// they are used.
type SourceValidator struct {
	logger *slog.Logger
}

// NewSourceValidator creates a new validator
func NewSourceValidator(logger *slog.Logger) *SourceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceValidator{
		logger: logger.With(slog.String("component", "source_validator")),
	}
}

// ValidateSource checks that path is a readable regular file. Workbook lock
// files left behind by spreadsheet editors (~$name.xlsx) are rejected.
func (v *SourceValidator) ValidateSource(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Debug("Inventory file does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFile, path)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary workbook", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTempFile, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	file.Close()

	v.logger.Debug("Inventory file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExportDir creates dir when missing and verifies it accepts new files.
func (v *SourceValidator) ValidateExportDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create export directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Export directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Export directory validated", slog.String("directory", dir))
	return nil
}
