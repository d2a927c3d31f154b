package domain

import "errors"

// Inventory failure kinds shared by the loader, services and transports.
var (
	// ErrLoadFailure means the export could not be read or parsed by any strategy.
	ErrLoadFailure = errors.New("inventory load failed")

	// ErrSchemaFailure means required columns are missing from a loaded export.
	ErrSchemaFailure = errors.New("inventory schema invalid")
)
