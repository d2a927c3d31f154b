package services

import "errors"

// Inventory service errors
var (
	// ErrUnsupportedFormat is returned for export formats other than csv and xlsx.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrSourceUnavailable means the configured export file cannot be reached.
	ErrSourceUnavailable = errors.New("inventory source unavailable")
)
