// Package validation checks the files the dashboard reads and writes before
// the loader or exporter touches them.
package validation
