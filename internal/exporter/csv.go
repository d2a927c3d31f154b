package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	exportDir string
	logger    *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. Relative file paths are
// resolved against exportDir.
func NewCSVWriter(exportDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		exportDir: exportDir,
		logger:    logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write streams headers and records to w.
func (cw *CSVWriter) Write(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix && !options.Append {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSV writes data to a CSV file with the given options and returns the
// resolved path.
func (cw *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := cw.resolvePath(filePath)

	cw.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}

	if err := cw.Write(file, options); err != nil {
		file.Close()
		return "", err
	}
	return fullPath, file.Close()
}

// resolvePath keeps absolute paths and places relative ones under the export directory
func (cw *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || cw.exportDir == "" {
		return filePath
	}
	return filepath.Join(cw.exportDir, filePath)
}
