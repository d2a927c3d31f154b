package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds a timestamped download name such as inventory_20240115_0930.csv.
func Filename(prefix string, f Format, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102_1504"), f)
}

// typedCell converts a text cell into the value stored in a workbook, so that
// numeric columns stay numeric in spreadsheet tools.
func typedCell(s string) interface{} {
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "eEnN") {
		return f
	}
	return s
}
