package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the sheet name length limit of the workbook format.
const maxSheetName = 31

// Sheet is one worksheet of an exported workbook.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// WorkbookWriter writes multi-sheet XLSX workbooks
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write renders the sheets into one workbook and streams it to w. The first
// sheet replaces the default one; header rows are bold and frozen.
func (ww *WorkbookWriter) Write(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		name := sheet.Name
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	ww.logger.Debug("Workbook written", slog.Int("sheets", len(sheets)))
	return nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	header := make([]interface{}, len(sheet.Columns))
	for i, c := range sheet.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}

	if len(sheet.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sheet.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", name, err)
		}
		if err := f.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header of %q: %w", name, err)
		}
	}

	for r, rec := range sheet.Rows {
		values := make([]interface{}, len(rec))
		for i, s := range rec {
			values[i] = typedCell(s)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r+1, name, err)
		}
	}
	return nil
}
