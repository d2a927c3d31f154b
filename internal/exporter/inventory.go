package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"invdash/internal/dataprocessing"
	"invdash/pkg/contracts/domain"
)

// Sheet names of the inventory workbook.
const (
	SheetAllItems     = "All Items"
	SheetSlowItems    = "Slow Items"
	SheetReorderItems = "Reorder Items"
)

// InventoryExporter renders enriched inventory items as CSV or XLSX.
type InventoryExporter struct {
	csv      *CSVWriter
	workbook *WorkbookWriter
	logger   *slog.Logger
}

// NewInventoryExporter creates an exporter; exportDir is used for file exports.
func NewInventoryExporter(exportDir string, logger *slog.Logger) *InventoryExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryExporter{
		csv:      NewCSVWriter(exportDir, logger),
		workbook: NewWorkbookWriter(logger),
		logger:   logger.With(slog.String("component", "inventory_exporter")),
	}
}

// Export writes items in the given format. CSV carries the items as a single
// table; XLSX adds the slow and reorder subsets as separate sheets.
func (e *InventoryExporter) Export(ctx context.Context, w io.Writer, format Format, ds *domain.InventoryDataset, items []domain.InventoryItem) error {
	switch format {
	case FormatCSV:
		table := dataprocessing.EnrichedTable(ds, items)
		return e.csv.Write(w, WriteOptions{
			Headers:   table.Columns,
			Records:   table.Rows,
			BOMPrefix: true,
		})
	case FormatXLSX:
		return e.workbook.Write(w, InventorySheets(ds, items))
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportFile writes a CSV export into the export directory and returns its path.
func (e *InventoryExporter) ExportFile(ctx context.Context, name string, ds *domain.InventoryDataset, items []domain.InventoryItem) (string, error) {
	table := dataprocessing.EnrichedTable(ds, items)
	path, err := e.csv.WriteCSV(name, WriteOptions{
		Headers:   table.Columns,
		Records:   table.Rows,
		BOMPrefix: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to export inventory: %w", err)
	}

	e.logger.InfoContext(ctx, "inventory exported",
		slog.String("path", path),
		slog.Int("rows", len(items)))
	return path, nil
}

// InventorySheets splits items into the All, Slow and Reorder worksheets.
func InventorySheets(ds *domain.InventoryDataset, items []domain.InventoryItem) []Sheet {
	views := []struct {
		name string
		view dataprocessing.View
	}{
		{SheetAllItems, dataprocessing.ViewAll},
		{SheetSlowItems, dataprocessing.ViewSlow},
		{SheetReorderItems, dataprocessing.ViewReorder},
	}

	sheets := make([]Sheet, 0, len(views))
	for _, v := range views {
		subset := dataprocessing.Filter{View: v.view}.Apply(items)
		table := dataprocessing.EnrichedTable(ds, subset)
		sheets = append(sheets, Sheet{Name: v.name, Columns: table.Columns, Rows: table.Rows})
	}
	return sheets
}
