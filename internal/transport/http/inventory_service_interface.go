package http

import (
	"context"
	"io"

	"invdash/internal/dataprocessing"
	"invdash/internal/exporter"
	"invdash/internal/services"
	"invdash/pkg/contracts/domain"
)

// InventoryServiceInterface defines the inventory operations used by the handlers
type InventoryServiceInterface interface {
	Items(ctx context.Context, f dataprocessing.Filter, limit int) (*services.ItemsResult, error)
	Summary(ctx context.Context, f dataprocessing.Filter) (dataprocessing.Summary, error)
	FilterOptions(ctx context.Context, f dataprocessing.Filter) (dataprocessing.FilterOptions, error)
	Analytics(ctx context.Context, f dataprocessing.Filter, opts dataprocessing.AnalysisOptions) (*dataprocessing.Report, error)
	Reload(ctx context.Context) (*domain.InventoryDataset, error)
	Export(ctx context.Context, format exporter.Format, f dataprocessing.Filter, w io.Writer) error
}
