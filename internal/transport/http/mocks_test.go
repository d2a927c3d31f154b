package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"invdash/internal/dataprocessing"
	"invdash/internal/exporter"
	"invdash/internal/services"
	"invdash/pkg/contracts/domain"
)

// MockInventoryService is a mock for InventoryServiceInterface
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Items(ctx context.Context, f dataprocessing.Filter, limit int) (*services.ItemsResult, error) {
	args := m.Called(ctx, f, limit)
	res, _ := args.Get(0).(*services.ItemsResult)
	return res, args.Error(1)
}

func (m *MockInventoryService) Summary(ctx context.Context, f dataprocessing.Filter) (dataprocessing.Summary, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(dataprocessing.Summary), args.Error(1)
}

func (m *MockInventoryService) FilterOptions(ctx context.Context, f dataprocessing.Filter) (dataprocessing.FilterOptions, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(dataprocessing.FilterOptions), args.Error(1)
}

func (m *MockInventoryService) Analytics(ctx context.Context, f dataprocessing.Filter, opts dataprocessing.AnalysisOptions) (*dataprocessing.Report, error) {
	args := m.Called(ctx, f, opts)
	res, _ := args.Get(0).(*dataprocessing.Report)
	return res, args.Error(1)
}

func (m *MockInventoryService) Reload(ctx context.Context) (*domain.InventoryDataset, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*domain.InventoryDataset)
	return res, args.Error(1)
}

func (m *MockInventoryService) Export(ctx context.Context, format exporter.Format, f dataprocessing.Filter, w io.Writer) error {
	args := m.Called(ctx, format, f, w)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}
