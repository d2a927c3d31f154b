package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invdash/internal/dataprocessing"
	"invdash/pkg/contracts/domain"
)

// MockReloadNotifier is a mock for the ReloadNotifier interface
type MockReloadNotifier struct {
	mock.Mock
}

func (m *MockReloadNotifier) NotifyReloaded(ctx context.Context, ds *domain.InventoryDataset, summary dataprocessing.Summary) {
	m.Called(ctx, ds, summary)
}

func (m *MockReloadNotifier) NotifyReloadFailed(ctx context.Context, source string, err error) {
	m.Called(ctx, source, err)
}

// MockReadinessChecker is a mock for the ReadinessChecker interface
type MockReadinessChecker struct {
	mock.Mock
}

func (m *MockReadinessChecker) CheckReady(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
