package mocks

import (
	"context"
	"time"

	"guardchain-realtime/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAlertRaiser является моком для services.AlertRaiser интерфейса
type MockAlertRaiser struct {
	mock.Mock
}

// RaiseAlert мок для RaiseAlert
func (m *MockAlertRaiser) RaiseAlert(ctx context.Context, tx *models.Transaction) (*models.Alert, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

// MockAnalyticsService является моком для services.AnalyticsService интерфейса
type MockAnalyticsService struct {
	mock.Mock
}

// ComputeSnapshot мок для ComputeSnapshot
func (m *MockAnalyticsService) ComputeSnapshot(ctx context.Context, window time.Duration) (*models.AnalyticsSnapshot, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsSnapshot), args.Error(1)
}
