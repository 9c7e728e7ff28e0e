package mocks

import (
	"context"

	"guardchain-realtime/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockClientInterface является моком для redis.ClientInterface интерфейса
type MockClientInterface struct {
	mock.Mock
}

// IncrementRiskStats мок для IncrementRiskStats
func (m *MockClientInterface) IncrementRiskStats(ctx context.Context, bucket models.RiskBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// GetRiskStats мок для GetRiskStats
func (m *MockClientInterface) GetRiskStats(ctx context.Context) (models.RiskDistribution, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.RiskDistribution), args.Error(1)
}

// SaveSnapshot мок для SaveSnapshot
func (m *MockClientInterface) SaveSnapshot(ctx context.Context, snapshot *models.AnalyticsSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// GetSnapshot мок для GetSnapshot
func (m *MockClientInterface) GetSnapshot(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsSnapshot), args.Error(1)
}

// ClearRealtimeData мок для ClearRealtimeData
func (m *MockClientInterface) ClearRealtimeData(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close мок для Close
func (m *MockClientInterface) Close() error {
	args := m.Called()
	return args.Error(0)
}
