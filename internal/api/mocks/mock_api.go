package mocks

import (
	"context"
	"net/http"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/realtime"
	"guardchain-realtime/internal/scheduler"

	"github.com/stretchr/testify/mock"
)

// MockSimulator является моком для api.Simulator интерфейса
type MockSimulator struct {
	mock.Mock
}

// Tick мок для Tick
func (m *MockSimulator) Tick(ctx context.Context) (*scheduler.TickResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduler.TickResult), args.Error(1)
}

// MockSnapshotCache является моком для api.SnapshotCache интерфейса
type MockSnapshotCache struct {
	mock.Mock
}

// GetSnapshot мок для GetSnapshot
func (m *MockSnapshotCache) GetSnapshot(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsSnapshot), args.Error(1)
}

// GetRiskStats мок для GetRiskStats
func (m *MockSnapshotCache) GetRiskStats(ctx context.Context) (models.RiskDistribution, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.RiskDistribution), args.Error(1)
}

// MockHub является моком для api.Hub интерфейса
type MockHub struct {
	mock.Mock
}

// Stats мок для Stats
func (m *MockHub) Stats() realtime.Stats {
	args := m.Called()
	return args.Get(0).(realtime.Stats)
}

// HandleWebSocket мок для HandleWebSocket
func (m *MockHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	m.Called(w, r)
}

// MockAlertReviewer является моком для storage.AlertReviewer интерфейса
type MockAlertReviewer struct {
	mock.Mock
}

// GetAlert мок для GetAlert
func (m *MockAlertReviewer) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

// ReviewAlert мок для ReviewAlert
func (m *MockAlertReviewer) ReviewAlert(ctx context.Context, id string, review models.AlertReview) (*models.Alert, error) {
	args := m.Called(ctx, id, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}
