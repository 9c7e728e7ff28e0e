package mocks

import (
	"context"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockGateway является моком для storage.Gateway интерфейса
type MockGateway struct {
	mock.Mock
}

var _ storage.Gateway = (*MockGateway)(nil)

// CreateTransaction мок для CreateTransaction
func (m *MockGateway) CreateTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

// CreateAlert мок для CreateAlert
func (m *MockGateway) CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	args := m.Called(ctx, alert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

// CountTransactions мок для CountTransactions
func (m *MockGateway) CountTransactions(ctx context.Context, filter storage.TransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// CountAlerts мок для CountAlerts
func (m *MockGateway) CountAlerts(ctx context.Context, filter storage.AlertFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// GroupTransactionsByStatus мок для GroupTransactionsByStatus
func (m *MockGateway) GroupTransactionsByStatus(ctx context.Context, filter storage.TransactionFilter) ([]models.StatusCount, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StatusCount), args.Error(1)
}

// SumTransactionAmount мок для SumTransactionAmount
func (m *MockGateway) SumTransactionAmount(ctx context.Context, filter storage.TransactionFilter) (float64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(float64), args.Error(1)
}

// AverageAlertResponseTime мок для AverageAlertResponseTime
func (m *MockGateway) AverageAlertResponseTime(ctx context.Context, filter storage.AlertFilter) (*float64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

// RecentTransactions мок для RecentTransactions
func (m *MockGateway) RecentTransactions(ctx context.Context, filter storage.TransactionFilter, limit int, order storage.SortOrder) ([]*models.Transaction, error) {
	args := m.Called(ctx, filter, limit, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// RecentAlerts мок для RecentAlerts
func (m *MockGateway) RecentAlerts(ctx context.Context, filter storage.AlertFilter, limit int, order storage.SortOrder) ([]*models.Alert, error) {
	args := m.Called(ctx, filter, limit, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Alert), args.Error(1)
}

// CountTransactionsByRiskBucket мок для CountTransactionsByRiskBucket
func (m *MockGateway) CountTransactionsByRiskBucket(ctx context.Context, filter storage.TransactionFilter) ([]models.BucketCount, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BucketCount), args.Error(1)
}

// ReadConsistent мок для ReadConsistent: при отсутствии ошибки вызывает fn с самим моком
func (m *MockGateway) ReadConsistent(ctx context.Context, fn func(r storage.Reader) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

// Close мок для Close
func (m *MockGateway) Close() error {
	args := m.Called()
	return args.Error(0)
}
