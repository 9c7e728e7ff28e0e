package mocks

import (
	"context"

	"guardchain-realtime/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPublisher является моком для stream.Publisher интерфейса
type MockPublisher struct {
	mock.Mock
}

// PublishTransaction мок для PublishTransaction
func (m *MockPublisher) PublishTransaction(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// PublishAlert мок для PublishAlert
func (m *MockPublisher) PublishAlert(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// Backend возвращает имя брокера
func (m *MockPublisher) Backend() string {
	return "mock"
}

// Close мок для Close
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
