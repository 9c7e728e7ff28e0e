package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, msg)
	return args.Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestPublisher_PublishTransaction(t *testing.T) {
	ch := new(mockChannel)
	p := newPublisher(ch, "guardchain.events", zap.NewNop())

	ch.On("PublishWithContext", "guardchain.events", RoutingKeyTransactionCreated, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var event models.TransactionEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			event.EventType == models.EventTypeTransactionCreated &&
			event.Data.ID == "tx-1"
	})).Return(nil)

	require.NoError(t, p.PublishTransaction(context.Background(), &models.Transaction{ID: "tx-1"}))
	assert.Equal(t, config.StreamRabbitMQ, p.Backend())
	ch.AssertExpectations(t)
}

func TestPublisher_PublishAlert(t *testing.T) {
	ch := new(mockChannel)
	p := newPublisher(ch, "guardchain.events", zap.NewNop())

	ch.On("PublishWithContext", "guardchain.events", RoutingKeyAlertCreated, mock.Anything).Return(nil)

	require.NoError(t, p.PublishAlert(context.Background(), &models.Alert{ID: "alert-1"}))
	ch.AssertExpectations(t)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := new(mockChannel)
	p := newPublisher(ch, "guardchain.events", zap.NewNop())

	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything).Return(amqp.ErrClosed)

	err := p.PublishTransaction(context.Background(), &models.Transaction{ID: "tx-1"})
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}

func TestPublisher_Close(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Close").Return(nil)

	p := newPublisher(ch, "guardchain.events", zap.NewNop())
	assert.NoError(t, p.Close())
	ch.AssertExpectations(t)
}
