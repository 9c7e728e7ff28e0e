// Package stream описывает публикацию событий конвейера во внешний брокер.
package stream

import (
	"context"
	"time"

	"guardchain-realtime/internal/models"

	"github.com/google/uuid"
)

// Publisher публикует события о сохраненных транзакциях и оповещениях
type Publisher interface {
	// PublishTransaction публикует событие TRANSACTION_CREATED
	PublishTransaction(ctx context.Context, tx *models.Transaction) error

	// PublishAlert публикует событие ALERT_CREATED
	PublishAlert(ctx context.Context, alert *models.Alert) error

	// Backend возвращает имя брокера (для логов и метрик)
	Backend() string

	Close() error
}

// NopPublisher ничего не публикует; используется, когда брокер не настроен или недоступен
type NopPublisher struct{}

func (NopPublisher) PublishTransaction(context.Context, *models.Transaction) error { return nil }
func (NopPublisher) PublishAlert(context.Context, *models.Alert) error             { return nil }
func (NopPublisher) Backend() string                                               { return "none" }
func (NopPublisher) Close() error                                                  { return nil }

// NewTransactionEvent оборачивает транзакцию в конверт события
func NewTransactionEvent(tx *models.Transaction) *models.TransactionEvent {
	return &models.TransactionEvent{
		EventID:   "evt_" + uuid.New().String(),
		EventType: models.EventTypeTransactionCreated,
		Timestamp: time.Now(),
		Data:      tx,
	}
}

// NewAlertEvent оборачивает оповещение в конверт события
func NewAlertEvent(alert *models.Alert) *models.AlertEvent {
	return &models.AlertEvent{
		EventID:   "evt_" + uuid.New().String(),
		EventType: models.EventTypeAlertCreated,
		Timestamp: time.Now(),
		Data:      alert,
	}
}
