package kafka

import (
	"context"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/stream"
)

// Producer публикует события конвейера в топики Kafka
type Producer interface {
	stream.Publisher
}

// Consumer читает входящие транзакции из топика приема
type Consumer interface {
	// Start блокируется до отмены ctx
	Start(ctx context.Context) error

	Close() error
}

// IntakeHandler обрабатывает транзакцию, полученную из топика приема
type IntakeHandler func(ctx context.Context, input *models.TransactionInput) error
