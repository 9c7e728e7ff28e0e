// Package rabbitmq публикует события конвейера в topic exchange RabbitMQ.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/stream"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Ключи маршрутизации событий
const (
	RoutingKeyTransactionCreated = "transaction.created"
	RoutingKeyAlertCreated       = "alert.created"
)

// channel - часть *amqp.Channel, нужная публикатору
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher реализует stream.Publisher поверх RabbitMQ
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *zap.Logger
}

var _ stream.Publisher = (*Publisher)(nil)

// NewPublisher подключается к брокеру и объявляет durable topic exchange
func NewPublisher(cfg config.RabbitMQConfig, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info("rabbitmq publisher initialized", zap.String("exchange", cfg.Exchange))
	p := newPublisher(ch, cfg.Exchange, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *zap.Logger) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, logger: logger.Named("rabbitmq")}
}

func (p *Publisher) PublishTransaction(ctx context.Context, tx *models.Transaction) error {
	return p.publish(ctx, RoutingKeyTransactionCreated, stream.NewTransactionEvent(tx))
}

func (p *Publisher) PublishAlert(ctx context.Context, alert *models.Alert) error {
	return p.publish(ctx, RoutingKeyAlertCreated, stream.NewAlertEvent(alert))
}

func (p *Publisher) publish(ctx context.Context, key string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}
	return nil
}

func (p *Publisher) Backend() string {
	return config.StreamRabbitMQ
}

func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
