package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/stream"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type ProducerImpl struct {
	producer         sarama.SyncProducer
	transactionTopic string
	alertTopic       string
	logger           *zap.Logger
}

var _ Producer = (*ProducerImpl)(nil)

// NewProducer создает синхронного продюсера для брокеров из cfg.Kafka
func NewProducer(cfg *config.Config, logger *zap.Logger) (*ProducerImpl, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("kafka producer created", zap.Strings("brokers", cfg.Kafka.Brokers))
	return NewProducerWithClient(producer, cfg.Kafka, logger), nil
}

// NewProducerWithClient оборачивает готовый sarama.SyncProducer
func NewProducerWithClient(producer sarama.SyncProducer, cfg config.KafkaConfig, logger *zap.Logger) *ProducerImpl {
	return &ProducerImpl{
		producer:         producer,
		transactionTopic: cfg.TransactionTopic,
		alertTopic:       cfg.AlertTopic,
		logger:           logger.Named("kafka"),
	}
}

// PublishTransaction отправляет TRANSACTION_CREATED с ключом по ID транзакции
func (p *ProducerImpl) PublishTransaction(ctx context.Context, tx *models.Transaction) error {
	return p.send(ctx, p.transactionTopic, tx.ID, stream.NewTransactionEvent(tx))
}

// PublishAlert отправляет ALERT_CREATED с ключом по ID транзакции, чтобы события шли в одну партицию
func (p *ProducerImpl) PublishAlert(ctx context.Context, alert *models.Alert) error {
	return p.send(ctx, p.alertTopic, alert.TransactionID, stream.NewAlertEvent(alert))
}

func (p *ProducerImpl) send(ctx context.Context, topic, key string, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", topic, err)
	}

	p.logger.Debug("message sent",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *ProducerImpl) Backend() string {
	return config.StreamKafka
}

func (p *ProducerImpl) Close() error {
	return p.producer.Close()
}
