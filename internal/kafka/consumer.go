package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/models"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// ConsumerImpl читает TransactionInput из топика приема и передает их в конвейер
type ConsumerImpl struct {
	consumer sarama.ConsumerGroup
	topic    string
	handler  IntakeHandler
	logger   *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ Consumer = (*ConsumerImpl)(nil)

func NewConsumer(cfg *config.Config, handler IntakeHandler, log *zap.Logger) (*ConsumerImpl, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Version = sarama.V2_8_0_0

	group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	log.Info("kafka intake consumer created",
		zap.String("topic", cfg.Kafka.IntakeTopic),
		zap.String("group", cfg.Kafka.ConsumerGroupID),
	)
	return &ConsumerImpl{
		consumer: group,
		topic:    cfg.Kafka.IntakeTopic,
		handler:  handler,
		logger:   log.Named("kafka-intake"),
	}, nil
}

// Start потребляет топик до отмены ctx, затем закрывает группу
func (c *ConsumerImpl) Start(ctx context.Context) error {
	topics := []string{c.topic}
	groupHandler := &intakeHandler{handler: c.handler, logger: c.logger}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			if err := c.consumer.Consume(ctx, topics, groupHandler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.Error("consume failed", zap.Error(err))
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case err, ok := <-c.consumer.Errors():
				if !ok {
					return
				}
				c.logger.Warn("consumer error", zap.Error(err))
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	c.logger.Info("intake consumer shutting down")
	wg.Wait()
	return c.Close()
}

// Close закрывает группу потребителей; повторные вызовы возвращают результат первого
func (c *ConsumerImpl) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.consumer.Close()
	})
	return c.closeErr
}

type intakeHandler struct {
	handler IntakeHandler
	logger  *zap.Logger
}

func (h *intakeHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *intakeHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *intakeHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			h.handle(session.Context(), message)
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handle разбирает и обрабатывает одно сообщение; ошибки только логируются, сообщение подтверждается
func (h *intakeHandler) handle(ctx context.Context, message *sarama.ConsumerMessage) {
	input, err := DecodeIntake(message.Value)
	if err != nil {
		h.logger.Warn("skipping malformed intake message",
			zap.Int32("partition", message.Partition),
			zap.Int64("offset", message.Offset),
			zap.Error(err),
		)
		return
	}

	logger.LogEvent(logger.EventIntakeReceived, "realtime-service", "kafka", map[string]interface{}{
		"transaction_id": input.TransactionID,
		"offset":         message.Offset,
	})

	if err := h.handler(ctx, input); err != nil {
		h.logger.Error("failed to process intake transaction",
			zap.String("transaction_id", input.TransactionID),
			zap.Error(err),
		)
	}
}

// DecodeIntake разбирает и проверяет входящую транзакцию
func DecodeIntake(data []byte) (*models.TransactionInput, error) {
	var input models.TransactionInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intake message: %w", err)
	}
	if input.TransactionID == "" {
		return nil, errors.New("transactionId is required")
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", input.Amount)
	}
	if input.Currency == "" {
		input.Currency = "IDR"
	}
	if input.Location == "" {
		input.Location = input.Metadata.Location
	}
	return &input, nil
}
