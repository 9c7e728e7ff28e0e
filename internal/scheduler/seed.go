package scheduler

import (
	"context"
	"fmt"
	"time"

	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/services"
	"guardchain-realtime/internal/storage"

	"go.uber.org/zap"
)

// SeedRiskScores - оценки риска начальных транзакций; i-я создается примерно i+1 час назад
var SeedRiskScores = []float64{0.2, 0.4, 0.7, 0.9, 0.55, 0.8}

const (
	defaultSeedWindow = 6 * time.Hour
	seedStep          = time.Hour
)

// DataSeeder вставляет несколько транзакций в прошлом, чтобы аналитика не была пустой при старте.
// Оповещения и рассылки при этом не создаются.
type DataSeeder struct {
	source       TransactionSource
	writer       storage.Writer
	threshold    float64
	storeTimeout time.Duration
	window       time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewDataSeeder(source TransactionSource, writer storage.Writer, threshold float64, storeTimeout time.Duration, log *zap.Logger) *DataSeeder {
	if threshold <= 0 {
		threshold = services.DefaultAlertThreshold
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &DataSeeder{
		source:       source,
		writer:       writer,
		threshold:    threshold,
		storeTimeout: storeTimeout,
		window:       defaultSeedWindow,
		logger:       log.Named("seeder"),
		now:          time.Now,
	}
}

// WithWindow задает окно аналитики, внутрь которого должны попасть все начальные транзакции
func (s *DataSeeder) WithWindow(window time.Duration) *DataSeeder {
	if window > 0 {
		s.window = window
	}
	return s
}

// seedOffset возвращает возраст i-й начальной транзакции.
// Все возрасты лежат строго внутри (0, window): шаг не больше часа, минус 1/60 шага.
func (s *DataSeeder) seedOffset(i int) time.Duration {
	step := seedStep
	if limit := s.window / time.Duration(len(SeedRiskScores)); limit < step {
		step = limit
	}
	return time.Duration(i+1)*step - step/60
}

func (s *DataSeeder) Seed(ctx context.Context) error {
	now := s.now()

	for i, score := range SeedRiskScores {
		createdAt := now.Add(-s.seedOffset(i))

		input := s.source.GenerateTransaction()
		input.CreatedAt = createdAt

		tx := newTransaction(input, score, s.threshold)
		tx.Timestamp = createdAt
		tx.CreatedAt = createdAt

		storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		_, err := s.writer.CreateTransaction(storeCtx, tx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to seed transaction %d: %w", i+1, err)
		}
	}

	logger.LogEvent(logger.EventSeedCompleted, serviceName, "scheduler", map[string]interface{}{
		"count": len(SeedRiskScores),
	})
	s.logger.Info("seed transactions inserted", zap.Int("count", len(SeedRiskScores)))
	return nil
}
