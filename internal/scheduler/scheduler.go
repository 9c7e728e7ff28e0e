package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMinInterval = 3 * time.Second
	DefaultMaxInterval = 5 * time.Second
)

// LoopStats - статистика работающего цикла
type LoopStats struct {
	Ticks     int64   `json:"ticks"`
	Failures  int64   `json:"failures"`
	HighRisk  int64   `json:"highRisk"`
	TotalRisk float64 `json:"-"`
}

// AverageRisk возвращает средний риск успешных тактов
func (s LoopStats) AverageRisk() float64 {
	if s.Ticks == 0 {
		return 0
	}
	return s.TotalRisk / float64(s.Ticks)
}

// Scheduler запускает такты со случайной паузой между ними до отмены контекста
type Scheduler struct {
	ticker      Ticker
	seeder      Seeder
	minInterval time.Duration
	maxInterval time.Duration
	threshold   float64
	random      *rand.Rand
	health      HealthReporter
	logger      *zap.Logger
}

// New создает планировщик; seeder может быть nil
func New(ticker Ticker, seeder Seeder, minInterval, maxInterval time.Duration, threshold float64, log *zap.Logger) *Scheduler {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}
	return &Scheduler{
		ticker:      ticker,
		seeder:      seeder,
		minInterval: minInterval,
		maxInterval: maxInterval,
		threshold:   threshold,
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:      log.Named("scheduler"),
	}
}

// WithHealth подключает получателя результатов тактов
func (s *Scheduler) WithHealth(reporter HealthReporter) *Scheduler {
	s.health = reporter
	return s
}

// Run выполняет засев (если задан), затем такты до отмены ctx.
// Ошибка такта логируется и не останавливает цикл.
func (s *Scheduler) Run(ctx context.Context) LoopStats {
	var stats LoopStats

	if s.seeder != nil {
		if err := s.seeder.Seed(ctx); err != nil {
			s.logger.Error("seeding failed", zap.Error(err))
		}
	}

	s.logger.Info("scheduler started",
		zap.Duration("min_interval", s.minInterval),
		zap.Duration("max_interval", s.maxInterval),
	)

	for {
		if ctx.Err() != nil {
			break
		}

		result, err := s.ticker.Tick(ctx)
		if s.health != nil && ctx.Err() == nil {
			s.health.ReportTick(err)
		}
		switch {
		case err == nil:
			stats.Ticks++
			stats.TotalRisk += result.Transaction.RiskScore
			if result.Transaction.RiskScore > s.threshold {
				stats.HighRisk++
			}
			s.logger.Info("tick completed",
				zap.String("transaction_id", result.Transaction.ID),
				zap.Float64("risk_score", result.Transaction.RiskScore),
				zap.Int64("ticks", stats.Ticks),
				zap.Float64("average_risk", stats.AverageRisk()),
				zap.Int64("high_risk", stats.HighRisk),
			)
		case ctx.Err() != nil:
			// Остановка во время такта
		default:
			stats.Failures++
			var tickErr *TickError
			if errors.As(err, &tickErr) {
				s.logger.Error("tick failed", zap.String("stage", string(tickErr.Stage)), zap.Error(tickErr.Err))
			} else {
				s.logger.Error("tick failed", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
		case <-time.After(s.nextDelay()):
		}
	}

	s.logger.Info("scheduler stopped",
		zap.Int64("ticks", stats.Ticks),
		zap.Int64("failures", stats.Failures),
		zap.Float64("average_risk", stats.AverageRisk()),
	)
	return stats
}

// nextDelay возвращает равномерно распределенную паузу в [minInterval, maxInterval]
func (s *Scheduler) nextDelay() time.Duration {
	spread := s.maxInterval - s.minInterval
	if spread <= 0 {
		return s.minInterval
	}
	return s.minInterval + time.Duration(s.random.Int63n(int64(spread)+1))
}
