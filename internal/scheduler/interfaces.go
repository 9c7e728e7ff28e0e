package scheduler

import (
	"context"

	"guardchain-realtime/internal/fraud"
	"guardchain-realtime/internal/models"
)

// TransactionSource поставляет синтетические транзакции
type TransactionSource interface {
	GenerateTransaction() *models.TransactionInput
}

// RiskScorer оценивает риск транзакции
type RiskScorer interface {
	CalculateRiskScore(input fraud.RiskInput) float64
}

// Broadcaster рассылает события подписчикам
type Broadcaster interface {
	Publish(event models.EventName, payload interface{}) error
}

// StatsCache принимает счетчики риска и последний снимок аналитики (Redis)
type StatsCache interface {
	IncrementRiskStats(ctx context.Context, bucket models.RiskBucket) error
	SaveSnapshot(ctx context.Context, snapshot *models.AnalyticsSnapshot) error
}

// Ticker выполняет один такт конвейера
type Ticker interface {
	Tick(ctx context.Context) (*TickResult, error)
}

// Seeder заполняет хранилище начальными данными
type Seeder interface {
	Seed(ctx context.Context) error
}

// HealthReporter получает результат каждого такта (gRPC health)
type HealthReporter interface {
	ReportTick(err error)
}
