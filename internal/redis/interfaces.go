package redis

import (
	"context"

	"guardchain-realtime/internal/models"
)

// ClientInterface определяет интерфейс для работы с Redis.
// Реализуется типом Client
type ClientInterface interface {
	// IncrementRiskStats увеличивает счетчик корзины риска
	IncrementRiskStats(ctx context.Context, bucket models.RiskBucket) error

	// GetRiskStats возвращает счетчики по всем корзинам
	GetRiskStats(ctx context.Context) (models.RiskDistribution, error)

	// SaveSnapshot кэширует последний снимок аналитики
	SaveSnapshot(ctx context.Context, snapshot *models.AnalyticsSnapshot) error

	// GetSnapshot возвращает кэшированный снимок (nil, если его нет)
	GetSnapshot(ctx context.Context) (*models.AnalyticsSnapshot, error)

	// ClearRealtimeData удаляет счетчики и кэш
	ClearRealtimeData(ctx context.Context) error

	// Close закрывает соединение с Redis
	Close() error
}

// Убеждаемся, что Client реализует ClientInterface
var _ ClientInterface = (*Client)(nil)
