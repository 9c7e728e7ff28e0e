package api

import (
	"context"
	"net/http"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/realtime"
	"guardchain-realtime/internal/scheduler"
)

// Simulator выполняет внеплановый такт конвейера
type Simulator interface {
	// Tick генерирует и обрабатывает одну транзакцию
	Tick(ctx context.Context) (*scheduler.TickResult, error)
}

// SnapshotCache отдает данные, закэшированные конвейером (Redis)
type SnapshotCache interface {
	// GetSnapshot возвращает последний снимок аналитики; nil, если его нет
	GetSnapshot(ctx context.Context) (*models.AnalyticsSnapshot, error)

	// GetRiskStats возвращает счетчики корзин риска с момента запуска
	GetRiskStats(ctx context.Context) (models.RiskDistribution, error)
}

// Hub обслуживает WebSocket подписчиков
type Hub interface {
	// Stats возвращает статистику подписчиков и событий
	Stats() realtime.Stats

	// HandleWebSocket переводит HTTP соединение в WebSocket и регистрирует подписчика
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}
