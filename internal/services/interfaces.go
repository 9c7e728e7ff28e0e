package services

import (
	"context"
	"time"

	"guardchain-realtime/internal/models"
)

// AlertRaiser определяет интерфейс создания оповещений по высокорисковым транзакциям
type AlertRaiser interface {
	// RaiseAlert сохраняет оповещение, если риск транзакции выше порога.
	// Для транзакций ниже порога возвращает nil, nil.
	RaiseAlert(ctx context.Context, tx *models.Transaction) (*models.Alert, error)
}

// AnalyticsService определяет интерфейс расчета аналитики
type AnalyticsService interface {
	// ComputeSnapshot рассчитывает аналитику за окно [now-window, now]
	ComputeSnapshot(ctx context.Context, window time.Duration) (*models.AnalyticsSnapshot, error)
}

// RandomSource - источник равномерно распределенных значений [0, 1)
type RandomSource interface {
	Float64() float64
}
