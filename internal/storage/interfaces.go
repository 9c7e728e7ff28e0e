package storage

import (
	"context"
	"errors"
	"time"

	"guardchain-realtime/internal/models"
)

// ErrNotFound возвращается, когда запись не найдена
var ErrNotFound = errors.New("not found")

// SortOrder - порядок выборки по времени создания
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// TransactionFilter ограничивает выборку транзакций. Нулевые значения не фильтруют.
type TransactionFilter struct {
	Since  time.Time
	Until  time.Time
	Status models.TransactionStatus
}

// AlertFilter ограничивает выборку оповещений. Нулевые значения не фильтруют.
type AlertFilter struct {
	Since           time.Time
	Until           time.Time
	Status          models.AlertStatus
	Severities      []models.AlertSeverity
	Detected        *bool
	HasResponseTime bool
}

// Reader определяет запросы агрегатов для аналитики
type Reader interface {
	// CountTransactions возвращает количество транзакций по фильтру
	CountTransactions(ctx context.Context, filter TransactionFilter) (int64, error)

	// CountAlerts возвращает количество оповещений по фильтру
	CountAlerts(ctx context.Context, filter AlertFilter) (int64, error)

	// GroupTransactionsByStatus группирует транзакции по статусу
	GroupTransactionsByStatus(ctx context.Context, filter TransactionFilter) ([]models.StatusCount, error)

	// SumTransactionAmount возвращает сумму amount (0, если строк нет)
	SumTransactionAmount(ctx context.Context, filter TransactionFilter) (float64, error)

	// AverageAlertResponseTime возвращает среднее время реакции; nil, если значений нет
	AverageAlertResponseTime(ctx context.Context, filter AlertFilter) (*float64, error)

	// RecentTransactions возвращает до limit последних транзакций в заданном порядке
	RecentTransactions(ctx context.Context, filter TransactionFilter, limit int, order SortOrder) ([]*models.Transaction, error)

	// RecentAlerts возвращает до limit последних оповещений в заданном порядке
	RecentAlerts(ctx context.Context, filter AlertFilter, limit int, order SortOrder) ([]*models.Alert, error)

	// CountTransactionsByRiskBucket считает транзакции по корзинам риска (LOW / MEDIUM / HIGH)
	CountTransactionsByRiskBucket(ctx context.Context, filter TransactionFilter) ([]models.BucketCount, error)
}

// Writer определяет операции записи
type Writer interface {
	// CreateTransaction сохраняет транзакцию и возвращает сохраненную запись
	CreateTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// CreateAlert сохраняет оповещение и возвращает сохраненную запись
	CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
}

// Gateway - шлюз хранилища для конвейера
type Gateway interface {
	Reader
	Writer

	// ReadConsistent выполняет fn так, чтобы все запросы видели один и тот же срез данных
	ReadConsistent(ctx context.Context, fn func(r Reader) error) error

	// Close закрывает соединение с хранилищем
	Close() error
}

// AlertReviewer определяет операции разбора оповещений аналитиком
type AlertReviewer interface {
	// GetAlert получает оповещение по id (ErrNotFound, если его нет)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)

	// ReviewAlert фиксирует результат разбора оповещения
	ReviewAlert(ctx context.Context, id string, review models.AlertReview) (*models.Alert, error)
}
