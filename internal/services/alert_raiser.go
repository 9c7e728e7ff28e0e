package services

import (
	"context"
	"fmt"
	"time"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/storage"
)

// DefaultAlertThreshold - порог риска, строго выше которого создается оповещение
const DefaultAlertThreshold = 0.7

const highRiskAlertTitle = "High Risk Transaction Detected"

// AlertRaiserImpl реализует интерфейс AlertRaiser
type AlertRaiserImpl struct {
	writer    storage.Writer
	threshold float64
	now       func() time.Time
}

// NewAlertRaiser создает сервис оповещений; threshold <= 0 означает порог по умолчанию
func NewAlertRaiser(writer storage.Writer, threshold float64) AlertRaiser {
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	return &AlertRaiserImpl{
		writer:    writer,
		threshold: threshold,
		now:       time.Now,
	}
}

// RaiseAlert создает оповещение HIGH для транзакции с риском выше порога
func (s *AlertRaiserImpl) RaiseAlert(ctx context.Context, tx *models.Transaction) (*models.Alert, error) {
	if tx == nil || tx.RiskScore <= s.threshold {
		return nil, nil
	}

	alert := &models.Alert{
		TransactionID: tx.ID,
		Title:         highRiskAlertTitle,
		Description:   fmt.Sprintf("High-risk transaction detected (Score: %.2f%%)", tx.RiskScore*100),
		Severity:      models.SeverityHigh,
		Status:        models.AlertPending,
		Category:      models.CategoryFraudSuspicious,
		RiskScore:     tx.RiskScore,
		IsDetected:    false,
		CreatedAt:     s.now(),
	}

	saved, err := s.writer.CreateAlert(ctx, alert)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert for transaction %s: %w", tx.ID, err)
	}
	return saved, nil
}
