package sqlstore

import (
	"context"
	"fmt"
	"time"

	"guardchain-realtime/internal/models"
)

// ReviewAlert фиксирует результат разбора оповещения: статус, признак подтвержденного
// обнаружения и время реакции в минутах (только при первом разборе)
func (s *Store) ReviewAlert(ctx context.Context, id string, review models.AlertReview) (*models.Alert, error) {
	alert, err := s.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	alert.Status = review.Status
	if review.IsDetected != nil {
		alert.IsDetected = *review.IsDetected
	}
	if alert.ResponseTime == nil {
		minutes := now.Sub(alert.CreatedAt).Minutes()
		if minutes < 0 {
			minutes = 0
		}
		alert.ResponseTime = &minutes
	}
	alert.UpdatedAt = now

	query := s.rebind(`
		UPDATE alerts
		SET status = ?, is_detected = ?, response_time = ?, updated_at = ?
		WHERE id = ?
	`)

	err = retryOperation(ctx, func() error {
		_, err := s.DB.ExecContext(ctx, query,
			string(alert.Status), alert.IsDetected, alert.ResponseTime, alert.UpdatedAt, alert.ID,
		)
		return err
	}, writeRetries, writeRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert %s: %w", id, err)
	}

	return alert, nil
}
