package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guardchain-realtime/internal/models"

	"github.com/google/uuid"
)

const (
	writeRetries    = 5
	writeRetryDelay = 50 * time.Millisecond
)

// CreateTransaction сохраняет транзакцию; пустые ID и даты заполняются
func (q *queries) CreateTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	saved := *tx
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	saved.CreatedAt = saved.CreatedAt.UTC()
	if saved.Timestamp.IsZero() {
		saved.Timestamp = saved.CreatedAt
	}
	saved.Timestamp = saved.Timestamp.UTC()
	saved.UpdatedAt = saved.CreatedAt

	metadata, err := json.Marshal(saved.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := q.rebind(`
		INSERT INTO transactions (
			id, transaction_id, amount, currency, from_account, to_account,
			description, timestamp, status, risk_score, is_flagged, is_blacklisted,
			metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	err = retryOperation(ctx, func() error {
		_, err := q.db.ExecContext(ctx, query,
			saved.ID, saved.TransactionID, saved.Amount, saved.Currency, saved.FromAccount, saved.ToAccount,
			saved.Description, saved.Timestamp, string(saved.Status), saved.RiskScore, saved.IsFlagged, saved.IsBlacklisted,
			string(metadata), saved.CreatedAt, saved.UpdatedAt,
		)
		return err
	}, writeRetries, writeRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return &saved, nil
}

// CreateAlert сохраняет оповещение; пустые ID и даты заполняются
func (q *queries) CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	saved := *alert
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	saved.CreatedAt = saved.CreatedAt.UTC()
	saved.UpdatedAt = saved.CreatedAt

	query := q.rebind(`
		INSERT INTO alerts (
			id, transaction_id, title, description, severity, status, category,
			risk_score, is_detected, response_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	err := retryOperation(ctx, func() error {
		_, err := q.db.ExecContext(ctx, query,
			saved.ID, saved.TransactionID, saved.Title, saved.Description, string(saved.Severity),
			string(saved.Status), saved.Category, saved.RiskScore, saved.IsDetected, saved.ResponseTime,
			saved.CreatedAt, saved.UpdatedAt,
		)
		return err
	}, writeRetries, writeRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}

	return &saved, nil
}
