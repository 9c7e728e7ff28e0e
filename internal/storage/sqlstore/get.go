package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/storage"
)

const transactionColumns = `id, transaction_id, amount, currency, from_account, to_account,
	description, timestamp, status, risk_score, is_flagged, is_blacklisted,
	metadata, created_at, updated_at`

const alertColumns = `id, transaction_id, title, description, severity, status, category,
	risk_score, is_detected, response_time, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// RecentTransactions возвращает до limit самых свежих транзакций.
// order задает порядок результата: OrderAsc - от старых к новым.
func (q *queries) RecentTransactions(ctx context.Context, filter storage.TransactionFilter, limit int, order storage.SortOrder) ([]*models.Transaction, error) {
	w := transactionWhere(filter)
	query := q.rebind(`SELECT ` + transactionColumns + ` FROM transactions` + w.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ?`)

	rows, err := q.db.QueryContext(ctx, query, append(w.args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0, limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if order == storage.OrderAsc {
		reverse(transactions)
	}
	return transactions, nil
}

// RecentAlerts возвращает до limit самых свежих оповещений
func (q *queries) RecentAlerts(ctx context.Context, filter storage.AlertFilter, limit int, order storage.SortOrder) ([]*models.Alert, error) {
	w := alertWhere(filter)
	query := q.rebind(`SELECT ` + alertColumns + ` FROM alerts` + w.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ?`)

	rows, err := q.db.QueryContext(ctx, query, append(w.args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0, limit)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if order == storage.OrderAsc {
		reverse(alerts)
	}
	return alerts, nil
}

// GetAlert получает оповещение по id
func (q *queries) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	query := q.rebind(`SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`)

	alert, err := scanAlert(q.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx       models.Transaction
		status   string
		metadata []byte
	)
	err := row.Scan(
		&tx.ID, &tx.TransactionID, &tx.Amount, &tx.Currency, &tx.FromAccount, &tx.ToAccount,
		&tx.Description, &tx.Timestamp, &status, &tx.RiskScore, &tx.IsFlagged, &tx.IsBlacklisted,
		&metadata, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Status = models.TransactionStatus(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", tx.ID, err)
		}
	}
	return &tx, nil
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		alert        models.Alert
		severity     string
		status       string
		responseTime sql.NullFloat64
	)
	err := row.Scan(
		&alert.ID, &alert.TransactionID, &alert.Title, &alert.Description, &severity, &status, &alert.Category,
		&alert.RiskScore, &alert.IsDetected, &responseTime, &alert.CreatedAt, &alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	alert.Severity = models.AlertSeverity(severity)
	alert.Status = models.AlertStatus(status)
	if responseTime.Valid {
		v := responseTime.Float64
		alert.ResponseTime = &v
	}
	return &alert, nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
