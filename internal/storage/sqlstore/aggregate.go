package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/storage"
)

// riskBucketExpr раскладывает risk_score по корзинам так же, как models.RiskBucketOf
var riskBucketExpr = fmt.Sprintf(
	"CASE WHEN risk_score < %v THEN '%s' WHEN risk_score < %v THEN '%s' ELSE '%s' END",
	models.RiskBucketMediumFrom, models.RiskBucketLow,
	models.RiskBucketHighFrom, models.RiskBucketMedium,
	models.RiskBucketHigh,
)

// CountTransactions возвращает количество транзакций по фильтру
func (q *queries) CountTransactions(ctx context.Context, filter storage.TransactionFilter) (int64, error) {
	w := transactionWhere(filter)
	var count int64
	err := q.db.QueryRowContext(ctx, q.rebind(`SELECT COUNT(*) FROM transactions`+w.String()), w.args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// CountAlerts возвращает количество оповещений по фильтру
func (q *queries) CountAlerts(ctx context.Context, filter storage.AlertFilter) (int64, error) {
	w := alertWhere(filter)
	var count int64
	err := q.db.QueryRowContext(ctx, q.rebind(`SELECT COUNT(*) FROM alerts`+w.String()), w.args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// GroupTransactionsByStatus группирует транзакции по статусу
func (q *queries) GroupTransactionsByStatus(ctx context.Context, filter storage.TransactionFilter) ([]models.StatusCount, error) {
	w := transactionWhere(filter)
	query := q.rebind(`SELECT status, COUNT(*) FROM transactions` + w.String() + ` GROUP BY status ORDER BY status`)

	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group transactions by status: %w", err)
	}
	defer rows.Close()

	groups := make([]models.StatusCount, 0)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		groups = append(groups, models.StatusCount{Status: models.TransactionStatus(status), Count: count})
	}
	return groups, rows.Err()
}

// SumTransactionAmount возвращает сумму amount по фильтру
func (q *queries) SumTransactionAmount(ctx context.Context, filter storage.TransactionFilter) (float64, error) {
	w := transactionWhere(filter)
	var sum sql.NullFloat64
	err := q.db.QueryRowContext(ctx, q.rebind(`SELECT SUM(amount) FROM transactions`+w.String()), w.args...).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transaction amount: %w", err)
	}
	return sum.Float64, nil
}

// AverageAlertResponseTime возвращает среднее response_time по оповещениям, где оно задано
func (q *queries) AverageAlertResponseTime(ctx context.Context, filter storage.AlertFilter) (*float64, error) {
	w := alertWhere(filter)
	var avg sql.NullFloat64
	err := q.db.QueryRowContext(ctx, q.rebind(`SELECT AVG(response_time) FROM alerts`+w.String()), w.args...).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to average alert response time: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// CountTransactionsByRiskBucket считает транзакции по корзинам риска.
// Отсутствующие корзины возвращаются с нулевым количеством.
func (q *queries) CountTransactionsByRiskBucket(ctx context.Context, filter storage.TransactionFilter) ([]models.BucketCount, error) {
	w := transactionWhere(filter)
	query := q.rebind(`SELECT ` + riskBucketExpr + ` AS bucket, COUNT(*) FROM transactions` + w.String() + ` GROUP BY bucket`)

	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions by risk bucket: %w", err)
	}
	defer rows.Close()

	counts := map[models.RiskBucket]int64{}
	for rows.Next() {
		var (
			bucket string
			count  int64
		)
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, err
		}
		counts[models.RiskBucket(bucket)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return []models.BucketCount{
		{Bucket: models.RiskBucketLow, Count: counts[models.RiskBucketLow]},
		{Bucket: models.RiskBucketMedium, Count: counts[models.RiskBucketMedium]},
		{Bucket: models.RiskBucketHigh, Count: counts[models.RiskBucketHigh]},
	}, nil
}
