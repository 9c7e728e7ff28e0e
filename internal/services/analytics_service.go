package services

import (
	"context"
	"fmt"
	"time"

	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/storage"
)

const (
	defaultRecentTransactions = 100
	defaultRecentAlerts       = 5
)

// AnalyticsOptions задает размеры списков в снимке
type AnalyticsOptions struct {
	RecentTransactions int
	RecentAlerts       int
}

// AnalyticsServiceImpl реализует интерфейс AnalyticsService
type AnalyticsServiceImpl struct {
	gateway storage.Gateway
	policy  *DetectionRatePolicy
	opts    AnalyticsOptions
	now     func() time.Time
}

// NewAnalyticsService создает сервис аналитики
func NewAnalyticsService(gateway storage.Gateway, policy *DetectionRatePolicy, opts AnalyticsOptions) AnalyticsService {
	if opts.RecentTransactions <= 0 {
		opts.RecentTransactions = defaultRecentTransactions
	}
	if opts.RecentAlerts <= 0 {
		opts.RecentAlerts = defaultRecentAlerts
	}
	return &AnalyticsServiceImpl{
		gateway: gateway,
		policy:  policy,
		opts:    opts,
		now:     time.Now,
	}
}

// ComputeSnapshot рассчитывает аналитику за окно [now-window, now].
// Все запросы выполняются в одной читающей транзакции шлюза.
func (s *AnalyticsServiceImpl) ComputeSnapshot(ctx context.Context, window time.Duration) (*models.AnalyticsSnapshot, error) {
	if window <= 0 {
		return nil, fmt.Errorf("invalid analytics window: %s", window)
	}

	end := s.now()
	start := end.Add(-window)
	snapshot := &models.AnalyticsSnapshot{
		WindowStart: start,
		WindowEnd:   end,
		GeneratedAt: end,
	}

	txWindow := storage.TransactionFilter{Since: start, Until: end}
	alertWindow := storage.AlertFilter{Since: start, Until: end}

	var (
		detected       int64
		alertsInWindow int64
		avgResponse    *float64
	)

	err := s.gateway.ReadConsistent(ctx, func(r storage.Reader) error {
		var err error

		if snapshot.TotalTransactions, err = r.CountTransactions(ctx, txWindow); err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}

		buckets, err := r.CountTransactionsByRiskBucket(ctx, txWindow)
		if err != nil {
			return fmt.Errorf("failed to count risk buckets: %w", err)
		}
		snapshot.RiskDistribution = distributionOf(buckets)

		if snapshot.StatusDistribution, err = r.GroupTransactionsByStatus(ctx, txWindow); err != nil {
			return fmt.Errorf("failed to group transactions by status: %w", err)
		}

		if snapshot.RecentTransactions, err = r.RecentTransactions(ctx, txWindow, s.opts.RecentTransactions, storage.OrderAsc); err != nil {
			return fmt.Errorf("failed to load recent transactions: %w", err)
		}

		if snapshot.TotalAlerts, err = r.CountAlerts(ctx, storage.AlertFilter{}); err != nil {
			return fmt.Errorf("failed to count alerts: %w", err)
		}

		severe := storage.AlertFilter{Severities: []models.AlertSeverity{models.SeverityHigh, models.SeverityCritical}}
		if snapshot.HighSeverityAlerts, err = r.CountAlerts(ctx, severe); err != nil {
			return fmt.Errorf("failed to count high severity alerts: %w", err)
		}

		blocked := txWindow
		blocked.Status = models.TransactionBlocked
		if snapshot.BlockedAmount, err = r.SumTransactionAmount(ctx, blocked); err != nil {
			return fmt.Errorf("failed to sum blocked amount: %w", err)
		}

		falsePositives := alertWindow
		falsePositives.Status = models.AlertFalsePositive
		if snapshot.FalsePositives, err = r.CountAlerts(ctx, falsePositives); err != nil {
			return fmt.Errorf("failed to count false positives: %w", err)
		}

		isDetected := true
		detectedFilter := alertWindow
		detectedFilter.Detected = &isDetected
		if detected, err = r.CountAlerts(ctx, detectedFilter); err != nil {
			return fmt.Errorf("failed to count detected alerts: %w", err)
		}

		if alertsInWindow, err = r.CountAlerts(ctx, alertWindow); err != nil {
			return fmt.Errorf("failed to count alerts in window: %w", err)
		}

		responded := alertWindow
		responded.HasResponseTime = true
		if avgResponse, err = r.AverageAlertResponseTime(ctx, responded); err != nil {
			return fmt.Errorf("failed to average response time: %w", err)
		}

		if snapshot.RecentAlerts, err = r.RecentAlerts(ctx, alertWindow, s.opts.RecentAlerts, storage.OrderDesc); err != nil {
			return fmt.Errorf("failed to load recent alerts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var rawRate float64
	if alertsInWindow > 0 {
		rawRate = float64(detected) / float64(alertsInWindow)
	}
	snapshot.DetectionRate = s.policy.Apply(rawRate)

	if avgResponse != nil {
		snapshot.AverageResponseTime = *avgResponse
	}
	if snapshot.StatusDistribution == nil {
		snapshot.StatusDistribution = []models.StatusCount{}
	}
	if snapshot.RecentTransactions == nil {
		snapshot.RecentTransactions = []*models.Transaction{}
	}
	if snapshot.RecentAlerts == nil {
		snapshot.RecentAlerts = []*models.Alert{}
	}

	return snapshot, nil
}

func distributionOf(buckets []models.BucketCount) models.RiskDistribution {
	var d models.RiskDistribution
	for _, b := range buckets {
		switch b.Bucket {
		case models.RiskBucketLow:
			d.Low += b.Count
		case models.RiskBucketMedium:
			d.Medium += b.Count
		case models.RiskBucketHigh:
			d.High += b.Count
		}
	}
	return d
}
