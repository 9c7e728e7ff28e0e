package models

import "time"

// Границы корзин риска: LOW < 0.3 <= MEDIUM < 0.7 <= HIGH
const (
	RiskBucketMediumFrom = 0.3
	RiskBucketHighFrom   = 0.7
)

// RiskBucket представляет корзину риска
type RiskBucket string

const (
	RiskBucketLow    RiskBucket = "LOW"
	RiskBucketMedium RiskBucket = "MEDIUM"
	RiskBucketHigh   RiskBucket = "HIGH"
)

// RiskBucketOf возвращает корзину для оценки риска
func RiskBucketOf(score float64) RiskBucket {
	switch {
	case score < RiskBucketMediumFrom:
		return RiskBucketLow
	case score < RiskBucketHighFrom:
		return RiskBucketMedium
	default:
		return RiskBucketHigh
	}
}

// BucketCount представляет количество транзакций в корзине риска
type BucketCount struct {
	Bucket RiskBucket `json:"bucket"`
	Count  int64      `json:"count"`
}

// RiskDistribution представляет распределение транзакций по корзинам риска
type RiskDistribution struct {
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
}

// Total возвращает сумму всех корзин
func (d RiskDistribution) Total() int64 {
	return d.Low + d.Medium + d.High
}

// AnalyticsSnapshot представляет агрегированную аналитику за окно времени
type AnalyticsSnapshot struct {
	WindowStart         time.Time        `json:"windowStart"`
	WindowEnd           time.Time        `json:"windowEnd"`
	GeneratedAt         time.Time        `json:"generatedAt"`
	TotalTransactions   int64            `json:"totalTransactions"`
	RiskDistribution    RiskDistribution `json:"riskDistribution"`
	StatusDistribution  []StatusCount    `json:"statusDistribution"`
	RecentTransactions  []*Transaction   `json:"recentTransactions"`
	TotalAlerts         int64            `json:"totalAlerts"`
	HighSeverityAlerts  int64            `json:"highSeverityAlerts"`
	BlockedAmount       float64          `json:"blockedAmount"`
	FalsePositives      int64            `json:"falsePositives"`
	DetectionRate       float64          `json:"detectionRate"`
	AverageResponseTime float64          `json:"averageResponseTime"`
	RecentAlerts        []*Alert         `json:"recentAlerts"`
}

// EventName - имя события, рассылаемого подписчикам
type EventName string

const (
	EventNewTransaction  EventName = "newTransaction"
	EventNewAlert        EventName = "newAlert"
	EventAnalyticsUpdate EventName = "analyticsUpdate"
)
