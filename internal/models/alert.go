package models

import "time"

// AlertSeverity представляет уровень критичности оповещения
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "LOW"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// AlertStatus представляет статус разбора оповещения
type AlertStatus string

const (
	AlertPending       AlertStatus = "PENDING"
	AlertInvestigating AlertStatus = "INVESTIGATING"
	AlertResolved      AlertStatus = "RESOLVED"
	AlertFalsePositive AlertStatus = "FALSE_POSITIVE"
	AlertEscalated     AlertStatus = "ESCALATED"
)

// CategoryFraudSuspicious - категория оповещений, создаваемых конвейером
const CategoryFraudSuspicious = "FRAUD_SUSPICIOUS"

// Alert представляет оповещение о высокорисковой транзакции
type Alert struct {
	ID            string        `json:"id"`
	TransactionID string        `json:"transactionId"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Severity      AlertSeverity `json:"severity"`
	Status        AlertStatus   `json:"status"`
	Category      string        `json:"category"`
	RiskScore     float64       `json:"riskScore"`
	IsDetected    bool          `json:"isDetected"`
	ResponseTime  *float64      `json:"responseTime,omitempty"` // минуты, заполняется при разборе
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// AlertReview представляет результат разбора оповещения
type AlertReview struct {
	Status     AlertStatus `json:"status" binding:"required,oneof=PENDING INVESTIGATING RESOLVED FALSE_POSITIVE ESCALATED"`
	IsDetected *bool       `json:"isDetected"`
}

// AlertEvent представляет событие об оповещении в потоке (Kafka / RabbitMQ)
type AlertEvent struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	Data      *Alert    `json:"data"`
}

// Типы событий потока
const (
	EventTypeTransactionCreated = "TRANSACTION_CREATED"
	EventTypeAlertCreated       = "ALERT_CREATED"
)
