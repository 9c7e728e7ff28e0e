package models

import (
	"encoding/json"
	"time"
)

// TransactionStatus представляет статус транзакции
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionBlocked   TransactionStatus = "BLOCKED"
	TransactionFailed    TransactionStatus = "FAILED"
	TransactionCancelled TransactionStatus = "CANCELLED"
)

// Transaction представляет сохраненную транзакцию с оценкой риска
type Transaction struct {
	ID            string              `json:"id"`
	TransactionID string              `json:"transactionId"`
	Amount        float64             `json:"amount"`
	Currency      string              `json:"currency"`
	FromAccount   string              `json:"fromAccount"`
	ToAccount     string              `json:"toAccount"`
	Description   string              `json:"description"`
	Timestamp     time.Time           `json:"timestamp"`
	Status        TransactionStatus   `json:"status"`
	RiskScore     float64             `json:"riskScore"`
	IsFlagged     bool                `json:"isFlagged"`
	IsBlacklisted bool                `json:"isBlacklisted"`
	Metadata      TransactionMetadata `json:"metadata"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// TransactionInput представляет сгенерированную (или полученную извне) транзакцию до сохранения
type TransactionInput struct {
	TransactionID string              `json:"transactionId" binding:"required"`
	Amount        float64             `json:"amount" binding:"required,gt=0"`
	Currency      string              `json:"currency" binding:"required"`
	FromAccount   string              `json:"fromAccount"`
	ToAccount     string              `json:"toAccount"`
	Description   string              `json:"description"`
	IPAddress     string              `json:"ipAddress"`
	UserAgent     string              `json:"userAgent"`
	Location      string              `json:"location"`
	DeviceID      string              `json:"deviceId"`
	CreatedAt     time.Time           `json:"createdAt"`
	Metadata      TransactionMetadata `json:"metadata"`
}

// TransactionMetadata содержит типизированные необязательные поля и произвольные дополнительные ключи
type TransactionMetadata struct {
	IPAddress       string `json:"ipAddress,omitempty"`
	UserAgent       string `json:"userAgent,omitempty"`
	Location        string `json:"location,omitempty"`
	DeviceID        string `json:"deviceId,omitempty"`
	SourceBank      string `json:"sourceBank,omitempty"`
	SourceName      string `json:"sourceName,omitempty"`
	DestinationBank string `json:"destinationBank,omitempty"`
	DestinationName string `json:"destinationName,omitempty"`
	TransactionType string `json:"transactionType,omitempty"`

	// Extra хранит ключи, для которых нет отдельного поля
	Extra map[string]interface{} `json:"-"`
}

var metadataKeys = map[string]struct{}{
	"ipAddress": {}, "userAgent": {}, "location": {}, "deviceId": {},
	"sourceBank": {}, "sourceName": {}, "destinationBank": {}, "destinationName": {},
	"transactionType": {},
}

// MarshalJSON сериализует метаданные в плоский объект: типизированные поля и Extra рядом
func (m TransactionMetadata) MarshalJSON() ([]byte, error) {
	type plain TransactionMetadata
	known, err := json.Marshal(plain(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]interface{}, len(m.Extra)+len(metadataKeys))
	for k, v := range m.Extra {
		if _, reserved := metadataKeys[k]; reserved {
			continue
		}
		merged[k] = v
	}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// UnmarshalJSON разбирает плоский объект; неизвестные ключи попадают в Extra
func (m *TransactionMetadata) UnmarshalJSON(data []byte) error {
	type plain TransactionMetadata
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	*m = TransactionMetadata(known)
	m.Extra = nil
	for k, v := range all {
		if _, ok := metadataKeys[k]; ok {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]interface{})
		}
		m.Extra[k] = v
	}
	return nil
}

// StatusCount представляет количество транзакций с заданным статусом
type StatusCount struct {
	Status TransactionStatus `json:"status"`
	Count  int64             `json:"count"`
}

// TransactionEvent представляет событие о транзакции в потоке (Kafka / RabbitMQ)
type TransactionEvent struct {
	EventID   string       `json:"eventId"`
	EventType string       `json:"eventType"`
	Timestamp time.Time    `json:"timestamp"`
	Data      *Transaction `json:"data"`
}
