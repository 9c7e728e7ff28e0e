package logger

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType - тип события конвейера
type EventType string

const (
	EventTransactionGenerated   EventType = "transaction_generated"
	EventTransactionSaved       EventType = "transaction_saved"
	EventAlertRaised            EventType = "alert_raised"
	EventAnalyticsComputed      EventType = "analytics_computed"
	EventBroadcastSent          EventType = "broadcast_sent"
	EventTickFailed             EventType = "tick_failed"
	EventSubscriberConnected    EventType = "subscriber_connected"
	EventSubscriberDisconnected EventType = "subscriber_disconnected"
	EventStreamPublished        EventType = "stream_published"
	EventIntakeReceived         EventType = "intake_received"
	EventSeedCompleted          EventType = "seed_completed"
)

// DefaultCapacity - сколько последних событий хранит глобальный журнал
const DefaultCapacity = 1000

// Event - запись журнала событий конвейера
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Service   string                 `json:"service"`
	Component string                 `json:"component"` // scheduler, sqlstore, hub, kafka, redis...
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Stats - сводка по содержимому журнала
type Stats struct {
	TotalEvents int            `json:"total_events"`
	Components  map[string]int `json:"components"`
	Services    map[string]int `json:"services"`
	EventTypes  map[string]int `json:"event_types"`
}

// EventLogger - кольцевой буфер последних событий
type EventLogger struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
}

var global = NewEventLogger(DefaultCapacity)

// NewEventLogger создает журнал на capacity записей
func NewEventLogger(capacity int) *EventLogger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EventLogger{events: make([]Event, capacity)}
}

// LogEvent записывает событие в глобальный журнал
func LogEvent(eventType EventType, service, component string, data map[string]interface{}) {
	global.LogEvent(eventType, service, component, data)
}

// GetEvents возвращает до limit последних событий глобального журнала
func GetEvents(limit int) []Event {
	return global.GetEvents(limit)
}

// GetStats возвращает сводку глобального журнала
func GetStats() Stats {
	return global.GetStats()
}

func (l *EventLogger) LogEvent(eventType EventType, service, component string, data map[string]interface{}) {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Service:   service,
		Component: component,
		Timestamp: time.Now(),
		Data:      data,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events[l.next] = event
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
}

// GetEvents возвращает до limit последних событий от старых к новым.
// limit <= 0 возвращает все.
func (l *EventLogger) GetEvents(limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ordered := l.orderedLocked()
	if limit <= 0 || limit > len(ordered) {
		limit = len(ordered)
	}
	result := make([]Event, limit)
	copy(result, ordered[len(ordered)-limit:])
	return result
}

func (l *EventLogger) GetStats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		Components: make(map[string]int),
		Services:   make(map[string]int),
		EventTypes: make(map[string]int),
	}
	for _, event := range l.orderedLocked() {
		stats.TotalEvents++
		stats.Components[event.Component]++
		stats.Services[event.Service]++
		stats.EventTypes[string(event.Type)]++
	}
	return stats
}

func (l *EventLogger) orderedLocked() []Event {
	if !l.full {
		return l.events[:l.next]
	}
	ordered := make([]Event, 0, len(l.events))
	ordered = append(ordered, l.events[l.next:]...)
	return append(ordered, l.events[:l.next]...)
}

// MarshalJSON выводит Timestamp в RFC3339
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}
