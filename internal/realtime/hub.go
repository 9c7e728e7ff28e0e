// Package realtime рассылает события конвейера подписчикам по WebSocket.
//
// Каждый подписчик при подключении сначала получает снимок аналитики
// (analyticsUpdate), затем все события, опубликованные после регистрации.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/metrics"
	"guardchain-realtime/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	// DefaultMaxClients - ограничение на число одновременных подписчиков
	DefaultMaxClients = 1000

	sendQueueSize          = 256
	defaultSnapshotWindow  = 6 * time.Hour
	defaultSnapshotTimeout = 5 * time.Second
	serviceName            = "realtime-service"
)

// SnapshotProvider рассчитывает снимок аналитики для нового подписчика
type SnapshotProvider interface {
	ComputeSnapshot(ctx context.Context, window time.Duration) (*models.AnalyticsSnapshot, error)
}

// Config задает параметры хаба
type Config struct {
	MaxClients      int
	AllowedOrigin   string // "*" разрешает любой Origin
	SnapshotWindow  time.Duration
	SnapshotTimeout time.Duration
}

// Event - конверт события, отправляемый подписчикам
type Event struct {
	Type      models.EventName `json:"type"`
	Timestamp string           `json:"timestamp"`
	Data      interface{}      `json:"data"`
}

// Stats - статистика хаба
type Stats struct {
	ConnectedClients int   `json:"connectedClients"`
	TotalEvents      int64 `json:"totalEvents"`
	TotalClients     int64 `json:"totalClients"`
	PeakClients      int64 `json:"peakClients"`
	EvictedClients   int64 `json:"evictedClients"`
}

// Hub хранит множество подписчиков и рассылает им события
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	stopped  bool
	done     chan struct{}
	cfg      Config
	upgrader websocket.Upgrader

	snapshots SnapshotProvider
	logger    *zap.Logger
	now       func() time.Time

	totalEvents  atomic.Int64
	totalClients atomic.Int64
	peakClients  atomic.Int64
	evicted      atomic.Int64
}

// NewHub создает хаб; snapshots может быть nil, тогда снимок при подключении не отправляется
func NewHub(cfg Config, snapshots SnapshotProvider, log *zap.Logger) *Hub {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultMaxClients
	}
	if cfg.SnapshotWindow <= 0 {
		cfg.SnapshotWindow = defaultSnapshotWindow
	}
	if cfg.SnapshotTimeout <= 0 {
		cfg.SnapshotTimeout = defaultSnapshotTimeout
	}

	h := &Hub{
		clients:   make(map[*Client]struct{}),
		done:      make(chan struct{}),
		cfg:       cfg,
		snapshots: snapshots,
		logger:    log.Named("hub"),
		now:       time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Run ждет отмены ctx и закрывает все подключения
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("realtime hub started")
	<-ctx.Done()

	h.mu.Lock()
	h.stopped = true
	for client := range h.clients {
		h.removeLocked(client)
	}
	h.mu.Unlock()
	close(h.done)

	metrics.ActiveSubscribers.Set(0)
	h.logger.Info("realtime hub stopped")
}

// Done закрывается, когда Run завершил отключение подписчиков
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Publish сериализует событие один раз и ставит его в очередь каждому подписчику.
// Подписчик с заполненной очередью отключается и не влияет на остальных.
func (h *Hub) Publish(event models.EventName, payload interface{}) error {
	message, err := h.encode(event, payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	var slow []*Client
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.removeLocked(client)
		h.evicted.Inc()
		metrics.EvictedSubscribersTotal.Inc()
		h.logger.Warn("subscriber evicted: send queue full", zap.String("client", client.id))
	}
	h.mu.Unlock()

	h.totalEvents.Inc()
	metrics.BroadcastEventsTotal.WithLabelValues(string(event)).Inc()
	return nil
}

// Stats возвращает статистику хаба
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	connected := len(h.clients)
	h.mu.RUnlock()

	return Stats{
		ConnectedClients: connected,
		TotalEvents:      h.totalEvents.Load(),
		TotalClients:     h.totalClients.Load(),
		PeakClients:      h.peakClients.Load(),
		EvictedClients:   h.evicted.Load(),
	}
}

// HandleWebSocket переводит соединение на WebSocket, отправляет снимок аналитики
// только этому подписчику и после этого регистрирует его для рассылки
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n >= h.cfg.MaxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h, conn)
	h.sendInitialSnapshot(client)

	if !h.register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "hub unavailable"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) sendInitialSnapshot(client *Client) {
	if h.snapshots == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SnapshotTimeout)
	defer cancel()

	snapshot, err := h.snapshots.ComputeSnapshot(ctx, h.cfg.SnapshotWindow)
	if err != nil {
		h.logger.Error("failed to compute initial snapshot", zap.String("client", client.id), zap.Error(err))
		return
	}

	message, err := h.encode(models.EventAnalyticsUpdate, snapshot)
	if err != nil {
		h.logger.Error("failed to encode initial snapshot", zap.Error(err))
		return
	}
	// Очередь нового клиента пуста, запись не блокируется
	client.send <- message
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	if h.stopped || len(h.clients) >= h.cfg.MaxClients {
		h.mu.Unlock()
		return false
	}
	h.clients[client] = struct{}{}
	n := int64(len(h.clients))
	h.mu.Unlock()

	h.totalClients.Inc()
	for {
		peak := h.peakClients.Load()
		if n <= peak || h.peakClients.CAS(peak, n) {
			break
		}
	}
	metrics.ActiveSubscribers.Set(float64(n))

	logger.LogEvent(logger.EventSubscriberConnected, serviceName, "hub", map[string]interface{}{
		"client":    client.id,
		"connected": n,
	})
	h.logger.Info("subscriber connected", zap.String("client", client.id), zap.Int64("total", n))
	return true
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		h.removeLocked(client)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	logger.LogEvent(logger.EventSubscriberDisconnected, serviceName, "hub", map[string]interface{}{
		"client":    client.id,
		"connected": n,
	})
	h.logger.Info("subscriber disconnected", zap.String("client", client.id), zap.Int("total", n))
}

// removeLocked удаляет клиента и закрывает его очередь; writePump закроет соединение
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	metrics.ActiveSubscribers.Set(float64(len(h.clients)))
}

func (h *Hub) encode(event models.EventName, payload interface{}) ([]byte, error) {
	message, err := json.Marshal(Event{
		Type:      event,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Data:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	return message, nil
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg.AllowedOrigin == "*" {
		return true
	}
	if h.cfg.AllowedOrigin != "" && origin == h.cfg.AllowedOrigin {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
