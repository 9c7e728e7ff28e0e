package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guardchain-realtime/internal/models"
	servicemocks "guardchain-realtime/internal/services/mocks"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type received struct {
	Type      models.EventName `json:"type"`
	Timestamp string           `json:"timestamp"`
	Data      json.RawMessage  `json:"data"`
}

func startHubServer(t *testing.T, hub *Hub) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev received
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Stats().ConnectedClients == n }, 3*time.Second, 10*time.Millisecond)
}

func TestHub_InitialSnapshotPrecedesBroadcasts(t *testing.T) {
	provider := new(servicemocks.MockAnalyticsService)
	snapshot := &models.AnalyticsSnapshot{TotalTransactions: 6, RiskDistribution: models.RiskDistribution{Low: 1, Medium: 2, High: 3}}
	provider.On("ComputeSnapshot", mock.Anything, 6*time.Hour).Return(snapshot, nil)

	hub := NewHub(Config{}, provider, zap.NewNop())
	_, url := startHubServer(t, hub)

	conn := dial(t, url)

	first := readEvent(t, conn)
	assert.Equal(t, models.EventAnalyticsUpdate, first.Type)
	var got models.AnalyticsSnapshot
	require.NoError(t, json.Unmarshal(first.Data, &got))
	assert.Equal(t, int64(6), got.TotalTransactions)

	waitForClients(t, hub, 1)
	require.NoError(t, hub.Publish(models.EventNewTransaction, map[string]interface{}{"id": "tx-1"}))

	second := readEvent(t, conn)
	assert.Equal(t, models.EventNewTransaction, second.Type)
	assert.JSONEq(t, `{"id":"tx-1"}`, string(second.Data))
	_, err := time.Parse(time.RFC3339, second.Timestamp)
	assert.NoError(t, err)

	provider.AssertExpectations(t)
}

func TestHub_SnapshotFailureStillRegisters(t *testing.T) {
	provider := new(servicemocks.MockAnalyticsService)
	provider.On("ComputeSnapshot", mock.Anything, mock.Anything).Return(nil, errors.New("database is locked"))

	hub := NewHub(Config{}, provider, zap.NewNop())
	_, url := startHubServer(t, hub)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Publish(models.EventNewAlert, map[string]string{"id": "alert-1"}))

	ev := readEvent(t, conn)
	assert.Equal(t, models.EventNewAlert, ev.Type)
}

func TestHub_PublishReachesAllClientsInOrder(t *testing.T) {
	hub := NewHub(Config{}, nil, zap.NewNop())
	_, url := startHubServer(t, hub)

	a := dial(t, url)
	b := dial(t, url)
	waitForClients(t, hub, 2)

	events := []models.EventName{models.EventNewAlert, models.EventNewTransaction, models.EventAnalyticsUpdate}
	for _, e := range events {
		require.NoError(t, hub.Publish(e, nil))
	}

	for _, conn := range []*websocket.Conn{a, b} {
		for _, want := range events {
			assert.Equal(t, want, readEvent(t, conn).Type)
		}
	}

	stats := hub.Stats()
	assert.Equal(t, int64(3), stats.TotalEvents)
	assert.Equal(t, int64(2), stats.TotalClients)
	assert.Equal(t, int64(2), stats.PeakClients)
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(Config{}, nil, zap.NewNop())
	_, url := startHubServer(t, hub)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	_ = conn.Close()

	waitForClients(t, hub, 0)
	assert.NoError(t, hub.Publish(models.EventNewTransaction, nil))
}

func TestHub_EvictsSlowClient(t *testing.T) {
	hub := NewHub(Config{}, nil, zap.NewNop())

	slow := &Client{id: "slow", hub: hub, send: make(chan []byte, 1)}
	fast := &Client{id: "fast", hub: hub, send: make(chan []byte, 4)}
	hub.clients[slow] = struct{}{}
	hub.clients[fast] = struct{}{}

	require.NoError(t, hub.Publish(models.EventNewTransaction, 1))
	require.NoError(t, hub.Publish(models.EventNewTransaction, 2))

	stats := hub.Stats()
	assert.Equal(t, 1, stats.ConnectedClients)
	assert.Equal(t, int64(1), stats.EvictedClients)

	// Очередь медленного клиента закрыта после единственного сообщения
	_, ok := <-slow.send
	assert.True(t, ok)
	_, ok = <-slow.send
	assert.False(t, ok)

	assert.Len(t, fast.send, 2)
}

func TestHub_MaxClients(t *testing.T) {
	hub := NewHub(Config{MaxClients: 1}, nil, zap.NewNop())
	hub.clients[&Client{id: "existing", send: make(chan []byte, 1)}] = struct{}{}

	w := httptest.NewRecorder()
	hub.HandleWebSocket(w, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHub_RunClosesClientsOnShutdown(t *testing.T) {
	hub := NewHub(Config{}, nil, zap.NewNop())
	_, url := startHubServer(t, hub)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	cancel()
	<-stopped

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Stats().ConnectedClients)

	w := httptest.NewRecorder()
	hub.HandleWebSocket(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHub_CheckOrigin(t *testing.T) {
	hub := NewHub(Config{AllowedOrigin: "http://dashboard.local"}, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "http://realtime.local/ws", nil)
	assert.True(t, hub.checkOrigin(req))

	req.Header.Set("Origin", "http://realtime.local")
	assert.True(t, hub.checkOrigin(req))

	req.Header.Set("Origin", "http://dashboard.local")
	assert.True(t, hub.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, hub.checkOrigin(req))

	open := NewHub(Config{AllowedOrigin: "*"}, nil, zap.NewNop())
	assert.True(t, open.checkOrigin(req))
}

func TestHub_EncodeEnvelope(t *testing.T) {
	hub := NewHub(Config{}, nil, zap.NewNop())
	hub.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	raw, err := hub.encode(models.EventNewAlert, map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"newAlert","timestamp":"2024-03-01T12:00:00Z","data":{"n":1}}`, string(raw))

	_, err = hub.encode(models.EventNewAlert, make(chan int))
	assert.Error(t, err)
}
