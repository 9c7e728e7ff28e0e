package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apimocks "guardchain-realtime/internal/api/mocks"
	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/realtime"
	"guardchain-realtime/internal/scheduler"
	servicemocks "guardchain-realtime/internal/services/mocks"
	"guardchain-realtime/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testDeps struct {
	analytics *servicemocks.MockAnalyticsService
	simulator *apimocks.MockSimulator
	reviewer  *apimocks.MockAlertReviewer
	hub       *apimocks.MockHub
	cache     *apimocks.MockSnapshotCache
}

func setupTestRouter(withCache bool) (*gin.Engine, *testDeps) {
	gin.SetMode(gin.TestMode)

	deps := &testDeps{
		analytics: new(servicemocks.MockAnalyticsService),
		simulator: new(apimocks.MockSimulator),
		reviewer:  new(apimocks.MockAlertReviewer),
		hub:       new(apimocks.MockHub),
		cache:     new(apimocks.MockSnapshotCache),
	}

	handlers := NewHandlers(deps.analytics, deps.simulator, deps.reviewer, deps.hub, nil, 6*time.Hour)
	if withCache {
		handlers = NewHandlers(deps.analytics, deps.simulator, deps.reviewer, deps.hub, deps.cache, 6*time.Hour)
	}
	return SetupRouter(handlers, "", zap.NewNop()), deps
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlers_Health(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.hub.On("Stats").Return(realtime.Stats{ConnectedClients: 3})

	w := performRequest(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, float64(3), result["clients"])
}

func TestHandlers_GetAnalytics_DefaultWindow(t *testing.T) {
	router, deps := setupTestRouter(false)
	snapshot := &models.AnalyticsSnapshot{TotalTransactions: 42, DetectionRate: 0.78}
	deps.analytics.On("ComputeSnapshot", mock.Anything, 6*time.Hour).Return(snapshot, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/analytics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var result models.AnalyticsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(42), result.TotalTransactions)
	assert.Equal(t, 0.78, result.DetectionRate)
	deps.analytics.AssertExpectations(t)
}

func TestHandlers_GetAnalytics_CustomWindow(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.analytics.On("ComputeSnapshot", mock.Anything, 30*time.Minute).Return(&models.AnalyticsSnapshot{}, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/analytics?window=30m", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	deps.analytics.AssertExpectations(t)
}

func TestHandlers_GetAnalytics_InvalidWindow(t *testing.T) {
	router, deps := setupTestRouter(false)

	for _, window := range []string{"abc", "-1h", "0s", "200h"} {
		w := performRequest(router, http.MethodGet, "/api/v1/analytics?window="+window, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, window)
	}
	deps.analytics.AssertNotCalled(t, "ComputeSnapshot", mock.Anything, mock.Anything)
}

func TestHandlers_GetAnalytics_Error(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.analytics.On("ComputeSnapshot", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	w := performRequest(router, http.MethodGet, "/api/v1/analytics", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandlers_GetLatestSnapshot(t *testing.T) {
	t.Run("cache disabled", func(t *testing.T) {
		router, _ := setupTestRouter(false)
		w := performRequest(router, http.MethodGet, "/api/v1/analytics/latest", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("no snapshot yet", func(t *testing.T) {
		router, deps := setupTestRouter(true)
		deps.cache.On("GetSnapshot", mock.Anything).Return(nil, nil)
		w := performRequest(router, http.MethodGet, "/api/v1/analytics/latest", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cache error", func(t *testing.T) {
		router, deps := setupTestRouter(true)
		deps.cache.On("GetSnapshot", mock.Anything).Return(nil, errors.New("connection refused"))
		w := performRequest(router, http.MethodGet, "/api/v1/analytics/latest", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("cached snapshot", func(t *testing.T) {
		router, deps := setupTestRouter(true)
		deps.cache.On("GetSnapshot", mock.Anything).Return(&models.AnalyticsSnapshot{TotalAlerts: 7}, nil)
		w := performRequest(router, http.MethodGet, "/api/v1/analytics/latest", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var result models.AnalyticsSnapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, int64(7), result.TotalAlerts)
	})
}

func TestHandlers_GetRiskStats(t *testing.T) {
	router, deps := setupTestRouter(true)
	deps.cache.On("GetRiskStats", mock.Anything).Return(models.RiskDistribution{Low: 2, Medium: 3, High: 1}, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/analytics/risk-stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Distribution models.RiskDistribution `json:"distribution"`
		Total        int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(6), result.Total)
	assert.Equal(t, int64(3), result.Distribution.Medium)
}

func TestHandlers_GetRealtimeStats(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.hub.On("Stats").Return(realtime.Stats{ConnectedClients: 2, TotalEvents: 10, PeakClients: 4})

	w := performRequest(router, http.MethodGet, "/api/v1/realtime/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var result realtime.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.ConnectedClients)
	assert.Equal(t, int64(10), result.TotalEvents)
	assert.Equal(t, int64(4), result.PeakClients)
}

func TestHandlers_SimulateTransactions_Success(t *testing.T) {
	router, deps := setupTestRouter(false)
	low := &scheduler.TickResult{Transaction: &models.Transaction{ID: "tx-1", RiskScore: 0.2}}
	high := &scheduler.TickResult{
		Transaction: &models.Transaction{ID: "tx-2", RiskScore: 0.9},
		Alert:       &models.Alert{ID: "alert-1", TransactionID: "tx-2"},
	}
	deps.simulator.On("Tick", mock.Anything).Return(low, nil).Once()
	deps.simulator.On("Tick", mock.Anything).Return(high, nil).Once()

	w := performRequest(router, http.MethodPost, "/api/v1/transactions/simulate", SimulateRequest{Count: 2})

	assert.Equal(t, http.StatusCreated, w.Code)
	var result SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Processed)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "tx-1", result.Transactions[0].ID)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "alert-1", result.Alerts[0].ID)
	deps.simulator.AssertExpectations(t)
}

func TestHandlers_SimulateTransactions_InvalidCount(t *testing.T) {
	router, deps := setupTestRouter(false)

	for _, count := range []int{0, -1, MaxSimulateCount + 1} {
		w := performRequest(router, http.MethodPost, "/api/v1/transactions/simulate", SimulateRequest{Count: count})
		assert.Equal(t, http.StatusBadRequest, w.Code, "count %d", count)
	}
	deps.simulator.AssertNotCalled(t, "Tick", mock.Anything)
}

func TestHandlers_SimulateTransactions_TickFailure(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.simulator.On("Tick", mock.Anything).Return(&scheduler.TickResult{Transaction: &models.Transaction{ID: "tx-1"}}, nil).Once()
	deps.simulator.On("Tick", mock.Anything).Return(nil, &scheduler.TickError{Stage: scheduler.StagePersist, Err: errors.New("locked")}).Once()

	w := performRequest(router, http.MethodPost, "/api/v1/transactions/simulate", SimulateRequest{Count: 3})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, float64(1), result["processed"])
	assert.Contains(t, result["error"], "persist")
	deps.simulator.AssertNumberOfCalls(t, "Tick", 2)
}

func TestHandlers_ReviewAlert_Success(t *testing.T) {
	router, deps := setupTestRouter(false)
	detected := true
	review := models.AlertReview{Status: models.AlertResolved, IsDetected: &detected}
	responseTime := 12.5
	reviewed := &models.Alert{ID: "alert-1", Status: models.AlertResolved, IsDetected: true, ResponseTime: &responseTime}
	deps.reviewer.On("ReviewAlert", mock.Anything, "alert-1", review).Return(reviewed, nil)

	w := performRequest(router, http.MethodPatch, "/api/v1/alerts/alert-1", review)

	assert.Equal(t, http.StatusOK, w.Code)
	var result models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.AlertResolved, result.Status)
	require.NotNil(t, result.ResponseTime)
	assert.Equal(t, 12.5, *result.ResponseTime)
	deps.reviewer.AssertExpectations(t)
}

func TestHandlers_ReviewAlert_NotFound(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.reviewer.On("ReviewAlert", mock.Anything, "missing", mock.Anything).Return(nil, storage.ErrNotFound)

	w := performRequest(router, http.MethodPatch, "/api/v1/alerts/missing", models.AlertReview{Status: models.AlertFalsePositive})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlers_ReviewAlert_InvalidStatus(t *testing.T) {
	router, deps := setupTestRouter(false)

	w := performRequest(router, http.MethodPatch, "/api/v1/alerts/alert-1", map[string]string{"status": "CLOSED"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.reviewer.AssertNotCalled(t, "ReviewAlert", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlers_GetAlert(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.reviewer.On("GetAlert", mock.Anything, "alert-1").Return(&models.Alert{ID: "alert-1"}, nil)
	deps.reviewer.On("GetAlert", mock.Anything, "missing").Return(nil, storage.ErrNotFound)

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/api/v1/alerts/alert-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodGet, "/api/v1/alerts/missing", nil).Code)
}

func TestHandlers_ServeWebSocket(t *testing.T) {
	router, deps := setupTestRouter(false)
	deps.hub.On("HandleWebSocket", mock.Anything, mock.Anything).Return()

	performRequest(router, http.MethodGet, "/ws", nil)

	deps.hub.AssertCalled(t, "HandleWebSocket", mock.Anything, mock.Anything)
}

func TestCommonEndpoints(t *testing.T) {
	router, _ := setupTestRouter(false)
	logger.LogEvent(logger.EventIntakeReceived, serviceName, "api", map[string]interface{}{"count": 1})

	w := performRequest(router, http.MethodGet, "/api/v1/events?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var events struct {
		Events []map[string]interface{} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	assert.NotEmpty(t, events.Events)
	assert.LessOrEqual(t, len(events.Events), 5)

	logger.LogEvent(logger.EventSeedCompleted, serviceName, "scheduler", nil)
	w = performRequest(router, http.MethodGet, "/api/v1/events?type=seed_completed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var filtered struct {
		Events []struct {
			Type string `json:"type"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.NotEmpty(t, filtered.Events)
	for _, event := range filtered.Events {
		assert.Equal(t, "seed_completed", event.Type)
	}

	w = performRequest(router, http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reflects request origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORSMiddleware(""))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://dashboard.local")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://dashboard.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		router := gin.New()
		router.Use(CORSMiddleware("*"))
		router.PATCH("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}
