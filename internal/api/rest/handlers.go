package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"guardchain-realtime/internal/api"
	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/services"
	"guardchain-realtime/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	serviceName = "realtime-service"

	// MaxSimulateCount - максимальное число транзакций за один запрос симуляции
	MaxSimulateCount = 20
	// MaxAnalyticsWindow - максимальное окно аналитики, доступное через API
	MaxAnalyticsWindow = 7 * 24 * time.Hour

	requestTimeout = 10 * time.Second
)

type Handlers struct {
	analytics services.AnalyticsService
	simulator api.Simulator
	reviewer  storage.AlertReviewer
	hub       api.Hub
	cache     api.SnapshotCache
	window    time.Duration
}

// Создает новые обработчики REST API; cache может быть nil, если Redis отключен
func NewHandlers(
	analytics services.AnalyticsService,
	simulator api.Simulator,
	reviewer storage.AlertReviewer,
	hub api.Hub,
	cache api.SnapshotCache,
	window time.Duration,
) *Handlers {
	if window <= 0 {
		window = 6 * time.Hour
	}
	return &Handlers{
		analytics: analytics,
		simulator: simulator,
		reviewer:  reviewer,
		hub:       hub,
		cache:     cache,
		window:    window,
	}
}

// SimulateRequest - тело запроса симуляции транзакций
type SimulateRequest struct {
	Count int `json:"count" binding:"required,min=1,max=20" example:"5"`
}

// SimulateResponse - результат симуляции
type SimulateResponse struct {
	Processed    int                   `json:"processed"`
	Transactions []*models.Transaction `json:"transactions"`
	Alerts       []*models.Alert       `json:"alerts"`
}

// Health возвращает состояние сервиса
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"clients": h.hub.Stats().ConnectedClients,
	})
}

// GetAnalytics рассчитывает снимок аналитики за окно
// @Summary Получить снимок аналитики
// @Description Рассчитывает агрегаты по транзакциям и оповещениям. Окно задается в формате Go duration (например 6h, 30m).
// @Tags analytics
// @Produce json
// @Param window query string false "Окно аналитики" default(6h)
// @Success 200 {object} models.AnalyticsSnapshot
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/v1/analytics [get]
func (h *Handlers) GetAnalytics(c *gin.Context) {
	window := h.window
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 || parsed > MaxAnalyticsWindow {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive duration up to 168h"})
			return
		}
		window = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	snapshot, err := h.analytics.ComputeSnapshot(ctx, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetLatestSnapshot возвращает последний снимок, закэшированный конвейером
// @Summary Последний снимок аналитики из кэша
// @Tags analytics
// @Produce json
// @Success 200 {object} models.AnalyticsSnapshot
// @Failure 404 {object} map[string]string "Снимок еще не рассчитан"
// @Failure 503 {object} map[string]string "Кэш недоступен"
// @Router /api/v1/analytics/latest [get]
func (h *Handlers) GetLatestSnapshot(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Snapshot cache is disabled"})
		return
	}

	snapshot, err := h.cache.GetSnapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Snapshot cache is unavailable"})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot has been computed yet"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetRiskStats возвращает счетчики корзин риска с момента запуска
// @Summary Счетчики корзин риска
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Кэш недоступен"
// @Router /api/v1/analytics/risk-stats [get]
func (h *Handlers) GetRiskStats(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Snapshot cache is disabled"})
		return
	}

	stats, err := h.cache.GetRiskStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Snapshot cache is unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"distribution": stats,
		"total":        stats.Total(),
	})
}

// GetRealtimeStats возвращает статистику WebSocket подписчиков
// @Summary Статистика подписчиков
// @Tags realtime
// @Produce json
// @Success 200 {object} realtime.Stats
// @Router /api/v1/realtime/stats [get]
func (h *Handlers) GetRealtimeStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Stats())
}

// SimulateTransactions выполняет count внеплановых тактов подряд
// @Summary Сгенерировать транзакции вне расписания
// @Description Каждая транзакция проходит полный такт: оценка, сохранение, оповещение, аналитика, рассылка.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body SimulateRequest true "Количество транзакций (1..20)"
// @Success 201 {object} SimulateResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]interface{} "Такт завершился ошибкой"
// @Router /api/v1/transactions/simulate [post]
func (h *Handlers) SimulateTransactions(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.LogEvent(logger.EventIntakeReceived, serviceName, "api", map[string]interface{}{
		"count": req.Count,
	})

	response := SimulateResponse{
		Transactions: make([]*models.Transaction, 0, req.Count),
		Alerts:       []*models.Alert{},
	}
	for i := 0; i < req.Count; i++ {
		result, err := h.simulator.Tick(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     err.Error(),
				"processed": response.Processed,
			})
			return
		}
		response.Processed++
		response.Transactions = append(response.Transactions, result.Transaction)
		if result.Alert != nil {
			response.Alerts = append(response.Alerts, result.Alert)
		}
	}

	c.JSON(http.StatusCreated, response)
}

// ReviewAlert фиксирует результат разбора оповещения
// @Summary Разобрать оповещение
// @Description Меняет статус оповещения. При первом выходе из PENDING фиксируется время реакции в минутах.
// @Tags alerts
// @Accept json
// @Produce json
// @Param id path string true "ID оповещения"
// @Param review body models.AlertReview true "Результат разбора"
// @Success 200 {object} models.Alert
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/v1/alerts/{id} [patch]
func (h *Handlers) ReviewAlert(c *gin.Context) {
	var review models.AlertReview
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	alert, err := h.reviewer.ReviewAlert(ctx, c.Param("id"), review)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review alert"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

// GetAlert возвращает оповещение по id
// @Summary Получить оповещение
// @Tags alerts
// @Produce json
// @Param id path string true "ID оповещения"
// @Success 200 {object} models.Alert
// @Failure 404 {object} map[string]string "Not Found"
// @Router /api/v1/alerts/{id} [get]
func (h *Handlers) GetAlert(c *gin.Context) {
	alert, err := h.reviewer.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get alert"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

// ServeWebSocket подключает подписчика к хабу
func (h *Handlers) ServeWebSocket(c *gin.Context) {
	h.hub.HandleWebSocket(c.Writer, c.Request)
}
