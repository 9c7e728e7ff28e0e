package rest

import (
	"net/http"
	"strconv"
	"time"

	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// CORSMiddleware возвращает middleware для обработки CORS.
// Пустой allowedOrigin отражает Origin запроса, "*" разрешает любой источник без учетных данных.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := allowedOrigin
		if origin == "" {
			origin = c.Request.Header.Get("Origin")
		}
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger пишет в zap строку на каждый HTTP запрос
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 500
)

// SetupCommonEndpoints добавляет журнал событий конвейера и его сводку.
// GET /api/v1/events поддерживает limit (1..500) и type.
func SetupCommonEndpoints(router *gin.Engine) {
	router.GET("/api/v1/events", listEvents)
	router.GET("/api/v1/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, logger.GetStats())
	})
}

func listEvents(c *gin.Context) {
	limit := defaultEventsLimit
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= maxEventsLimit {
		limit = parsed
	}

	eventType := logger.EventType(c.Query("type"))
	if eventType == "" {
		c.JSON(http.StatusOK, gin.H{"events": logger.GetEvents(limit)})
		return
	}

	all := logger.GetEvents(0)
	filtered := make([]logger.Event, 0, limit)
	for i := len(all) - 1; i >= 0 && len(filtered) < limit; i-- {
		if all[i].Type == eventType {
			filtered = append(filtered, all[i])
		}
	}
	// Возвращаем от старых к новым, как и без фильтра
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	c.JSON(http.StatusOK, gin.H{"events": filtered})
}

// SetupRouter настраивает маршруты REST API и WebSocket
func SetupRouter(handlers *Handlers, allowedOrigin string, log *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery(), RequestLogger(log.Named("http")))
	router.Use(CORSMiddleware(allowedOrigin))
	router.Use(metrics.Middleware())

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/health", handlers.Health)
	router.GET("/metrics", metrics.Handler())
	router.GET("/ws", handlers.ServeWebSocket)

	api := router.Group("/api/v1")
	{
		api.GET("/analytics", handlers.GetAnalytics)
		api.GET("/analytics/latest", handlers.GetLatestSnapshot)
		api.GET("/analytics/risk-stats", handlers.GetRiskStats)
		api.GET("/realtime/stats", handlers.GetRealtimeStats)
		api.POST("/transactions/simulate", handlers.SimulateTransactions)
		api.GET("/alerts/:id", handlers.GetAlert)
		api.PATCH("/alerts/:id", handlers.ReviewAlert)
	}

	SetupCommonEndpoints(router)

	return router
}
