package realtime_service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/api/rest"
	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/metrics"
	"guardchain-realtime/internal/traces"

	_ "guardchain-realtime/docs" // Swagger docs

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	dbStatsInterval = 15 * time.Second
)

// StartRealtimeService запускает конвейер, HTTP/WebSocket сервер и gRPC health до получения SIGINT/SIGTERM
func StartRealtimeService() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, log)
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	shutdownTracing, err := traces.Init(ctx, cfg.Tracing.OTLPEndpoint, log)
	if err != nil {
		log.Warn("failed to init tracing", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	deps, err := InitializeDependencies(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Error("failed to close dependencies", zap.Error(err))
		}
	}()

	err = serve(ctx, cfg, deps, log)

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if tracingErr := shutdownTracing(flushCtx); tracingErr != nil {
		log.Warn("failed to flush traces", zap.Error(tracingErr))
	}
	return err
}

// serve запускает фоновые компоненты и HTTP сервер до отмены ctx или ошибки сервера.
// На любом пути выхода подписчики отключаются до возврата.
func serve(ctx context.Context, cfg *config.Config, deps *Dependencies, log *zap.Logger) error {
	// Отменяется при любом пути остановки, включая ошибку HTTP сервера
	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()

	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		deps.Hub.Run(runCtx)
	}()
	go metrics.StartDBStatsCollector(runCtx, deps.Store.DB, dbStatsInterval)

	go func() {
		if err := deps.Health.ListenAndServe(cfg.Server.GRPCPort); err != nil {
			log.Error("gRPC health server stopped", zap.Error(err))
		}
	}()

	if deps.Intake != nil {
		go startIntake(runCtx, deps, log)
	}

	gin.SetMode(gin.ReleaseMode)
	handlers := rest.NewHandlers(
		deps.Analytics,
		deps.Pipeline,
		deps.Store,
		deps.Hub,
		deps.SnapshotCache(),
		cfg.Analytics.Window,
	)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.RealtimePort),
		Handler:           rest.SetupRouter(handlers, cfg.Server.AllowedOrigin, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("realtime service starting", zap.Int("port", cfg.Server.RealtimePort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		deps.Scheduler.Run(runCtx)
	}()

	var err error
	select {
	case <-ctx.Done():
		log.Info("shutting down services")
	case err = <-serverErr:
		log.Error("HTTP server failed", zap.Error(err))
	}

	stopRun()
	<-loopDone
	<-hubDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("server forced to shutdown", zap.Error(shutdownErr))
	}
	deps.Health.Stop()

	log.Info("services exited")
	if err != nil {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// startIntake читает входящие транзакции из Kafka до отмены ctx
func startIntake(ctx context.Context, deps *Dependencies, log *zap.Logger) {
	log.Info("starting Kafka intake consumer")
	if err := deps.Intake.Start(ctx); err != nil {
		log.Error("Kafka intake consumer error", zap.Error(err))
	}
}
