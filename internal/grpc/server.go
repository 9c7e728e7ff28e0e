package grpc

import (
	"fmt"
	"net"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// PipelineService - имя сервиса в протоколе grpc.health.v1 для конвейера
const PipelineService = "guardchain.realtime.Pipeline"

// DefaultMaxFailures - число подряд неудачных тактов, после которого конвейер считается неисправным
const DefaultMaxFailures = 3

// HealthServer публикует состояние сервиса по протоколу grpc.health.v1.
// Общий статус ("") отражает работу процесса, статус PipelineService - успешность тактов.
type HealthServer struct {
	server      *grpc.Server
	health      *health.Server
	failures    atomic.Int64
	maxFailures int64
	logger      *zap.Logger
}

func NewHealthServer(maxFailures int, log *zap.Logger) *HealthServer {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}

	s := &HealthServer{
		server:      grpc.NewServer(),
		health:      health.NewServer(),
		maxFailures: int64(maxFailures),
		logger:      log.Named("grpc"),
	}

	healthpb.RegisterHealthServer(s.server, s.health)
	// Включаем reflection API для grpcurl и других инструментов
	reflection.Register(s.server)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(PipelineService, healthpb.HealthCheckResponse_SERVING)
	return s
}

// ReportTick учитывает результат такта
func (s *HealthServer) ReportTick(err error) {
	if err == nil {
		if s.failures.Swap(0) >= s.maxFailures {
			s.logger.Info("pipeline recovered")
		}
		s.health.SetServingStatus(PipelineService, healthpb.HealthCheckResponse_SERVING)
		return
	}

	failures := s.failures.Inc()
	if failures == s.maxFailures {
		s.logger.Warn("pipeline marked as not serving", zap.Int64("consecutive_failures", failures))
	}
	if failures >= s.maxFailures {
		s.health.SetServingStatus(PipelineService, healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// Serve обслуживает запросы на lis до вызова Stop
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// ListenAndServe запускает gRPC сервер на порту port
func (s *HealthServer) ListenAndServe(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Stop переводит все сервисы в NOT_SERVING и дожидается завершения запросов
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
