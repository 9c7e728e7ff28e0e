package realtime_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/api"
	"guardchain-realtime/internal/fraud"
	"guardchain-realtime/internal/generator"
	grpcserver "guardchain-realtime/internal/grpc"
	"guardchain-realtime/internal/kafka"
	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/rabbitmq"
	"guardchain-realtime/internal/realtime"
	"guardchain-realtime/internal/redis"
	"guardchain-realtime/internal/scheduler"
	"guardchain-realtime/internal/services"
	"guardchain-realtime/internal/storage/sqlstore"
	"guardchain-realtime/internal/stream"

	"go.uber.org/zap"
)

// Dependencies содержит все зависимости realtime service
type Dependencies struct {
	Store     *sqlstore.Store
	Redis     *redis.Client // nil, если Redis отключен или недоступен
	Publisher stream.Publisher
	Hub       *realtime.Hub
	Analytics services.AnalyticsService
	Pipeline  *scheduler.Pipeline
	Scheduler *scheduler.Scheduler
	Health    *grpcserver.HealthServer
	Intake    kafka.Consumer // nil, если прием из Kafka выключен

	logger *zap.Logger
}

// InitializeDependencies инициализирует все зависимости realtime service
func InitializeDependencies(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	store, err := sqlstore.NewConnection(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deps := &Dependencies{Store: store, logger: log}

	if cfg.Redis.Enabled {
		log.Info("connecting to Redis")
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			log.Warn("Redis unavailable, snapshot cache disabled", zap.Error(err))
		} else {
			deps.Redis = client
			if err := client.ClearRealtimeData(ctx); err != nil {
				log.Warn("failed to reset Redis counters", zap.Error(err))
			}
		}
	}

	deps.Publisher = newPublisher(cfg, log)

	policy := services.NewDetectionRatePolicy(cfg.Analytics, services.NewLockedRand(time.Now().UnixNano()))
	deps.Analytics = services.NewAnalyticsService(store, policy, services.AnalyticsOptions{
		RecentTransactions: cfg.Analytics.RecentTransactions,
		RecentAlerts:       cfg.Analytics.RecentAlerts,
	})

	deps.Hub = realtime.NewHub(realtime.Config{
		MaxClients:     cfg.Server.MaxClients,
		AllowedOrigin:  cfg.Server.AllowedOrigin,
		SnapshotWindow: cfg.Analytics.Window,
	}, deps.Analytics, log)

	source := generator.NewTransactionGenerator()
	deps.Pipeline = scheduler.NewPipeline(
		source,
		newScorer(cfg.Risk),
		store,
		services.NewAlertRaiser(store, cfg.Risk.AlertThreshold),
		deps.Analytics,
		deps.Hub,
		scheduler.Options{
			AlertThreshold: cfg.Risk.AlertThreshold,
			Window:         cfg.Analytics.Window,
			StoreTimeout:   cfg.Scheduler.StoreTimeout,
		},
		log,
	).WithPublisher(deps.Publisher)
	if deps.Redis != nil {
		deps.Pipeline.WithStatsCache(deps.Redis)
	}

	var seeder scheduler.Seeder
	if cfg.Scheduler.SeedOnStart {
		seeder = scheduler.NewDataSeeder(source, store, cfg.Risk.AlertThreshold, cfg.Scheduler.StoreTimeout, log).
			WithWindow(cfg.Analytics.Window)
	}

	deps.Health = grpcserver.NewHealthServer(grpcserver.DefaultMaxFailures, log)
	deps.Scheduler = scheduler.New(
		deps.Pipeline,
		seeder,
		cfg.Scheduler.MinInterval,
		cfg.Scheduler.MaxInterval,
		cfg.Risk.AlertThreshold,
		log,
	).WithHealth(deps.Health)

	if cfg.Kafka.IntakeEnabled {
		consumer, err := kafka.NewConsumer(cfg, deps.processIntake, log)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("failed to create Kafka intake consumer: %w", err)
		}
		deps.Intake = consumer
	}

	return deps, nil
}

// SnapshotCache возвращает кэш для REST API; nil, если Redis не подключен
func (d *Dependencies) SnapshotCache() api.SnapshotCache {
	if d.Redis == nil {
		return nil
	}
	return d.Redis
}

func (d *Dependencies) processIntake(ctx context.Context, input *models.TransactionInput) error {
	_, err := d.Pipeline.Process(ctx, input)
	return err
}

// newPublisher создает публикатор потока событий; при ошибке подключения
// сервис продолжает работу без брокера
func newPublisher(cfg *config.Config, log *zap.Logger) stream.Publisher {
	var (
		publisher stream.Publisher
		err       error
	)

	switch cfg.Stream.Backend {
	case config.StreamKafka:
		log.Info("connecting to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers))
		publisher, err = kafka.NewProducer(cfg, log)
	case config.StreamRabbitMQ:
		log.Info("connecting to RabbitMQ")
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQ, log)
	default:
		return stream.NopPublisher{}
	}

	if err != nil {
		log.Warn("stream backend unavailable, events will not be published",
			zap.String("backend", cfg.Stream.Backend),
			zap.Error(err),
		)
		return stream.NopPublisher{}
	}
	return publisher
}

func newScorer(cfg config.RiskConfig) *fraud.RiskScorer {
	if cfg.FactorMode == "random" {
		return fraud.NewRiskScorer(fraud.NewRandomFactors(0))
	}
	return fraud.NewRiskScorer(fraud.StaticFactors{History: cfg.StaticHistory, Pattern: cfg.StaticPattern})
}

// Close закрывает все соединения
func (d *Dependencies) Close() error {
	var errs []error
	if d.Intake != nil {
		errs = append(errs, d.Intake.Close())
	}
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.Store != nil {
		errs = append(errs, d.Store.Close())
	}
	return errors.Join(errs...)
}
