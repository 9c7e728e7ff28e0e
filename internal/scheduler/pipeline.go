package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/fraud"
	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/metrics"
	"guardchain-realtime/internal/models"
	"guardchain-realtime/internal/services"
	"guardchain-realtime/internal/storage"
	"guardchain-realtime/internal/stream"
	"guardchain-realtime/internal/traces"

	"go.uber.org/zap"
)

const serviceName = "realtime-service"

// Options задает параметры такта
type Options struct {
	AlertThreshold float64
	Window         time.Duration
	StoreTimeout   time.Duration
}

// TickResult - результат успешного такта
type TickResult struct {
	Transaction *models.Transaction
	Alert       *models.Alert
	Snapshot    *models.AnalyticsSnapshot
}

// Pipeline выполняет такт: оценка, сохранение, оповещение, аналитика, рассылка.
// Такты сериализуются мьютексом, поэтому плановый цикл, ручной запуск через REST
// и прием из Kafka никогда не выполняются одновременно.
type Pipeline struct {
	mu sync.Mutex

	source    TransactionSource
	scorer    RiskScorer
	writer    storage.Writer
	alerts    services.AlertRaiser
	analytics services.AnalyticsService
	hub       Broadcaster
	publisher stream.Publisher
	cache     StatsCache

	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewPipeline(
	source TransactionSource,
	scorer RiskScorer,
	writer storage.Writer,
	alerts services.AlertRaiser,
	analytics services.AnalyticsService,
	hub Broadcaster,
	opts Options,
	log *zap.Logger,
) *Pipeline {
	if opts.AlertThreshold <= 0 {
		opts.AlertThreshold = services.DefaultAlertThreshold
	}
	if opts.Window <= 0 {
		opts.Window = 6 * time.Hour
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	return &Pipeline{
		source:    source,
		scorer:    scorer,
		writer:    writer,
		alerts:    alerts,
		analytics: analytics,
		hub:       hub,
		publisher: stream.NopPublisher{},
		opts:      opts,
		logger:    log.Named("pipeline"),
		now:       time.Now,
	}
}

// WithPublisher подключает публикацию событий во внешний брокер
func (p *Pipeline) WithPublisher(publisher stream.Publisher) *Pipeline {
	if publisher != nil {
		p.publisher = publisher
	}
	return p
}

// WithStatsCache подключает кэш статистики (Redis)
func (p *Pipeline) WithStatsCache(cache StatsCache) *Pipeline {
	p.cache = cache
	return p
}

// Tick генерирует транзакцию и обрабатывает ее
func (p *Pipeline) Tick(ctx context.Context) (*TickResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input := p.source.GenerateTransaction()
	logger.LogEvent(logger.EventTransactionGenerated, serviceName, "generator", map[string]interface{}{
		"transaction_id": input.TransactionID,
		"amount":         input.Amount,
	})
	return p.Process(ctx, input)
}

// Process обрабатывает готовую транзакцию (сгенерированную или полученную извне)
func (p *Pipeline) Process(ctx context.Context, input *models.TransactionInput) (*TickResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	started := time.Now()
	ctx, span := traces.StartSpan(ctx, "pipeline.tick", traces.TransactionID(input.TransactionID))
	defer span.End()

	result, err := p.process(ctx, input)
	metrics.TickDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		traces.RecordError(span, err)
		stage := "unknown"
		var tickErr *TickError
		if errors.As(err, &tickErr) {
			stage = string(tickErr.Stage)
		}
		metrics.TicksTotal.WithLabelValues(stage).Inc()
		logger.LogEvent(logger.EventTickFailed, serviceName, "scheduler", map[string]interface{}{
			"transaction_id": input.TransactionID,
			"stage":          stage,
			"error":          err.Error(),
		})
		return nil, err
	}

	metrics.TicksTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, input *models.TransactionInput) (*TickResult, error) {
	tx := p.buildTransaction(input)

	saved, err := p.persist(ctx, tx)
	if err != nil {
		return nil, &TickError{Stage: StagePersist, Err: err}
	}

	var alert *models.Alert
	if saved.IsFlagged {
		if alert, err = p.raiseAlert(ctx, saved); err != nil {
			return nil, &TickError{Stage: StageAlert, Err: err}
		}
	}

	snapshot, err := p.computeSnapshot(ctx)
	if err != nil {
		return nil, &TickError{Stage: StageAnalytics, Err: err}
	}

	p.broadcast(ctx, saved, alert, snapshot)
	p.sideChannels(ctx, saved, alert, snapshot)

	return &TickResult{Transaction: saved, Alert: alert, Snapshot: snapshot}, nil
}

// buildTransaction оценивает риск и формирует запись для сохранения
func (p *Pipeline) buildTransaction(input *models.TransactionInput) *models.Transaction {
	now := p.now()
	eventTime := input.CreatedAt
	if eventTime.IsZero() {
		eventTime = now
	}

	location := input.Location
	if location == "" {
		location = input.Metadata.Location
	}

	score := p.scorer.CalculateRiskScore(fraud.RiskInput{
		Amount:    input.Amount,
		Location:  location,
		Timestamp: eventTime,
	})

	tx := newTransaction(input, score, p.opts.AlertThreshold)
	tx.Timestamp = eventTime
	tx.CreatedAt = now
	tx.Metadata.Location = location
	return tx
}

// newTransaction переносит поля входной транзакции и выводит статус и флаг из оценки
func newTransaction(input *models.TransactionInput, score, threshold float64) *models.Transaction {
	flagged := score > threshold
	status := models.TransactionCompleted
	if flagged {
		status = models.TransactionPending
	}

	metadata := input.Metadata
	if metadata.IPAddress == "" {
		metadata.IPAddress = input.IPAddress
	}
	if metadata.UserAgent == "" {
		metadata.UserAgent = input.UserAgent
	}
	if metadata.Location == "" {
		metadata.Location = input.Location
	}
	if metadata.DeviceID == "" {
		metadata.DeviceID = input.DeviceID
	}

	return &models.Transaction{
		TransactionID: input.TransactionID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		FromAccount:   input.FromAccount,
		ToAccount:     input.ToAccount,
		Description:   input.Description,
		Timestamp:     input.CreatedAt,
		Status:        status,
		RiskScore:     score,
		IsFlagged:     flagged,
		IsBlacklisted: false,
		Metadata:      metadata,
	}
}

func (p *Pipeline) persist(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	ctx, span := traces.StartSpan(ctx, "pipeline.persist", traces.RiskScore(tx.RiskScore))
	defer span.End()

	storeCtx, cancel := context.WithTimeout(ctx, p.opts.StoreTimeout)
	defer cancel()

	saved, err := p.writer.CreateTransaction(storeCtx, tx)
	if err != nil {
		traces.RecordError(span, err)
		return nil, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(saved.Status)).Inc()
	logger.LogEvent(logger.EventTransactionSaved, serviceName, "sqlstore", map[string]interface{}{
		"id":         saved.ID,
		"risk_score": saved.RiskScore,
		"status":     string(saved.Status),
	})
	return saved, nil
}

func (p *Pipeline) raiseAlert(ctx context.Context, tx *models.Transaction) (*models.Alert, error) {
	ctx, span := traces.StartSpan(ctx, "pipeline.alert", traces.TransactionID(tx.ID))
	defer span.End()

	storeCtx, cancel := context.WithTimeout(ctx, p.opts.StoreTimeout)
	defer cancel()

	alert, err := p.alerts.RaiseAlert(storeCtx, tx)
	if err != nil {
		traces.RecordError(span, err)
		return nil, err
	}
	if alert == nil {
		return nil, nil
	}

	metrics.AlertsTotal.WithLabelValues(string(alert.Severity)).Inc()
	logger.LogEvent(logger.EventAlertRaised, serviceName, "sqlstore", map[string]interface{}{
		"alert_id":       alert.ID,
		"transaction_id": tx.ID,
		"risk_score":     tx.RiskScore,
	})
	p.logger.Warn("high risk transaction",
		zap.String("transaction_id", tx.ID),
		zap.Float64("risk_score", tx.RiskScore),
	)
	return alert, nil
}

func (p *Pipeline) computeSnapshot(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	ctx, span := traces.StartSpan(ctx, "pipeline.analytics")
	defer span.End()

	storeCtx, cancel := context.WithTimeout(ctx, p.opts.StoreTimeout)
	defer cancel()

	started := time.Now()
	snapshot, err := p.analytics.ComputeSnapshot(storeCtx, p.opts.Window)
	metrics.SnapshotDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		traces.RecordError(span, err)
		return nil, err
	}

	logger.LogEvent(logger.EventAnalyticsComputed, serviceName, "analytics", map[string]interface{}{
		"total_transactions": snapshot.TotalTransactions,
		"total_alerts":       snapshot.TotalAlerts,
	})
	return snapshot, nil
}

// broadcast рассылает события в порядке: newAlert, newTransaction, analyticsUpdate
func (p *Pipeline) broadcast(ctx context.Context, tx *models.Transaction, alert *models.Alert, snapshot *models.AnalyticsSnapshot) {
	_, span := traces.StartSpan(ctx, "pipeline.broadcast")
	defer span.End()

	events := make([]models.EventName, 0, 3)
	if alert != nil {
		p.publishEvent(models.EventNewAlert, alert)
		events = append(events, models.EventNewAlert)
	}
	p.publishEvent(models.EventNewTransaction, tx)
	p.publishEvent(models.EventAnalyticsUpdate, snapshot)
	events = append(events, models.EventNewTransaction, models.EventAnalyticsUpdate)

	logger.LogEvent(logger.EventBroadcastSent, serviceName, "hub", map[string]interface{}{
		"transaction_id": tx.ID,
		"events":         events,
	})
}

func (p *Pipeline) publishEvent(event models.EventName, payload interface{}) {
	if err := p.hub.Publish(event, payload); err != nil {
		p.logger.Error("failed to broadcast event", zap.String("event", string(event)), zap.Error(err))
	}
}

// sideChannels публикует события в брокер и обновляет кэш; ошибки только логируются
func (p *Pipeline) sideChannels(ctx context.Context, tx *models.Transaction, alert *models.Alert, snapshot *models.AnalyticsSnapshot) {
	if backend := p.publisher.Backend(); backend != config.StreamNone {
		p.recordStream(backend, p.publisher.PublishTransaction(ctx, tx), "transaction", tx.ID)
		if alert != nil {
			p.recordStream(backend, p.publisher.PublishAlert(ctx, alert), "alert", alert.ID)
		}
	}

	if p.cache == nil {
		return
	}
	bucket := models.RiskBucketOf(tx.RiskScore)
	if err := p.cache.IncrementRiskStats(ctx, bucket); err != nil {
		p.logger.Warn("failed to update risk stats", zap.String("bucket", string(bucket)), zap.Error(err))
	}
	if err := p.cache.SaveSnapshot(ctx, snapshot); err != nil {
		p.logger.Warn("failed to cache analytics snapshot", zap.Error(err))
	}
}

func (p *Pipeline) recordStream(backend string, err error, kind, id string) {
	if err != nil {
		metrics.StreamPublishTotal.WithLabelValues(backend, "error").Inc()
		p.logger.Warn("failed to publish stream event",
			zap.String("backend", backend),
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Error(err),
		)
		return
	}
	metrics.StreamPublishTotal.WithLabelValues(backend, "ok").Inc()
	logger.LogEvent(logger.EventStreamPublished, serviceName, backend, map[string]interface{}{
		"kind": kind,
		"id":   id,
	})
}
