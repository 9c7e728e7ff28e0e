package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"guardchain-realtime/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// scriptedTicker возвращает заранее заданные результаты и отменяет контекст после последнего
type scriptedTicker struct {
	mu      sync.Mutex
	scores  []float64
	fail    map[int]error
	calls   int
	cancel  context.CancelFunc
	seeded  *bool
	ordered bool
}

func (t *scriptedTicker) Tick(ctx context.Context) (*TickResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seeded != nil && *t.seeded && t.calls == 0 {
		t.ordered = true
	}
	i := t.calls
	t.calls++
	if t.calls >= len(t.scores) {
		t.cancel()
	}
	if err, ok := t.fail[i]; ok {
		return nil, err
	}
	return &TickResult{Transaction: &models.Transaction{ID: "tx", RiskScore: t.scores[i]}}, nil
}

type flagSeeder struct {
	done bool
	err  error
}

func (s *flagSeeder) Seed(context.Context) error {
	s.done = true
	return s.err
}

func TestScheduler_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seeder := &flagSeeder{}
	ticker := &scriptedTicker{
		scores: []float64{0.2, 0.9, 0.5, 0.8},
		fail:   map[int]error{2: &TickError{Stage: StageAnalytics, Err: errors.New("boom")}},
		cancel: cancel,
		seeded: &seeder.done,
	}

	s := New(ticker, seeder, time.Millisecond, 2*time.Millisecond, 0.7, zap.NewNop())
	stats := s.Run(ctx)

	assert.True(t, ticker.ordered, "seeding must happen before the first tick")
	assert.Equal(t, 4, ticker.calls)
	assert.Equal(t, int64(3), stats.Ticks)
	assert.Equal(t, int64(1), stats.Failures)
	assert.Equal(t, int64(2), stats.HighRisk)
	assert.InDelta(t, (0.2+0.9+0.8)/3, stats.AverageRisk(), 1e-9)
}

func TestScheduler_RunContinuesAfterSeedFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := &scriptedTicker{scores: []float64{0.1}, cancel: cancel}
	s := New(ticker, &flagSeeder{err: errors.New("locked")}, time.Millisecond, time.Millisecond, 0.7, zap.NewNop())

	stats := s.Run(ctx)

	assert.Equal(t, int64(1), stats.Ticks)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticker := &scriptedTicker{scores: []float64{0.1}, cancel: func() {}}
	stats := New(ticker, nil, time.Hour, time.Hour, 0.7, zap.NewNop()).Run(ctx)

	assert.Zero(t, ticker.calls)
	assert.Zero(t, stats.Ticks)
}

func TestScheduler_NextDelay(t *testing.T) {
	s := New(nil, nil, 3*time.Second, 5*time.Second, 0.7, zap.NewNop())
	for i := 0; i < 200; i++ {
		d := s.nextDelay()
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}

	fixed := New(nil, nil, 2*time.Second, time.Second, 0.7, zap.NewNop())
	assert.Equal(t, 2*time.Second, fixed.nextDelay())
}

func TestLoopStats_AverageRiskEmpty(t *testing.T) {
	assert.Zero(t, LoopStats{}.AverageRisk())
}

type recordingHealth struct {
	results []error
}

func (h *recordingHealth) ReportTick(err error) {
	h.results = append(h.results, err)
}

func TestScheduler_ReportsTickResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("boom")
	ticker := &scriptedTicker{
		scores: []float64{0.1, 0.2, 0.3},
		fail:   map[int]error{1: boom},
		cancel: cancel,
	}
	health := &recordingHealth{}

	New(ticker, nil, time.Millisecond, time.Millisecond, 0.7, zap.NewNop()).WithHealth(health).Run(ctx)

	// Последний такт завершился уже после отмены и не учитывается
	assert.Equal(t, []error{nil, boom}, health.results)
}
