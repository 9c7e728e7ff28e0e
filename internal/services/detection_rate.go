package services

import (
	"math/rand"
	"sync"
	"time"

	"guardchain-realtime/config"
)

// DetectionRatePolicy приводит доли обнаружения к отображаемому значению.
// При включенном ограничении значение вне полосы [Min, Max] заменяется случайным из полосы.
type DetectionRatePolicy struct {
	Enabled bool
	Min     float64
	Max     float64
	random  RandomSource
}

// NewDetectionRatePolicy создает политику из настроек аналитики
func NewDetectionRatePolicy(cfg config.AnalyticsConfig, random RandomSource) *DetectionRatePolicy {
	if random == nil {
		random = NewLockedRand(0)
	}
	return &DetectionRatePolicy{
		Enabled: cfg.ClampDetectionRate,
		Min:     cfg.DetectionRateMin,
		Max:     cfg.DetectionRateMax,
		random:  random,
	}
}

// Apply возвращает отображаемую долю обнаружения для сырого значения
func (p *DetectionRatePolicy) Apply(raw float64) float64 {
	if p == nil || !p.Enabled {
		return raw
	}
	if raw >= p.Min && raw <= p.Max {
		return raw
	}
	return p.Min + p.random.Float64()*(p.Max-p.Min)
}

// LockedRand - потокобезопасная обертка над math/rand
type LockedRand struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewLockedRand создает источник; seed == 0 берет текущее время
func NewLockedRand(seed int64) *LockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedRand{rand: rand.New(rand.NewSource(seed))}
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}
