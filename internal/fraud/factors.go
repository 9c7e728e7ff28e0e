package fraud

import (
	"math/rand"
	"sync"
	"time"
)

// FactorSource поставляет факторы истории счета и поведенческих паттернов.
// Реальные модели пока не подключены, поэтому есть две заглушки.
type FactorSource interface {
	HistoryFactor(input RiskInput) float64
	PatternFactor(input RiskInput) float64
}

// StaticFactors возвращает фиксированные значения (детерминированная оценка)
type StaticFactors struct {
	History float64
	Pattern float64
}

// DefaultStaticFactors возвращает нейтральные значения 0.5 / 0.5
func DefaultStaticFactors() StaticFactors {
	return StaticFactors{History: 0.5, Pattern: 0.5}
}

func (f StaticFactors) HistoryFactor(RiskInput) float64 { return f.History }
func (f StaticFactors) PatternFactor(RiskInput) float64 { return f.Pattern }

// RandomFactors возвращает равномерно распределенные значения [0, 1) (демо-режим)
type RandomFactors struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandomFactors создает источник случайных факторов
func NewRandomFactors(seed int64) *RandomFactors {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomFactors{rand: rand.New(rand.NewSource(seed))}
}

func (f *RandomFactors) HistoryFactor(RiskInput) float64 { return f.next() }
func (f *RandomFactors) PatternFactor(RiskInput) float64 { return f.next() }

func (f *RandomFactors) next() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rand.Float64()
}

var (
	_ FactorSource = StaticFactors{}
	_ FactorSource = (*RandomFactors)(nil)
)
