package fraud

import (
	"math"
	"strings"
	"time"
)

// Пороги суммы (IDR)
const (
	VeryLargeAmountThreshold = 50000000.0
	LargeAmountThreshold     = 10000000.0
	MediumAmountThreshold    = 1000000.0
)

// Веса факторов риска, в сумме 1.0
const (
	AmountWeight   = 0.30
	LocationWeight = 0.20
	TimeWeight     = 0.15
	HistoryWeight  = 0.20
	PatternWeight  = 0.15
)

var (
	highRiskCities   = map[string]bool{"jakarta": true, "surabaya": true, "medan": true}
	mediumRiskCities = map[string]bool{"bandung": true, "semarang": true, "palembang": true}
)

// RiskInput - данные транзакции, необходимые для оценки
type RiskInput struct {
	Amount    float64
	Location  string
	Timestamp time.Time
}

// RiskFactors - значения отдельных факторов в диапазоне [0, 1]
type RiskFactors struct {
	Amount   float64 `json:"amount"`
	Location float64 `json:"location"`
	Time     float64 `json:"time"`
	History  float64 `json:"history"`
	Pattern  float64 `json:"pattern"`
}

// Score возвращает взвешенную сумму факторов, ограниченную [0, 1]
func (f RiskFactors) Score() float64 {
	score := f.Amount*AmountWeight +
		f.Location*LocationWeight +
		f.Time*TimeWeight +
		f.History*HistoryWeight +
		f.Pattern*PatternWeight
	return clamp01(score)
}

// RiskScorer вычисляет оценку риска транзакции
type RiskScorer struct {
	factors  FactorSource
	location *time.Location
}

// NewRiskScorer создает оценщик с источником факторов истории и паттернов.
// При nil используется StaticFactors с нейтральными значениями.
func NewRiskScorer(factors FactorSource) *RiskScorer {
	if factors == nil {
		factors = DefaultStaticFactors()
	}
	return &RiskScorer{factors: factors, location: time.Local}
}

// WithLocation задает часовой пояс, в котором определяется час транзакции
func (s *RiskScorer) WithLocation(loc *time.Location) *RiskScorer {
	if loc != nil {
		s.location = loc
	}
	return s
}

// CalculateRiskFactors вычисляет все факторы риска для транзакции
func (s *RiskScorer) CalculateRiskFactors(input RiskInput) RiskFactors {
	return RiskFactors{
		Amount:   AmountFactor(input.Amount),
		Location: LocationFactor(input.Location),
		Time:     TimeFactor(input.Timestamp.In(s.location)),
		History:  clamp01(s.factors.HistoryFactor(input)),
		Pattern:  clamp01(s.factors.PatternFactor(input)),
	}
}

// CalculateRiskScore возвращает итоговую оценку риска в диапазоне [0, 1]
func (s *RiskScorer) CalculateRiskScore(input RiskInput) float64 {
	return s.CalculateRiskFactors(input).Score()
}

// AmountFactor оценивает риск по сумме
func AmountFactor(amount float64) float64 {
	switch {
	case amount > VeryLargeAmountThreshold:
		return 0.9
	case amount > LargeAmountThreshold:
		return 0.7
	case amount > MediumAmountThreshold:
		return 0.4
	default:
		return 0.2
	}
}

// LocationFactor оценивает риск по городу ("Город, Страна"); пустое значение - нейтральные 0.5
func LocationFactor(location string) float64 {
	if strings.TrimSpace(location) == "" {
		return 0.5
	}

	city := location
	if i := strings.Index(location, ","); i >= 0 {
		city = location[:i]
	}
	city = strings.ToLower(strings.TrimSpace(city))

	switch {
	case highRiskCities[city]:
		return 0.8
	case mediumRiskCities[city]:
		return 0.5
	default:
		return 0.3
	}
}

// TimeFactor оценивает риск по часу: ночь (23:00-04:59) - 0.8, вне рабочего дня - 0.5
func TimeFactor(t time.Time) float64 {
	hour := t.Hour()
	switch {
	case hour >= 23 || hour <= 4:
		return 0.8
	case hour < 9 || hour > 17:
		return 0.5
	default:
		return 0.2
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
