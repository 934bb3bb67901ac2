package service

import (
	"math/rand/v2"

	"market-khabri/internal/entity"
	"market-khabri/pkg/utils"

	"github.com/shopspring/decimal"
)

// Random is the source of randomness for synthetic data. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom uses the goroutine-safe top-level math/rand/v2 source.
var DefaultRandom Random = globalRandom{}

type financialTemplate struct {
	revenue, profit, eps, yoy, margin float64
}

// Baseline figures (crore rupees, percent) for companies with well-known results.
var financialTemplates = map[string]financialTemplate{
	"TCS":      {revenue: 62600, profit: 12250, eps: 33.4, yoy: 6.8, margin: 19.6},
	"INFY":     {revenue: 40960, profit: 6850, eps: 16.7, yoy: 4.2, margin: 16.7},
	"RELIANCE": {revenue: 230000, profit: 17800, eps: 27.2, yoy: 12.1, margin: 7.7},
	"WIPRO":    {revenue: 22650, profit: 3050, eps: 5.6, yoy: 3.5, margin: 13.5},
}

// SyntheticFinancials produces plausible figures when no document can be read.
type SyntheticFinancials struct {
	rnd    Random
	period func() entity.Period
}

// NewSyntheticFinancials creates a generator labelled with the period returned by period.
func NewSyntheticFinancials(rnd Random, period func() entity.Period) *SyntheticFinancials {
	if rnd == nil {
		rnd = DefaultRandom
	}
	return &SyntheticFinancials{rnd: rnd, period: period}
}

// Generate returns a complete record for symbol. Template figures are jittered
// by up to ±5% each; unknown symbols draw their baseline from bounded ranges.
func (g *SyntheticFinancials) Generate(symbol string) *entity.FinancialRecord {
	tpl, ok := financialTemplates[symbol]
	if !ok {
		tpl = financialTemplate{
			revenue: float64(10000 + g.rnd.IntN(40001)),
			profit:  float64(1000 + g.rnd.IntN(7001)),
			eps:     round(g.uniform(5, 30), 2),
			yoy:     round(g.uniform(-5, 15), 1),
			margin:  round(g.uniform(10, 25), 1),
		}
	}

	p := g.period()
	return &entity.FinancialRecord{
		CompanyName:     entity.CompanyName(symbol),
		Quarter:         p.Quarter,
		FinancialYear:   p.FinancialYear,
		Revenue:         g.jitter(tpl.revenue),
		ProfitAfterTax:  g.jitter(tpl.profit),
		EPS:             g.jitter(tpl.eps),
		OperatingMargin: g.jitter(tpl.margin),
		YoYGrowth:       g.jitter(tpl.yoy),
		QoQGrowth:       utils.ToPointer(round(g.uniform(-3, 8), 2)),
		Source:          entity.ExtractionSourceSynthetic,
	}
}

func (g *SyntheticFinancials) uniform(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

func (g *SyntheticFinancials) jitter(v float64) *float64 {
	return utils.ToPointer(round(v*g.uniform(0.95, 1.05), 2))
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
