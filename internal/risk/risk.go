// Package risk computes distributional risk statistics from closing prices.
package risk

import (
	"math"

	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
)

// Params configures the risk engine.
type Params struct {
	RiskFreeRate float64 // annual
	TradingDays  int
	Confidence   float64
}

// DefaultParams returns 2% risk-free, 252 trading days and 95% confidence.
func DefaultParams() Params {
	return Params{RiskFreeRate: 0.02, TradingDays: 252, Confidence: 0.95}
}

func (p Params) normalized() Params {
	d := DefaultParams()
	if p.TradingDays <= 0 {
		p.TradingDays = d.TradingDays
	}
	if p.Confidence <= 0 || p.Confidence >= 1 {
		p.Confidence = d.Confidence
	}
	return p
}

// Returns computes simple daily returns. Pairs with a non-positive or
// non-finite base are dropped.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 || !finite(prev) || !finite(closes[i]) {
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// Compute derives the risk metric set for closes. benchmark holds the
// benchmark closes aligned to the same dates; nil or a length mismatch leaves
// beta undefined. Any statistic that cannot be computed is left undefined.
func Compute(closes, benchmark []float64, p Params) model.RiskMetrics {
	p = p.normalized()
	var m model.RiskMetrics
	if len(closes) < 2 {
		return m
	}
	returns := Returns(closes)
	annual := math.Sqrt(float64(p.TradingDays))

	if sd, ok := sampleStd(returns); ok {
		m.Volatility = null.FloatFrom(sd * annual)
		if mu, ok := mean(returns); ok && nonZero(sd) {
			excess := mu - p.RiskFreeRate/float64(p.TradingDays)
			m.Sharpe = null.FloatFrom(annual * excess / sd)
		}
	}

	if q, ok := percentile(returns, (1-p.Confidence)*100); ok {
		v := math.Abs(q)
		m.VaR95 = null.FloatFrom(v)
		var tail []float64
		for _, r := range returns {
			if r <= -v {
				tail = append(tail, r)
			}
		}
		if mu, ok := mean(tail); ok {
			m.CVaR95 = null.FloatFrom(math.Abs(mu))
		}
	}

	m.MaxDrawdown = maxDrawdown(closes)
	m.Sortino = sortino(returns, p)
	m.Beta = Beta(closes, benchmark)
	return m
}

func maxDrawdown(closes []float64) null.Float {
	peak := math.Inf(-1)
	worst := 0.0
	seen := 0
	for _, c := range closes {
		if !finite(c) || c <= 0 {
			continue
		}
		seen++
		if c > peak {
			peak = c
		}
		if dd := 1 - c/peak; dd > worst {
			worst = dd
		}
	}
	if seen < 2 {
		return null.Float{}
	}
	return null.FloatFrom(worst)
}

func sortino(returns []float64, p Params) null.Float {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	dd, ok := sampleStd(downside)
	if !ok || !nonZero(dd) {
		return null.Float{}
	}
	mu, _ := mean(returns)
	excess := mu - p.RiskFreeRate/float64(p.TradingDays)
	return null.FloatFrom(math.Sqrt(float64(p.TradingDays)) * excess / dd)
}

// Beta is cov(asset, benchmark) / var(benchmark) over the daily returns of
// two date-aligned close series. A nil benchmark or a length mismatch yields
// no value.
func Beta(closes, benchmark []float64) null.Float {
	if benchmark == nil || len(benchmark) != len(closes) {
		return null.Float{}
	}
	var a, b []float64
	for i := 1; i < len(closes); i++ {
		pa, pb := closes[i-1], benchmark[i-1]
		if pa <= 0 || pb <= 0 || !finite(closes[i]) || !finite(benchmark[i]) {
			continue
		}
		a = append(a, closes[i]/pa-1)
		b = append(b, benchmark[i]/pb-1)
	}
	cov, ok := covariance(a, b)
	if !ok {
		return null.Float{}
	}
	v, ok := sampleVar(b)
	if !ok || !nonZero(v) {
		return null.Float{}
	}
	return null.FloatFrom(cov / v)
}

// Align inner-joins two series on date and returns their closes.
func Align(asset, benchmark model.BarSeries) (a, b []float64) {
	byDate := make(map[int64]float64, len(benchmark.Bars))
	for _, bar := range benchmark.Bars {
		byDate[bar.Date.Unix()] = bar.Close
	}
	for _, bar := range asset.Bars {
		if c, ok := byDate[bar.Date.Unix()]; ok {
			a = append(a, bar.Close)
			b = append(b, c)
		}
	}
	return a, b
}
