package risk

import (
	"math"
	"testing"
	"time"

	"MarketLens/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i)*0.1
	}
	return out
}

func TestComputeTooShort(t *testing.T) {
	for _, closes := range [][]float64{nil, {}, {100}} {
		m := Compute(closes, nil, DefaultParams())
		for name, v := range m.Map() {
			assert.False(t, v.Valid, name)
		}
	}
}

func TestComputeRisingSeries(t *testing.T) {
	m := Compute(linear(30, 100), nil, DefaultParams())

	require.True(t, m.MaxDrawdown.Valid)
	assert.Equal(t, 0.0, m.MaxDrawdown.Float64)
	require.True(t, m.Sharpe.Valid)
	assert.Greater(t, m.Sharpe.Float64, 0.0)
	require.True(t, m.Volatility.Valid)
	assert.Greater(t, m.Volatility.Float64, 0.0)
	assert.False(t, m.Sortino.Valid, "no negative returns")
	assert.False(t, m.CVaR95.Valid, "no returns in the loss tail")
	assert.False(t, m.Beta.Valid)
}

func TestComputeFlatSeries(t *testing.T) {
	closes := []float64{50, 50, 50, 50, 50}
	m := Compute(closes, nil, DefaultParams())

	require.True(t, m.Volatility.Valid)
	assert.Equal(t, 0.0, m.Volatility.Float64)
	assert.False(t, m.Sharpe.Valid)
	assert.Equal(t, 0.0, m.MaxDrawdown.Float64)
}

func TestMaxDrawdown(t *testing.T) {
	m := Compute([]float64{100, 120, 60, 90, 110}, nil, DefaultParams())
	require.True(t, m.MaxDrawdown.Valid)
	assert.InDelta(t, 0.5, m.MaxDrawdown.Float64, 1e-12)

	w := Compute(wave(200), nil, DefaultParams())
	assert.GreaterOrEqual(t, w.MaxDrawdown.Float64, 0.0)
	assert.LessOrEqual(t, w.MaxDrawdown.Float64, 1.0)
}

func TestComputeWave(t *testing.T) {
	m := Compute(wave(200), nil, DefaultParams())
	assert.True(t, m.VaR95.Valid)
	assert.True(t, m.CVaR95.Valid)
	assert.GreaterOrEqual(t, m.CVaR95.Float64, m.VaR95.Float64)
	assert.True(t, m.Sortino.Valid)
}

func TestBeta(t *testing.T) {
	closes := wave(120)
	m := Compute(closes, closes, DefaultParams())
	require.True(t, m.Beta.Valid)
	assert.InDelta(t, 1.0, m.Beta.Float64, 1e-9)

	doubled := make([]float64, len(closes))
	doubled[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		r := closes[i]/closes[i-1] - 1
		doubled[i] = doubled[i-1] * (1 + 2*r)
	}
	m = Compute(doubled, closes, DefaultParams())
	assert.InDelta(t, 2.0, m.Beta.Float64, 1e-9)

	m = Compute(closes, closes[:50], DefaultParams())
	assert.False(t, m.Beta.Valid, "length mismatch")

	m = Compute(closes, linear(len(closes), 0), DefaultParams())
	assert.True(t, m.Volatility.Valid, "bad benchmark never affects other metrics")
}

func TestPercentile(t *testing.T) {
	v, ok := percentile([]float64{4, 1, 3, 2, 5}, 50)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, _ = percentile([]float64{1, 2, 3, 4}, 5)
	assert.InDelta(t, 1.15, v, 1e-12)

	_, ok = percentile(nil, 5)
	assert.False(t, ok)
}

func TestReturnsSkipsNonPositiveBase(t *testing.T) {
	assert.Equal(t, []float64{1}, Returns([]float64{0, 1, 2}))
	assert.Nil(t, Returns([]float64{1}))
}

func TestAlign(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	asset := model.BarSeries{Bars: []model.Bar{
		{Date: day(2), Close: 10}, {Date: day(3), Close: 11}, {Date: day(4), Close: 12},
	}}
	bench := model.BarSeries{Bars: []model.Bar{
		{Date: day(3), Close: 100}, {Date: day(4), Close: 101}, {Date: day(5), Close: 102},
	}}
	a, b := Align(asset, bench)
	assert.Equal(t, []float64{11, 12}, a)
	assert.Equal(t, []float64{100, 101}, b)
}
