package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(m *collector.MockFetcher, opts ...Option) (*Analyzer, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	svc := cache.NewService(store, m)
	return NewAnalyzer(svc, scoring.NewScorer(scoring.ProfileBasic, scoring.DefaultMissing), opts...), store
}

func mockFetcher() *collector.MockFetcher {
	return &collector.MockFetcher{Anchor: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)}
}

func TestAnalyze(t *testing.T) {
	m := mockFetcher()
	a, store := newTestAnalyzer(m)

	report, err := a.Analyze(context.Background(), " aapl", model.PeriodQuery(model.Period1y))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", report.Symbol)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "1y", report.Query)
	assert.Equal(t, "AAPL Inc.", report.Info.Name)
	assert.Equal(t, "Technology", report.Info.Sector)

	n := report.Series.Len()
	require.Equal(t, 252, n)
	assert.Len(t, report.Indicators.RSI, n)
	assert.Len(t, report.Indicators.SMA[200], n)
	assert.Equal(t, 199, report.Indicators.SMA[200].LeadingUndefined())

	val, ok := report.Scores.Get(model.CategoryValuation)
	require.True(t, ok)
	assert.InDelta(t, 57.5, val.Score, 1e-9)

	assert.True(t, report.Risk.Volatility.Valid)
	assert.True(t, report.Risk.MaxDrawdown.Valid)
	assert.True(t, report.Risk.Beta.Valid)
	assert.Empty(t, report.Warnings)

	last, _ := report.Series.Last()
	assert.Equal(t, last.Close, report.KeyMetrics.LastClose.Float64)
	assert.True(t, report.KeyMetrics.Position52w.Valid)
	assert.Equal(t, 1e12, report.KeyMetrics.MarketCap.Float64)
	assert.False(t, report.KeyMetrics.AverageVolume.Valid)

	prefs := store.Preferences()
	require.Len(t, prefs, 1)
	assert.Equal(t, "AAPL", prefs[0].Symbol)
}

func TestAnalyzeUsesCache(t *testing.T) {
	m := mockFetcher()
	a, _ := newTestAnalyzer(m)
	ctx := context.Background()

	_, err := a.Analyze(ctx, "AAPL", model.PeriodQuery(model.Period1y))
	require.NoError(t, err)
	calls := m.BarCalls()
	_, err = a.Analyze(ctx, "AAPL", model.PeriodQuery(model.Period1y))
	require.NoError(t, err)

	assert.Equal(t, calls, m.BarCalls())
	assert.Equal(t, int64(2), m.FundamentalCalls(), "fundamentals are not cached")
}

func TestAnalyzeBenchmarkFailure(t *testing.T) {
	m := mockFetcher()
	m.Unknown = map[string]bool{DefaultBenchmark: true}
	a, _ := newTestAnalyzer(m)

	report, err := a.Analyze(context.Background(), "AAPL", model.PeriodQuery(model.Period1y))
	require.NoError(t, err)
	assert.False(t, report.Risk.Beta.Valid)
	assert.True(t, report.Risk.Volatility.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], DefaultBenchmark)
}

func TestAnalyzeSymbolIsBenchmark(t *testing.T) {
	m := mockFetcher()
	a, _ := newTestAnalyzer(m, WithBenchmark("msft"))

	report, err := a.Analyze(context.Background(), "MSFT", model.PeriodQuery(model.Period6mo))
	require.NoError(t, err)
	require.True(t, report.Risk.Beta.Valid)
	assert.InDelta(t, 1.0, report.Risk.Beta.Float64, 1e-9)
}

func TestAnalyzeNoBenchmark(t *testing.T) {
	a, _ := newTestAnalyzer(mockFetcher(), WithBenchmark(""))
	report, err := a.Analyze(context.Background(), "AAPL", model.PeriodQuery(model.Period1y))
	require.NoError(t, err)
	assert.False(t, report.Risk.Beta.Valid)
	assert.Empty(t, report.Warnings)
}

func TestAnalyzeUnknownSymbol(t *testing.T) {
	m := mockFetcher()
	m.Unknown = map[string]bool{"NOPE": true}
	a, _ := newTestAnalyzer(m)

	_, err := a.Analyze(context.Background(), "NOPE", model.PeriodQuery(model.Period1y))
	require.Error(t, err)
	assert.True(t, errors.Is(err, collector.ErrUnknownSymbol))
	assert.True(t, collector.IsProviderError(err))
}

func TestAnalyzeInvalidInput(t *testing.T) {
	a, _ := newTestAnalyzer(mockFetcher())
	_, err := a.Analyze(context.Background(), "", model.PeriodQuery(model.Period1y))
	assert.Error(t, err)
	_, err = a.Analyze(context.Background(), "AAPL", model.Query{})
	assert.Error(t, err)
}

func TestAnalyzeRunIDFromContext(t *testing.T) {
	a, _ := newTestAnalyzer(mockFetcher())
	ctx := WithRunID(context.Background(), "req-42")
	report, err := a.Analyze(ctx, "AAPL", model.PeriodQuery(model.Period1y))
	require.NoError(t, err)
	assert.Equal(t, "req-42", report.RunID)
}
