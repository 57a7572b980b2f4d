// Package analysis runs the full pipeline for one symbol: cached bars,
// fundamentals, indicators, scores and risk.
package analysis

import (
	"context"
	"fmt"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
	"MarketLens/internal/risk"
	"MarketLens/internal/scoring"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"
)

// DefaultBenchmark is the S&P 500 index.
const DefaultBenchmark = "^GSPC"

// Analyzer orchestrates data fetching and metric computation.
type Analyzer struct {
	cache      *cache.Service
	scorer     *scoring.Scorer
	indicators calculator.Params
	risk       risk.Params
	benchmark  string
	now        func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBenchmark sets the beta benchmark symbol. Empty disables beta.
func WithBenchmark(symbol string) Option {
	return func(a *Analyzer) { a.benchmark = model.NormalizeSymbol(symbol) }
}

// WithRiskParams overrides the risk engine parameters.
func WithRiskParams(p risk.Params) Option {
	return func(a *Analyzer) { a.risk = p }
}

// WithIndicatorParams overrides indicator windows.
func WithIndicatorParams(p calculator.Params) Option {
	return func(a *Analyzer) { a.indicators = p }
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(svc *cache.Service, scorer *scoring.Scorer, opts ...Option) *Analyzer {
	a := &Analyzer{
		cache:      svc,
		scorer:     scorer,
		indicators: calculator.DefaultParams(),
		risk:       risk.DefaultParams(),
		benchmark:  DefaultBenchmark,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the report for symbol. Provider failures for the symbol's
// bars or fundamentals are returned; a benchmark failure only leaves beta
// undefined and adds a warning.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, q model.Query) (*model.Report, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	runID := RunIDFrom(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := log.With().Str("run_id", runID).Str("symbol", symbol).Logger()
	logger.Info().Str("query", q.String()).Msg("analysis started")

	a.cache.RecordPreference(ctx, symbol, q)

	series, err := a.cache.GetOrFetch(ctx, symbol, q)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	fund, err := a.cache.Fundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}

	report := &model.Report{
		RunID:       runID,
		Symbol:      symbol,
		Query:       q.String(),
		GeneratedAt: a.now().UTC(),
		Info:        companyInfo(fund),
		Series:      series,
		Indicators:  calculator.Compute(series, a.indicators),
		Scores:      a.scorer.Score(fund),
		Benchmark:   a.benchmark,
	}

	closes := calculator.Closes(series.Bars)
	report.Risk = risk.Compute(closes, nil, a.risk)
	if beta, warn := a.beta(ctx, series, q); warn != "" {
		logger.Warn().Str("benchmark", a.benchmark).Msg(warn)
		report.Warnings = append(report.Warnings, warn)
	} else {
		report.Risk.Beta = beta
	}

	report.KeyMetrics = keyMetrics(series, fund)
	logger.Info().
		Int("bars", series.Len()).
		Float64("overall_score", report.Scores.Overall).
		Msg("analysis finished")
	return report, nil
}

type runIDKey struct{}

// WithRunID attaches a run id to ctx; Analyze uses it instead of minting one.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run id stored in ctx, if any.
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// beta returns the benchmark beta or a warning explaining why it is missing.
func (a *Analyzer) beta(ctx context.Context, series model.BarSeries, q model.Query) (null.Float, string) {
	if a.benchmark == "" {
		return null.Float{}, ""
	}
	bench := series
	if a.benchmark != series.Symbol {
		var err error
		bench, err = a.cache.GetOrFetch(ctx, a.benchmark, q)
		if err != nil {
			return null.Float{}, fmt.Sprintf("benchmark %s unavailable: %v", a.benchmark, err)
		}
	}
	assetCloses, benchCloses := risk.Align(series, bench)
	return risk.Beta(assetCloses, benchCloses), ""
}

func companyInfo(f *model.Fundamentals) model.CompanyInfo {
	name := f.Attribute("longName")
	if name == "" {
		name = f.Attribute("shortName")
	}
	return model.CompanyInfo{
		Name:     name,
		Sector:   f.Attribute("sector"),
		Industry: f.Attribute("industry"),
		Currency: f.Attribute("currency"),
	}
}

func keyMetrics(series model.BarSeries, f *model.Fundamentals) model.KeyMetrics {
	var km model.KeyMetrics
	if last, ok := series.Last(); ok {
		km.LastClose = null.FloatFrom(last.Close)
		km.Volume = null.FloatFrom(float64(last.Volume))
	}
	km.High52w, km.Low52w = calculator.RangeHighLow(series.Bars, calculator.TradingDays52w)
	km.High30d, km.Low30d = calculator.RangeHighLow(series.Bars, calculator.TradingDays30d)
	km.Position52w = calculator.RangePosition(km.LastClose, km.High52w, km.Low52w)
	km.MarketCap = f.Metric("marketCap")
	km.TrailingPE = f.Metric("trailingPE")
	km.AverageVolume = f.Metric("averageVolume")
	return km
}
