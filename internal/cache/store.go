// Package cache persists daily bars per symbol and serves them with a
// freshness window in front of the market data provider.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketLens/internal/model"
)

var (
	// ErrNotFound means the store has no entry for the symbol.
	ErrNotFound = errors.New("cache entry not found")
	// ErrCacheInconsistency means the stored bars disagree with their entry header.
	ErrCacheInconsistency = errors.New("cache inconsistency")
)

// Entry is the per-symbol header written with every fetch.
type Entry struct {
	Symbol    string
	Query     string // query label of the fetch, e.g. "1y"
	BarCount  int
	FirstDate time.Time
	LastDate  time.Time
	FetchedAt time.Time
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// Store is the persistence layer behind Service.
type Store interface {
	// Entry returns the header for symbol or ErrNotFound.
	Entry(ctx context.Context, symbol string) (Entry, error)
	// Bars returns the bars covered by e, ordered by date.
	Bars(ctx context.Context, e Entry) (model.BarSeries, error)
	// Save upserts every bar on (symbol, date) and replaces the entry header
	// in a single transaction.
	Save(ctx context.Context, symbol string, q model.Query, series model.BarSeries, fetchedAt time.Time) error
	// SavePreference records a requested (symbol, query) pair.
	SavePreference(ctx context.Context, symbol string, q model.Query, at time.Time) error
	// EvictBefore removes entries and bars fetched before cutoff and reports
	// how many entries were removed.
	EvictBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

func newEntry(symbol string, q model.Query, series model.BarSeries, fetchedAt time.Time) Entry {
	e := Entry{Symbol: symbol, Query: q.String(), BarCount: len(series.Bars), FetchedAt: fetchedAt}
	if len(series.Bars) > 0 {
		e.FirstDate = series.Bars[0].Date
		e.LastDate = series.Bars[len(series.Bars)-1].Date
	}
	return e
}

// checkConsistency verifies bars read back for e.
func checkConsistency(e Entry, bars []model.Bar) error {
	if len(bars) != e.BarCount {
		return fmt.Errorf("%w: %s has %d bars, entry says %d", ErrCacheInconsistency, e.Symbol, len(bars), e.BarCount)
	}
	if len(bars) == 0 {
		return fmt.Errorf("%w: %s has an empty entry", ErrCacheInconsistency, e.Symbol)
	}
	if !bars[0].Date.Equal(e.FirstDate) || !bars[len(bars)-1].Date.Equal(e.LastDate) {
		return fmt.Errorf("%w: %s bar window does not match entry", ErrCacheInconsistency, e.Symbol)
	}
	if err := (model.BarSeries{Bars: bars}).Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCacheInconsistency, e.Symbol, err)
	}
	return nil
}

func seriesFor(e Entry, bars []model.Bar) model.BarSeries {
	return model.BarSeries{Symbol: e.Symbol, Bars: bars, FetchedAt: e.FetchedAt}
}
