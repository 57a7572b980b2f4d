package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketLens/internal/collector"
	"MarketLens/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is how long a fetched series is served without refetching.
	DefaultTTL = time.Hour
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 15 * time.Second
)

// Service serves bars from a Store, refetching from the provider when the
// stored entry is missing or older than the TTL.
type Service struct {
	store   Store
	fetcher collector.Fetcher
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	group   singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the freshness window.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a cache service.
func NewService(store Store, fetcher collector.Fetcher, opts ...Option) *Service {
	s := &Service{
		store:   store,
		fetcher: fetcher,
		ttl:     DefaultTTL,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrFetch returns the bars for symbol. A fresh entry is returned as
// stored regardless of q. Otherwise the provider is asked for q, the result
// is upserted and returned. A failed refetch is returned as an error even
// when a stale entry exists.
//
// Concurrent calls for the same symbol share one read-refetch-write cycle and
// all receive its result, whichever query started it.
func (s *Service) GetOrFetch(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return model.BarSeries{}, errors.New("symbol is required")
	}
	if err := q.Validate(); err != nil {
		return model.BarSeries{}, err
	}

	// The flight outlives any single caller; each caller stops waiting on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(symbol, func() (interface{}, error) {
		return s.getOrFetch(flightCtx, symbol, q)
	})
	select {
	case <-ctx.Done():
		return model.BarSeries{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.BarSeries{}, res.Err
		}
		if res.Shared {
			log.Debug().Str("symbol", symbol).Msg("cache: shared in-flight result")
		}
		return res.Val.(model.BarSeries).Clone(), nil
	}
}

func (s *Service) getOrFetch(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	now := s.now()
	entry, err := s.store.Entry(ctx, symbol)
	switch {
	case err == nil && entry.Fresh(now, s.ttl):
		series, err := s.store.Bars(ctx, entry)
		if err == nil {
			log.Debug().Str("symbol", symbol).Str("query", entry.Query).Msg("cache hit")
			return series, nil
		}
		if !errors.Is(err, ErrCacheInconsistency) {
			return model.BarSeries{}, err
		}
		log.Warn().Err(err).Str("symbol", symbol).Msg("cache entry inconsistent, refetching")
	case err == nil:
		log.Info().Str("symbol", symbol).Time("fetched_at", entry.FetchedAt).Msg("cache stale, refetching")
	case errors.Is(err, ErrNotFound):
		log.Info().Str("symbol", symbol).Msg("cache miss")
	default:
		return model.BarSeries{}, err
	}

	series, err := s.fetch(ctx, symbol, q)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("query", q.String()).Msg("provider fetch failed")
		return model.BarSeries{}, err
	}

	fetchedAt := s.now().UTC().Truncate(time.Millisecond)
	if err := s.store.Save(ctx, symbol, q, series, fetchedAt); err != nil {
		return model.BarSeries{}, fmt.Errorf("save %s: %w", symbol, err)
	}
	series.Symbol = symbol
	series.FetchedAt = fetchedAt
	return series, nil
}

func (s *Service) fetch(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	series, err := s.fetcher.FetchBars(fctx, symbol, q)
	if err != nil {
		return model.BarSeries{}, err
	}
	series.Bars = model.NormalizeBars(series.Bars)
	if len(series.Bars) == 0 {
		return model.BarSeries{}, &collector.ProviderError{
			Provider: s.fetcher.Name(), Symbol: symbol, Op: "fetch bars", Err: collector.ErrNoData,
		}
	}
	return series, nil
}

// Fundamentals fetches the company info record. It is not cached.
func (s *Service) Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.fetcher.FetchFundamentals(fctx, model.NormalizeSymbol(symbol))
}

// RecordPreference stores the requested (symbol, query). Failures are logged only.
func (s *Service) RecordPreference(ctx context.Context, symbol string, q model.Query) {
	symbol = model.NormalizeSymbol(symbol)
	if err := s.store.SavePreference(ctx, symbol, q, s.now().UTC()); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("record preference failed")
	}
}

// Evict removes everything fetched more than retention ago. A non-positive
// retention disables eviction.
func (s *Service) Evict(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-retention)
	n, err := s.store.EvictBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("evict: %w", err)
	}
	log.Info().Int64("entries", n).Time("cutoff", cutoff).Msg("cache eviction done")
	return n, nil
}
