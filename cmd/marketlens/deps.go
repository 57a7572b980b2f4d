package main

import (
	"fmt"
	"os"
	"path/filepath"

	"MarketLens/internal/analysis"
	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/risk"
	"MarketLens/internal/scoring"

	"github.com/rs/zerolog/log"
)

// deps is the wired pipeline shared by every subcommand.
type deps struct {
	fetcher  collector.Fetcher
	store    cache.Store
	cache    *cache.Service
	analyzer *analysis.Analyzer
}

func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		log.Warn().Err(err).Msg("close cache store")
	}
}

func newFetcher(c *config.Config) (collector.Fetcher, error) {
	opts := []collector.Option{
		collector.WithProxy(c.Provider.Proxy),
		collector.WithTimeout(c.Provider.Timeout),
		collector.WithRateLimit(c.Provider.RateLimit),
	}
	switch c.Provider.Name {
	case "yahoo":
		if c.Provider.BaseURL != "" {
			opts = append(opts, collector.WithBaseURL(c.Provider.BaseURL))
		}
		return collector.NewYahooFetcher(opts...), nil
	case "rest":
		return collector.NewRESTFetcher(c.Provider.BaseURL, c.Provider.APIKey, opts...), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	}
	return nil, fmt.Errorf("unknown provider %q", c.Provider.Name)
}

func newStore(c *config.Config) (cache.Store, error) {
	switch c.Cache.Driver {
	case "sqlite":
		if dir := filepath.Dir(c.Cache.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		return cache.NewSQLiteStore(c.Cache.SQLitePath)
	case "postgres":
		return cache.NewPostgresStore(c.Cache.PostgresDSN)
	case "memory":
		return cache.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
}

func buildDeps(c *config.Config) (*deps, error) {
	fetcher, err := newFetcher(c)
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	store, err := newStore(c)
	if err != nil {
		return nil, fmt.Errorf("init cache store: %w", err)
	}

	profile, err := scoring.ParseProfile(c.Scoring.Profile)
	if err != nil {
		store.Close()
		return nil, err
	}

	svc := cache.NewService(store, fetcher,
		cache.WithTTL(c.Cache.TTL),
		cache.WithTimeout(c.Provider.Timeout),
	)
	rp := risk.DefaultParams()
	rp.RiskFreeRate = c.Risk.RiskFreeRate
	rp.TradingDays = c.Risk.TradingDays

	analyzer := analysis.NewAnalyzer(svc,
		scoring.NewScorer(profile, c.Scoring.MissingDefault),
		analysis.WithBenchmark(c.Risk.Benchmark),
		analysis.WithRiskParams(rp),
	)
	return &deps{fetcher: fetcher, store: store, cache: svc, analyzer: analyzer}, nil
}
