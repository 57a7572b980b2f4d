package scheduler

import (
	"context"
	"fmt"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the cache warm-up and eviction cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Cache     *cache.Service
	Watchlist []string
	Query     model.Query
	Retention time.Duration
	Ctx       context.Context
}

// RefreshResult summarises one warm-up run.
type RefreshResult struct {
	Refreshed int
	Failed    map[string]error
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *cache.Service, watchlist []string, q model.Query, retention time.Duration) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Cache:     svc,
		Watchlist: watchlist,
		Query:     q,
		Retention: retention,
		Ctx:       ctx,
	}
}

// RegisterAll registers the refresh task, and the eviction task when a
// retention is configured. Empty specs skip their task.
func (s *Scheduler) RegisterAll(refreshCron, evictionCron string) error {
	if refreshCron != "" && len(s.Watchlist) > 0 {
		if _, err := s.Cron.AddFunc(refreshCron, func() { s.RunRefreshNow() }); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if evictionCron != "" && s.Retention > 0 {
		if _, err := s.Cron.AddFunc(evictionCron, s.evictionTask); err != nil {
			return fmt.Errorf("register eviction task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunRefreshNow warms the cache for every watchlist symbol. Symbols with a
// fresh entry cost no provider call.
func (s *Scheduler) RunRefreshNow() RefreshResult {
	log.Info().Int("symbols", len(s.Watchlist)).Msg("running cache refresh")
	res := RefreshResult{Failed: make(map[string]error)}
	for _, symbol := range s.Watchlist {
		if err := s.Ctx.Err(); err != nil {
			res.Failed[symbol] = err
			continue
		}
		if _, err := s.Cache.GetOrFetch(s.Ctx, symbol, s.Query); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("refresh failed")
			res.Failed[symbol] = err
			continue
		}
		res.Refreshed++
	}
	log.Info().Int("refreshed", res.Refreshed).Int("failed", len(res.Failed)).Msg("cache refresh done")
	return res
}

// RunEvictionNow runs the eviction task immediately.
func (s *Scheduler) RunEvictionNow() (int64, error) {
	return s.Cache.Evict(s.Ctx, s.Retention)
}

func (s *Scheduler) evictionTask() {
	if _, err := s.RunEvictionNow(); err != nil {
		log.Error().Err(err).Msg("cache eviction failed")
	}
}
