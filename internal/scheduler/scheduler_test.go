package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, m *collector.MockFetcher, now *time.Time, retention time.Duration) *Scheduler {
	t.Helper()
	svc := cache.NewService(cache.NewMemoryStore(), m, cache.WithClock(func() time.Time { return *now }))
	return NewScheduler(context.Background(), svc, []string{"AAPL", "MSFT", "BAD"}, model.PeriodQuery(model.Period1mo), retention)
}

func TestRunRefreshNow(t *testing.T) {
	now := time.Date(2024, 6, 28, 22, 0, 0, 0, time.UTC)
	m := &collector.MockFetcher{Anchor: now, Unknown: map[string]bool{"BAD": true}}
	s := newTestScheduler(t, m, &now, 0)

	res := s.RunRefreshNow()
	assert.Equal(t, 2, res.Refreshed)
	require.Contains(t, res.Failed, "BAD")
	assert.True(t, errors.Is(res.Failed["BAD"], collector.ErrUnknownSymbol))
	assert.Equal(t, int64(3), m.BarCalls())

	res = s.RunRefreshNow()
	assert.Equal(t, 2, res.Refreshed)
	assert.Equal(t, int64(4), m.BarCalls(), "fresh symbols are served from cache")
}

func TestRegisterAll(t *testing.T) {
	now := time.Now()
	m := &collector.MockFetcher{}

	s := newTestScheduler(t, m, &now, 0)
	require.NoError(t, s.RegisterAll("0 0 22 * * 1-5", "0 30 3 * * *"))
	assert.Len(t, s.Cron.Entries(), 1, "eviction disabled without retention")

	s = newTestScheduler(t, m, &now, 24*time.Hour)
	require.NoError(t, s.RegisterAll("0 0 22 * * 1-5", "0 30 3 * * *"))
	assert.Len(t, s.Cron.Entries(), 2)

	s = newTestScheduler(t, m, &now, 0)
	assert.Error(t, s.RegisterAll("not a cron", ""))
}

func TestRunEvictionNow(t *testing.T) {
	now := time.Date(2024, 6, 28, 22, 0, 0, 0, time.UTC)
	m := &collector.MockFetcher{Anchor: now}
	s := newTestScheduler(t, m, &now, time.Hour)
	s.Watchlist = []string{"AAPL"}

	s.RunRefreshNow()
	now = now.Add(2 * time.Hour)
	n, err := s.RunEvictionNow()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStartStop(t *testing.T) {
	now := time.Now()
	s := newTestScheduler(t, &collector.MockFetcher{}, &now, 0)
	s.Start()
	s.Stop()
}
