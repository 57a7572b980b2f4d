package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"MarketLens/internal/model"
)

type memBar struct {
	bar       model.Bar
	fetchedAt time.Time
}

// Preference is one recorded (symbol, query) request.
type Preference struct {
	Symbol    string
	Period    string
	CreatedAt time.Time
}

// MemoryStore keeps the cache in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	bars        map[string]map[int64]memBar
	preferences []Preference
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		bars:    make(map[string]map[int64]memBar),
	}
}

func (s *MemoryStore) Entry(_ context.Context, symbol string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[symbol]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Bars(_ context.Context, e Entry) (model.BarSeries, error) {
	s.mu.RLock()
	var bars []model.Bar
	for _, mb := range s.bars[e.Symbol] {
		if mb.bar.Date.Before(e.FirstDate) || mb.bar.Date.After(e.LastDate) {
			continue
		}
		bars = append(bars, mb.bar)
	}
	s.mu.RUnlock()

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if err := checkConsistency(e, bars); err != nil {
		return model.BarSeries{}, err
	}
	return seriesFor(e, bars), nil
}

func (s *MemoryStore) Save(_ context.Context, symbol string, q model.Query, series model.BarSeries, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDate, ok := s.bars[symbol]
	if !ok {
		byDate = make(map[int64]memBar)
		s.bars[symbol] = byDate
	}
	if n := len(series.Bars); n > 0 {
		first, last := series.Bars[0].Date, series.Bars[n-1].Date
		for k, mb := range byDate {
			if !mb.bar.Date.Before(first) && !mb.bar.Date.After(last) {
				delete(byDate, k)
			}
		}
	}
	for _, b := range series.Bars {
		byDate[b.Date.Unix()] = memBar{bar: b, fetchedAt: fetchedAt}
	}
	s.entries[symbol] = newEntry(symbol, q, series, fetchedAt)
	return nil
}

func (s *MemoryStore) SavePreference(_ context.Context, symbol string, q model.Query, at time.Time) error {
	s.mu.Lock()
	s.preferences = append(s.preferences, Preference{Symbol: symbol, Period: q.String(), CreatedAt: at})
	s.mu.Unlock()
	return nil
}

// Preferences returns a copy of the recorded preferences.
func (s *MemoryStore) Preferences() []Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Preference(nil), s.preferences...)
}

func (s *MemoryStore) EvictBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for symbol, e := range s.entries {
		if e.FetchedAt.Before(cutoff) {
			delete(s.entries, symbol)
			n++
		}
	}
	for symbol, byDate := range s.bars {
		for k, mb := range byDate {
			if mb.fetchedAt.Before(cutoff) {
				delete(byDate, k)
			}
		}
		if len(byDate) == 0 {
			delete(s.bars, symbol)
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }
