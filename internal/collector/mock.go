package collector

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"MarketLens/internal/model"
)

// periodDays approximates the trading days covered by each period.
var periodDays = map[model.Period]int{
	model.Period1d:  1,
	model.Period5d:  5,
	model.Period1mo: 22,
	model.Period3mo: 63,
	model.Period6mo: 126,
	model.Period1y:  252,
	model.Period2y:  504,
	model.Period5y:  1260,
	model.PeriodMax: 2520,
}

// MockFetcher returns controllable deterministic data for development and testing.
type MockFetcher struct {
	Price        float64                        // base price for generated bars
	Anchor       time.Time                      // last generated date; zero means today
	Series       map[string]model.BarSeries     // fixed bars per symbol
	Fundamentals map[string]*model.Fundamentals // fixed fundamentals per symbol
	Unknown      map[string]bool                // symbols answered with ErrUnknownSymbol
	Err          error                          // returned by every call when set
	Delay        time.Duration                  // simulated latency

	mu        sync.Mutex
	barCalls  atomic.Int64
	fundCalls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// BarCalls reports how many times FetchBars ran.
func (m *MockFetcher) BarCalls() int64 { return m.barCalls.Load() }

// FundamentalCalls reports how many times FetchFundamentals ran.
func (m *MockFetcher) FundamentalCalls() int64 { return m.fundCalls.Load() }

// SetErr changes the injected error.
func (m *MockFetcher) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

func (m *MockFetcher) failure(ctx context.Context, symbol string) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if m.Unknown[symbol] {
		return ErrUnknownSymbol
	}
	return nil
}

func (m *MockFetcher) FetchBars(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	m.barCalls.Add(1)
	if err := m.failure(ctx, symbol); err != nil {
		return model.BarSeries{}, providerErr(m.Name(), symbol, "fetch bars", err)
	}
	if s, ok := m.Series[symbol]; ok {
		if len(s.Bars) == 0 {
			return model.BarSeries{}, providerErr(m.Name(), symbol, "fetch bars", ErrNoData)
		}
		out := s.Clone()
		out.Symbol = symbol
		return out, nil
	}
	bars := m.generate(symbol, q)
	if len(bars) == 0 {
		return model.BarSeries{}, providerErr(m.Name(), symbol, "fetch bars", ErrNoData)
	}
	return model.BarSeries{Symbol: symbol, Bars: bars}, nil
}

func (m *MockFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	m.fundCalls.Add(1)
	if err := m.failure(ctx, symbol); err != nil {
		return nil, providerErr(m.Name(), symbol, "fetch fundamentals", err)
	}
	if f, ok := m.Fundamentals[symbol]; ok {
		return f, nil
	}
	f := model.NewFundamentals(symbol)
	f.Attributes["longName"] = symbol + " Inc."
	f.Attributes["sector"] = "Technology"
	f.Attributes["industry"] = "Software"
	f.Attributes["currency"] = "USD"
	f.Metrics["trailingPE"] = 25
	f.Metrics["forwardPE"] = 20
	f.Metrics["pegRatio"] = 1.5
	f.Metrics["priceToBook"] = 3
	f.Metrics["revenueGrowth"] = 0.1
	f.Metrics["profitMargins"] = 0.2
	f.Metrics["currentRatio"] = 1.5
	f.Metrics["dividendYield"] = 0.01
	f.Metrics["marketCap"] = 1e12
	return f, nil
}

// generate produces weekday bars ending at Anchor. Prices follow a seeded
// sine wave so different symbols differ but repeated calls agree.
func (m *MockFetcher) generate(symbol string, q model.Query) []model.Bar {
	end := m.Anchor
	if end.IsZero() {
		end = time.Now()
	}
	end = model.DateOf(end)
	var start time.Time
	count := 0
	if q.IsRange() {
		start, end = q.Start, q.End
	} else {
		count = periodDays[q.Period]
		if count == 0 {
			count = periodDays[model.Period1y]
		}
	}

	base := m.Price
	if base <= 0 {
		base = 100
	}
	h := fnv.New32a()
	h.Write([]byte(symbol))
	phase := float64(h.Sum32()%360) * math.Pi / 180

	var dates []time.Time
	for d := end; ; d = d.AddDate(0, 0, -1) {
		if q.IsRange() && d.Before(start) {
			break
		}
		if !q.IsRange() && len(dates) == count {
			break
		}
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}

	bars := make([]model.Bar, len(dates))
	n := len(dates)
	for i := range dates {
		d := dates[n-1-i]
		p := base * (1 + 0.1*math.Sin(float64(i)/10+phase) + 0.0005*float64(i))
		bars[i] = model.Bar{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
