package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Bar is a single daily OHLCV candle. Date is midnight UTC of the trading day.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// BarSeries holds the bars of one symbol ordered by date ascending.
type BarSeries struct {
	Symbol    string    `json:"symbol"`
	Bars      []Bar     `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of bars.
func (s BarSeries) Len() int { return len(s.Bars) }

// Dates returns the bar dates in order.
func (s BarSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Date
	}
	return dates
}

// Last returns the most recent bar, false if the series is empty.
func (s BarSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Clone returns a copy that shares no backing array with s.
func (s BarSeries) Clone() BarSeries {
	out := s
	out.Bars = append([]Bar(nil), s.Bars...)
	return out
}

// Validate checks that dates are strictly increasing.
func (s BarSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("bar %d (%s) is not after bar %d (%s)",
				i, s.Bars[i].Date.Format(DateLayout), i-1, s.Bars[i-1].Date.Format(DateLayout))
		}
	}
	return nil
}

// DateLayout is the canonical calendar date format used for storage and display.
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeBars sorts bars by date and drops duplicates, keeping the later occurrence.
func NormalizeBars(bars []Bar) []Bar {
	if len(bars) == 0 {
		return bars
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
