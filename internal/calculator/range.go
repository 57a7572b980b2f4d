package calculator

import (
	"math"

	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
)

const (
	// TradingDays52w approximates one year of sessions.
	TradingDays52w = 252
	// TradingDays30d approximates one calendar month of sessions.
	TradingDays30d = 22
)

// RangeHighLow scans the most recent lookback bars and returns the highest high and lowest low.
// Both are undefined for an empty series.
func RangeHighLow(bars []model.Bar, lookback int) (high, low null.Float) {
	if len(bars) == 0 || lookback <= 0 {
		return null.Float{}, null.Float{}
	}
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	h := math.Inf(-1)
	l := math.Inf(1)
	for _, b := range bars[start:] {
		if b.High > h {
			h = b.High
		}
		if b.Low < l {
			l = b.Low
		}
	}
	return value(h), value(l)
}

// RangePosition returns where current sits within [low, high] as 0..1.
// A flat range yields 0.5.
func RangePosition(current, high, low null.Float) null.Float {
	if !current.Valid || !high.Valid || !low.Valid || high.Float64 < low.Float64 {
		return null.Float{}
	}
	if high.Float64 == low.Float64 {
		return null.FloatFrom(0.5)
	}
	pos := (current.Float64 - low.Float64) / (high.Float64 - low.Float64)
	return value(clamp(pos, 0, 1))
}
