package calculator

import (
	"MarketLens/internal/model"
)

// SMA computes the trailing simple moving average over window.
// The first window-1 values are undefined.
func SMA(values []float64, window int) model.Series {
	out := model.NewSeries(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = value(sum / float64(window))
		}
	}
	return out
}

// EMA computes an exponential moving average with alpha = 2/(span+1), seeded
// with the first observation. Values before span observations are undefined.
func EMA(values []float64, span int) model.Series {
	out := model.NewSeries(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	var ema float64
	for i, v := range values {
		if i == 0 {
			ema = v
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		if i >= span-1 {
			out[i] = value(ema)
		}
	}
	return out
}

// emaSeries applies EMA to the defined tail of s, keeping leading gaps undefined.
func emaSeries(s model.Series, span int) model.Series {
	out := model.NewSeries(len(s))
	start := s.LeadingUndefined()
	if start == len(s) {
		return out
	}
	tail := make([]float64, 0, len(s)-start)
	for _, v := range s[start:] {
		if !v.Valid {
			break
		}
		tail = append(tail, v.Float64)
	}
	copy(out[start:], EMA(tail, span))
	return out
}
