package calculator

import (
	"math"

	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
)

// Closes extracts close prices.
func Closes(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts high prices.
func Highs(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts low prices.
func Lows(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

func value(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// rollingExtreme returns the trailing max (or min) over window; the first window-1 values are undefined.
func rollingExtreme(values []float64, window int, max bool) model.Series {
	out := model.NewSeries(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		ext := values[i-window+1]
		for _, v := range values[i-window+2 : i+1] {
			if (max && v > ext) || (!max && v < ext) {
				ext = v
			}
		}
		out[i] = value(ext)
	}
	return out
}

// midpoint returns (max(high,window)+min(low,window))/2 per index.
func midpoint(highs, lows []float64, window int) model.Series {
	hi := rollingExtreme(highs, window, true)
	lo := rollingExtreme(lows, window, false)
	return average(hi, lo)
}

// average returns the element-wise mean of two series; undefined if either side is.
func average(a, b model.Series) model.Series {
	out := model.NewSeries(len(a))
	for i := range a {
		if i < len(b) && a[i].Valid && b[i].Valid {
			out[i] = value((a[i].Float64 + b[i].Float64) / 2)
		}
	}
	return out
}
