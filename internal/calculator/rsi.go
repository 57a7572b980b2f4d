package calculator

import (
	"MarketLens/internal/model"
)

// RSI computes the relative strength index over a rolling window of price deltas.
// Average gain and loss are simple means of the last period deltas, so the first
// period values are undefined. A window without losses yields 100.
func RSI(values []float64, period int) model.Series {
	out := model.NewSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	var sumGain, sumLoss float64
	for i := 1; i < len(values); i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
		if i > period {
			sumGain -= gains[i-period]
			sumLoss -= losses[i-period]
		}
		if i < period {
			continue
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		if avgLoss <= 1e-12 {
			out[i] = value(100)
			continue
		}
		rs := avgGain / avgLoss
		rsi := 100.0 - 100.0/(1.0+rs)
		out[i] = value(clamp(rsi, 0, 100))
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
