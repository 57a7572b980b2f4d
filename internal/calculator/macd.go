package calculator

import (
	"MarketLens/internal/model"
)

// MACD computes EMA(fast) - EMA(slow), its EMA(signal), and the histogram line - signal.
func MACD(values []float64, fast, slow, signal int) model.MACDLines {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	line := model.NewSeries(len(values))
	for i := range values {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			line[i] = value(fastEMA[i].Float64 - slowEMA[i].Float64)
		}
	}

	sig := emaSeries(line, signal)
	hist := model.NewSeries(len(values))
	for i := range values {
		if line[i].Valid && sig[i].Valid {
			hist[i] = value(line[i].Float64 - sig[i].Float64)
		}
	}
	return model.MACDLines{Line: line, Signal: sig, Histogram: hist}
}
