package calculator

import (
	"math"

	"MarketLens/internal/model"
)

// Bollinger computes middle = SMA(period) and upper/lower = middle +/- k * rolling
// sample standard deviation (n-1) over the same window. Bands need period >= 2.
func Bollinger(values []float64, period int, k float64) model.BollingerBands {
	middle := SMA(values, period)
	upper := model.NewSeries(len(values))
	lower := model.NewSeries(len(values))
	for i := range values {
		if !middle[i].Valid || period < 2 {
			continue
		}
		mean := middle[i].Float64
		var ss float64
		for _, v := range values[i-period+1 : i+1] {
			d := v - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period-1))
		upper[i] = value(mean + k*sd)
		lower[i] = value(mean - k*sd)
	}
	return model.BollingerBands{Upper: upper, Middle: middle, Lower: lower}
}
