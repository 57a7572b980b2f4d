package risk

import (
	"math"
	"sort"
)

// mean returns the arithmetic mean; ok is false for an empty slice.
func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// sampleStd is the n-1 standard deviation.
func sampleStd(values []float64) (float64, bool) {
	v, ok := sampleVar(values)
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

func sampleVar(values []float64) (float64, bool) {
	return covariance(values, values)
}

// covariance is the n-1 sample covariance of two equal-length slices.
func covariance(a, b []float64) (float64, bool) {
	if len(a) < 2 || len(a) != len(b) {
		return 0, false
	}
	ma, _ := mean(a)
	mb, _ := mean(b)
	sum := 0.0
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(len(a)-1), true
}

// percentile interpolates linearly between closest ranks (q in [0, 100]).
func percentile(values []float64, q float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonZero(v float64) bool {
	return math.Abs(v) > 1e-12
}
