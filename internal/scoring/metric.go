// Package scoring maps heterogeneous fundamental ratios onto 0-100 scores.
package scoring

import (
	"math"

	"github.com/guregu/null/v6"
)

// DefaultMissing is the neutral "no information" score used for missing data.
const DefaultMissing = 50.0

// ScoreMetric clips value to [min, max], rescales it linearly to [0, 100] and,
// when inverse is set, returns 100 minus that score. A missing or non-finite
// value, or max <= min, yields missing.
func ScoreMetric(value null.Float, min, max float64, inverse bool, missing float64) float64 {
	if !value.Valid || math.IsNaN(value.Float64) || max <= min {
		return missing
	}
	v := value.Float64
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	score := (v - min) / (max - min) * 100
	if inverse {
		score = 100 - score
	}
	return score
}

// Mean returns the arithmetic mean of scores, or missing when there are none.
func Mean(scores []float64, missing float64) float64 {
	if len(scores) == 0 {
		return missing
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
