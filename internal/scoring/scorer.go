package scoring

import (
	"fmt"
	"strings"

	"MarketLens/internal/model"
)

// Profile selects which optional metrics are scored.
type Profile string

const (
	ProfileBasic    Profile = "basic"
	ProfileExtended Profile = "extended"
)

// ParseProfile validates a profile name; empty means basic.
func ParseProfile(s string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProfileBasic:
		return ProfileBasic, nil
	case ProfileExtended:
		return ProfileExtended, nil
	default:
		return "", fmt.Errorf("unknown scoring profile %q", s)
	}
}

// Scorer computes composite category scores.
type Scorer struct {
	Profile Profile
	// MissingDefault is returned for a metric that cannot be scored and for
	// a category with no present metrics. It is clamped to [0, 100].
	MissingDefault float64
}

// NewScorer creates a Scorer.
func NewScorer(profile Profile, missingDefault float64) *Scorer {
	return &Scorer{Profile: profile, MissingDefault: clampScore(missingDefault)}
}

// Score evaluates every category against f. Category composites average only
// the metrics present in f; nothing is imputed.
func (s *Scorer) Score(f *model.Fundamentals) model.ScoreSet {
	missing := clampScore(s.MissingDefault)
	set := model.ScoreSet{Categories: make([]model.CategoryScore, 0, len(Categories))}

	var overall []float64
	for _, spec := range Categories {
		cs := model.CategoryScore{Category: spec.Category}
		var present []float64
		for _, b := range spec.Bounds {
			if b.Extended && s.Profile != ProfileExtended {
				continue
			}
			raw := f.Metric(b.Key)
			ms := model.MetricScore{
				Key:     b.Key,
				Label:   b.Label,
				Raw:     raw.Ptr(),
				Present: raw.Valid,
				Score:   ScoreMetric(raw, b.Min, b.Max, b.Inverse, missing),
			}
			if ms.Present {
				present = append(present, ms.Score)
			}
			cs.Metrics = append(cs.Metrics, ms)
		}
		cs.Present = len(present)
		cs.Score = Mean(present, missing)
		if cs.Present > 0 {
			overall = append(overall, cs.Score)
		}
		set.Categories = append(set.Categories, cs)
	}
	set.Overall = Mean(overall, missing)
	return set
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
