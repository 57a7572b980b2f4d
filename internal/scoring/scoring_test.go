package scoring

import (
	"math"
	"testing"

	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreMetric(t *testing.T) {
	tests := []struct {
		name    string
		value   null.Float
		min     float64
		max     float64
		inverse bool
		want    float64
	}{
		{"at min", null.FloatFrom(0), 0, 50, false, 0},
		{"at max", null.FloatFrom(50), 0, 50, false, 100},
		{"midpoint", null.FloatFrom(25), 0, 50, false, 50},
		{"clipped below", null.FloatFrom(-10), 0, 50, false, 0},
		{"clipped above", null.FloatFrom(999), 0, 50, false, 100},
		{"inverse at min", null.FloatFrom(0), 0, 50, true, 100},
		{"inverse", null.FloatFrom(20), 0, 50, true, 60},
		{"negative range", null.FloatFrom(0.15), -0.2, 0.5, false, 50},
		{"missing", null.Float{}, 0, 50, false, DefaultMissing},
		{"nan", null.FloatFrom(math.NaN()), 0, 50, false, DefaultMissing},
		{"degenerate bounds", null.FloatFrom(1), 5, 5, false, DefaultMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreMetric(tt.value, tt.min, tt.max, tt.inverse, DefaultMissing), 1e-9)
		})
	}
}

func TestScoreMetricMonotonic(t *testing.T) {
	prev := -1.0
	prevInv := 101.0
	for v := -5.0; v <= 60; v += 0.5 {
		s := ScoreMetric(null.FloatFrom(v), 0, 50, false, DefaultMissing)
		inv := ScoreMetric(null.FloatFrom(v), 0, 50, true, DefaultMissing)
		assert.GreaterOrEqual(t, s, prev)
		assert.LessOrEqual(t, inv, prevInv)
		assert.InDelta(t, 100, s+inv, 1e-9)
		assert.True(t, s >= 0 && s <= 100)
		prev, prevInv = s, inv
	}
}

func valuationFundamentals() *model.Fundamentals {
	f := model.NewFundamentals("TEST")
	f.Metrics["trailingPE"] = 25
	f.Metrics["forwardPE"] = 20
	f.Metrics["pegRatio"] = 1.5
	f.Metrics["priceToBook"] = 3
	return f
}

func TestScorerValuation(t *testing.T) {
	set := NewScorer(ProfileBasic, DefaultMissing).Score(valuationFundamentals())

	val, ok := set.Get(model.CategoryValuation)
	require.True(t, ok)
	assert.InDelta(t, 57.5, val.Score, 1e-9)
	assert.Equal(t, 4, val.Present)

	growth, ok := set.Get(model.CategoryGrowth)
	require.True(t, ok)
	assert.Equal(t, 0, growth.Present)
	assert.Equal(t, DefaultMissing, growth.Score)

	assert.InDelta(t, 57.5, set.Overall, 1e-9)
	assert.Len(t, set.Categories, len(Categories))
}

func TestScorerMissingMetricsSkipped(t *testing.T) {
	f := model.NewFundamentals("TEST")
	f.Metrics["trailingPE"] = 10
	set := NewScorer(ProfileBasic, DefaultMissing).Score(f)

	val, _ := set.Get(model.CategoryValuation)
	assert.Equal(t, 1, val.Present)
	assert.InDelta(t, 80, val.Score, 1e-9)
	for _, m := range val.Metrics {
		if m.Key != "trailingPE" {
			assert.False(t, m.Present)
			assert.Nil(t, m.Raw)
		}
	}
}

func TestScorerOrderIndependent(t *testing.T) {
	a := model.NewFundamentals("A")
	b := model.NewFundamentals("B")
	keys := []string{"trailingPE", "forwardPE", "pegRatio", "priceToBook", "currentRatio", "dividendYield"}
	vals := []float64{12, 30, 0.8, 4, 1.7, 0.03}
	for i := range keys {
		a.Metrics[keys[i]] = vals[i]
	}
	for i := len(keys) - 1; i >= 0; i-- {
		b.Metrics[keys[i]] = vals[i]
	}
	s := NewScorer(ProfileBasic, DefaultMissing)
	assert.Equal(t, s.Score(a).Map(), s.Score(b).Map())
}

func TestScorerExtendedProfile(t *testing.T) {
	f := valuationFundamentals()
	f.Metrics["enterpriseToEbitda"] = 30

	basic, _ := NewScorer(ProfileBasic, DefaultMissing).Score(f).Get(model.CategoryValuation)
	ext, _ := NewScorer(ProfileExtended, DefaultMissing).Score(f).Get(model.CategoryValuation)

	assert.Len(t, basic.Metrics, 4)
	assert.Len(t, ext.Metrics, 6)
	assert.Equal(t, 5, ext.Present)
	assert.InDelta(t, 46.0, ext.Score, 1e-9)
}

func TestScorerInjectedMissingDefault(t *testing.T) {
	set := NewScorer(ProfileBasic, 0).Score(model.NewFundamentals("EMPTY"))
	for _, cs := range set.Categories {
		assert.Equal(t, 0.0, cs.Score)
	}
	assert.Equal(t, 0.0, set.Overall)

	assert.Equal(t, 100.0, NewScorer(ProfileBasic, 250).MissingDefault)
}

func TestScorerNilFundamentals(t *testing.T) {
	set := NewScorer(ProfileBasic, DefaultMissing).Score(nil)
	assert.Equal(t, DefaultMissing, set.Overall)
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("")
	require.NoError(t, err)
	assert.Equal(t, ProfileBasic, p)

	p, err = ParseProfile(" Extended ")
	require.NoError(t, err)
	assert.Equal(t, ProfileExtended, p)

	_, err = ParseProfile("deluxe")
	assert.Error(t, err)
}
