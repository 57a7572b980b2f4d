package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestNormalizeBars(t *testing.T) {
	bars := NormalizeBars([]Bar{
		{Date: day(3), Close: 3},
		{Date: day(1), Close: 1},
		{Date: day(3), Close: 33},
		{Date: day(2), Close: 2},
	})
	require.Len(t, bars, 3)
	assert.Equal(t, []float64{1, 2, 33}, []float64{bars[0].Close, bars[1].Close, bars[2].Close})
	assert.NoError(t, BarSeries{Bars: bars}.Validate())
}

func TestBarSeriesValidate(t *testing.T) {
	s := BarSeries{Bars: []Bar{{Date: day(2)}, {Date: day(2)}}}
	assert.Error(t, s.Validate())
	s = BarSeries{Bars: []Bar{{Date: day(3)}, {Date: day(2)}}}
	assert.Error(t, s.Validate())
	assert.NoError(t, BarSeries{}.Validate())
}

func TestBarSeriesClone(t *testing.T) {
	s := BarSeries{Symbol: "A", Bars: []Bar{{Date: day(1), Close: 1}}}
	c := s.Clone()
	c.Bars[0].Close = 2
	assert.Equal(t, 1.0, s.Bars[0].Close)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, day(1), last.Date)
	_, ok = BarSeries{}.Last()
	assert.False(t, ok)
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("", "", "")
	require.NoError(t, err)
	assert.Equal(t, Period1y, q.Period)

	q, err = ParseQuery("5Y", "", "")
	require.NoError(t, err)
	assert.Equal(t, "5y", q.String())

	q, err = ParseQuery("", "2024-01-02", "2024-06-28")
	require.NoError(t, err)
	assert.True(t, q.IsRange())
	assert.Equal(t, "2024-01-02..2024-06-28", q.String())

	_, err = ParseQuery("1y", "2024-01-02", "2024-06-28")
	assert.Error(t, err)
	_, err = ParseQuery("", "2024-06-28", "2024-01-02")
	assert.Error(t, err)
	_, err = ParseQuery("", "2024-01-02", "")
	assert.Error(t, err)
	_, err = ParseQuery("7y", "", "")
	assert.Error(t, err)
}

func TestQueryValidate(t *testing.T) {
	assert.Error(t, Query{}.Validate())
	assert.Error(t, Query{Period: Period1y, Start: day(1)}.Validate())
	assert.NoError(t, PeriodQuery(PeriodMax).Validate())
	assert.NoError(t, RangeQuery(day(1), day(1)).Validate())
}

func TestFundamentalsMetric(t *testing.T) {
	f := NewFundamentals("X")
	f.Metrics["pe"] = 12
	f.Metrics["bad"] = math.NaN()
	f.Attributes["sector"] = "Energy"

	assert.True(t, f.Metric("pe").Valid)
	assert.False(t, f.Metric("bad").Valid)
	assert.False(t, f.Metric("missing").Valid)
	assert.Equal(t, "Energy", f.Attribute("sector"))

	var nilF *Fundamentals
	assert.False(t, nilF.Metric("pe").Valid)
	assert.Equal(t, "", nilF.Attribute("sector"))
}

func TestSeriesHelpers(t *testing.T) {
	s := NewSeries(3)
	assert.Equal(t, 3, s.LeadingUndefined())
	s[2].Valid, s[2].Float64 = true, 5
	assert.Equal(t, 2, s.LeadingUndefined())
	assert.Equal(t, 1, s.Defined())
	assert.Equal(t, 5.0, s.Last().Float64)
}

func TestScoreSetGet(t *testing.T) {
	set := ScoreSet{Categories: []CategoryScore{{Category: CategoryGrowth, Score: 70}}}
	cs, ok := set.Get(CategoryGrowth)
	require.True(t, ok)
	assert.Equal(t, 70.0, cs.Score)
	_, ok = set.Get(CategoryDividend)
	assert.False(t, ok)
	assert.Equal(t, map[string]float64{"growth": 70}, set.Map())
}
