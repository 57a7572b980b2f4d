package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is a provider look-back window.
type Period string

const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	PeriodMax Period = "max"
)

// Periods lists every supported period in ascending length.
var Periods = []Period{Period1d, Period5d, Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y, PeriodMax}

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Query selects the bars to fetch: either a Period or an inclusive [Start, End] date range.
type Query struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// PeriodQuery is shorthand for a period-based query.
func PeriodQuery(p Period) Query { return Query{Period: p} }

// RangeQuery is shorthand for a date-range query.
func RangeQuery(start, end time.Time) Query {
	return Query{Start: DateOf(start), End: DateOf(end)}
}

// IsRange reports whether the query is a date range.
func (q Query) IsRange() bool { return q.Period == "" }

// Validate checks that exactly one of period or date range is set.
func (q Query) Validate() error {
	if q.Period != "" {
		if !q.Start.IsZero() || !q.End.IsZero() {
			return errors.New("query: period and date range are mutually exclusive")
		}
		_, err := ParsePeriod(string(q.Period))
		return err
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return errors.New("query: period or both start and end dates are required")
	}
	if q.End.Before(q.Start) {
		return fmt.Errorf("query: end %s before start %s", q.End.Format(DateLayout), q.Start.Format(DateLayout))
	}
	return nil
}

// String renders the query as stored in the cache ("1y" or "2024-01-02..2024-06-28").
func (q Query) String() string {
	if q.Period != "" {
		return string(q.Period)
	}
	return q.Start.Format(DateLayout) + ".." + q.End.Format(DateLayout)
}

// ParseQuery builds a query from a period string or from/to date strings.
// An empty period with empty dates defaults to one year.
func ParseQuery(period, from, to string) (Query, error) {
	if from != "" || to != "" {
		if period != "" {
			return Query{}, errors.New("query: use either period or from/to")
		}
		start, err := time.Parse(DateLayout, from)
		if err != nil {
			return Query{}, fmt.Errorf("query: invalid from date: %w", err)
		}
		end, err := time.Parse(DateLayout, to)
		if err != nil {
			return Query{}, fmt.Errorf("query: invalid to date: %w", err)
		}
		q := RangeQuery(start, end)
		return q, q.Validate()
	}
	if period == "" {
		return PeriodQuery(Period1y), nil
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return Query{}, err
	}
	return PeriodQuery(p), nil
}
