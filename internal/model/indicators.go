package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Series is a date-aligned indicator sequence; invalid entries mean "no value".
type Series []null.Float

// NewSeries returns n undefined values.
func NewSeries(n int) Series { return make(Series, n) }

// Defined counts the entries that carry a value.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// LeadingUndefined counts undefined entries before the first value.
func (s Series) LeadingUndefined() int {
	for i, v := range s {
		if v.Valid {
			return i
		}
	}
	return len(s)
}

// Last returns the final entry (possibly undefined).
func (s Series) Last() null.Float {
	if len(s) == 0 {
		return null.Float{}
	}
	return s[len(s)-1]
}

// IndicatorSet holds every technical series computed for a BarSeries.
type IndicatorSet struct {
	Dates []time.Time    `json:"dates"`
	SMA   map[int]Series `json:"sma"`
	RSI   Series         `json:"rsi"`
	MACD  MACDLines      `json:"macd"`
	Bands BollingerBands `json:"bollinger"`
	Cloud IchimokuLines  `json:"ichimoku"`
}

// MACDLines groups the MACD line, its signal and the histogram.
type MACDLines struct {
	Line      Series `json:"line"`
	Signal    Series `json:"signal"`
	Histogram Series `json:"histogram"`
}

// BollingerBands groups the three band lines.
type BollingerBands struct {
	Upper  Series `json:"upper"`
	Middle Series `json:"middle"`
	Lower  Series `json:"lower"`
}

// IchimokuLines groups the trailing Ichimoku lines.
type IchimokuLines struct {
	Conversion Series `json:"conversion"`
	Base       Series `json:"base"`
	SpanA      Series `json:"span_a"`
	SpanB      Series `json:"span_b"`
}
