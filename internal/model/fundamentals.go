package model

import (
	"math"

	"github.com/guregu/null/v6"
)

// Fundamentals is the provider's company info record. Keys are provider-defined;
// an absent key means unknown, never zero.
type Fundamentals struct {
	Symbol     string             `json:"symbol"`
	Metrics    map[string]float64 `json:"metrics"`
	Attributes map[string]string  `json:"attributes"`
}

// NewFundamentals returns an empty record for symbol.
func NewFundamentals(symbol string) *Fundamentals {
	return &Fundamentals{
		Symbol:     symbol,
		Metrics:    make(map[string]float64),
		Attributes: make(map[string]string),
	}
}

// Metric returns the numeric value of key, or an invalid null.Float when absent or not finite.
func (f *Fundamentals) Metric(key string) null.Float {
	if f == nil {
		return null.Float{}
	}
	v, ok := f.Metrics[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// Attribute returns the categorical value of key, or "" when absent.
func (f *Fundamentals) Attribute(key string) string {
	if f == nil {
		return ""
	}
	return f.Attributes[key]
}
