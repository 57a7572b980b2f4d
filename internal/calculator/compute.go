package calculator

import (
	"MarketLens/internal/model"
)

// Params controls the windows used by Compute.
type Params struct {
	SMAWindows    []int
	RSIPeriod     int
	MACDFast      int
	MACDSlow      int
	MACDSignal    int
	BollingerDays int
	BollingerK    float64
	IchimokuConv  int
	IchimokuBase  int
	IchimokuSpanB int
}

// DefaultParams returns the conventional indicator windows.
func DefaultParams() Params {
	return Params{
		SMAWindows:    []int{20, 50, 200},
		RSIPeriod:     14,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		BollingerDays: 20,
		BollingerK:    2,
		IchimokuConv:  9,
		IchimokuBase:  26,
		IchimokuSpanB: 52,
	}
}

// Compute derives every indicator series for s. Each output has len(s.Bars) entries.
func Compute(s model.BarSeries, p Params) model.IndicatorSet {
	closes := Closes(s.Bars)
	highs := Highs(s.Bars)
	lows := Lows(s.Bars)

	sma := make(map[int]model.Series, len(p.SMAWindows))
	for _, w := range p.SMAWindows {
		sma[w] = SMA(closes, w)
	}

	return model.IndicatorSet{
		Dates: s.Dates(),
		SMA:   sma,
		RSI:   RSI(closes, p.RSIPeriod),
		MACD:  MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Bands: Bollinger(closes, p.BollingerDays, p.BollingerK),
		Cloud: Ichimoku(highs, lows, p.IchimokuConv, p.IchimokuBase, p.IchimokuSpanB),
	}
}
