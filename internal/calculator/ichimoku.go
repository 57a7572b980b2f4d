package calculator

import (
	"MarketLens/internal/model"
)

// Ichimoku computes the trailing conversion, base, span A and span B lines.
// Spans are not displaced forward.
func Ichimoku(highs, lows []float64, conversion, base, spanB int) model.IchimokuLines {
	conv := midpoint(highs, lows, conversion)
	baseLine := midpoint(highs, lows, base)
	return model.IchimokuLines{
		Conversion: conv,
		Base:       baseLine,
		SpanA:      average(conv, baseLine),
		SpanB:      midpoint(highs, lows, spanB),
	}
}
