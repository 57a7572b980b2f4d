// Package report renders analysis results as plain text for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
)

// ErrorHint is appended to every user-facing failure.
const ErrorHint = "Please check the stock symbol and try again."

// FormatError renders a pipeline failure for the user.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v. %s", err, ErrorHint)
}

// FormatReport formats a full analysis report.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	title := r.Symbol
	if r.Info.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Info.Name, r.Symbol)
	}
	b.WriteString(fmt.Sprintf("%s | %s | %s\n", title, r.Query, r.GeneratedAt.Format("2006-01-02 15:04")))
	if r.Info.Sector != "" || r.Info.Industry != "" {
		b.WriteString(fmt.Sprintf("Sector: %s | Industry: %s\n", orNA(r.Info.Sector), orNA(r.Info.Industry)))
	}
	if first, ok := firstBar(r.Series); ok {
		last, _ := r.Series.Last()
		b.WriteString(fmt.Sprintf("Bars: %d (%s .. %s)\n",
			r.Series.Len(), first.Date.Format(model.DateLayout), last.Date.Format(model.DateLayout)))
	}
	b.WriteString("\n")

	// Key metrics
	km := r.KeyMetrics
	b.WriteString("Key metrics:\n")
	b.WriteString(fmt.Sprintf("  Last close: %s %s\n", num(km.LastClose, 2), r.Info.Currency))
	b.WriteString(fmt.Sprintf("  52w range: %s - %s (position %s)\n", num(km.Low52w, 2), num(km.High52w, 2), pct(km.Position52w)))
	b.WriteString(fmt.Sprintf("  30d range: %s - %s\n", num(km.Low30d, 2), num(km.High30d, 2)))
	b.WriteString(fmt.Sprintf("  Market cap: %s | P/E: %s\n", large(km.MarketCap), num(km.TrailingPE, 2)))
	b.WriteString(fmt.Sprintf("  Volume: %s | Avg volume: %s\n\n", large(km.Volume), large(km.AverageVolume)))

	// Indicators, latest values
	ind := r.Indicators
	b.WriteString("Technical indicators (latest):\n")
	windows := make([]int, 0, len(ind.SMA))
	for w := range ind.SMA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for _, w := range windows {
		b.WriteString(fmt.Sprintf("  SMA%d: %s\n", w, num(ind.SMA[w].Last(), 2)))
	}
	b.WriteString(fmt.Sprintf("  RSI: %s\n", num(ind.RSI.Last(), 1)))
	b.WriteString(fmt.Sprintf("  MACD: %s | signal %s | hist %s\n",
		num(ind.MACD.Line.Last(), 3), num(ind.MACD.Signal.Last(), 3), num(ind.MACD.Histogram.Last(), 3)))
	b.WriteString(fmt.Sprintf("  Bollinger: %s / %s / %s\n",
		num(ind.Bands.Lower.Last(), 2), num(ind.Bands.Middle.Last(), 2), num(ind.Bands.Upper.Last(), 2)))
	b.WriteString(fmt.Sprintf("  Ichimoku: conv %s | base %s | span A %s | span B %s\n\n",
		num(ind.Cloud.Conversion.Last(), 2), num(ind.Cloud.Base.Last(), 2),
		num(ind.Cloud.SpanA.Last(), 2), num(ind.Cloud.SpanB.Last(), 2)))

	// Scores
	b.WriteString("Fundamental scores:\n")
	for _, cs := range r.Scores.Categories {
		b.WriteString(fmt.Sprintf("  %-17s %5.1f (%d/%d metrics)\n",
			categoryLabel(cs.Category)+":", cs.Score, cs.Present, len(cs.Metrics)))
		for _, m := range cs.Metrics {
			if !m.Present {
				continue
			}
			b.WriteString(fmt.Sprintf("    %s: %.4g -> %.1f\n", m.Label, *m.Raw, m.Score))
		}
	}
	b.WriteString(fmt.Sprintf("  %-17s %5.1f\n\n", "Overall:", r.Scores.Overall))

	// Risk
	rk := r.Risk
	b.WriteString("Risk:\n")
	b.WriteString(fmt.Sprintf("  Volatility (ann.): %s\n", pct(rk.Volatility)))
	b.WriteString(fmt.Sprintf("  VaR 95%%: %s | CVaR 95%%: %s\n", pct(rk.VaR95), pct(rk.CVaR95)))
	b.WriteString(fmt.Sprintf("  Max drawdown: %s\n", pct(rk.MaxDrawdown)))
	b.WriteString(fmt.Sprintf("  Sharpe: %s | Sortino: %s\n", num(rk.Sharpe, 2), num(rk.Sortino, 2)))
	b.WriteString(fmt.Sprintf("  Beta vs %s: %s\n", orNA(r.Benchmark), num(rk.Beta, 2)))

	for _, w := range r.Warnings {
		b.WriteString(fmt.Sprintf("\nWarning: %s", w))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func firstBar(s model.BarSeries) (model.Bar, bool) {
	if len(s.Bars) == 0 {
		return model.Bar{}, false
	}
	return s.Bars[0], true
}

func categoryLabel(c model.Category) string {
	switch c {
	case model.CategoryValuation:
		return "Valuation"
	case model.CategoryGrowth:
		return "Growth"
	case model.CategoryProfitability:
		return "Profitability"
	case model.CategoryHealth:
		return "Financial Health"
	case model.CategoryDividend:
		return "Dividend"
	}
	return string(c)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func num(v null.Float, places int) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", places, v.Float64)
}

func pct(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v.Float64*100)
}

func large(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	x := v.Float64
	abs := x
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", x/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", x/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", x/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", x/1e3)
	}
	return fmt.Sprintf("%.0f", x)
}
