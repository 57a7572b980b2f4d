package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// CompanyInfo is the descriptive part of the fundamentals record.
type CompanyInfo struct {
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Currency string `json:"currency"`
}

// KeyMetrics are the headline numbers shown beside the charts.
type KeyMetrics struct {
	LastClose     null.Float `json:"last_close"`
	High52w       null.Float `json:"high_52w"`
	Low52w        null.Float `json:"low_52w"`
	Position52w   null.Float `json:"position_52w"`
	High30d       null.Float `json:"high_30d"`
	Low30d        null.Float `json:"low_30d"`
	MarketCap     null.Float `json:"market_cap"`
	TrailingPE    null.Float `json:"trailing_pe"`
	Volume        null.Float `json:"volume"`
	AverageVolume null.Float `json:"average_volume"`
}

// Report is the full output of one analysis run.
type Report struct {
	RunID       string       `json:"run_id"`
	Symbol      string       `json:"symbol"`
	Query       string       `json:"query"`
	GeneratedAt time.Time    `json:"generated_at"`
	Info        CompanyInfo  `json:"info"`
	Series      BarSeries    `json:"series"`
	KeyMetrics  KeyMetrics   `json:"key_metrics"`
	Indicators  IndicatorSet `json:"indicators"`
	Scores      ScoreSet     `json:"scores"`
	Risk        RiskMetrics  `json:"risk"`
	Benchmark   string       `json:"benchmark"`
	Warnings    []string     `json:"warnings,omitempty"`
}
