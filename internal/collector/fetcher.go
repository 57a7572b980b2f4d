package collector

import (
	"context"

	"MarketLens/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns daily bars for symbol, sorted ascending with unique dates.
	FetchBars(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error)
	// FetchFundamentals returns the provider's company info record.
	FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
	Name() string
}
