package scoring

import "MarketLens/internal/model"

// Bound describes how one provider metric is scaled.
type Bound struct {
	Key      string
	Label    string
	Min      float64
	Max      float64
	Inverse  bool
	Extended bool // only scored under ProfileExtended
}

// CategorySpec is a fixed category and its constituent metrics.
type CategorySpec struct {
	Category model.Category
	Bounds   []Bound
}

// Categories is the fixed category set. Keys follow the provider's naming;
// debtToEquity is reported in percent.
var Categories = []CategorySpec{
	{model.CategoryValuation, []Bound{
		{Key: "trailingPE", Label: "P/E", Min: 0, Max: 50, Inverse: true},
		{Key: "forwardPE", Label: "Forward P/E", Min: 0, Max: 50, Inverse: true},
		{Key: "pegRatio", Label: "PEG", Min: 0, Max: 3, Inverse: true},
		{Key: "priceToBook", Label: "Price/Book", Min: 0, Max: 10, Inverse: true},
		{Key: "enterpriseToEbitda", Label: "EV/EBITDA", Min: 0, Max: 30, Inverse: true, Extended: true},
		{Key: "enterpriseToRevenue", Label: "EV/Revenue", Min: 0, Max: 10, Inverse: true, Extended: true},
	}},
	{model.CategoryGrowth, []Bound{
		{Key: "revenueGrowth", Label: "Revenue Growth", Min: -0.2, Max: 0.5},
		{Key: "earningsGrowth", Label: "Earnings Growth", Min: -0.2, Max: 0.5},
	}},
	{model.CategoryProfitability, []Bound{
		{Key: "operatingMargins", Label: "Operating Margin", Min: 0, Max: 0.4},
		{Key: "profitMargins", Label: "Profit Margin", Min: 0, Max: 0.3},
		{Key: "returnOnEquity", Label: "ROE", Min: 0, Max: 0.4},
		{Key: "returnOnAssets", Label: "ROA", Min: 0, Max: 0.2, Extended: true},
	}},
	{model.CategoryHealth, []Bound{
		{Key: "currentRatio", Label: "Current Ratio", Min: 0.5, Max: 3},
		{Key: "quickRatio", Label: "Quick Ratio", Min: 0.5, Max: 2},
		{Key: "debtToEquity", Label: "Debt/Equity", Min: 0, Max: 200, Inverse: true},
	}},
	{model.CategoryDividend, []Bound{
		{Key: "dividendYield", Label: "Dividend Yield", Min: 0, Max: 0.06},
		{Key: "payoutRatio", Label: "Payout Ratio", Min: 0, Max: 1, Inverse: true},
	}},
}
