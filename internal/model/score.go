package model

// Category is a fundamental scoring category.
type Category string

const (
	CategoryValuation     Category = "valuation"
	CategoryGrowth        Category = "growth"
	CategoryProfitability Category = "profitability"
	CategoryHealth        Category = "financial_health"
	CategoryDividend      Category = "dividend"
)

// MetricScore is the 0-100 score of one fundamental ratio.
type MetricScore struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Raw     *float64 `json:"raw"`
	Score   float64  `json:"score"`
	Present bool     `json:"present"`
}

// CategoryScore is the composite of a category's present metrics.
type CategoryScore struct {
	Category Category      `json:"category"`
	Score    float64       `json:"score"`
	Present  int           `json:"present"`
	Metrics  []MetricScore `json:"metrics"`
}

// ScoreSet maps every category to its composite. Derived per request, never stored.
type ScoreSet struct {
	Categories []CategoryScore `json:"categories"`
	Overall    float64         `json:"overall"`
}

// Get returns the score of a category.
func (s ScoreSet) Get(c Category) (CategoryScore, bool) {
	for _, cs := range s.Categories {
		if cs.Category == c {
			return cs, true
		}
	}
	return CategoryScore{}, false
}

// Map flattens the set to category name -> score.
func (s ScoreSet) Map() map[string]float64 {
	m := make(map[string]float64, len(s.Categories))
	for _, cs := range s.Categories {
		m[string(cs.Category)] = cs.Score
	}
	return m
}
