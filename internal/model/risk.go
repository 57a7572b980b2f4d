package model

import "github.com/guregu/null/v6"

// RiskMetrics holds distributional risk statistics in unscaled units
// (volatility is an annualised fraction, VaR a daily fraction).
type RiskMetrics struct {
	Volatility  null.Float `json:"volatility"`
	VaR95       null.Float `json:"var_95"`
	CVaR95      null.Float `json:"cvar_95"`
	MaxDrawdown null.Float `json:"max_drawdown"`
	Sharpe      null.Float `json:"sharpe_ratio"`
	Sortino     null.Float `json:"sortino_ratio"`
	Beta        null.Float `json:"beta"`
}

// Map returns metric name -> value for presentation.
func (r RiskMetrics) Map() map[string]null.Float {
	return map[string]null.Float{
		"volatility":    r.Volatility,
		"var_95":        r.VaR95,
		"cvar_95":       r.CVaR95,
		"max_drawdown":  r.MaxDrawdown,
		"sharpe_ratio":  r.Sharpe,
		"sortino_ratio": r.Sortino,
		"beta":          r.Beta,
	}
}
