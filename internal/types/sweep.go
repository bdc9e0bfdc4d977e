package types

import "github.com/moznion/go-optional"

// ParamRange is an inclusive grid min, min+step, ..., max.
type ParamRange struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// SweepMetrics is the subset of a backtest kept per sweep candidate.
type SweepMetrics struct {
	TotalReturn    float64                  `json:"totalReturn"`
	TotalReturnPct float64                  `json:"totalReturnPct"`
	MaxDrawdown    float64                  `json:"maxDrawdown"`
	WinRate        float64                  `json:"winRate"`
	Sharpe         optional.Option[float64] `json:"sharpe"`
	TotalTrades    int                      `json:"totalTrades"`
}

// SweepResult pairs a candidate config with its backtest metrics.
type SweepResult struct {
	Params map[string]float64 `json:"params"`
	Config StrategyConfig     `json:"config"`
	Result SweepMetrics       `json:"result"`
}

// SweepMetricsFrom extracts the sweep view of a backtest result.
func SweepMetricsFrom(r BacktestResult) SweepMetrics {
	return SweepMetrics{
		TotalReturn:    r.TotalReturn,
		TotalReturnPct: r.TotalReturnPct,
		MaxDrawdown:    r.MaxDrawdown,
		WinRate:        r.Performance.WinRate,
		Sharpe:         r.Performance.Sharpe,
		TotalTrades:    r.Performance.TotalTrades,
	}
}
