package types

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/moznion/go-optional"
)

// SharpeAnnualization scales per-trade Sharpe ratios.
var SharpeAnnualization = math.Sqrt(252)

// PerformanceMetrics summarises closed trades only.
type PerformanceMetrics struct {
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	RealizedPnL   float64 `json:"realizedPnl"`
	TotalFees     float64 `json:"totalFees"`
	// WinRate is in [0, 1].
	WinRate float64 `json:"winRate"`
	// MaxDrawdown is the largest retracement of realized equity from its running peak, in percent.
	MaxDrawdown float64 `json:"maxDrawdown"`
	// Sharpe is None with fewer than two closed trades and 0 when returns do not vary.
	Sharpe optional.Option[float64] `json:"sharpe"`
	// AvgReturnPct is the mean per-trade return, in percent.
	AvgReturnPct float64 `json:"avgReturnPct"`
}

// ComputePerformance derives the metrics from the closed subset of trades.
func ComputePerformance(initialEquity float64, trades []Trade) PerformanceMetrics {
	closed := ClosedTrades(trades)

	metrics := PerformanceMetrics{
		TotalTrades:   len(closed),
		WinningTrades: 0,
		LosingTrades:  0,
		RealizedPnL:   0,
		TotalFees:     0,
		WinRate:       0,
		MaxDrawdown:   0,
		Sharpe:        optional.None[float64](),
		AvgReturnPct:  0,
	}

	if len(closed) == 0 {
		return metrics
	}

	curve := make([]float64, 0, len(closed)+1)
	curve = append(curve, initialEquity)
	returns := make([]float64, 0, len(closed))
	equity := initialEquity

	for _, t := range closed {
		switch {
		case t.PnL > 0:
			metrics.WinningTrades++
		case t.PnL < 0:
			metrics.LosingTrades++
		}

		metrics.RealizedPnL += t.PnL
		metrics.TotalFees += t.Fees
		equity += t.PnL
		curve = append(curve, equity)
		returns = append(returns, t.PnLPct/100)
	}

	metrics.WinRate = float64(metrics.WinningTrades) / float64(len(closed))
	metrics.MaxDrawdown = MaxDrawdown(curve)
	metrics.Sharpe = Sharpe(returns)
	metrics.AvgReturnPct = mean(returns) * 100

	return metrics
}

// MaxDrawdown is the largest peak-to-trough fall of curve, in percent of the peak.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0]
	maxDD := 0.0

	for _, v := range curve {
		if v > peak {
			peak = v
		}

		if peak <= 0 {
			continue
		}

		if dd := (peak - v) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

// Sharpe returns mean/stdev of returns scaled by SharpeAnnualization.
func Sharpe(returns []float64) optional.Option[float64] {
	if len(returns) < 2 {
		return optional.None[float64]()
	}

	m := mean(returns)
	sd := sampleStdDev(returns, m)

	if sd == 0 || math.IsNaN(sd) {
		return optional.Some(0.0)
	}

	return optional.Some(m / sd * SharpeAnnualization)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func sampleStdDev(values []float64, m float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// BacktestResult is the output of one backtest run.
type BacktestResult struct {
	Symbol         string  `json:"symbol"`
	InitialEquity  float64 `json:"initialEquity"`
	FinalEquity    float64 `json:"finalEquity"`
	TotalReturn    float64 `json:"totalReturn"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	// MaxDrawdown is measured on the mark-to-market equity curve, in percent.
	MaxDrawdown float64            `json:"maxDrawdown"`
	Trades      []Trade            `json:"trades"`
	EquityCurve []EquityPoint      `json:"equityCurve"`
	Performance PerformanceMetrics `json:"performance"`
	Candles     int                `json:"candles"`
	StartedAt   time.Time          `json:"startedAt"`
	EndedAt     time.Time          `json:"endedAt"`
}

// Equities returns the equity values of the curve.
func (r BacktestResult) Equities() []float64 {
	out := make([]float64, len(r.EquityCurve))
	for i, p := range r.EquityCurve {
		out[i] = p.Equity
	}

	return out
}

// WriteBacktestResult writes the result as indented JSON.
func WriteBacktestResult(path string, result BacktestResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}

// ReadBacktestResult loads a result written by WriteBacktestResult.
func ReadBacktestResult(path string) (BacktestResult, error) {
	var result BacktestResult

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read backtest result: %w", err)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to parse backtest result: %w", err)
	}

	return result, nil
}
