// Package verify re-derives the numbers of a finished backtest and flags results that look unrealistic.
package verify

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// Tolerance is the largest absolute difference accepted between a reported and a recomputed amount.
const Tolerance = 0.01

const (
	maxRealisticReturnPct = 100
	minRealisticWinRate   = 0.2
	maxRealisticWinRate   = 0.8
	maxRealisticDrawdown  = 50
)

type WarningKind string

const (
	WarningExtremeReturn   WarningKind = "extreme_return"
	WarningWinRate         WarningKind = "unrealistic_win_rate"
	WarningNoTrades        WarningKind = "no_trades"
	WarningExtremeDrawdown WarningKind = "extreme_drawdown"
	WarningZeroFees        WarningKind = "zero_fees"
)

type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Mismatch is a closed trade whose reported PnL differs from the recomputed one.
type Mismatch struct {
	Index    int     `json:"index"`
	Symbol   string  `json:"symbol"`
	Reported float64 `json:"reported"`
	Expected float64 `json:"expected"`
}

type Report struct {
	TradesChecked int        `json:"tradesChecked"`
	OpenTrades    int        `json:"openTrades"`
	Mismatches    []Mismatch `json:"mismatches,omitempty"`
	// EquityCurveMatches is false when the last curve point differs from the final equity.
	EquityCurveMatches bool `json:"equityCurveMatches"`
	// EquityReconciles is false when initial equity plus realized PnL misses the final equity.
	// It is only evaluated when every trade is closed.
	EquityReconciles bool      `json:"equityReconciles"`
	Warnings         []Warning `json:"warnings,omitempty"`
}

// Consistent reports whether every recomputation matched.
func (r Report) Consistent() bool {
	return len(r.Mismatches) == 0 && r.EquityCurveMatches && r.EquityReconciles
}

// NetPnL recomputes a closed trade's PnL after fees.
func NetPnL(t types.Trade) float64 {
	exit := t.ExitPrice.TakeOr(t.EntryPrice)

	return (exit-t.EntryPrice)*t.Size*t.Side.Direction() - t.Fees
}

func Verify(result types.BacktestResult) Report {
	report := Report{EquityCurveMatches: true, EquityReconciles: true}

	realized := 0.0

	for i, t := range result.Trades {
		if !t.IsClosed() {
			report.OpenTrades++
			continue
		}

		report.TradesChecked++
		realized += t.PnL

		if expected := NetPnL(t); math.Abs(expected-t.PnL) > Tolerance {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Index:    i,
				Symbol:   t.Symbol,
				Reported: t.PnL,
				Expected: expected,
			})
		}
	}

	if n := len(result.EquityCurve); n > 0 {
		report.EquityCurveMatches = math.Abs(result.EquityCurve[n-1].Equity-result.FinalEquity) <= Tolerance
	}

	if report.OpenTrades == 0 {
		report.EquityReconciles = math.Abs(result.InitialEquity+realized-result.FinalEquity) <= Tolerance
	}

	report.Warnings = realism(result)

	return report
}

func realism(result types.BacktestResult) []Warning {
	var warnings []Warning

	warn := func(kind WarningKind, format string, args ...any) {
		warnings = append(warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	perf := types.ComputePerformance(result.InitialEquity, result.Trades)

	if math.Abs(result.TotalReturnPct) > maxRealisticReturnPct {
		warn(WarningExtremeReturn, "total return %.2f%% exceeds %d%%", result.TotalReturnPct, maxRealisticReturnPct)
	}

	if result.MaxDrawdown > maxRealisticDrawdown {
		warn(WarningExtremeDrawdown, "max drawdown %.2f%% exceeds %d%%", result.MaxDrawdown, maxRealisticDrawdown)
	}

	if perf.TotalTrades == 0 {
		warn(WarningNoTrades, "no closed trades")
		return warnings
	}

	if perf.WinRate < minRealisticWinRate || perf.WinRate > maxRealisticWinRate {
		warn(WarningWinRate, "win rate %.1f%% outside %.0f%%-%.0f%%",
			perf.WinRate*100, minRealisticWinRate*100, maxRealisticWinRate*100)
	}

	if perf.TotalFees == 0 {
		warn(WarningZeroFees, "total fees are zero")
	}

	return warnings
}
