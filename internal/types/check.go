package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// CheckKind distinguishes the two profitability gate variants.
type CheckKind string

const (
	CheckKindBacktest CheckKind = "backtest"
	CheckKindRecent   CheckKind = "recent"
)

// TrialOutcomeKind classifies how a single gate trial ended.
type TrialOutcomeKind string

const (
	TrialOutcomeOk               TrialOutcomeKind = "ok"
	TrialOutcomeInsufficientData TrialOutcomeKind = "insufficient_data"
	TrialOutcomeNoTrades         TrialOutcomeKind = "no_trades"
	TrialOutcomeProviderFailed   TrialOutcomeKind = "provider_failed"
	TrialOutcomeBudgetExceeded   TrialOutcomeKind = "budget_exceeded"
	TrialOutcomeInvalidCandles   TrialOutcomeKind = "invalid_candles"
	TrialOutcomeBacktestFailed   TrialOutcomeKind = "backtest_failed"
)

// TrialSummary is the per-trial entry recorded in a check's details.
type TrialSummary struct {
	Index       int                      `json:"index"`
	Symbol      string                   `json:"symbol"`
	Start       time.Time                `json:"start"`
	End         time.Time                `json:"end"`
	Attempts    int                      `json:"attempts"`
	Outcome     TrialOutcomeKind         `json:"outcome"`
	Error       string                   `json:"error,omitempty"`
	TotalTrades int                      `json:"totalTrades"`
	ReturnPct   float64                  `json:"returnPct"`
	WinRate     float64                  `json:"winRate"`
	MaxDrawdown float64                  `json:"maxDrawdown"`
	Sharpe      optional.Option[float64] `json:"sharpe"`
}

// CriterionResult is one pass/fail comparison of the gate.
type CriterionResult struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
	Defined   bool    `json:"defined"`
}

type CheckDetails struct {
	Trials           []TrialSummary    `json:"trials,omitempty"`
	SuccessfulTrials int               `json:"successfulTrials"`
	FailedTrials     int               `json:"failedTrials"`
	Criteria         []CriterionResult `json:"criteria,omitempty"`
	SampleSize       int               `json:"sampleSize"`
	Partial          bool              `json:"partial"`
}

// ProfitabilityCheck is the verdict of the profitability gate.
type ProfitabilityCheck struct {
	ID         string    `json:"id"`
	StrategyID string    `json:"strategyId"`
	Kind       CheckKind `json:"kind"`
	Passed     bool      `json:"passed"`
	// Sharpe is None when no trial produced a defined ratio.
	Sharpe      optional.Option[float64] `json:"sharpe"`
	AvgReturn   float64                  `json:"avgReturn"`
	WinRate     float64                  `json:"winRate"`
	MaxDrawdown float64                  `json:"maxDrawdown"`
	Message     string                   `json:"message"`
	Details     CheckDetails             `json:"details"`
	CheckedAt   time.Time                `json:"checkedAt"`
}
