package engine

import (
	"context"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnRunStartCallback is called before the first candle of a run is processed.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, symbol string, totalCandles int) error

// OnRunEndCallback is called when a run ends, with the error that ended it (nil on success).
type OnRunEndCallback func(runID string, err error)

// OnProcessDataCallback is called for each candle processed.
type OnProcessDataCallback func(current int, total int) error

// OnDecisionCallback is called with the decision taken at every step.
type OnDecisionCallback func(candle types.Candle, decision types.Decision)

// OnTradeCallback is called every time a position is closed.
type OnTradeCallback func(trade types.Trade)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
	OnDecision    *OnDecisionCallback
	OnTrade       *OnTradeCallback
}

// Engine replays a candle series through the decision engine under a strategy's risk limits.
// A single run is sequential; separate runs share nothing and may execute concurrently.
type Engine interface {
	// Run simulates cfg over candles for one symbol. The series must be ordered and valid;
	// invalid series fail with an invalid-candles error before any simulation work.
	// The context can be used to cancel the run between steps.
	Run(ctx context.Context, symbol string, candles []types.Candle, cfg types.StrategyConfig, callbacks LifecycleCallbacks) (types.BacktestResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
