package gate

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/backtest/engine"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/internal/utils"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// TrialOutcome is the result of one trial after its retries. Result is set only for TrialOutcomeOk.
type TrialOutcome struct {
	Index    int
	Symbol   string
	Start    time.Time
	End      time.Time
	Attempts int
	Kind     types.TrialOutcomeKind
	Result   types.BacktestResult
	Err      error
}

func (o TrialOutcome) Ok() bool {
	return o.Kind == types.TrialOutcomeOk
}

func (o TrialOutcome) Summary() types.TrialSummary {
	s := types.TrialSummary{
		Index:    o.Index,
		Symbol:   o.Symbol,
		Start:    o.Start,
		End:      o.End,
		Attempts: o.Attempts,
		Outcome:  o.Kind,
	}

	if o.Err != nil {
		s.Error = o.Err.Error()
	}

	if o.Ok() {
		s.TotalTrades = o.Result.Performance.TotalTrades
		s.ReturnPct = o.Result.TotalReturnPct
		s.WinRate = o.Result.Performance.WinRate
		s.MaxDrawdown = o.Result.MaxDrawdown
		s.Sharpe = o.Result.Performance.Sharpe
	}

	return s
}

// trialError carries the outcome kind of a failed attempt through the retry loop.
type trialError struct {
	kind types.TrialOutcomeKind
	err  error
}

func (e *trialError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *trialError) Unwrap() error {
	return e.err
}

func retryable(kind types.TrialOutcomeKind) bool {
	switch kind {
	case types.TrialOutcomeInsufficientData, types.TrialOutcomeNoTrades, types.TrialOutcomeProviderFailed:
		return true
	default:
		return false
	}
}

// window returns the range of trial index. Each retry widens the window by another Window length.
func (g *Gate) window(now time.Time, index, attempt int) (time.Time, time.Time) {
	end := now.Add(-time.Duration(index) * g.config.WindowStep)
	start := end.Add(-time.Duration(attempt) * g.config.Window)

	return start, end
}

// runTrial runs trial index with retries. It never returns an error: every failure is an outcome kind.
func (g *Gate) runTrial(ctx context.Context, cfg types.StrategyConfig, now time.Time, index int) TrialOutcome {
	symbol := cfg.Universe[index%len(cfg.Universe)]
	outcome := TrialOutcome{Index: index, Symbol: symbol, Kind: types.TrialOutcomeOk}

	policy := utils.RetryPolicy{
		MaxAttempts:     g.config.MaxAttempts,
		InitialInterval: g.config.InitialBackoff,
		MaxInterval:     0,
	}

	attempts, err := utils.Retry(ctx, policy, func(attempt int) error {
		start, end := g.window(now, index, attempt)
		outcome.Start, outcome.End = start, end

		result, err := g.attempt(ctx, cfg, symbol, start, end)
		if err != nil {
			var te *trialError
			if stderrors.As(err, &te) && !retryable(te.kind) {
				return utils.Permanent(err)
			}

			return err
		}

		outcome.Result = result

		return nil
	}, func(err error, wait time.Duration) {
		g.log.Debug("Retrying gate trial",
			zap.String("strategy", cfg.ID),
			zap.Int("trial", index),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})

	outcome.Attempts = attempts

	if err != nil {
		outcome.Err = err
		outcome.Kind = classify(ctx, err)
	}

	g.metrics.ObserveTrial(string(outcome.Kind), attempts)

	return outcome
}

func classify(ctx context.Context, err error) types.TrialOutcomeKind {
	var te *trialError

	switch {
	case ctx.Err() != nil:
		return types.TrialOutcomeBudgetExceeded
	case stderrors.As(err, &te):
		return te.kind
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return types.TrialOutcomeBudgetExceeded
	default:
		return types.TrialOutcomeBacktestFailed
	}
}

// attempt fetches one window and backtests it.
func (g *Gate) attempt(ctx context.Context, cfg types.StrategyConfig, symbol string, start, end time.Time) (types.BacktestResult, error) {
	candles, err := g.supplier.GetHistoricalCandles(ctx, provider.CandleRequest{
		Symbol:    symbol,
		Timeframe: cfg.Timeframe,
		From:      start,
		To:        end,
		ChainID:   cfg.ChainID,
		BaseAsset: cfg.BaseAsset,
	})
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			return types.BacktestResult{}, &trialError{kind: types.TrialOutcomeInsufficientData, err: err}
		}

		return types.BacktestResult{}, &trialError{kind: types.TrialOutcomeProviderFailed, err: err}
	}

	if len(candles) < g.config.MinCandles {
		return types.BacktestResult{}, &trialError{
			kind: types.TrialOutcomeInsufficientData,
			err: errors.NewInsufficientDataErrorf(g.config.MinCandles, len(candles), symbol,
				"got %d candles for %s, need %d", len(candles), symbol, g.config.MinCandles),
		}
	}

	result, err := g.engine.Run(ctx, symbol, candles, cfg, engine.LifecycleCallbacks{})

	switch {
	case err == nil:
	case errors.IsInsufficientDataError(err):
		return result, &trialError{kind: types.TrialOutcomeInsufficientData, err: err}
	case errors.HasCode(err, errors.ErrCodeInvalidCandles):
		return result, &trialError{kind: types.TrialOutcomeInvalidCandles, err: err}
	case errors.HasCode(err, errors.ErrCodeBacktestCancelled):
		return result, &trialError{kind: types.TrialOutcomeBudgetExceeded, err: err}
	default:
		return result, &trialError{kind: types.TrialOutcomeBacktestFailed, err: err}
	}

	if result.Performance.TotalTrades == 0 {
		return result, &trialError{
			kind: types.TrialOutcomeNoTrades,
			err:  fmt.Errorf("no closed trades over %d candles of %s", len(candles), symbol),
		}
	}

	return result, nil
}
