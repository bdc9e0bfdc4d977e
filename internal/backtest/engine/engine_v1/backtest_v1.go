package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/backtest/engine"
	"github.com/rxtech-lab/argo-gate/internal/decision"
	"github.com/rxtech-lab/argo-gate/internal/indicator"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/metrics"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"go.uber.org/zap"
)

var _ engine.Engine = (*BacktestEngineV1)(nil)

// BacktestEngineV1 replays candles step by step: risk exits first, then the decision engine.
// The engine holds no per-run state, so one instance may serve concurrent runs.
type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	provider      decision.DecisionProvider
	weights       decision.FusionWeights
	log           *logger.Logger
	metrics       *metrics.Collector
	resultsFolder string
}

type Option func(*BacktestEngineV1)

// WithDecisionProvider enables the external decision source for strategies whose AI mode is not off.
func WithDecisionProvider(p decision.DecisionProvider) Option {
	return func(b *BacktestEngineV1) {
		b.provider = p
	}
}

func WithFusionWeights(w decision.FusionWeights) Option {
	return func(b *BacktestEngineV1) {
		b.weights = w
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(b *BacktestEngineV1) {
		b.log = l
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(b *BacktestEngineV1) {
		b.metrics = m
	}
}

// WithResultsFolder writes result.json and decisions.parquet for every run.
// The folder is structured as <folder>/<strategy id>/<symbol>_<start>_<end>.
func WithResultsFolder(folder string) Option {
	return func(b *BacktestEngineV1) {
		b.resultsFolder = folder
	}
}

// NewBacktestEngineV1 validates config and builds the engine.
func NewBacktestEngineV1(config BacktestEngineV1Config, opts ...Option) (*BacktestEngineV1, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &BacktestEngineV1{
		config:        config,
		provider:      nil,
		weights:       decision.DefaultFusionWeights(),
		log:           logger.NewNopLogger(),
		metrics:       nil,
		resultsFolder: "",
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

func (b *BacktestEngineV1) Config() BacktestEngineV1Config {
	return b.config
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// backtestRun is the state of a single Run call.
type backtestRun struct {
	id        string
	symbol    string
	cfg       types.StrategyConfig
	candles   []types.Candle
	state     *BacktestState
	trading   *BacktestTrading
	decider   *decision.Engine
	extractor *indicator.Extractor
	journal   *BacktestLog
	callbacks engine.LifecycleCallbacks
	lookback  int
	flatten   float64
	log       *logger.Logger
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, symbol string, candles []types.Candle, cfg types.StrategyConfig, callbacks engine.LifecycleCallbacks) (result types.BacktestResult, err error) {
	started := time.Now()

	if err := cfg.Validate(); err != nil {
		b.log.Error("Invalid strategy config", zap.String("strategy", cfg.ID), zap.Error(err))

		return result, err
	}

	candles = b.window(candles)
	if len(candles) == 0 {
		return result, errors.NewInsufficientDataError(1, 0, symbol, "no candles to backtest")
	}

	if err := types.ValidateSeries(candles); err != nil {
		return result, err
	}

	extractor, err := indicator.NewExtractor(cfg.Periods(), indicator.WithParallelism(b.config.IndicatorParallelism))
	if err != nil {
		return result, err
	}

	run := b.newRun(symbol, candles, cfg, extractor, callbacks)

	if b.resultsFolder != "" {
		run.journal, err = NewBacktestLog(run.log)
		if err != nil {
			return result, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create decision log", err)
		}
		defer run.journal.Close()
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(run.id, symbol, len(candles)); err != nil {
			return result, err
		}
	}

	if callbacks.OnRunEnd != nil {
		defer func() {
			(*callbacks.OnRunEnd)(run.id, err)
		}()
	}

	for i := range candles {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", ctxErr)
		}

		if err := run.step(ctx, i); err != nil {
			return result, err
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, len(candles)); err != nil {
				return result, err
			}
		}
	}

	run.finish()
	result = run.result()

	b.metrics.ObserveBacktest(time.Since(started))
	b.log.Debug("Backtest finished",
		zap.String("run_id", run.id),
		zap.String("strategy", cfg.ID),
		zap.String("symbol", symbol),
		zap.Int("candles", len(candles)),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("return_pct", result.TotalReturnPct),
	)

	if b.resultsFolder != "" {
		if err := b.writeResults(run, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (b *BacktestEngineV1) newRun(symbol string, candles []types.Candle, cfg types.StrategyConfig, extractor *indicator.Extractor, callbacks engine.LifecycleCallbacks) *backtestRun {
	state := NewBacktestState(b.config.InitialCapital)
	id := uuid.New().String()
	log := &logger.Logger{Logger: b.log.Named("backtest").With(zap.String("run_id", id))}

	return &backtestRun{
		id:      id,
		symbol:  symbol,
		cfg:     cfg,
		candles: candles,
		state:   state,
		trading: NewBacktestTrading(state, b.config.CommissionFee(), b.config.SlippageRate(), b.config.DecimalPrecision),
		// one decision engine per run keeps the decision cache scoped to the run
		decider: decision.NewEngine(
			decision.WithProvider(b.provider),
			decision.WithFusionWeights(b.weights),
			decision.WithLogger(b.log),
			decision.WithMetrics(b.metrics),
		),
		extractor: extractor,
		journal:   nil,
		callbacks: callbacks,
		lookback:  b.config.LookbackWindow,
		flatten:   b.config.FlattenConfidence,
		log:       log,
	}
}

// window applies the configured start and end times.
func (b *BacktestEngineV1) window(candles []types.Candle) []types.Candle {
	if b.config.StartTime.IsNone() && b.config.EndTime.IsNone() {
		return candles
	}

	out := make([]types.Candle, 0, len(candles))

	for _, c := range candles {
		if b.config.StartTime.IsSome() && c.Timestamp.Before(b.config.StartTime.Unwrap()) {
			continue
		}

		if b.config.EndTime.IsSome() && c.Timestamp.After(b.config.EndTime.Unwrap()) {
			continue
		}

		out = append(out, c)
	}

	return out
}

func (b *BacktestEngineV1) writeResults(run *backtestRun, result types.BacktestResult) error {
	folder := getResultFolder(b.resultsFolder, run.cfg, run.symbol, run.candles)

	if err := run.journal.Write(folder); err != nil {
		return fmt.Errorf("failed to write decisions: %w", err)
	}

	if err := types.WriteBacktestResult(filepath.Join(folder, "result.json"), result); err != nil {
		return err
	}

	b.log.Info("Backtest results written",
		zap.String("run_id", run.id),
		zap.String("folder", folder),
	)

	return nil
}

// step processes candle i: day rollover, risk exits, then a decision unless a risk exit fired.
func (r *backtestRun) step(ctx context.Context, i int) error {
	candle := r.candles[i]

	before := r.state.Cash()
	if i > 0 {
		before = r.state.Equity(r.candles[i-1].Close)
	}

	r.state.StartStep(candle, before)

	exited := false

	if pos := r.state.Position(); pos.IsSome() {
		if ex := checkExits(pos.Unwrap(), candle, r.cfg.RiskLimits, r.breakerPrice(pos.Unwrap())); ex.IsSome() {
			e := ex.Unwrap()
			r.close(e.price, candle, e.reason)

			if e.reason == types.ExitReasonDailyLoss {
				r.state.TripBreaker()
			}

			exited = true
		} else {
			r.state.UpdateHighWaterMark(candle)
		}
	}

	r.state.CheckBreaker(r.state.Equity(candle.Close), r.cfg.RiskLimits)

	if !exited {
		d, err := r.decide(ctx, i)
		if err != nil {
			return err
		}

		r.apply(d, candle)
	}

	r.state.Record(candle.Timestamp, r.state.Equity(candle.Close))

	return nil
}

func (r *backtestRun) breakerPrice(pos types.Position) optional.Option[float64] {
	if !r.cfg.RiskLimits.DailyBreakerEnabled() || r.state.BreakerActive() {
		return optional.None[float64]()
	}

	return r.trading.BreakerPrice(pos, r.state.DailyLossFloor(r.cfg.RiskLimits.MaxDailyLossPct))
}

func (r *backtestRun) decide(ctx context.Context, i int) (types.Decision, error) {
	start := 0
	if r.lookback > 0 && i+1 > r.lookback {
		start = i + 1 - r.lookback
	}

	window := r.candles[start : i+1]
	candle := r.candles[i]

	indicators, err := r.extractor.Extract(window)
	if err != nil {
		return types.Decision{}, err
	}

	dctx := types.DecisionContext{
		Symbol:               r.symbol,
		Timeframe:            r.cfg.Timeframe,
		Now:                  candle.Timestamp,
		RecentCandles:        window,
		Indicators:           indicators,
		OpenPositions:        r.state.Positions(),
		Performance:          r.state.Performance(),
		RiskLimits:           r.cfg.RiskLimits,
		CircuitBreakerActive: r.state.BreakerActive(),
	}

	d := r.decider.Decide(ctx, dctx, r.cfg)

	if r.callbacks.OnDecision != nil {
		(*r.callbacks.OnDecision)(candle, d)
	}

	if r.journal != nil {
		if err := r.journal.Log(DecisionLogEntry{
			Timestamp:             candle.Timestamp,
			Symbol:                r.symbol,
			Price:                 candle.Close,
			Action:                d.Action,
			Confidence:            d.Confidence,
			TargetPositionSizePct: d.TargetPositionSizePct,
			Source:                d.Source,
			Strength:              d.Strength,
			Notes:                 d.Notes,
		}); err != nil {
			r.log.Warn("Failed to record decision", zap.Error(err))
		}
	}

	return d, nil
}

// apply acts on a decision at the candle close. Same-direction signals hold, opposite
// signals flip, and flat signals close only when confident and not in the position's favour.
func (r *backtestRun) apply(d types.Decision, candle types.Candle) {
	if pos := r.state.Position(); pos.IsSome() {
		p := pos.Unwrap()

		switch {
		case d.Action == types.ActionFlat:
			if d.Confidence >= r.flatten && d.Strength*p.Side.Direction() <= 0 {
				r.close(candle.Close, candle, types.ExitReasonSignal)
			}

			return
		case d.Action.Direction() == p.Side.Direction():
			return
		default:
			r.close(candle.Close, candle, types.ExitReasonSignal)

			if r.state.CheckBreaker(r.state.Cash(), r.cfg.RiskLimits) {
				return
			}
		}
	}

	if d.Action == types.ActionFlat || r.state.BreakerActive() {
		return
	}

	side := types.PositionSideLong
	if d.Action == types.ActionShort {
		side = types.PositionSideShort
	}

	pos, ok := r.trading.OpenPosition(r.symbol, side, candle.Close, d.TargetPositionSizePct, r.state.Cash(), candle.Timestamp)
	if !ok {
		r.log.Debug("Position size rounds to zero, skipping entry",
			zap.Time("at", candle.Timestamp),
			zap.Float64("size_pct", d.TargetPositionSizePct),
		)

		return
	}

	r.log.Debug("Position opened",
		zap.String("side", string(pos.Side)),
		zap.Float64("size", pos.Size),
		zap.Float64("entry", pos.EntryPrice),
		zap.Time("at", candle.Timestamp),
	)
}

func (r *backtestRun) close(price float64, candle types.Candle, reason types.ExitReason) {
	trade, ok := r.trading.ClosePosition(price, candle.Timestamp, reason)
	if !ok {
		return
	}

	r.log.Debug("Position closed",
		zap.String("reason", string(reason)),
		zap.Float64("exit", trade.ExitPrice.Unwrap()),
		zap.Float64("pnl", trade.PnL),
		zap.Time("at", candle.Timestamp),
	)

	if r.callbacks.OnTrade != nil {
		(*r.callbacks.OnTrade)(trade)
	}
}

// finish force-closes any open position at the final close.
func (r *backtestRun) finish() {
	if r.state.Position().IsNone() {
		return
	}

	last := r.candles[len(r.candles)-1]
	r.close(last.Close, last, types.ExitReasonEndOfData)
	r.state.SetLastEquity(r.state.Cash())
}

func (r *backtestRun) result() types.BacktestResult {
	initial := r.state.initialCapital
	final := r.state.Cash()

	trades := r.state.Trades()
	if trades == nil {
		trades = []types.Trade{}
	}

	res := types.BacktestResult{
		Symbol:         r.symbol,
		InitialEquity:  initial,
		FinalEquity:    final,
		TotalReturn:    final - initial,
		TotalReturnPct: (final - initial) / initial * 100,
		MaxDrawdown:    0,
		Trades:         trades,
		EquityCurve:    r.state.Curve(),
		Performance:    r.state.Performance(),
		Candles:        len(r.candles),
		StartedAt:      r.candles[0].Timestamp,
		EndedAt:        r.candles[len(r.candles)-1].Timestamp,
	}
	res.MaxDrawdown = types.MaxDrawdown(res.Equities())

	return res
}
