// Package gate decides whether a strategy has earned promotion to the next trading mode.
//
// The backtest variant replays the strategy over several recent windows and averages the
// results. The recent variant judges the strategy's own closed trades. Both apply the same
// four thresholds and never partially pass.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-gate/internal/backtest/engine"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/metrics"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/internal/utils"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-gate/pkg/store"
	"go.uber.org/zap"
)

type Gate struct {
	engine   engine.Engine
	supplier provider.CandleSupplier
	config   Config
	store    store.CheckStore
	history  store.TradeHistory
	log      *logger.Logger
	metrics  *metrics.Collector
	now      func() time.Time

	// onTrial is called after every finished trial.
	onTrial func(TrialOutcome)
}

type Option func(*Gate)

func WithConfig(config Config) Option {
	return func(g *Gate) {
		g.config = config
	}
}

// WithStore persists every check the gate produces.
func WithStore(s store.CheckStore) Option {
	return func(g *Gate) {
		g.store = s
	}
}

// WithTradeHistory enables CheckRecent.
func WithTradeHistory(h store.TradeHistory) Option {
	return func(g *Gate) {
		g.history = h
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// WithTrialCallback registers fn to be called after each trial. fn may be called concurrently.
func WithTrialCallback(fn func(TrialOutcome)) Option {
	return func(g *Gate) {
		g.onTrial = fn
	}
}

func NewGate(eng engine.Engine, supplier provider.CandleSupplier, opts ...Option) (*Gate, error) {
	if eng == nil || supplier == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "gate needs an engine and a candle supplier")
	}

	return newGate(eng, supplier, opts)
}

// NewRecentGate builds a gate that only serves CheckRecent.
func NewRecentGate(history store.TradeHistory, opts ...Option) (*Gate, error) {
	if history == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "recent gate needs a trade history")
	}

	return newGate(nil, nil, append([]Option{WithTradeHistory(history)}, opts...))
}

func newGate(eng engine.Engine, supplier provider.CandleSupplier, opts []Option) (*Gate, error) {
	g := &Gate{
		engine:   eng,
		supplier: supplier,
		config:   DefaultConfig(),
		store:    nil,
		history:  nil,
		log:      logger.NewNopLogger(),
		metrics:  nil,
		now:      time.Now,
		onTrial:  nil,
	}

	for _, opt := range opts {
		opt(g)
	}

	if err := g.config.Validate(); err != nil {
		return nil, err
	}

	g.log = g.log.Named("gate")

	return g, nil
}

// Check runs the backtest variant. Routine failures such as missing data are reported in the
// returned check. Only configuration errors, cancellation of ctx and store failures are errors.
func (g *Gate) Check(ctx context.Context, cfg types.StrategyConfig) (types.ProfitabilityCheck, error) {
	if g.engine == nil {
		return types.ProfitabilityCheck{}, errors.New(errors.ErrCodeMissingParameter, "backtest check needs an engine and a candle supplier")
	}

	if err := cfg.Validate(); err != nil {
		g.log.Error("Invalid strategy config", zap.String("strategy", cfg.ID), zap.Error(err))

		return types.ProfitabilityCheck{}, err
	}

	runCtx := ctx
	if g.config.Budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, g.config.Budget)
		defer cancel()
	}

	now := g.now().UTC()
	outcomes := make([]TrialOutcome, g.config.Trials)

	for i := range outcomes {
		outcomes[i] = TrialOutcome{
			Index:  i,
			Symbol: cfg.Universe[i%len(cfg.Universe)],
			Kind:   types.TrialOutcomeBudgetExceeded,
			Err:    errors.New(errors.ErrCodeGateBudgetExceeded, "trial not run before the gate budget ran out"),
		}
	}

	_ = utils.RunBounded(runCtx, g.config.Trials, g.config.Concurrency, func(ctx context.Context, i int) {
		outcomes[i] = g.runTrial(ctx, cfg, now, i)

		if g.onTrial != nil {
			g.onTrial(outcomes[i])
		}
	})

	if err := ctx.Err(); err != nil {
		return types.ProfitabilityCheck{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "gate check cancelled", err)
	}

	check := g.verdict(cfg, outcomes)
	check.CheckedAt = now

	if err := g.record(ctx, cfg, check); err != nil {
		return check, err
	}

	return check, nil
}

// verdict aggregates the outcomes into a check.
func (g *Gate) verdict(cfg types.StrategyConfig, outcomes []TrialOutcome) types.ProfitabilityCheck {
	check := types.ProfitabilityCheck{
		ID:         uuid.New().String(),
		StrategyID: cfg.ID,
		Kind:       types.CheckKindBacktest,
	}

	var results []types.BacktestResult

	for _, o := range outcomes {
		check.Details.Trials = append(check.Details.Trials, o.Summary())

		if o.Ok() {
			results = append(results, o.Result)
			check.Details.SampleSize += o.Result.Performance.TotalTrades
		} else if o.Kind == types.TrialOutcomeBudgetExceeded {
			check.Details.Partial = true
		}
	}

	check.Details.SuccessfulTrials = len(results)
	check.Details.FailedTrials = len(outcomes) - len(results)

	agg := aggregate(results)
	check.Sharpe = agg.Sharpe
	check.AvgReturn = agg.AvgReturn
	check.WinRate = agg.WinRate
	check.MaxDrawdown = agg.MaxDrawdown

	if len(results) < g.config.MinSuccessfulTrials {
		check.Passed = false
		check.Message = fmt.Sprintf("insufficient trials: %d of %d succeeded, need %d%s",
			len(results), len(outcomes), g.config.MinSuccessfulTrials, failureSummary(outcomes))

		return check
	}

	criteria, passed := Evaluate(agg, cfg.Thresholds.Resolve())
	check.Details.Criteria = criteria
	check.Passed = passed
	check.Message = fmt.Sprintf("%s (%d of %d trials)", describe(criteria, passed), len(results), len(outcomes))

	return check
}

// failureSummary counts the failed trials by kind.
func failureSummary(outcomes []TrialOutcome) string {
	counts := map[types.TrialOutcomeKind]int{}
	order := []types.TrialOutcomeKind{}

	for _, o := range outcomes {
		if o.Ok() {
			continue
		}

		if counts[o.Kind] == 0 {
			order = append(order, o.Kind)
		}

		counts[o.Kind]++
	}

	if len(order) == 0 {
		return ""
	}

	out := " ("
	for i, kind := range order {
		if i > 0 {
			out += ", "
		}

		out += fmt.Sprintf("%d %s", counts[kind], kind)
	}

	return out + ")"
}

// record logs, counts and stores a finished check.
func (g *Gate) record(ctx context.Context, cfg types.StrategyConfig, check types.ProfitabilityCheck) error {
	g.metrics.ObserveCheck(string(check.Kind), check.Passed)
	g.log.Info("Profitability check finished",
		zap.String("strategy", cfg.ID),
		zap.String("kind", string(check.Kind)),
		zap.Bool("passed", check.Passed),
		zap.String("message", check.Message),
	)

	if g.store == nil {
		return nil
	}

	if err := g.store.StoreCheck(ctx, cfg.ID, check); err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to store profitability check", err)
	}

	return nil
}
