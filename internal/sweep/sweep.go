// Package sweep runs a strategy over a grid of parameter combinations and ranks the results.
package sweep

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/backtest/engine"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/metrics"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/internal/utils"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"go.uber.org/zap"
)

const DefaultConcurrency = 4

// Filter drops candidates before ranking. Nil fields are not checked.
type Filter struct {
	MinTrades      int      `yaml:"min_trades" json:"minTrades"`
	MinSharpe      *float64 `yaml:"min_sharpe,omitempty" json:"minSharpe,omitempty"`
	MinReturnPct   *float64 `yaml:"min_return_pct,omitempty" json:"minReturnPct,omitempty"`
	MaxDrawdownPct *float64 `yaml:"max_drawdown_pct,omitempty" json:"maxDrawdownPct,omitempty"`
	// MinWinRate is a fraction in [0, 1].
	MinWinRate *float64 `yaml:"min_win_rate,omitempty" json:"minWinRate,omitempty"`
}

// Accept reports whether m passes every set bound. A MinSharpe rejects candidates without a Sharpe.
func (f Filter) Accept(m types.SweepMetrics) bool {
	if m.TotalTrades < f.MinTrades {
		return false
	}

	if f.MinSharpe != nil && (m.Sharpe.IsNone() || m.Sharpe.Unwrap() < *f.MinSharpe) {
		return false
	}

	if f.MinReturnPct != nil && m.TotalReturnPct < *f.MinReturnPct {
		return false
	}

	if f.MaxDrawdownPct != nil && m.MaxDrawdown > *f.MaxDrawdownPct {
		return false
	}

	if f.MinWinRate != nil && m.WinRate < *f.MinWinRate {
		return false
	}

	return true
}

// Request describes one sweep. Candles are shared read-only by every candidate.
type Request struct {
	Base    types.StrategyConfig
	Symbol  string
	Candles []types.Candle
	Ranges  map[string]types.ParamRange
	Filter  Filter
	// TopN keeps only the best N results. Zero keeps all.
	TopN int
}

// Report is the outcome of a sweep.
type Report struct {
	Results []types.SweepResult `json:"results"`
	// Total is the grid size.
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Failed    int `json:"failed"`
	Filtered  int `json:"filtered"`
	// Partial is set when a budget stopped the sweep before every candidate ran.
	Partial bool   `json:"partial"`
	Message string `json:"message"`
}

type Sweeper struct {
	engine        engine.Engine
	concurrency   int
	budget        time.Duration
	maxCandidates int
	log           *logger.Logger
	metrics       *metrics.Collector
	onCandidate   func(done, total int)
}

type Option func(*Sweeper)

func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		s.concurrency = n
	}
}

// WithBudget caps the wall time of a sweep. Candidates still running when it expires are dropped.
func WithBudget(d time.Duration) Option {
	return func(s *Sweeper) {
		s.budget = d
	}
}

// WithMaxCandidates evaluates at most n grid points, in grid order.
func WithMaxCandidates(n int) Option {
	return func(s *Sweeper) {
		s.maxCandidates = n
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Sweeper) {
		s.log = l
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// WithProgress calls fn after every finished candidate. Calls are serialized.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Sweeper) {
		s.onCandidate = fn
	}
}

func NewSweeper(eng engine.Engine, opts ...Option) *Sweeper {
	s := &Sweeper{
		engine:        eng,
		concurrency:   DefaultConcurrency,
		budget:        0,
		maxCandidates: 0,
		log:           logger.NewNopLogger(),
		metrics:       nil,
		onCandidate:   nil,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.Named("sweep")

	return s
}

type candidate struct {
	params map[string]float64
	config types.StrategyConfig
	result types.BacktestResult
	err    error
	done   bool
}

// Run evaluates the grid. Invalid ranges, an invalid base config and any grid point
// that yields an invalid config fail before any backtest. Failed backtests are counted,
// not returned as errors.
func (s *Sweeper) Run(ctx context.Context, req Request) (Report, error) {
	if err := req.Base.Validate(); err != nil {
		s.log.Error("Invalid base strategy config", zap.Error(err))

		return Report{}, err
	}

	if req.Symbol == "" {
		return Report{}, errors.New(errors.ErrCodeMissingParameter, "sweep symbol is required")
	}

	grid, err := Grid(req.Ranges)
	if err != nil {
		return Report{}, err
	}

	candidates := make([]candidate, len(grid))
	for i, params := range grid {
		cfg, err := Apply(req.Base, params)
		if err == nil {
			err = cfg.Validate()
		}

		if err != nil {
			s.log.Error("Invalid sweep candidate", zap.Any("params", params), zap.Error(err))

			return Report{}, err
		}

		candidates[i].params = params
		candidates[i].config = cfg
	}

	report := Report{Total: len(grid)}

	n := len(candidates)
	if s.maxCandidates > 0 && n > s.maxCandidates {
		n = s.maxCandidates
		report.Partial = true
	}

	runCtx := ctx
	if s.budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}

	var (
		mu   sync.Mutex
		done int
	)

	_ = utils.RunBounded(runCtx, n, s.concurrency, func(ctx context.Context, i int) {
		s.evaluate(ctx, req, &candidates[i])

		mu.Lock()
		defer mu.Unlock()

		done++
		if s.onCandidate != nil {
			s.onCandidate(done, n)
		}
	})

	if err := ctx.Err(); err != nil {
		return Report{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "sweep cancelled", err)
	}

	for i := range candidates[:n] {
		c := &candidates[i]

		switch {
		case !c.done:
			report.Partial = true
		case c.err != nil:
			report.Failed++
			s.metrics.ObserveSweepCandidate("failed")
		default:
			report.Evaluated++

			m := types.SweepMetricsFrom(c.result)
			if !req.Filter.Accept(m) {
				report.Filtered++
				s.metrics.ObserveSweepCandidate("filtered")

				continue
			}

			s.metrics.ObserveSweepCandidate("accepted")
			report.Results = append(report.Results, types.SweepResult{
				Params: c.params,
				Config: c.config,
				Result: m,
			})
		}
	}

	Rank(report.Results)

	if req.TopN > 0 && len(report.Results) > req.TopN {
		report.Results = report.Results[:req.TopN]
	}

	report.Message = summarize(report)

	s.log.Info("Sweep finished",
		zap.String("strategy", req.Base.ID),
		zap.String("symbol", req.Symbol),
		zap.Int("total", report.Total),
		zap.Int("evaluated", report.Evaluated),
		zap.Int("failed", report.Failed),
		zap.Int("filtered", report.Filtered),
		zap.Bool("partial", report.Partial),
	)

	return report, nil
}

func (s *Sweeper) evaluate(ctx context.Context, req Request, c *candidate) {
	c.done = true

	c.result, c.err = s.engine.Run(ctx, req.Symbol, req.Candles, c.config, engine.LifecycleCallbacks{})
	if c.err != nil && ctx.Err() != nil {
		// cut off by the budget
		c.done = false
		return
	}

	if c.err != nil {
		s.log.Debug("Sweep candidate failed", zap.Any("params", c.params), zap.Error(c.err))
	}
}

// Rank orders results with a Sharpe by Sharpe then return, descending, followed by the
// results without a Sharpe by return, descending. The sort is stable.
func Rank(results []types.SweepResult) {
	slices.SortStableFunc(results, func(a, b types.SweepResult) int {
		as, bs := a.Result.Sharpe, b.Result.Sharpe

		switch {
		case as.IsSome() && bs.IsNone():
			return -1
		case as.IsNone() && bs.IsSome():
			return 1
		case as.IsSome() && bs.IsSome():
			if c := cmp.Compare(bs.Unwrap(), as.Unwrap()); c != 0 {
				return c
			}
		}

		return cmp.Compare(b.Result.TotalReturnPct, a.Result.TotalReturnPct)
	})
}

func summarize(r Report) string {
	msg := fmt.Sprintf("%d of %d combinations kept (%d evaluated, %d failed, %d filtered)",
		len(r.Results), r.Total, r.Evaluated, r.Failed, r.Filtered)

	if r.Partial {
		msg += "; stopped early by budget"
	}

	if len(r.Results) > 0 {
		best := r.Results[0].Result
		if best.Sharpe.IsSome() {
			msg += fmt.Sprintf("; best sharpe %.2f return %.2f%%", best.Sharpe.Unwrap(), best.TotalReturnPct)
		} else {
			msg += fmt.Sprintf("; best return %.2f%%", best.TotalReturnPct)
		}
	}

	return msg
}
