// Package tracker follows a strategy's profitability checks over time.
//
// The trend compares the metric averages of the older and newer half of the history.
// The forecast is a straight-line extrapolation of progress toward the gate thresholds.
// It is an estimate only and never stands in for the gate's pass/fail verdict.
package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/rxtech-lab/argo-gate/pkg/store"
	"go.uber.org/zap"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	// TrendUnknown is reported with fewer than two checks.
	TrendUnknown Trend = "unknown"
)

const (
	// ForecastWindow is the number of most recent checks the forecast line is fitted to.
	ForecastWindow = 5
	// majority of the four metrics needed to call a trend
	trendMajority = 3
)

// MetricTrend compares one metric across the two halves of the history.
type MetricTrend struct {
	Name       string  `json:"name"`
	FirstHalf  float64 `json:"firstHalf"`
	SecondHalf float64 `json:"secondHalf"`
	// Defined is false when either half has no value, e.g. no Sharpe.
	Defined   bool `json:"defined"`
	Improving bool `json:"improving"`
	Declining bool `json:"declining"`
}

// Forecast is a linear estimate of when the strategy reaches 100% progress.
type Forecast struct {
	SlopePerDay     float64   `json:"slopePerDay"`
	DaysToPass      float64   `json:"daysToPass"`
	EstimatedPassAt time.Time `json:"estimatedPassAt"`
	Points          int       `json:"points"`
}

type Report struct {
	StrategyID string        `json:"strategyId"`
	Checks     int           `json:"checks"`
	Trend      Trend         `json:"trend"`
	Metrics    []MetricTrend `json:"metrics"`
	// Progress is the composite progress of the newest check, in percent.
	Progress     float64                   `json:"progress"`
	LatestPassed bool                      `json:"latestPassed"`
	Forecast     optional.Option[Forecast] `json:"forecast"`
	Message      string                    `json:"message"`
}

// Progress is the mean of the four capped ratios of a check to its targets, in percent.
func Progress(c types.ProfitabilityCheck, t types.ResolvedThresholds) float64 {
	sharpe := 0.0
	if c.Sharpe.IsSome() {
		sharpe = ratio(c.Sharpe.Unwrap(), t.MinSharpe)
	}

	drawdown := 1.0
	if c.MaxDrawdown > 0 {
		drawdown = capRatio(t.MaxDrawdownPct / c.MaxDrawdown)
	}

	sum := sharpe + ratio(c.AvgReturn, t.MinAvgReturnPct) + ratio(c.WinRate, t.MinWinRate) + drawdown

	return sum / 4 * 100
}

// ratio is value/target capped to [0, 1]. A non-positive target counts as met by any value above it.
func ratio(value, target float64) float64 {
	if target <= 0 {
		if value > target {
			return 1
		}

		return 0
	}

	return capRatio(value / target)
}

func capRatio(r float64) float64 {
	return math.Max(0, math.Min(1, r))
}

// Analyze builds the report for checks ordered oldest first.
func Analyze(checks []types.ProfitabilityCheck, t types.ResolvedThresholds) Report {
	report := Report{
		Checks:   len(checks),
		Trend:    TrendUnknown,
		Forecast: optional.None[Forecast](),
	}

	if len(checks) == 0 {
		report.Message = "no profitability checks recorded"
		return report
	}

	latest := checks[len(checks)-1]
	report.StrategyID = latest.StrategyID
	report.LatestPassed = latest.Passed
	report.Progress = Progress(latest, t)

	if len(checks) < 2 {
		report.Message = fmt.Sprintf("need at least 2 checks for a trend; progress %.1f%%", report.Progress)
		return report
	}

	report.Metrics = compareHalves(checks)
	report.Trend = classify(report.Metrics)

	if report.Trend == TrendImproving {
		report.Forecast = forecast(checks, t)
	}

	report.Message = describe(report)

	return report
}

func compareHalves(checks []types.ProfitabilityCheck) []MetricTrend {
	mid := len(checks) / 2
	first, second := checks[:mid], checks[mid:]

	metric := func(name string, value func(types.ProfitabilityCheck) optional.Option[float64], lowerIsBetter bool) MetricTrend {
		a, aok := average(first, value)
		b, bok := average(second, value)

		m := MetricTrend{Name: name, FirstHalf: a, SecondHalf: b, Defined: aok && bok}
		if !m.Defined {
			return m
		}

		if lowerIsBetter {
			m.Improving, m.Declining = b < a, b > a
		} else {
			m.Improving, m.Declining = b > a, b < a
		}

		return m
	}

	return []MetricTrend{
		metric("sharpe", func(c types.ProfitabilityCheck) optional.Option[float64] { return c.Sharpe }, false),
		metric("avg_return", func(c types.ProfitabilityCheck) optional.Option[float64] { return optional.Some(c.AvgReturn) }, false),
		metric("win_rate", func(c types.ProfitabilityCheck) optional.Option[float64] { return optional.Some(c.WinRate) }, false),
		metric("max_drawdown", func(c types.ProfitabilityCheck) optional.Option[float64] { return optional.Some(c.MaxDrawdown) }, true),
	}
}

func average(checks []types.ProfitabilityCheck, value func(types.ProfitabilityCheck) optional.Option[float64]) (float64, bool) {
	sum, n := 0.0, 0

	for _, c := range checks {
		if v := value(c); v.IsSome() {
			sum += v.Unwrap()
			n++
		}
	}

	if n == 0 {
		return 0, false
	}

	return sum / float64(n), true
}

func classify(metrics []MetricTrend) Trend {
	improving, declining := 0, 0

	for _, m := range metrics {
		if m.Improving {
			improving++
		}

		if m.Declining {
			declining++
		}
	}

	switch {
	case improving >= trendMajority:
		return TrendImproving
	case declining >= trendMajority:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// forecast fits progress against days over the newest ForecastWindow checks.
func forecast(checks []types.ProfitabilityCheck, t types.ResolvedThresholds) optional.Option[Forecast] {
	recent := checks[max(0, len(checks)-ForecastWindow):]
	if len(recent) < 2 {
		return optional.None[Forecast]()
	}

	origin := recent[0].CheckedAt
	xs := make([]float64, len(recent))
	ys := make([]float64, len(recent))

	for i, c := range recent {
		xs[i] = c.CheckedAt.Sub(origin).Hours() / 24
		ys[i] = Progress(c, t)
	}

	slope, intercept, ok := leastSquares(xs, ys)
	if !ok || slope <= 0 {
		return optional.None[Forecast]()
	}

	last := xs[len(xs)-1]
	fitted := intercept + slope*last
	days := math.Max(0, (100-fitted)/slope)

	return optional.Some(Forecast{
		SlopePerDay:     slope,
		DaysToPass:      days,
		EstimatedPassAt: recent[len(recent)-1].CheckedAt.Add(time.Duration(days * 24 * float64(time.Hour))),
		Points:          len(recent),
	})
}

// leastSquares returns the slope and intercept of the best-fit line. ok is false when all xs are equal.
func leastSquares(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(xs))

	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}

	denom := n*sxx - sx*sx
	if denom == 0 {
		return 0, 0, false
	}

	slope = (n*sxy - sx*sy) / denom
	intercept = (sy - slope*sx) / n

	return slope, intercept, true
}

func describe(r Report) string {
	msg := fmt.Sprintf("trend %s over %d checks; progress %.1f%%", r.Trend, r.Checks, r.Progress)

	if r.Forecast.IsSome() {
		f := r.Forecast.Unwrap()
		msg += fmt.Sprintf("; estimated %.1f days to pass (linear estimate, not a gate verdict)", f.DaysToPass)
	}

	return msg
}

// Tracker reads check history from a store.
type Tracker struct {
	store store.CheckStore
	log   *logger.Logger
}

func NewTracker(s store.CheckStore, log *logger.Logger) *Tracker {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Tracker{store: s, log: log.Named("tracker")}
}

// Track analyzes the checks of the last days days of cfg.
func (t *Tracker) Track(ctx context.Context, cfg types.StrategyConfig, days int) (Report, error) {
	if cfg.ID == "" {
		return Report{}, errors.New(errors.ErrCodeMissingParameter, "strategy id is required")
	}

	checks, err := t.store.GetHistory(ctx, cfg.ID, days)
	if err != nil {
		return Report{}, errors.Wrap(errors.ErrCodeHistoryFailed, "failed to read check history", err)
	}

	report := Analyze(checks, cfg.Thresholds.Resolve())
	report.StrategyID = cfg.ID

	t.log.Info("Tracked profitability",
		zap.String("strategy", cfg.ID),
		zap.Int("checks", report.Checks),
		zap.String("trend", string(report.Trend)),
		zap.Float64("progress", report.Progress),
	)

	return report, nil
}
