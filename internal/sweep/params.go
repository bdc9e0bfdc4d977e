package sweep

import (
	"math"
	"slices"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/shopspring/decimal"
)

// Tunable parameter names.
const (
	ParamStopLossPct               = "stop_loss_pct"
	ParamTakeProfitPct             = "take_profit_pct"
	ParamTrailingStopPct           = "trailing_stop_pct"
	ParamTrailingStopActivationPct = "trailing_stop_activation_pct"
	ParamMaxPositionPct            = "max_position_pct"
	ParamMaxDailyLossPct           = "max_daily_loss_pct"
	ParamEMAFast                   = "ema_fast"
	ParamEMASlow                   = "ema_slow"
	ParamRSIPeriod                 = "rsi_period"
	ParamBollingerPeriod           = "bollinger_period"
	ParamMomentumPeriod            = "momentum_period"
	ParamConfidenceThreshold       = "confidence_threshold"
)

// maxGridSize bounds the cartesian product of one sweep.
const maxGridSize = 100_000

type setter func(cfg *types.StrategyConfig, v float64) error

var tunables = map[string]setter{
	ParamStopLossPct: func(cfg *types.StrategyConfig, v float64) error {
		cfg.RiskLimits.StopLossPct = types.Float(v)
		return nil
	},
	ParamTakeProfitPct: func(cfg *types.StrategyConfig, v float64) error {
		cfg.RiskLimits.TakeProfitPct = types.Float(v)
		return nil
	},
	ParamTrailingStopPct: func(cfg *types.StrategyConfig, v float64) error {
		cfg.RiskLimits.TrailingStopPct = types.Float(v)
		return nil
	},
	ParamTrailingStopActivationPct: func(cfg *types.StrategyConfig, v float64) error {
		cfg.RiskLimits.TrailingStopActivationPct = types.Float(v)
		return nil
	},
	ParamMaxPositionPct: func(cfg *types.StrategyConfig, v float64) error {
		cfg.RiskLimits.MaxPositionPct = v
		return nil
	},
	ParamMaxDailyLossPct: func(cfg *types.StrategyConfig, v float64) error {
		cfg.RiskLimits.MaxDailyLossPct = v
		return nil
	},
	ParamEMAFast:         periodSetter(func(p *types.IndicatorPeriods) *int { return &p.EMAFast }),
	ParamEMASlow:         periodSetter(func(p *types.IndicatorPeriods) *int { return &p.EMASlow }),
	ParamRSIPeriod:       periodSetter(func(p *types.IndicatorPeriods) *int { return &p.RSI }),
	ParamBollingerPeriod: periodSetter(func(p *types.IndicatorPeriods) *int { return &p.Bollinger }),
	ParamMomentumPeriod:  periodSetter(func(p *types.IndicatorPeriods) *int { return &p.Momentum }),
	ParamConfidenceThreshold: func(cfg *types.StrategyConfig, v float64) error {
		cfg.MinConfidence = v
		return nil
	},
}

func periodSetter(field func(p *types.IndicatorPeriods) *int) setter {
	return func(cfg *types.StrategyConfig, v float64) error {
		if v < 1 || v != math.Trunc(v) {
			return errors.Newf(errors.ErrCodeInvalidParamRange, "period %v is not a positive whole number", v)
		}

		*field(&cfg.Indicators) = int(v)

		return nil
	}
}

// Tunables lists the parameter names a sweep may vary, sorted.
func Tunables() []string {
	names := make([]string, 0, len(tunables))
	for name := range tunables {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Values expands r into min, min+step, ... up to and including max.
// Stepping uses decimal arithmetic so 0.1 steps land exactly on their grid points.
func Values(r types.ParamRange) ([]float64, error) {
	if r.Step <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParamRange, "step must be positive, got %v", r.Step)
	}

	if r.Max < r.Min {
		return nil, errors.Newf(errors.ErrCodeInvalidParamRange, "max %v is below min %v", r.Max, r.Min)
	}

	lo := decimal.NewFromFloat(r.Min)
	hi := decimal.NewFromFloat(r.Max)
	step := decimal.NewFromFloat(r.Step)

	count := hi.Sub(lo).Div(step).Floor().IntPart() + 1
	if count > maxGridSize {
		return nil, errors.Newf(errors.ErrCodeInvalidParamRange, "range %v..%v step %v has %d values, limit is %d",
			r.Min, r.Max, r.Step, count, maxGridSize)
	}

	values := make([]float64, 0, count)
	for v := lo; v.LessThanOrEqual(hi); v = v.Add(step) {
		values = append(values, v.InexactFloat64())
	}

	return values, nil
}

// Grid returns the cartesian product of ranges. Names are iterated in sorted order and the
// last name varies fastest, so the grid order is deterministic.
func Grid(ranges map[string]types.ParamRange) ([]map[string]float64, error) {
	if len(ranges) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParamRange, "no parameter ranges given")
	}

	names := make([]string, 0, len(ranges))
	for name := range ranges {
		if _, ok := tunables[name]; !ok {
			return nil, errors.Newf(errors.ErrCodeUnknownParameter, "unknown sweep parameter %q", name)
		}

		names = append(names, name)
	}

	slices.Sort(names)

	axes := make([][]float64, len(names))
	size := 1

	for i, name := range names {
		values, err := Values(ranges[name])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParamRange, err, "parameter %s", name)
		}

		axes[i] = values
		size *= len(values)

		if size > maxGridSize {
			return nil, errors.Newf(errors.ErrCodeInvalidParamRange, "grid exceeds %d combinations", maxGridSize)
		}
	}

	grid := make([]map[string]float64, 0, size)
	index := make([]int, len(names))

	for {
		point := make(map[string]float64, len(names))
		for i, name := range names {
			point[name] = axes[i][index[i]]
		}

		grid = append(grid, point)

		// odometer increment, last axis fastest
		i := len(index) - 1
		for ; i >= 0; i-- {
			index[i]++
			if index[i] < len(axes[i]) {
				break
			}

			index[i] = 0
		}

		if i < 0 {
			return grid, nil
		}
	}
}

// Apply returns a copy of base with params set.
func Apply(base types.StrategyConfig, params map[string]float64) (types.StrategyConfig, error) {
	cfg := base.Clone()

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		set, ok := tunables[name]
		if !ok {
			return cfg, errors.Newf(errors.ErrCodeUnknownParameter, "unknown sweep parameter %q", name)
		}

		if err := set(&cfg, params[name]); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}
