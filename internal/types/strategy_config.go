package types

import (
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

type AIMode string

const (
	// AIModeOff never consults the external provider.
	AIModeOff AIMode = "off"
	// AIModeAssist consults the provider only when the fast decision is weak.
	AIModeAssist AIMode = "assist"
	// AIModeFull consults the provider on every step.
	AIModeFull AIMode = "full"
)

const (
	DefaultAIConfidenceThreshold = 0.6
	DefaultAITimeoutMs           = 5000
	DefaultMinConfidence         = 0.5
)

type AIConfig struct {
	Mode AIMode `yaml:"mode" json:"mode,omitempty" validate:"omitempty,oneof=off assist full" jsonschema:"enum=off,enum=assist,enum=full,default=off"`
	// Endpoint is the base URL of the remote decision provider.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,url"`
	// ConfidenceThreshold is the fast-decision confidence under which assist mode asks the provider.
	ConfidenceThreshold float64 `yaml:"confidence_threshold,omitempty" json:"confidenceThreshold,omitempty" validate:"gte=0,lte=1" jsonschema:"default=0.6"`
	// MinTradesForAI skips the provider until this many trades have closed.
	MinTradesForAI int `yaml:"min_trades_for_ai,omitempty" json:"minTradesForAi,omitempty" validate:"gte=0"`
	TimeoutMs      int `yaml:"timeout_ms,omitempty" json:"timeoutMs,omitempty" validate:"gte=0" jsonschema:"default=5000"`
}

func (a AIConfig) EffectiveMode() AIMode {
	if a.Mode == "" {
		return AIModeOff
	}

	return a.Mode
}

func (a AIConfig) EffectiveConfidenceThreshold() float64 {
	if a.ConfidenceThreshold <= 0 {
		return DefaultAIConfidenceThreshold
	}

	return a.ConfidenceThreshold
}

func (a AIConfig) EffectiveTimeoutMs() int {
	if a.TimeoutMs <= 0 {
		return DefaultAITimeoutMs
	}

	return a.TimeoutMs
}

// Thresholds are the pass criteria of the profitability gate.
// Nil fields fall back to DefaultThresholds.
type Thresholds struct {
	MinSharpe       *float64 `yaml:"min_sharpe,omitempty" json:"minSharpe,omitempty"`
	MinAvgReturnPct *float64 `yaml:"min_avg_return_pct,omitempty" json:"minAvgReturnPct,omitempty"`
	MinWinRate      *float64 `yaml:"min_win_rate,omitempty" json:"minWinRate,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxDrawdownPct  *float64 `yaml:"max_drawdown_pct,omitempty" json:"maxDrawdownPct,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ResolvedThresholds has every gate criterion filled in.
type ResolvedThresholds struct {
	MinSharpe       float64 `json:"minSharpe"`
	MinAvgReturnPct float64 `json:"minAvgReturnPct"`
	MinWinRate      float64 `json:"minWinRate"`
	MaxDrawdownPct  float64 `json:"maxDrawdownPct"`
}

func DefaultThresholds() ResolvedThresholds {
	return ResolvedThresholds{
		MinSharpe:       1.0,
		MinAvgReturnPct: 5,
		MinWinRate:      0.5,
		MaxDrawdownPct:  20,
	}
}

func (t Thresholds) Resolve() ResolvedThresholds {
	r := DefaultThresholds()
	r.MinSharpe = optionOf(t.MinSharpe).TakeOr(r.MinSharpe)
	r.MinAvgReturnPct = optionOf(t.MinAvgReturnPct).TakeOr(r.MinAvgReturnPct)
	r.MinWinRate = optionOf(t.MinWinRate).TakeOr(r.MinWinRate)
	r.MaxDrawdownPct = optionOf(t.MaxDrawdownPct).TakeOr(r.MaxDrawdownPct)

	return r
}

// StrategyConfig describes one tradeable strategy.
type StrategyConfig struct {
	ID        string    `yaml:"id" json:"id" validate:"required" jsonschema:"title=Strategy ID"`
	Name      string    `yaml:"name" json:"name" jsonschema:"title=Strategy name"`
	BaseAsset string    `yaml:"base_asset" json:"baseAsset" jsonschema:"title=Quote/base asset,example=USDT"`
	Universe  []string  `yaml:"universe" json:"universe" validate:"required,min=1,dive,required" jsonschema:"title=Symbols the strategy may trade"`
	Timeframe Timeframe `yaml:"timeframe" json:"timeframe" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d" jsonschema:"enum=1m,enum=5m,enum=15m,enum=30m,enum=1h,enum=4h,enum=1d"`
	ChainID   int64     `yaml:"chain_id,omitempty" json:"chainId,omitempty"`
	// MinConfidence turns any non-flat decision below it into flat. Zero uses DefaultMinConfidence.
	MinConfidence float64          `yaml:"min_confidence,omitempty" json:"minConfidence,omitempty" validate:"gte=0,lte=1" jsonschema:"default=0.5"`
	RiskLimits    RiskLimits       `yaml:"risk_limits" json:"riskLimits" validate:"-"`
	Indicators    IndicatorPeriods `yaml:"indicators,omitempty" json:"indicators,omitempty"`
	Thresholds    Thresholds       `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	AI            AIConfig         `yaml:"ai,omitempty" json:"ai,omitempty"`
}

var strategyValidator = validator.New()

// Validate runs the struct tag rules and the cross-field checks.
// Risk limits are validated separately and report ErrCodeInvalidRiskLimits.
func (c StrategyConfig) Validate() error {
	if err := strategyValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid strategy config", err)
	}

	if err := c.RiskLimits.Validate(); err != nil {
		return err
	}

	p := c.Indicators.WithDefaults()
	if p.StochasticD > p.StochasticK {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "stochastic %%D period %d exceeds %%K period %d", p.StochasticD, p.StochasticK)
	}

	return nil
}

func (c StrategyConfig) EffectiveMinConfidence() float64 {
	if c.MinConfidence <= 0 {
		return DefaultMinConfidence
	}

	return c.MinConfidence
}

// Periods returns the indicator periods with defaults applied.
func (c StrategyConfig) Periods() IndicatorPeriods {
	return c.Indicators.WithDefaults()
}

// Clone returns a deep copy so callers can mutate the result freely.
func (c StrategyConfig) Clone() StrategyConfig {
	out := c
	out.Universe = slices.Clone(c.Universe)
	out.RiskLimits.StopLossPct = clonePtr(c.RiskLimits.StopLossPct)
	out.RiskLimits.TakeProfitPct = clonePtr(c.RiskLimits.TakeProfitPct)
	out.RiskLimits.TrailingStopPct = clonePtr(c.RiskLimits.TrailingStopPct)
	out.RiskLimits.TrailingStopActivationPct = clonePtr(c.RiskLimits.TrailingStopActivationPct)
	out.Thresholds.MinSharpe = clonePtr(c.Thresholds.MinSharpe)
	out.Thresholds.MinAvgReturnPct = clonePtr(c.Thresholds.MinAvgReturnPct)
	out.Thresholds.MinWinRate = clonePtr(c.Thresholds.MinWinRate)
	out.Thresholds.MaxDrawdownPct = clonePtr(c.Thresholds.MaxDrawdownPct)

	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
