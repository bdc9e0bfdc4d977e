package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// RiskLimits bounds exposure per position and per day. Percentages are in 0..100.
// A nil pointer disables the corresponding exit rule.
type RiskLimits struct {
	MaxPositionPct            float64  `yaml:"max_position_pct" json:"maxPositionPct" validate:"gte=0,lte=100" jsonschema:"title=Max position size (% of equity)"`
	MaxDailyLossPct           float64  `yaml:"max_daily_loss_pct" json:"maxDailyLossPct" validate:"gte=0,lte=100" jsonschema:"title=Max daily loss (% of day-start equity); 0 disables"`
	StopLossPct               *float64 `yaml:"stop_loss_pct,omitempty" json:"stopLossPct,omitempty" validate:"omitempty,gt=0,lte=100"`
	TakeProfitPct             *float64 `yaml:"take_profit_pct,omitempty" json:"takeProfitPct,omitempty" validate:"omitempty,gt=0,lte=100"`
	TrailingStopPct           *float64 `yaml:"trailing_stop_pct,omitempty" json:"trailingStopPct,omitempty" validate:"omitempty,gt=0,lte=100"`
	TrailingStopActivationPct *float64 `yaml:"trailing_stop_activation_pct,omitempty" json:"trailingStopActivationPct,omitempty" validate:"omitempty,gte=0,lte=100"`
}

var riskValidator = validator.New()

// Validate checks the ranges of every limit.
func (r RiskLimits) Validate() error {
	if err := riskValidator.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRiskLimits, "invalid risk limits", err)
	}

	return nil
}

func (r RiskLimits) StopLoss() optional.Option[float64] {
	return optionOf(r.StopLossPct)
}

func (r RiskLimits) TakeProfit() optional.Option[float64] {
	return optionOf(r.TakeProfitPct)
}

func (r RiskLimits) TrailingStop() optional.Option[float64] {
	return optionOf(r.TrailingStopPct)
}

// TrailingActivation defaults to 0, arming the trailing stop as soon as the position is open.
func (r RiskLimits) TrailingActivation() float64 {
	return optionOf(r.TrailingStopActivationPct).TakeOr(0)
}

// DailyBreakerEnabled reports whether a daily loss limit applies.
func (r RiskLimits) DailyBreakerEnabled() bool {
	return r.MaxDailyLossPct > 0
}

func optionOf(v *float64) optional.Option[float64] {
	if v == nil {
		return optional.None[float64]()
	}

	return optional.Some(*v)
}

// Float returns a pointer to v, for building optional limits.
func Float(v float64) *float64 {
	return &v
}
