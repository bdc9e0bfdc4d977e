package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// SupportResistance reports the lowest low and highest high of the recent window.
type SupportResistance struct {
	period int
}

func NewSupportResistance() Indicator {
	return &SupportResistance{period: 20}
}

func (s *SupportResistance) Name() types.IndicatorType {
	return types.IndicatorTypeSupportResistance
}

// Config configures the indicator. Expected parameters: period (int).
func (s *SupportResistance) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	s.period = period

	return nil
}

func (s *SupportResistance) MinCandles() int {
	return 1
}

func (s *SupportResistance) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < s.MinCandles() {
		return out
	}

	support, resistance := priceRange(tail(candles, s.period))
	out.Support = optional.Some(support)
	out.Resistance = optional.Some(resistance)

	return out
}
