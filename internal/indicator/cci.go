package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

const cciConstant = 0.015

// CCI is the Commodity Channel Index on typical price.
type CCI struct {
	period int
}

func NewCCI() Indicator {
	return &CCI{period: 20}
}

func (c *CCI) Name() types.IndicatorType {
	return types.IndicatorTypeCCI
}

// Config configures the indicator. Expected parameters: period (int).
func (c *CCI) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	c.period = period

	return nil
}

func (c *CCI) MinCandles() int {
	return c.period
}

func (c *CCI) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < c.MinCandles() {
		return out
	}

	window := tail(candles, c.period)
	typical := make([]float64, len(window))

	for i, candle := range window {
		typical[i] = (candle.High + candle.Low + candle.Close) / 3
	}

	mean := sma(typical)

	deviation := 0.0
	for _, tp := range typical {
		deviation += math.Abs(tp - mean)
	}

	deviation /= float64(len(typical))

	if deviation == 0 {
		out.CCI = optional.Some(0.0)

		return out
	}

	out.CCI = optional.Some((typical[len(typical)-1] - mean) / (cciConstant * deviation))

	return out
}
