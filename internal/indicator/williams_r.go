package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// WilliamsR is Williams %R in [-100, 0].
type WilliamsR struct {
	period int
}

func NewWilliamsR() Indicator {
	return &WilliamsR{period: 14}
}

func (w *WilliamsR) Name() types.IndicatorType {
	return types.IndicatorTypeWilliamsR
}

// Config configures the indicator. Expected parameters: period (int).
func (w *WilliamsR) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	w.period = period

	return nil
}

func (w *WilliamsR) MinCandles() int {
	return w.period
}

func (w *WilliamsR) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < w.MinCandles() {
		return out
	}

	window := tail(candles, w.period)
	lowest, highest := priceRange(window)

	if highest == lowest {
		out.WilliamsR = optional.Some(-50.0)

		return out
	}

	last := window[len(window)-1].Close
	out.WilliamsR = optional.Some(-100 * (highest - last) / (highest - lowest))

	return out
}
