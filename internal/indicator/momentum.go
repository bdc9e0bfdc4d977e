package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// Momentum is the percent change of close over period candles.
type Momentum struct {
	period int
}

func NewMomentum() Indicator {
	return &Momentum{period: 10}
}

func (m *Momentum) Name() types.IndicatorType {
	return types.IndicatorTypeMomentum
}

// Config configures the indicator. Expected parameters: period (int).
func (m *Momentum) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

// MinCandles is 2: a shorter window than period+1 measures over the whole window.
func (m *Momentum) MinCandles() int {
	return 2
}

func (m *Momentum) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < m.MinCandles() {
		return out
	}

	window := tail(candles, m.period+1)
	base := window[0].Close

	if base == 0 {
		return out
	}

	out.Momentum = optional.Some((window[len(window)-1].Close - base) / base * 100)

	return out
}
