package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// EMA is the exponential moving average of closes. The same type backs the
// fast and the slow average of the snapshot.
type EMA struct {
	period int
	fast   bool
}

func NewFastEMA() Indicator {
	return &EMA{period: 12, fast: true}
}

func NewSlowEMA() Indicator {
	return &EMA{period: 26, fast: false}
}

func (e *EMA) Name() types.IndicatorType {
	if e.fast {
		return types.IndicatorTypeEMAFast
	}

	return types.IndicatorTypeEMASlow
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// MinCandles is 1: shorter windows fall back to the SMA of what is available.
func (e *EMA) MinCandles() int {
	return 1
}

func (e *EMA) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) == 0 {
		return out
	}

	value := optional.Some(emaLast(types.Closes(candles), e.period))
	if e.fast {
		out.EMAFast = value
	} else {
		out.EMASlow = value
	}

	return out
}
