package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// Volatility is the population standard deviation of close-to-close percent returns.
type Volatility struct {
	period int
}

func NewVolatility() Indicator {
	return &Volatility{period: 20}
}

func (v *Volatility) Name() types.IndicatorType {
	return types.IndicatorTypeVolatility
}

// Config configures the indicator. Expected parameters: period (int), the number of returns.
func (v *Volatility) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	v.period = period

	return nil
}

func (v *Volatility) MinCandles() int {
	return 3
}

func (v *Volatility) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < v.MinCandles() {
		return out
	}

	closes := types.Closes(tail(candles, v.period+1))
	returns := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}

		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1]*100)
	}

	if len(returns) < 2 {
		return out
	}

	out.Volatility = optional.Some(populationStdDev(returns, sma(returns)))

	return out
}
