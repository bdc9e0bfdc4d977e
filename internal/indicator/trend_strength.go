package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// TrendStrength is the least-squares slope of closes, as percent of the mean close per candle.
type TrendStrength struct {
	period int
}

func NewTrendStrength() Indicator {
	return &TrendStrength{period: 20}
}

func (t *TrendStrength) Name() types.IndicatorType {
	return types.IndicatorTypeTrendStrength
}

// Config configures the indicator. Expected parameters: period (int).
func (t *TrendStrength) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	t.period = period

	return nil
}

func (t *TrendStrength) MinCandles() int {
	return 2
}

func (t *TrendStrength) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < t.MinCandles() {
		return out
	}

	closes := types.Closes(tail(candles, t.period))
	mean := sma(closes)

	if mean == 0 {
		return out
	}

	out.TrendStrength = optional.Some(linearSlope(closes) / mean * 100)

	return out
}

// linearSlope fits y = a + b*x with x = 0..n-1 and returns b.
func linearSlope(values []float64) float64 {
	n := float64(len(values))
	meanX := (n - 1) / 2
	meanY := sma(values)

	num := 0.0
	den := 0.0

	for i, y := range values {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}

	if den == 0 {
		return 0
	}

	return num / den
}
