package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// ATR is the Average True Range with Wilder smoothing.
type ATR struct {
	period int
}

func NewATR() Indicator {
	return &ATR{period: 14}
}

func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

func (a *ATR) MinCandles() int {
	return a.period + 1
}

func (a *ATR) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < a.MinCandles() {
		return out
	}

	out.ATR = optional.Some(wilderAverage(trueRanges(candles), a.period))

	return out
}

// trueRanges has one entry per candle after the first.
func trueRanges(candles []types.Candle) []float64 {
	out := make([]float64, 0, len(candles)-1)

	for i := 1; i < len(candles); i++ {
		out = append(out, trueRange(candles[i], candles[i-1].Close))
	}

	return out
}

func trueRange(c types.Candle, prevClose float64) float64 {
	return math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
}

// wilderAverage seeds with the SMA of the first period values and then applies
// avg = (avg*(period-1) + v) / period. values must hold at least period entries.
func wilderAverage(values []float64, period int) float64 {
	avg := sma(values[:period])
	for _, v := range values[period:] {
		avg = (avg*float64(period-1) + v) / float64(period)
	}

	return avg
}
