package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,
		stdDev: 2.0,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

func (bb *BollingerBands) MinCandles() int {
	return bb.period
}

func (bb *BollingerBands) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < bb.MinCandles() {
		return out
	}

	closes := types.Closes(tail(candles, bb.period))
	middle := sma(closes)
	sd := populationStdDev(closes, middle)

	out.Bollinger = optional.Some(types.BollingerValue{
		Upper:  middle + bb.stdDev*sd,
		Middle: middle,
		Lower:  middle - bb.stdDev*sd,
	})

	return out
}
