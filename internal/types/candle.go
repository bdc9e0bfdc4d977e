package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// Timeframe is the bar width of a candle series.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

var timeframeDurations = map[Timeframe]time.Duration{
	Timeframe1m:  time.Minute,
	Timeframe5m:  5 * time.Minute,
	Timeframe15m: 15 * time.Minute,
	Timeframe30m: 30 * time.Minute,
	Timeframe1h:  time.Hour,
	Timeframe4h:  4 * time.Hour,
	Timeframe1d:  24 * time.Hour,
}

// Duration returns the bar width. It fails for unknown timeframes.
func (t Timeframe) Duration() (time.Duration, error) {
	d, ok := timeframeDurations[t]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q", t)
	}

	return d, nil
}

// Candle is one OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Open      float64   `json:"open" yaml:"open"`
	High      float64   `json:"high" yaml:"high"`
	Low       float64   `json:"low" yaml:"low"`
	Close     float64   `json:"close" yaml:"close"`
	Volume    float64   `json:"volume" yaml:"volume"`
}

// Validate checks that the bar is internally consistent:
// positive finite prices, high >= low, open and close inside [low, high].
func (c Candle) Validate() error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return errors.Newf(errors.ErrCodeInvalidCandles, "candle at %s has non-positive or non-finite price", c.Timestamp.Format(time.RFC3339))
		}
	}

	if c.Volume < 0 || math.IsNaN(c.Volume) {
		return errors.Newf(errors.ErrCodeInvalidCandles, "candle at %s has invalid volume %f", c.Timestamp.Format(time.RFC3339), c.Volume)
	}

	if c.High < c.Low {
		return errors.Newf(errors.ErrCodeInvalidCandles, "candle at %s has high %f below low %f", c.Timestamp.Format(time.RFC3339), c.High, c.Low)
	}

	if c.Open < c.Low || c.Open > c.High || c.Close < c.Low || c.Close > c.High {
		return errors.Newf(errors.ErrCodeInvalidCandles, "candle at %s has open/close outside its range", c.Timestamp.Format(time.RFC3339))
	}

	return nil
}

// ValidateSeries checks every candle and that timestamps strictly increase.
func ValidateSeries(candles []Candle) error {
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return err
		}

		if i > 0 && !c.Timestamp.After(candles[i-1].Timestamp) {
			return errors.Newf(errors.ErrCodeInvalidCandles, "candle %d timestamp %s is not after %s",
				i, c.Timestamp.Format(time.RFC3339), candles[i-1].Timestamp.Format(time.RFC3339))
		}
	}

	return nil
}

// Closes extracts the close prices of a series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}

	return out
}
