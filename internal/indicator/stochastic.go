package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// Stochastic is the stochastic oscillator: %K over kPeriod candles, %D the SMA of the last dPeriod %K values.
type Stochastic struct {
	kPeriod int
	dPeriod int
}

func NewStochastic() Indicator {
	return &Stochastic{kPeriod: 14, dPeriod: 3}
}

func (s *Stochastic) Name() types.IndicatorType {
	return types.IndicatorTypeStochastic
}

// Config configures the oscillator. Expected parameters: kPeriod (int), dPeriod (int).
func (s *Stochastic) Config(params ...any) error {
	k, err := periodParam(params, 0, "kPeriod")
	if err != nil {
		return err
	}

	d, err := periodParam(params, 1, "dPeriod")
	if err != nil {
		return err
	}

	if d > k {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "dPeriod %d must not exceed kPeriod %d", d, k)
	}

	s.kPeriod = k
	s.dPeriod = d

	return nil
}

func (s *Stochastic) MinCandles() int {
	return s.kPeriod + s.dPeriod - 1
}

func (s *Stochastic) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < s.MinCandles() {
		return out
	}

	ks := make([]float64, 0, s.dPeriod)
	for end := len(candles) - s.dPeriod + 1; end <= len(candles); end++ {
		window := candles[end-s.kPeriod : end]
		ks = append(ks, percentK(window))
	}

	out.Stochastic = optional.Some(types.StochasticValue{
		K: ks[len(ks)-1],
		D: sma(ks),
	})

	return out
}

// percentK places the last close within the window's range; a flat range is 50.
func percentK(window []types.Candle) float64 {
	lowest, highest := priceRange(window)
	if highest == lowest {
		return 50
	}

	return 100 * (window[len(window)-1].Close - lowest) / (highest - lowest)
}
