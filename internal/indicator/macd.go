package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fast, err := periodParam(params, 0, "fastPeriod")
	if err != nil {
		return err
	}

	slow, err := periodParam(params, 1, "slowPeriod")
	if err != nil {
		return err
	}

	signal, err := periodParam(params, 2, "signalPeriod")
	if err != nil {
		return err
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

func (m *MACD) MinCandles() int {
	return 2
}

func (m *MACD) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < m.MinCandles() {
		return out
	}

	closes := types.Closes(candles)
	fast := emaSeries(closes, m.fastPeriod)
	slow := emaSeries(closes, m.slowPeriod)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = fast[i] - slow[i]
	}

	macd := macdSeries[len(macdSeries)-1]
	signal := emaLast(macdSeries, m.signalPeriod)

	out.MACD = optional.Some(types.MACDValue{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	})

	return out
}
