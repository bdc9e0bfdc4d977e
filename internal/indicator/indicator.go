package indicator

import (
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// Indicator computes one technical indicator from a candle window.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator's periods. See each implementation for the expected parameters.
	Config(params ...any) error
	// MinCandles is the shortest window for which Compute yields a value.
	MinCandles() int
	// Compute returns a snapshot with only this indicator's fields set.
	// Fields stay None when the window is shorter than MinCandles.
	Compute(candles []types.Candle) types.Indicators
}
