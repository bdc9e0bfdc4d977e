package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// ADX is the Average Directional Index.
type ADX struct {
	period int
}

func NewADX() Indicator {
	return &ADX{period: 14}
}

func (a *ADX) Name() types.IndicatorType {
	return types.IndicatorTypeADX
}

// Config configures the ADX indicator. Expected parameters: period (int).
func (a *ADX) Config(params ...any) error {
	period, err := periodParam(params, 0, "period")
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

// MinCandles yields period directional movements for the first smoothing
// and period DX values for the ADX average.
func (a *ADX) MinCandles() int {
	return 2 * a.period
}

func (a *ADX) Compute(candles []types.Candle) types.Indicators {
	var out types.Indicators
	if len(candles) < a.MinCandles() {
		return out
	}

	n := len(candles) - 1
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)

	for i := 1; i < len(candles); i++ {
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low

		if up > down && up > 0 {
			plusDM[i-1] = up
		}

		if down > up && down > 0 {
			minusDM[i-1] = down
		}

		tr[i-1] = trueRange(candles[i], candles[i-1].Close)
	}

	p := float64(a.period)
	smoothedTR := sum(tr[:a.period])
	smoothedPlus := sum(plusDM[:a.period])
	smoothedMinus := sum(minusDM[:a.period])

	dx := make([]float64, 0, n-a.period+1)
	dx = append(dx, directionalIndex(smoothedPlus, smoothedMinus, smoothedTR))

	for i := a.period; i < n; i++ {
		smoothedTR = smoothedTR - smoothedTR/p + tr[i]
		smoothedPlus = smoothedPlus - smoothedPlus/p + plusDM[i]
		smoothedMinus = smoothedMinus - smoothedMinus/p + minusDM[i]
		dx = append(dx, directionalIndex(smoothedPlus, smoothedMinus, smoothedTR))
	}

	out.ADX = optional.Some(wilderAverage(dx, a.period))

	return out
}

func directionalIndex(plusDM, minusDM, tr float64) float64 {
	if tr == 0 {
		return 0
	}

	plusDI := 100 * plusDM / tr
	minusDI := 100 * minusDM / tr

	if plusDI+minusDI == 0 {
		return 0
	}

	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}

	return total
}
