package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// sma is the arithmetic mean of values, 0 for an empty slice.
func sma(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// emaSeries returns, for every index i, the EMA of values[:i+1].
// The EMA is seeded with the SMA of the first period values, and while fewer
// than period values are available it is the SMA of what is there.
// Alpha is 2/(period+1), matching pandas ewm(span=period, adjust=False).
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || period <= 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	sum := 0.0

	for i, v := range values {
		if i < period {
			sum += v
			out[i] = sum / float64(i+1)

			continue
		}

		out[i] = v*alpha + out[i-1]*(1-alpha)
	}

	return out
}

// emaLast is the EMA of the whole slice.
func emaLast(values []float64, period int) float64 {
	series := emaSeries(values, period)
	if len(series) == 0 {
		return 0
	}

	return series[len(series)-1]
}

// populationStdDev is the population standard deviation around m.
func populationStdDev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}

	return math.Sqrt(sum / float64(len(values)))
}

// tail returns the last n elements, or all of them when fewer exist.
func tail[T any](values []T, n int) []T {
	if n >= len(values) {
		return values
	}

	return values[len(values)-n:]
}

// priceRange returns the lowest low and highest high of candles.
func priceRange(candles []types.Candle) (float64, float64) {
	lowest := candles[0].Low
	highest := candles[0].High

	for _, c := range candles[1:] {
		lowest = math.Min(lowest, c.Low)
		highest = math.Max(highest, c.High)
	}

	return lowest, highest
}
