package indicator

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// flatCandles builds candles whose open, high, low and close all equal the given close.
func flatCandles(closes ...float64) []types.Candle {
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		out[i] = types.Candle{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1,
		}
	}

	return out
}

// rangedCandles builds candles with high = close + spread and low = close - spread.
func rangedCandles(spread float64, closes ...float64) []types.Candle {
	out := flatCandles(closes...)
	for i := range out {
		out[i].High = out[i].Close + spread
		out[i].Low = out[i].Close - spread
	}

	return out
}

// waveCandles is a deterministic oscillating uptrend long enough for every default indicator.
func waveCandles(n int) []types.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.3 + 3*math.Sin(float64(i)/3)
	}

	return rangedCandles(1, closes...)
}
