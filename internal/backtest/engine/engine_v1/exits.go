package engine

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// exit is a triggered risk exit: the level it fills at and why.
type exit struct {
	price  float64
	reason types.ExitReason
}

// adverseFill reports whether the candle reached a level against the position,
// and the fill: the level itself, or the open when the candle gapped through it.
func adverseFill(side types.PositionSide, candle types.Candle, level float64) (float64, bool) {
	if side == types.PositionSideShort {
		if candle.High < level {
			return 0, false
		}

		return math.Max(candle.Open, level), true
	}

	if candle.Low > level {
		return 0, false
	}

	return math.Min(candle.Open, level), true
}

// favourableFill is adverseFill for levels in the position's favour.
func favourableFill(side types.PositionSide, candle types.Candle, level float64) (float64, bool) {
	if side == types.PositionSideShort {
		if candle.Low > level {
			return 0, false
		}

		return math.Min(candle.Open, level), true
	}

	if candle.High < level {
		return 0, false
	}

	return math.Max(candle.Open, level), true
}

// offset moves price by pct percent, in the position's favour when favourable is true.
func offset(side types.PositionSide, price, pct float64, favourable bool) float64 {
	dir := side.Direction()
	if !favourable {
		dir = -dir
	}

	return price * (1 + dir*pct/100)
}

// checkExits evaluates the risk exits of pos against candle in priority order:
// stop loss, take profit, trailing stop, then the daily loss breaker.
// The trailing stop uses the high-water mark from before this candle.
func checkExits(pos types.Position, candle types.Candle, limits types.RiskLimits, breaker optional.Option[float64]) optional.Option[exit] {
	if sl := limits.StopLoss(); sl.IsSome() {
		level := offset(pos.Side, pos.EntryPrice, sl.Unwrap(), false)
		if fill, ok := adverseFill(pos.Side, candle, level); ok {
			return optional.Some(exit{price: fill, reason: types.ExitReasonStopLoss})
		}
	}

	if tp := limits.TakeProfit(); tp.IsSome() {
		level := offset(pos.Side, pos.EntryPrice, tp.Unwrap(), true)
		if fill, ok := favourableFill(pos.Side, candle, level); ok {
			return optional.Some(exit{price: fill, reason: types.ExitReasonTakeProfit})
		}
	}

	if trail := limits.TrailingStop(); trail.IsSome() && pos.ReturnPct(pos.HighWaterMark) >= limits.TrailingActivation() {
		level := offset(pos.Side, pos.HighWaterMark, trail.Unwrap(), false)
		if fill, ok := adverseFill(pos.Side, candle, level); ok {
			return optional.Some(exit{price: fill, reason: types.ExitReasonTrailingStop})
		}
	}

	if breaker.IsSome() {
		if fill, ok := adverseFill(pos.Side, candle, breaker.Unwrap()); ok {
			return optional.Some(exit{price: fill, reason: types.ExitReasonDailyLoss})
		}
	}

	return optional.None[exit]()
}
