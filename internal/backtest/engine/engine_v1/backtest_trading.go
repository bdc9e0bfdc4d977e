package engine

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/internal/utils"
)

// BacktestTrading fills simulated orders against a BacktestState.
// Fees come from the commission model and slippage is a constant fraction
// applied against the trader on every fill.
type BacktestTrading struct {
	state            *BacktestState
	commission       commission_fee.CommissionFee
	slippage         float64
	decimalPrecision int
}

func NewBacktestTrading(state *BacktestState, commission commission_fee.CommissionFee, slippageRate float64, decimalPrecision int) *BacktestTrading {
	return &BacktestTrading{
		state:            state,
		commission:       commission,
		slippage:         slippageRate,
		decimalPrecision: decimalPrecision,
	}
}

// fillPrice moves price against the trader: buys pay more, sells receive less.
func (b *BacktestTrading) fillPrice(price float64, buy bool) float64 {
	if buy {
		return price * (1 + b.slippage)
	}

	return price * (1 - b.slippage)
}

// OpenPosition commits pct percent of equity to a new position filled at price.
// It returns false when the size rounds down to nothing.
func (b *BacktestTrading) OpenPosition(symbol string, side types.PositionSide, price, pct, equity float64, at time.Time) (types.Position, bool) {
	fill := b.fillPrice(price, side == types.PositionSideLong)

	quantity := utils.CalculateQuantityByPercentage(equity, fill, b.commission, pct)
	quantity = utils.RoundToDecimalPrecision(quantity, b.decimalPrecision)

	if quantity <= 0 {
		return types.Position{}, false
	}

	pos := types.Position{
		Symbol:        symbol,
		Side:          side,
		Size:          quantity,
		EntryPrice:    fill,
		EntryFee:      b.commission.Calculate(quantity, fill),
		EntrySlippage: math.Abs(fill-price) * quantity,
		OpenedAt:      at,
		HighWaterMark: fill,
	}

	b.state.Open(pos)

	return pos, true
}

// ClosePosition exits the open position at price before slippage.
func (b *BacktestTrading) ClosePosition(price float64, at time.Time, reason types.ExitReason) (types.Trade, bool) {
	if b.state.Position().IsNone() {
		return types.Trade{}, false
	}

	pos := b.state.Position().Unwrap()
	fill := b.fillPrice(price, pos.Side == types.PositionSideShort)

	return b.state.Close(fill, b.commission.Calculate(pos.Size, fill), math.Abs(fill-price)*pos.Size, at, reason)
}

// BreakerPrice is the pre-slippage exit price at which closing pos leaves equity exactly at floor,
// after the exit fee. Both the proportional and the per-quantity part of the fee are included.
// None when no positive price reaches the floor.
func (b *BacktestTrading) BreakerPrice(pos types.Position, floor float64) optional.Option[float64] {
	if pos.Size <= 0 {
		return optional.None[float64]()
	}

	cash := b.state.Cash()
	rate := commission_fee.RateOf(b.commission)
	fixed := commission_fee.FixedOf(b.commission, pos.Size)
	notional := pos.EntryPrice * pos.Size

	var price float64

	switch pos.Side {
	case types.PositionSideShort:
		fill := (cash + notional - floor - fixed) / (pos.Size * (1 + rate))
		price = fill / (1 + b.slippage)
	default:
		fill := (floor - cash + notional + fixed) / (pos.Size * (1 - rate))
		price = fill / (1 - b.slippage)
	}

	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return optional.None[float64]()
	}

	return optional.Some(price)
}
