package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Direction is +1 for long and -1 for short.
func (s PositionSide) Direction() float64 {
	if s == PositionSideShort {
		return -1
	}

	return 1
}

type ExitReason string

const (
	ExitReasonStopLoss     ExitReason = "stop_loss"
	ExitReasonTakeProfit   ExitReason = "take_profit"
	ExitReasonTrailingStop ExitReason = "trailing_stop"
	ExitReasonDailyLoss    ExitReason = "daily_loss_limit"
	ExitReasonSignal       ExitReason = "signal"
	ExitReasonEndOfData    ExitReason = "end_of_data"
)

// Position is an open holding in one symbol.
type Position struct {
	Symbol     string       `json:"symbol"`
	Side       PositionSide `json:"side"`
	Size       float64      `json:"size"`
	EntryPrice float64      `json:"entryPrice"`
	EntryFee   float64      `json:"entryFee"`
	// EntrySlippage is the quote-currency cost of the entry slippage.
	EntrySlippage float64   `json:"entrySlippage"`
	OpenedAt      time.Time `json:"openedAt"`
	// HighWaterMark is the most favourable price seen since entry.
	HighWaterMark float64 `json:"highWaterMark"`
}

// Notional is the entry value of the position.
func (p Position) Notional() float64 {
	return p.Size * p.EntryPrice
}

// UnrealizedPnL marks the position at price, excluding fees.
func (p Position) UnrealizedPnL(price float64) float64 {
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(p.EntryPrice))
	if p.Side == PositionSideShort {
		diff = diff.Neg()
	}

	return diff.Mul(decimal.NewFromFloat(p.Size)).InexactFloat64()
}

// ReturnPct is the price move in the position's favour since entry, in percent.
func (p Position) ReturnPct(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}

	return (price - p.EntryPrice) / p.EntryPrice * 100 * p.Side.Direction()
}

// Close turns the position into a closed trade.
// PnL = (exit - entry) * size * direction - (entry fee + exit fee).
func (p Position) Close(exitPrice, exitFee, exitSlippage float64, at time.Time, reason ExitReason) Trade {
	fees := decimal.NewFromFloat(p.EntryFee).Add(decimal.NewFromFloat(exitFee))
	gross := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(p.EntryPrice)).Mul(decimal.NewFromFloat(p.Size))

	if p.Side == PositionSideShort {
		gross = gross.Neg()
	}

	pnl := gross.Sub(fees)

	pnlPct := decimal.Zero
	if notional := decimal.NewFromFloat(p.Notional()); !notional.IsZero() {
		pnlPct = pnl.Div(notional).Mul(decimal.NewFromInt(100))
	}

	return Trade{
		Symbol:     p.Symbol,
		Side:       p.Side,
		Size:       p.Size,
		EntryPrice: p.EntryPrice,
		ExitPrice:  optional.Some(exitPrice),
		Fees:       fees.InexactFloat64(),
		Slippage:   decimal.NewFromFloat(p.EntrySlippage).Add(decimal.NewFromFloat(exitSlippage)).InexactFloat64(),
		PnL:        pnl.InexactFloat64(),
		PnLPct:     pnlPct.InexactFloat64(),
		OpenedAt:   p.OpenedAt,
		Timestamp:  at,
		ExitReason: reason,
	}
}

// Trade is a round trip. ExitPrice is None while the trade is still open.
type Trade struct {
	Symbol     string                   `json:"symbol"`
	Side       PositionSide             `json:"side"`
	Size       float64                  `json:"size"`
	EntryPrice float64                  `json:"entryPrice"`
	ExitPrice  optional.Option[float64] `json:"exitPrice"`
	// Fees is the sum of entry and exit fees.
	Fees float64 `json:"fees"`
	// Slippage is the quote-currency cost of slippage on both legs.
	Slippage float64 `json:"slippage"`
	PnL      float64   `json:"pnl"`
	PnLPct   float64   `json:"pnlPct"`
	OpenedAt time.Time `json:"openedAt"`
	// Timestamp is the exit time.
	Timestamp  time.Time  `json:"timestamp"`
	ExitReason ExitReason `json:"exitReason,omitempty"`
}

func (t Trade) IsClosed() bool {
	return t.ExitPrice.IsSome()
}

// ClosedTrades filters out trades that have no exit yet.
func ClosedTrades(trades []Trade) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			out = append(out, t)
		}
	}

	return out
}
