package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/shopspring/decimal"
)

// BacktestState is the book of one run: cash, the open position, closed trades,
// the equity curve and the daily loss breaker. It is owned by a single run and not
// safe for concurrent use.
type BacktestState struct {
	initialCapital float64
	// cash is realized equity: initial capital plus closed PnL minus the open position's entry fee.
	cash     decimal.Decimal
	position optional.Option[types.Position]
	trades   []types.Trade
	curve    []types.EquityPoint

	day            time.Time
	dayStartEquity float64
	breakerActive  bool
}

func NewBacktestState(initialCapital float64) *BacktestState {
	return &BacktestState{
		initialCapital: initialCapital,
		cash:           decimal.NewFromFloat(initialCapital),
		position:       optional.None[types.Position](),
		trades:         nil,
		curve:          nil,
		day:            time.Time{},
		dayStartEquity: initialCapital,
		breakerActive:  false,
	}
}

// Cash returns realized equity.
func (s *BacktestState) Cash() float64 {
	return s.cash.InexactFloat64()
}

// Equity marks the open position at price. Exit costs are not deducted.
func (s *BacktestState) Equity(price float64) float64 {
	if s.position.IsNone() {
		return s.Cash()
	}

	pos := s.position.Unwrap()

	return s.cash.Add(decimal.NewFromFloat(pos.UnrealizedPnL(price))).InexactFloat64()
}

func (s *BacktestState) Position() optional.Option[types.Position] {
	return s.position
}

// Positions returns the open position as a slice for decision contexts.
func (s *BacktestState) Positions() []types.Position {
	if s.position.IsNone() {
		return nil
	}

	return []types.Position{s.position.Unwrap()}
}

// Open records a new position. The entry fee is paid from cash immediately.
func (s *BacktestState) Open(pos types.Position) {
	s.cash = s.cash.Sub(decimal.NewFromFloat(pos.EntryFee))
	s.position = optional.Some(pos)
}

// Close settles the open position and appends the resulting trade.
func (s *BacktestState) Close(exitPrice, exitFee, exitSlippage float64, at time.Time, reason types.ExitReason) (types.Trade, bool) {
	if s.position.IsNone() {
		return types.Trade{}, false
	}

	pos := s.position.Unwrap()
	trade := pos.Close(exitPrice, exitFee, exitSlippage, at, reason)

	// trade.PnL already nets the entry fee, which cash paid on open
	s.cash = s.cash.Add(decimal.NewFromFloat(trade.PnL)).Add(decimal.NewFromFloat(pos.EntryFee))
	s.position = optional.None[types.Position]()
	s.trades = append(s.trades, trade)

	return trade, true
}

// UpdateHighWaterMark ratchets the open position's most favourable price.
func (s *BacktestState) UpdateHighWaterMark(candle types.Candle) {
	if s.position.IsNone() {
		return
	}

	pos := s.position.Unwrap()

	switch pos.Side {
	case types.PositionSideLong:
		if candle.High > pos.HighWaterMark {
			pos.HighWaterMark = candle.High
		}
	case types.PositionSideShort:
		if candle.Low < pos.HighWaterMark {
			pos.HighWaterMark = candle.Low
		}
	}

	s.position = optional.Some(pos)
}

// StartStep rolls the daily breaker over when candle opens a new UTC day.
// equityBefore is the mark-to-market equity at the previous close.
func (s *BacktestState) StartStep(candle types.Candle, equityBefore float64) {
	day := utcDay(candle.Timestamp)
	if s.day.IsZero() {
		s.day = day
		s.dayStartEquity = equityBefore

		return
	}

	if day.After(s.day) {
		s.day = day
		s.dayStartEquity = equityBefore
		s.breakerActive = false
	}
}

// DailyLossFloor is the equity at which the daily breaker trips.
func (s *BacktestState) DailyLossFloor(maxDailyLossPct float64) float64 {
	return s.dayStartEquity * (1 - maxDailyLossPct/100)
}

// CheckBreaker trips the breaker when equity has fallen to the daily floor.
func (s *BacktestState) CheckBreaker(equity float64, limits types.RiskLimits) bool {
	if !limits.DailyBreakerEnabled() {
		return false
	}

	if equity <= s.DailyLossFloor(limits.MaxDailyLossPct)+1e-9 {
		s.breakerActive = true
	}

	return s.breakerActive
}

func (s *BacktestState) TripBreaker() {
	s.breakerActive = true
}

func (s *BacktestState) BreakerActive() bool {
	return s.breakerActive
}

func (s *BacktestState) Record(at time.Time, equity float64) {
	s.curve = append(s.curve, types.EquityPoint{Timestamp: at, Equity: equity})
}

// SetLastEquity overwrites the newest equity point, used after the end-of-data close.
func (s *BacktestState) SetLastEquity(equity float64) {
	if len(s.curve) == 0 {
		return
	}

	s.curve[len(s.curve)-1].Equity = equity
}

func (s *BacktestState) Trades() []types.Trade {
	return s.trades
}

func (s *BacktestState) Curve() []types.EquityPoint {
	return s.curve
}

// Performance summarises the trades closed so far.
func (s *BacktestState) Performance() types.PerformanceMetrics {
	return types.ComputePerformance(s.initialCapital, s.trades)
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()

	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
