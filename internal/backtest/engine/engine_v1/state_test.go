package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/suite"
)

type BacktestStateTestSuite struct {
	suite.Suite
	state *BacktestState
	t0    time.Time
}

func TestBacktestStateSuite(t *testing.T) {
	suite.Run(t, new(BacktestStateTestSuite))
}

func (suite *BacktestStateTestSuite) SetupTest() {
	suite.state = NewBacktestState(10000)
	suite.t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *BacktestStateTestSuite) longPosition() types.Position {
	return types.Position{
		Symbol:        "BTCUSDT",
		Side:          types.PositionSideLong,
		Size:          10,
		EntryPrice:    100,
		EntryFee:      1,
		OpenedAt:      suite.t0,
		HighWaterMark: 100,
	}
}

func (suite *BacktestStateTestSuite) TestOpenAndCloseLong() {
	suite.state.Open(suite.longPosition())

	suite.InDelta(9999.0, suite.state.Cash(), 1e-9)
	suite.InDelta(10049.0, suite.state.Equity(105), 1e-9)
	suite.Len(suite.state.Positions(), 1)

	trade, ok := suite.state.Close(105, 1.05, 0, suite.t0.Add(time.Hour), types.ExitReasonSignal)
	suite.True(ok)

	// (105 - 100) * 10 - (1 + 1.05)
	suite.InDelta(47.95, trade.PnL, 1e-9)
	suite.InDelta(10047.95, suite.state.Cash(), 1e-9)
	suite.True(suite.state.Position().IsNone())
	suite.Len(suite.state.Trades(), 1)
}

func (suite *BacktestStateTestSuite) TestCloseShort() {
	pos := suite.longPosition()
	pos.Side = types.PositionSideShort
	suite.state.Open(pos)

	suite.InDelta(10049.0, suite.state.Equity(95), 1e-9)

	trade, ok := suite.state.Close(95, 1, 0, suite.t0, types.ExitReasonSignal)
	suite.True(ok)
	suite.InDelta(48.0, trade.PnL, 1e-9)
	suite.InDelta(10048.0, suite.state.Cash(), 1e-9)
}

func (suite *BacktestStateTestSuite) TestCloseWithoutPosition() {
	_, ok := suite.state.Close(100, 0, 0, suite.t0, types.ExitReasonSignal)
	suite.False(ok)
}

func (suite *BacktestStateTestSuite) TestHighWaterMark() {
	suite.state.Open(suite.longPosition())
	suite.state.UpdateHighWaterMark(types.Candle{High: 108, Low: 99})
	suite.state.UpdateHighWaterMark(types.Candle{High: 104, Low: 97})
	suite.Equal(108.0, suite.state.Position().Unwrap().HighWaterMark)

	short := suite.longPosition()
	short.Side = types.PositionSideShort
	state := NewBacktestState(10000)
	state.Open(short)
	state.UpdateHighWaterMark(types.Candle{High: 101, Low: 93})
	suite.Equal(93.0, state.Position().Unwrap().HighWaterMark)
}

func (suite *BacktestStateTestSuite) TestDailyBreakerRollsOver() {
	limits := types.RiskLimits{MaxPositionPct: 100, MaxDailyLossPct: 3}

	suite.state.StartStep(types.Candle{Timestamp: suite.t0}, 10000)
	suite.InDelta(9700.0, suite.state.DailyLossFloor(3), 1e-9)

	suite.False(suite.state.CheckBreaker(9701, limits))
	suite.True(suite.state.CheckBreaker(9700, limits))

	// same day: still tripped
	suite.state.StartStep(types.Candle{Timestamp: suite.t0.Add(23 * time.Hour)}, 9700)
	suite.True(suite.state.BreakerActive())

	// next UTC day resets with the new starting equity
	suite.state.StartStep(types.Candle{Timestamp: suite.t0.Add(24 * time.Hour)}, 9700)
	suite.False(suite.state.BreakerActive())
	suite.InDelta(9409.0, suite.state.DailyLossFloor(3), 1e-9)
}

func (suite *BacktestStateTestSuite) TestBreakerDisabled() {
	suite.state.StartStep(types.Candle{Timestamp: suite.t0}, 10000)
	suite.False(suite.state.CheckBreaker(1, types.RiskLimits{MaxPositionPct: 10}))
}

func (suite *BacktestStateTestSuite) TestEquityCurve() {
	suite.state.Record(suite.t0, 10000)
	suite.state.Record(suite.t0.Add(time.Hour), 10100)
	suite.state.SetLastEquity(10090)

	curve := suite.state.Curve()
	suite.Len(curve, 2)
	suite.Equal(10090.0, curve[1].Equity)
}
