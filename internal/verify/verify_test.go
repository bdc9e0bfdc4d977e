package verify

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-gate/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/mocks"
	"github.com/stretchr/testify/suite"
)

type VerifyTestSuite struct {
	suite.Suite
	at time.Time
}

func TestVerifySuite(t *testing.T) {
	suite.Run(t, new(VerifyTestSuite))
}

func (suite *VerifyTestSuite) SetupTest() {
	suite.at = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *VerifyTestSuite) closed(side types.PositionSide, entry, exit, size, fees float64) types.Trade {
	pos := types.Position{
		Symbol:     "BTCUSDT",
		Side:       side,
		Size:       size,
		EntryPrice: entry,
		EntryFee:   fees / 2,
		OpenedAt:   suite.at,
	}

	return pos.Close(exit, fees/2, 0, suite.at.Add(time.Hour), types.ExitReasonSignal)
}

// result builds a consistent result from trades starting at 10000.
func (suite *VerifyTestSuite) result(trades ...types.Trade) types.BacktestResult {
	equity := 10000.0
	curve := []types.EquityPoint{{Timestamp: suite.at, Equity: equity}}

	for _, t := range trades {
		equity += t.PnL
		curve = append(curve, types.EquityPoint{Timestamp: t.Timestamp, Equity: equity})
	}

	return types.BacktestResult{
		Symbol:         "BTCUSDT",
		InitialEquity:  10000,
		FinalEquity:    equity,
		TotalReturn:    equity - 10000,
		TotalReturnPct: (equity - 10000) / 10000 * 100,
		MaxDrawdown:    5,
		Trades:         trades,
		EquityCurve:    curve,
	}
}

func (suite *VerifyTestSuite) TestNetPnL() {
	suite.InDelta(8.0, NetPnL(suite.closed(types.PositionSideLong, 100, 110, 1, 2)), 1e-9)
	suite.InDelta(18.0, NetPnL(suite.closed(types.PositionSideShort, 100, 90, 2, 2)), 1e-9)
	suite.InDelta(-22.0, NetPnL(suite.closed(types.PositionSideShort, 100, 110, 2, 2)), 1e-9)
}

func (suite *VerifyTestSuite) TestConsistentResult() {
	report := Verify(suite.result(
		suite.closed(types.PositionSideLong, 100, 110, 1, 2),
		suite.closed(types.PositionSideShort, 100, 105, 1, 2),
		suite.closed(types.PositionSideLong, 100, 104, 1, 2),
	))

	suite.True(report.Consistent())
	suite.Equal(3, report.TradesChecked)
	suite.Empty(report.Mismatches)
	suite.Empty(report.Warnings)
}

func (suite *VerifyTestSuite) TestPnLMismatch() {
	good := suite.closed(types.PositionSideLong, 100, 110, 1, 2)
	bad := suite.closed(types.PositionSideLong, 100, 90, 1, 2)
	bad.PnL = -10 // fees dropped

	report := Verify(suite.result(good, bad))
	suite.False(report.Consistent())
	suite.Require().Len(report.Mismatches, 1)
	suite.Equal(1, report.Mismatches[0].Index)
	suite.InDelta(-12.0, report.Mismatches[0].Expected, 1e-9)
	suite.InDelta(-10.0, report.Mismatches[0].Reported, 1e-9)
}

func (suite *VerifyTestSuite) TestWithinTolerance() {
	t := suite.closed(types.PositionSideLong, 100, 110, 1, 2)
	t.PnL += 0.005

	report := Verify(suite.result(t))
	suite.Empty(report.Mismatches)
}

func (suite *VerifyTestSuite) TestEquityCurveMismatch() {
	r := suite.result(suite.closed(types.PositionSideLong, 100, 110, 1, 2))
	r.EquityCurve[len(r.EquityCurve)-1].Equity += 5

	report := Verify(r)
	suite.False(report.EquityCurveMatches)
	suite.True(report.EquityReconciles)
	suite.False(report.Consistent())
}

func (suite *VerifyTestSuite) TestEquityReconciliation() {
	r := suite.result(suite.closed(types.PositionSideLong, 100, 110, 1, 2))
	r.FinalEquity += 5
	r.EquityCurve[len(r.EquityCurve)-1].Equity = r.FinalEquity

	report := Verify(r)
	suite.True(report.EquityCurveMatches)
	suite.False(report.EquityReconciles)
}

func (suite *VerifyTestSuite) TestOpenTradesSkipReconciliation() {
	open := types.Trade{
		Symbol:     "BTCUSDT",
		Side:       types.PositionSideLong,
		Size:       1,
		EntryPrice: 100,
		ExitPrice:  optional.None[float64](),
		Fees:       1,
	}

	r := suite.result(suite.closed(types.PositionSideLong, 100, 110, 1, 2))
	r.Trades = append(r.Trades, open)
	r.FinalEquity += 50
	r.EquityCurve[len(r.EquityCurve)-1].Equity = r.FinalEquity

	report := Verify(r)
	suite.Equal(1, report.OpenTrades)
	suite.Equal(1, report.TradesChecked)
	suite.True(report.EquityReconciles)
}

func (suite *VerifyTestSuite) TestRealismWarnings() {
	tests := []struct {
		name   string
		modify func(*types.BacktestResult)
		want   []WarningKind
	}{
		{
			name:   "no trades",
			modify: func(r *types.BacktestResult) { r.Trades = nil },
			want:   []WarningKind{WarningNoTrades},
		},
		{
			name:   "extreme return",
			modify: func(r *types.BacktestResult) { r.TotalReturnPct = -150 },
			want:   []WarningKind{WarningExtremeReturn},
		},
		{
			name:   "extreme drawdown",
			modify: func(r *types.BacktestResult) { r.MaxDrawdown = 60 },
			want:   []WarningKind{WarningExtremeDrawdown},
		},
		{
			name: "all winners",
			modify: func(r *types.BacktestResult) {
				r.Trades = []types.Trade{suite.closed(types.PositionSideLong, 100, 110, 1, 2)}
			},
			want: []WarningKind{WarningWinRate},
		},
		{
			name: "zero fees",
			modify: func(r *types.BacktestResult) {
				r.Trades = []types.Trade{
					suite.closed(types.PositionSideLong, 100, 110, 1, 0),
					suite.closed(types.PositionSideLong, 100, 90, 1, 0),
				}
			},
			want: []WarningKind{WarningZeroFees},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := suite.result(
				suite.closed(types.PositionSideLong, 100, 110, 1, 2),
				suite.closed(types.PositionSideLong, 100, 95, 1, 2),
			)
			tt.modify(&r)

			var kinds []WarningKind
			for _, w := range Verify(r).Warnings {
				kinds = append(kinds, w.Kind)
			}

			suite.Equal(tt.want, kinds)
		})
	}
}

func (suite *VerifyTestSuite) TestEngineOutputIsConsistent() {
	candles := mocks.Generate1K()

	eng, err := engine_v1.NewBacktestEngineV1(engine_v1.DefaultConfig())
	suite.Require().NoError(err)

	cfg := types.StrategyConfig{
		ID:         "verify-1",
		Universe:   []string{"BTCUSDT"},
		Timeframe:  types.Timeframe1h,
		RiskLimits: types.RiskLimits{MaxPositionPct: 10, MaxDailyLossPct: 3, StopLossPct: types.Float(2), TakeProfitPct: types.Float(4)},
	}

	result, err := eng.Run(context.Background(), "BTCUSDT", candles, cfg, engine.LifecycleCallbacks{})
	suite.Require().NoError(err)

	report := Verify(result)
	suite.Empty(report.Mismatches)
	suite.True(report.EquityCurveMatches)
	suite.True(report.EquityReconciles)
}
