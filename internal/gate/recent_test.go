package gate

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"go.uber.org/mock/gomock"
)

// trades returns wins winning trades followed by losses losing ones.
func (suite *GateTestSuite) trades(wins, losses int) []types.Trade {
	var out []types.Trade

	at := suite.now.Add(-10 * 24 * time.Hour)

	for i := 0; i < wins+losses; i++ {
		pnl, pct := 100.0, 2.0
		if i >= wins {
			pnl, pct = -50, -1
		}

		out = append(out, types.Trade{
			Symbol:     "BTCUSDT",
			Side:       types.PositionSideLong,
			Size:       1,
			EntryPrice: 100,
			ExitPrice:  optional.Some(100 + pct),
			PnL:        pnl,
			PnLPct:     pct,
			OpenedAt:   at,
			Timestamp:  at.Add(time.Hour),
		})

		at = at.Add(2 * time.Hour)
	}

	return out
}

func (suite *GateTestSuite) TestRecentPasses() {
	suite.history.EXPECT().RecentTrades(gomock.Any(), "momentum-1", suite.now.AddDate(0, 0, -30)).
		Return(suite.trades(10, 2), nil)
	suite.store.EXPECT().StoreCheck(gomock.Any(), "momentum-1", gomock.Any()).Return(nil)

	g := suite.newGate(WithTradeHistory(suite.history), WithStore(suite.store))

	check, err := g.CheckRecent(context.Background(), suite.strategy())
	suite.Require().NoError(err)
	suite.True(check.Passed, check.Message)
	suite.Equal(types.CheckKindRecent, check.Kind)
	suite.Equal(12, check.Details.SampleSize)
	suite.InDelta(9.0, check.AvgReturn, 1e-9)
	suite.InDelta(10.0/12, check.WinRate, 1e-9)
	suite.True(check.Sharpe.IsSome())
}

func (suite *GateTestSuite) TestRecentInsufficientSample() {
	trades := suite.trades(5, 0)
	trades = append(trades, types.Trade{Symbol: "BTCUSDT", Side: types.PositionSideLong, Size: 1, EntryPrice: 100})

	suite.history.EXPECT().RecentTrades(gomock.Any(), gomock.Any(), gomock.Any()).Return(trades, nil)

	g := suite.newGate(WithTradeHistory(suite.history))

	check, err := g.CheckRecent(context.Background(), suite.strategy())
	suite.Require().NoError(err)
	suite.False(check.Passed)
	suite.Equal(5, check.Details.SampleSize)
	suite.Contains(check.Message, "insufficient sample")
	suite.Empty(check.Details.Criteria)
}

func (suite *GateTestSuite) TestRecentFailsOnLosses() {
	suite.history.EXPECT().RecentTrades(gomock.Any(), gomock.Any(), gomock.Any()).Return(suite.trades(2, 10), nil)

	check, err := suite.newGate(WithTradeHistory(suite.history)).CheckRecent(context.Background(), suite.strategy())
	suite.Require().NoError(err)
	suite.False(check.Passed)
	suite.Contains(check.Message, "failed")
}

func (suite *GateTestSuite) TestRecentHistoryErrors() {
	_, err := suite.newGate().CheckRecent(context.Background(), suite.strategy())
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	suite.history.EXPECT().RecentTrades(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, stderrors.New("db gone"))

	_, err = suite.newGate(WithTradeHistory(suite.history)).CheckRecent(context.Background(), suite.strategy())
	suite.True(errors.HasCode(err, errors.ErrCodeHistoryFailed))
}
