package engine

import (
	"testing"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})

	for i := 1; i <= 5; i++ {
		err := callback(i, 5)
		suite.NoError(err)
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestEmptyCallbacks() {
	var callbacks LifecycleCallbacks

	suite.Nil(callbacks.OnRunStart)
	suite.Nil(callbacks.OnTrade)
}

func (suite *EngineTestSuite) TestOnTradeCallbackCollects() {
	var trades []types.Trade
	callback := OnTradeCallback(func(trade types.Trade) {
		trades = append(trades, trade)
	})
	callbacks := LifecycleCallbacks{OnTrade: &callback}

	(*callbacks.OnTrade)(types.Trade{Symbol: "BTCUSDT"})

	suite.Len(trades, 1)
}
