package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ExtractorTestSuite struct {
	suite.Suite
}

func TestExtractorSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}

func (suite *ExtractorTestSuite) TestEmptyWindow() {
	e, err := NewExtractor(types.DefaultIndicatorPeriods())
	suite.Require().NoError(err)

	_, err = e.Extract(nil)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *ExtractorTestSuite) TestSingleCandle() {
	e, err := NewExtractor(types.DefaultIndicatorPeriods())
	suite.Require().NoError(err)

	out, err := e.Extract(flatCandles(100))
	suite.Require().NoError(err)

	suite.True(out.EMAFast.IsSome())
	suite.True(out.EMASlow.IsSome())
	suite.True(out.Support.IsSome())
	suite.True(out.RSI.IsNone())
	suite.True(out.MACD.IsNone())
	suite.True(out.ADX.IsNone())
	suite.True(out.Momentum.IsNone())
}

func (suite *ExtractorTestSuite) TestLongWindowHasEveryIndicator() {
	e, err := NewExtractor(types.DefaultIndicatorPeriods())
	suite.Require().NoError(err)
	suite.Equal(28, e.MinCandles())

	out, err := e.Extract(waveCandles(60))
	suite.Require().NoError(err)
	suite.Len(out.Present(), 14)

	rsi := out.RSI.Unwrap()
	suite.GreaterOrEqual(rsi, 0.0)
	suite.LessOrEqual(rsi, 100.0)
}

func (suite *ExtractorTestSuite) TestParallelMatchesSequential() {
	sequential, err := NewExtractor(types.DefaultIndicatorPeriods())
	suite.Require().NoError(err)

	parallel, err := NewExtractor(types.DefaultIndicatorPeriods(), WithParallelism(4))
	suite.Require().NoError(err)

	candles := waveCandles(80)

	for end := 1; end <= len(candles); end += 7 {
		a, err := sequential.Extract(candles[:end])
		suite.Require().NoError(err)

		b, err := parallel.Extract(candles[:end])
		suite.Require().NoError(err)

		suite.Equal(a, b)
	}
}

func (suite *ExtractorTestSuite) TestShortPeriodsOnTwoCandles() {
	periods := types.IndicatorPeriods{EMAFast: 1, EMASlow: 2, MACDSignal: 1, Bollinger: 2, Momentum: 1}
	e, err := NewExtractor(periods)
	suite.Require().NoError(err)

	out, err := e.Extract(flatCandles(100, 110))
	suite.Require().NoError(err)

	suite.InDelta(110.0, out.EMAFast.Unwrap(), 1e-9)
	suite.InDelta(105.0, out.EMASlow.Unwrap(), 1e-9)
	suite.InDelta(5.0, out.MACD.Unwrap().MACD, 1e-9)
	suite.InDelta(0.75, out.Bollinger.Unwrap().PercentB(110).Unwrap(), 1e-9)
	suite.InDelta(10.0, out.Momentum.Unwrap(), 1e-9)
	suite.True(out.RSI.IsNone())
	suite.True(out.ADX.IsNone())
}

func (suite *ExtractorTestSuite) TestCustomRegistry() {
	registry := NewIndicatorRegistry()
	suite.Require().NoError(registry.RegisterIndicator(NewSupportResistance()))

	e, err := NewExtractor(types.IndicatorPeriods{}, WithRegistry(registry))
	suite.Require().NoError(err)

	out, err := e.Extract(flatCandles(1, 2, 3))
	suite.Require().NoError(err)
	suite.Equal([]types.IndicatorType{types.IndicatorTypeSupportResistance}, out.Present())
}
