package indicator_test

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/indicator"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/mocks"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ExtractorRegistryTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	registry *mocks.MockIndicatorRegistry
	candles  []types.Candle
}

func TestExtractorRegistrySuite(t *testing.T) {
	suite.Run(t, new(ExtractorRegistryTestSuite))
}

func (suite *ExtractorRegistryTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.registry = mocks.NewMockIndicatorRegistry(suite.ctrl)
	suite.candles = mocks.CandlesFromCloses(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100, 101, 102)
}

func (suite *ExtractorRegistryTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ExtractorRegistryTestSuite) mockIndicator(name types.IndicatorType, minCandles int, out types.Indicators) *mocks.MockIndicator {
	ind := mocks.NewMockIndicator(suite.ctrl)
	ind.EXPECT().Name().Return(name).AnyTimes()
	ind.EXPECT().MinCandles().Return(minCandles).AnyTimes()
	ind.EXPECT().Compute(suite.candles).Return(out).AnyTimes()

	return ind
}

func (suite *ExtractorRegistryTestSuite) TestMergesInRegistryOrder() {
	rsi := suite.mockIndicator(types.IndicatorTypeRSI, 15, types.Indicators{RSI: optional.Some(55.0)})
	atr := suite.mockIndicator(types.IndicatorTypeATR, 15, types.Indicators{ATR: optional.Some(1.5)})
	mom := suite.mockIndicator(types.IndicatorTypeMomentum, 40, types.Indicators{})

	suite.registry.EXPECT().ListIndicators().Return([]types.IndicatorType{
		types.IndicatorTypeRSI, types.IndicatorTypeATR, types.IndicatorTypeMomentum,
	}).AnyTimes()
	suite.registry.EXPECT().GetIndicator(types.IndicatorTypeRSI).Return(rsi, nil).AnyTimes()
	suite.registry.EXPECT().GetIndicator(types.IndicatorTypeATR).Return(atr, nil).AnyTimes()
	suite.registry.EXPECT().GetIndicator(types.IndicatorTypeMomentum).Return(mom, nil).AnyTimes()

	for _, parallelism := range []int{1, 4} {
		e, err := indicator.NewExtractor(types.DefaultIndicatorPeriods(),
			indicator.WithRegistry(suite.registry), indicator.WithParallelism(parallelism))
		suite.Require().NoError(err)

		out, err := e.Extract(suite.candles)
		suite.Require().NoError(err)
		suite.Equal(55.0, out.RSI.Unwrap())
		suite.Equal(1.5, out.ATR.Unwrap())
		suite.True(out.Momentum.IsNone())
		suite.Equal(40, e.MinCandles())
	}
}

func (suite *ExtractorRegistryTestSuite) TestRegistryErrorPropagates() {
	suite.registry.EXPECT().ListIndicators().Return([]types.IndicatorType{types.IndicatorTypeCCI})
	suite.registry.EXPECT().GetIndicator(types.IndicatorTypeCCI).
		Return(nil, errors.New(errors.ErrCodeIndicatorNotFound, "indicator not found"))

	e, err := indicator.NewExtractor(types.DefaultIndicatorPeriods(), indicator.WithRegistry(suite.registry))
	suite.Require().NoError(err)

	_, err = e.Extract(suite.candles)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *ExtractorRegistryTestSuite) TestDefaultRegistryAcceptsMock() {
	registry := indicator.NewIndicatorRegistry()

	ind := mocks.NewMockIndicator(suite.ctrl)
	ind.EXPECT().Name().Return(types.IndicatorTypeVolatility).AnyTimes()

	suite.Require().NoError(registry.RegisterIndicator(ind))

	got, err := registry.GetIndicator(types.IndicatorTypeVolatility)
	suite.Require().NoError(err)
	suite.Same(ind, got)
}
