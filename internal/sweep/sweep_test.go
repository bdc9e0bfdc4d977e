package sweep

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-gate/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/mocks"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SweepTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	engine  *mocks.MockEngine
	candles []types.Candle
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepTestSuite))
}

func (suite *SweepTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.engine = mocks.NewMockEngine(suite.ctrl)
	suite.candles = mocks.CandlesFromCloses(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100, 101, 102)
}

func (suite *SweepTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *SweepTestSuite) base() types.StrategyConfig {
	return types.StrategyConfig{
		ID:         "sweep-1",
		Universe:   []string{"BTCUSDT"},
		Timeframe:  types.Timeframe1h,
		RiskLimits: types.RiskLimits{MaxPositionPct: 10},
	}
}

// fakeRun scores a candidate from its parameters:
// trades = 2*stopLoss + takeProfit, sharpe = stopLoss + takeProfit/10, return = emaFast.
func fakeRun(_ context.Context, _ string, _ []types.Candle, cfg types.StrategyConfig, _ engine.LifecycleCallbacks) (types.BacktestResult, error) {
	sl := *cfg.RiskLimits.StopLossPct
	tp := *cfg.RiskLimits.TakeProfitPct

	return types.BacktestResult{
		TotalReturnPct: float64(cfg.Indicators.EMAFast),
		Performance: types.PerformanceMetrics{
			TotalTrades: int(2*sl + tp),
			Sharpe:      optional.Some(sl + tp/10),
		},
	}, nil
}

func (suite *SweepTestSuite) gridRequest() Request {
	return Request{
		Base:    suite.base(),
		Symbol:  "BTCUSDT",
		Candles: suite.candles,
		Ranges: map[string]types.ParamRange{
			ParamStopLossPct:   {Min: 1, Max: 2, Step: 1},
			ParamTakeProfitPct: {Min: 2, Max: 4, Step: 2},
			ParamEMAFast:       {Min: 5, Max: 10, Step: 5},
		},
		Filter: Filter{MinTrades: 5},
	}
}

func (suite *SweepTestSuite) TestFilterAndRank() {
	suite.engine.EXPECT().Run(gomock.Any(), "BTCUSDT", suite.candles, gomock.Any(), gomock.Any()).
		DoAndReturn(fakeRun).Times(8)

	var progress atomic.Int32

	s := NewSweeper(suite.engine, WithProgress(func(done, total int) {
		progress.Add(1)
		suite.Equal(8, total)
	}))

	report, err := s.Run(context.Background(), suite.gridRequest())
	suite.Require().NoError(err)
	suite.Equal(8, report.Total)
	suite.Equal(8, report.Evaluated)
	suite.Equal(2, report.Filtered)
	suite.False(report.Partial)
	suite.Equal(int32(8), progress.Load())

	type key struct{ sl, tp, fast float64 }

	var got []key
	for _, r := range report.Results {
		suite.GreaterOrEqual(r.Result.TotalTrades, 5)
		got = append(got, key{r.Params[ParamStopLossPct], r.Params[ParamTakeProfitPct], r.Params[ParamEMAFast]})
	}

	suite.Equal([]key{
		{2, 4, 10}, {2, 4, 5},
		{2, 2, 10}, {2, 2, 5},
		{1, 4, 10}, {1, 4, 5},
	}, got)
	suite.Equal(10, report.Results[0].Config.Indicators.EMAFast)
	suite.Contains(report.Message, "6 of 8")
}

func (suite *SweepTestSuite) TestTopN() {
	suite.engine.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(fakeRun).Times(8)

	req := suite.gridRequest()
	req.TopN = 2

	report, err := NewSweeper(suite.engine).Run(context.Background(), req)
	suite.Require().NoError(err)
	suite.Len(report.Results, 2)
	suite.InDelta(2.4, report.Results[0].Result.Sharpe.Unwrap(), 1e-9)
}

func (suite *SweepTestSuite) TestFailedCandidatesAreCounted() {
	suite.engine.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, symbol string, candles []types.Candle, cfg types.StrategyConfig, cb engine.LifecycleCallbacks) (types.BacktestResult, error) {
			if *cfg.RiskLimits.StopLossPct == 1 {
				return types.BacktestResult{}, errors.NewInsufficientDataError(30, 3, symbol, "too short")
			}

			return fakeRun(ctx, symbol, candles, cfg, cb)
		}).Times(8)

	report, err := NewSweeper(suite.engine).Run(context.Background(), suite.gridRequest())
	suite.Require().NoError(err)
	suite.Equal(4, report.Failed)
	suite.Equal(4, report.Evaluated)
	suite.Len(report.Results, 4)
}

func (suite *SweepTestSuite) TestInvalidCandidateConfigFailsBeforeAnyBacktest() {
	tests := []struct {
		name   string
		ranges map[string]types.ParamRange
		code   errors.ErrorCode
	}{
		{
			name:   "position above 100",
			ranges: map[string]types.ParamRange{ParamMaxPositionPct: {Min: 50, Max: 250, Step: 100}},
			code:   errors.ErrCodeInvalidRiskLimits,
		},
		{
			name:   "take profit above 100",
			ranges: map[string]types.ParamRange{ParamTakeProfitPct: {Min: 90, Max: 110, Step: 20}},
			code:   errors.ErrCodeInvalidRiskLimits,
		},
		{
			name:   "min confidence above 1",
			ranges: map[string]types.ParamRange{ParamConfidenceThreshold: {Min: 0.5, Max: 1.5, Step: 1}},
			code:   errors.ErrCodeInvalidConfiguration,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			req := suite.gridRequest()
			req.Ranges = tc.ranges

			// the engine mock has no expectations, so any backtest fails the test
			report, err := NewSweeper(suite.engine).Run(context.Background(), req)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
			suite.Empty(report.Results)
		})
	}
}

func (suite *SweepTestSuite) TestConfigErrorsFailFast() {
	req := suite.gridRequest()
	req.Ranges = nil

	_, err := NewSweeper(suite.engine).Run(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParamRange))

	req = suite.gridRequest()
	req.Base.RiskLimits.StopLossPct = types.Float(-1)

	_, err = NewSweeper(suite.engine).Run(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRiskLimits))

	req = suite.gridRequest()
	req.Symbol = ""

	_, err = NewSweeper(suite.engine).Run(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *SweepTestSuite) TestMaxCandidates() {
	suite.engine.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(fakeRun).Times(3)

	report, err := NewSweeper(suite.engine, WithMaxCandidates(3), WithConcurrency(1)).Run(context.Background(), suite.gridRequest())
	suite.Require().NoError(err)
	suite.True(report.Partial)
	suite.Equal(3, report.Evaluated)
	suite.Contains(report.Message, "stopped early")
}

func (suite *SweepTestSuite) TestBudgetDropsStuckCandidates() {
	suite.engine.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ []types.Candle, cfg types.StrategyConfig, _ engine.LifecycleCallbacks) (types.BacktestResult, error) {
			<-ctx.Done()
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", ctx.Err())
		}).AnyTimes()

	report, err := NewSweeper(suite.engine, WithBudget(30*time.Millisecond)).Run(context.Background(), suite.gridRequest())
	suite.Require().NoError(err)
	suite.True(report.Partial)
	suite.Equal(0, report.Evaluated)
	suite.Equal(0, report.Failed)
	suite.Empty(report.Results)
}

func (suite *SweepTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSweeper(suite.engine).Run(ctx, suite.gridRequest())
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestCancelled))
}

func (suite *SweepTestSuite) TestRankWithoutSharpe() {
	results := []types.SweepResult{
		{Result: types.SweepMetrics{TotalReturnPct: 50}},
		{Result: types.SweepMetrics{TotalReturnPct: 1, Sharpe: optional.Some(0.5)}},
		{Result: types.SweepMetrics{TotalReturnPct: 70}},
		{Result: types.SweepMetrics{TotalReturnPct: 3, Sharpe: optional.Some(0.5)}},
		{Result: types.SweepMetrics{TotalReturnPct: 2, Sharpe: optional.Some(1.5)}},
	}

	Rank(results)

	var returns []float64
	for _, r := range results {
		returns = append(returns, r.Result.TotalReturnPct)
	}

	suite.Equal([]float64{2, 3, 1, 70, 50}, returns)
}

func (suite *SweepTestSuite) TestFilterAccept() {
	m := types.SweepMetrics{TotalTrades: 10, TotalReturnPct: 5, MaxDrawdown: 12, WinRate: 0.4}

	suite.True(Filter{MinTrades: 10}.Accept(m))
	suite.False(Filter{MinTrades: 11}.Accept(m))
	suite.False(Filter{MinSharpe: types.Float(0)}.Accept(m))
	suite.True(Filter{MinReturnPct: types.Float(5)}.Accept(m))
	suite.False(Filter{MaxDrawdownPct: types.Float(10)}.Accept(m))
	suite.True(Filter{MinWinRate: types.Float(0.4)}.Accept(m))
	suite.False(Filter{MinWinRate: types.Float(0.5)}.Accept(m))
}

func (suite *SweepTestSuite) TestWithBacktestEngine() {
	candles := mocks.NewDataGenerator(7).Generate(mocks.GeneratorConfig{
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          300,
		InitialPrice:   100,
		Volatility:     0.02,
		Trend:          0.1,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	})

	eng, err := engine_v1.NewBacktestEngineV1(engine_v1.DefaultConfig())
	suite.Require().NoError(err)

	req := Request{
		Base:    suite.base(),
		Symbol:  "BTCUSDT",
		Candles: candles,
		Ranges: map[string]types.ParamRange{
			ParamStopLossPct:   {Min: 2, Max: 4, Step: 2},
			ParamTakeProfitPct: {Min: 4, Max: 8, Step: 4},
		},
	}

	first, err := NewSweeper(eng).Run(context.Background(), req)
	suite.Require().NoError(err)
	suite.Equal(4, first.Total)
	suite.Equal(4, first.Evaluated+first.Failed)

	second, err := NewSweeper(eng, WithConcurrency(1)).Run(context.Background(), req)
	suite.Require().NoError(err)
	suite.Equal(first.Results, second.Results)
}
