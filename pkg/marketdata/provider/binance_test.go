package provider

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-gate/internal/types"
	argoErrors "github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockBinanceAPIClient implements BinanceAPIClient for testing.
type mockBinanceAPIClient struct {
	klinesPerCall [][]*binance.Kline
	errorsPerCall []error
	callCount     int
	starts        []int64
	interval      string
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &mockBinanceKlinesService{client: m}
}

type mockBinanceKlinesService struct {
	client *mockBinanceAPIClient
}

func (m *mockBinanceKlinesService) Symbol(_ string) BinanceKlinesService {
	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.client.interval = interval

	return m
}

func (m *mockBinanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	m.client.starts = append(m.client.starts, startTime)

	return m
}

func (m *mockBinanceKlinesService) EndTime(_ int64) BinanceKlinesService {
	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	idx := m.client.callCount
	m.client.callCount++

	if idx >= len(m.client.klinesPerCall) {
		return nil, nil
	}

	var err error
	if idx < len(m.client.errorsPerCall) {
		err = m.client.errorsPerCall[idx]
	}

	return m.client.klinesPerCall[idx], err
}

func makeKlines(start time.Time, n int) []*binance.Kline {
	klines := make([]*binance.Kline, n)

	for i := 0; i < n; i++ {
		open := start.Add(time.Duration(i) * time.Hour)
		price := strconv.FormatFloat(100+float64(i%10), 'f', 2, 64)
		klines[i] = &binance.Kline{
			OpenTime:  open.UnixMilli(),
			CloseTime: open.Add(time.Hour).UnixMilli() - 1,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    "10.5",
		}
	}

	return klines
}

type BinanceSupplierTestSuite struct {
	suite.Suite
	start time.Time
	req   CandleRequest
}

func TestBinanceSupplierSuite(t *testing.T) {
	suite.Run(t, new(BinanceSupplierTestSuite))
}

func (suite *BinanceSupplierTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.req = CandleRequest{
		Symbol:    "BTCUSDT",
		Timeframe: types.Timeframe1h,
		From:      suite.start,
		To:        suite.start.Add(90 * 24 * time.Hour),
	}
}

func (suite *BinanceSupplierTestSuite) TestNewBinanceSupplier() {
	supplier := NewBinanceSupplier()
	suite.NotNil(supplier.apiClient)
	suite.Equal("binance", supplier.Name())
}

func (suite *BinanceSupplierTestSuite) TestSinglePage() {
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{makeKlines(suite.start, 3)}}

	candles, err := NewBinanceSupplierWithAPI(api).GetHistoricalCandles(context.Background(), suite.req)
	suite.Require().NoError(err)
	suite.Require().Len(candles, 3)

	suite.Equal("1h", api.interval)
	suite.Equal(1, api.callCount)
	suite.True(suite.start.Equal(candles[0].Timestamp))
	suite.Equal(100.0, candles[0].Open)
	suite.Equal(10.5, candles[0].Volume)
}

func (suite *BinanceSupplierTestSuite) TestPagination() {
	first := makeKlines(suite.start, binancePageSize)
	second := makeKlines(suite.start.Add(binancePageSize*time.Hour), 10)
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{first, second}}

	candles, err := NewBinanceSupplierWithAPI(api).GetHistoricalCandles(context.Background(), suite.req)
	suite.Require().NoError(err)
	suite.Len(candles, binancePageSize+10)
	suite.Equal(2, api.callCount)
	suite.Equal(first[len(first)-1].CloseTime+1, api.starts[1])
}

func (suite *BinanceSupplierTestSuite) TestAPIErrorOnSecondPage() {
	api := &mockBinanceAPIClient{
		klinesPerCall: [][]*binance.Kline{makeKlines(suite.start, binancePageSize), nil},
		errorsPerCall: []error{nil, errors.New("rate limited")},
	}

	_, err := NewBinanceSupplierWithAPI(api).GetHistoricalCandles(context.Background(), suite.req)
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "rate limited")
}

func (suite *BinanceSupplierTestSuite) TestInvalidNumber() {
	klines := makeKlines(suite.start, 1)
	klines[0].High = "not-a-number"
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{klines}}

	_, err := NewBinanceSupplierWithAPI(api).GetHistoricalCandles(context.Background(), suite.req)
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataParseFailed))
}

func (suite *BinanceSupplierTestSuite) TestUnsupportedTimeframe() {
	req := suite.req
	req.Timeframe = "2w"

	_, err := NewBinanceSupplierWithAPI(&mockBinanceAPIClient{}).GetHistoricalCandles(context.Background(), req)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidTimeframe))
}

func (suite *BinanceSupplierTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{makeKlines(suite.start, 3)}}

	_, err := NewBinanceSupplierWithAPI(api).GetHistoricalCandles(ctx, suite.req)
	suite.ErrorIs(err, context.Canceled)
	suite.Equal(0, api.callCount)
}
