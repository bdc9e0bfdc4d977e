package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-gate/internal/types"
	argoErrors "github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator PolygonAggsIterator
	params   *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.params = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type PolygonSupplierTestSuite struct {
	suite.Suite
	start time.Time
	req   CandleRequest
}

func TestPolygonSupplierSuite(t *testing.T) {
	suite.Run(t, new(PolygonSupplierTestSuite))
}

func (suite *PolygonSupplierTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.req = CandleRequest{
		Symbol:    "X:BTCUSD",
		Timeframe: types.Timeframe4h,
		From:      suite.start,
		To:        suite.start.Add(24 * time.Hour),
	}
}

func (suite *PolygonSupplierTestSuite) TestNewPolygonSupplier() {
	supplier, err := NewPolygonSupplier("test-api-key")
	suite.Require().NoError(err)
	suite.NotNil(supplier.apiClient)
	suite.Equal("polygon", supplier.Name())

	_, err = NewPolygonSupplier("")
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMissingParameter))
}

func (suite *PolygonSupplierTestSuite) TestConvertsAggregates() {
	//nolint:exhaustruct // third-party struct
	aggs := []models.Agg{
		{Timestamp: models.Millis(suite.start), Open: 100, High: 102, Low: 99, Close: 101, Volume: 5},
		{Timestamp: models.Millis(suite.start.Add(4 * time.Hour)), Open: 101, High: 103, Low: 100, Close: 102, Volume: 6},
	}
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: aggs}}

	candles, err := NewPolygonSupplierWithAPI(api).GetHistoricalCandles(context.Background(), suite.req)
	suite.Require().NoError(err)
	suite.Require().Len(candles, 2)

	suite.True(suite.start.Equal(candles[0].Timestamp))
	suite.Equal(102.0, candles[1].Close)
	suite.Equal(6.0, candles[1].Volume)

	suite.Equal(4, api.params.Multiplier)
	suite.Equal(models.Hour, api.params.Timespan)
	suite.Equal("X:BTCUSD", api.params.Ticker)
}

func (suite *PolygonSupplierTestSuite) TestIteratorError() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{err: errors.New("unauthorized")}}

	_, err := NewPolygonSupplierWithAPI(api).GetHistoricalCandles(context.Background(), suite.req)
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
}

func (suite *PolygonSupplierTestSuite) TestTimespans() {
	tests := []struct {
		tf         types.Timeframe
		multiplier int
		timespan   models.Timespan
	}{
		{types.Timeframe1m, 1, models.Minute},
		{types.Timeframe15m, 15, models.Minute},
		{types.Timeframe1h, 1, models.Hour},
		{types.Timeframe1d, 1, models.Day},
	}

	for _, tc := range tests {
		suite.Run(string(tc.tf), func() {
			m, ts, err := polygonTimespan(tc.tf)
			suite.Require().NoError(err)
			suite.Equal(tc.multiplier, m)
			suite.Equal(tc.timespan, ts)
		})
	}

	_, _, err := polygonTimespan("3w")
	suite.Error(err)
}
