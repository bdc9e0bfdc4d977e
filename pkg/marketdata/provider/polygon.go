package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

const polygonPageLimit = 50000

// PolygonAggsIterator is the iterator returned by ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the Polygon REST client so tests can replace it.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIWrapper struct {
	client *polygon.Client
}

func (w *polygonAPIWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

// PolygonSupplier reads aggregate bars from Polygon.io.
type PolygonSupplier struct {
	apiClient PolygonAPIClient
}

func NewPolygonSupplier(apiKey string) (*PolygonSupplier, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon API key is required")
	}

	return NewPolygonSupplierWithAPI(&polygonAPIWrapper{client: polygon.New(apiKey)}), nil
}

func NewPolygonSupplierWithAPI(api PolygonAPIClient) *PolygonSupplier {
	return &PolygonSupplier{apiClient: api}
}

func (c *PolygonSupplier) Name() string {
	return string(SupplierPolygon)
}

func (c *PolygonSupplier) GetHistoricalCandles(ctx context.Context, req CandleRequest) ([]types.Candle, error) {
	multiplier, timespan, err := polygonTimespan(req.Timeframe)
	if err != nil {
		return nil, err
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     req.Symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(req.From),
		To:         models.Millis(req.To),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(polygonPageLimit)

	iter := c.apiClient.ListAggs(ctx, params)

	var candles []types.Candle

	for iter.Next() {
		agg := iter.Item()
		candles = append(candles, types.Candle{
			Timestamp: time.Time(agg.Timestamp).UTC(),
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list %s aggregates from Polygon", req.Symbol)
	}

	return candles, nil
}
