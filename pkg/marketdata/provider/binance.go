package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// binancePageSize is the default number of klines Binance returns per request.
const binancePageSize = 500

// BinanceKlinesService is the subset of the klines service used by BinanceSupplier.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the Binance client so tests can replace it.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIWrapper struct {
	client *binance.Client
}

func (w *binanceAPIWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesWrapper) Interval(interval string) BinanceKlinesService {
	w.service.Interval(interval)

	return w
}

func (w *binanceKlinesWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

// BinanceSupplier reads spot klines from the public Binance API.
type BinanceSupplier struct {
	apiClient BinanceAPIClient
}

func NewBinanceSupplier() *BinanceSupplier {
	return NewBinanceSupplierWithAPI(&binanceAPIWrapper{client: binance.NewClient("", "")})
}

func NewBinanceSupplierWithAPI(api BinanceAPIClient) *BinanceSupplier {
	return &BinanceSupplier{apiClient: api}
}

func (c *BinanceSupplier) Name() string {
	return string(SupplierBinance)
}

// GetHistoricalCandles pages through klines until the range is covered or a short page comes back.
func (c *BinanceSupplier) GetHistoricalCandles(ctx context.Context, req CandleRequest) ([]types.Candle, error) {
	interval, err := binanceInterval(req.Timeframe)
	if err != nil {
		return nil, err
	}

	endMillis := req.To.UnixMilli()
	current := req.From.UnixMilli()

	var candles []types.Candle

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		klines, err := c.apiClient.NewKlinesService().
			Symbol(req.Symbol).
			Interval(interval).
			StartTime(current).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines from Binance", req.Symbol)
		}

		page, err := convertKlines(klines)
		if err != nil {
			return nil, err
		}

		candles = append(candles, page...)

		if len(klines) < binancePageSize {
			break
		}

		// continue after the close of the last kline to avoid duplicates
		current = klines[len(klines)-1].CloseTime + 1
		if current >= endMillis {
			break
		}
	}

	return candles, nil
}

// convertKlines parses Binance's string-encoded prices into candles.
func convertKlines(klines []*binance.Kline) ([]types.Candle, error) {
	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		var values [5]float64

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q at %d", raw, k.OpenTime)
			}

			values[i] = v
		}

		candles = append(candles, types.Candle{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}

	return candles, nil
}
