package provider

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// binanceInterval maps a timeframe to a Binance kline interval.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func binanceInterval(tf types.Timeframe) (string, error) {
	switch tf {
	case types.Timeframe1m, types.Timeframe5m, types.Timeframe15m, types.Timeframe30m,
		types.Timeframe1h, types.Timeframe4h, types.Timeframe1d:
		return string(tf), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for Binance: %s", tf)
	}
}

// polygonTimespan maps a timeframe to a Polygon aggregate multiplier and timespan.
func polygonTimespan(tf types.Timeframe) (int, models.Timespan, error) {
	switch tf {
	case types.Timeframe1m:
		return 1, models.Minute, nil
	case types.Timeframe5m:
		return 5, models.Minute, nil
	case types.Timeframe15m:
		return 15, models.Minute, nil
	case types.Timeframe30m:
		return 30, models.Minute, nil
	case types.Timeframe1h:
		return 1, models.Hour, nil
	case types.Timeframe4h:
		return 4, models.Hour, nil
	case types.Timeframe1d:
		return 1, models.Day, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for Polygon: %s", tf)
	}
}
