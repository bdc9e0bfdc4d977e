package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// SupplierType identifies a candle source.
type SupplierType string

const (
	SupplierPolygon SupplierType = "polygon"
	SupplierBinance SupplierType = "binance"
	SupplierFile    SupplierType = "file"
)

// CandleRequest selects a candle series. From and To are inclusive.
type CandleRequest struct {
	Symbol    string          `validate:"required"`
	Timeframe types.Timeframe `validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d"`
	From      time.Time       `validate:"required"`
	To        time.Time       `validate:"required,gtfield=From"`
	// ChainID and BaseAsset identify on-chain markets; exchange suppliers ignore them.
	ChainID   int64
	BaseAsset string
}

// CandleSupplier returns historical candles, oldest first.
// Suppliers may return fewer candles than the range holds.
type CandleSupplier interface {
	Name() string
	GetHistoricalCandles(ctx context.Context, req CandleRequest) ([]types.Candle, error)
}

// NewCandleSupplier creates a supplier based on the supplier type.
// Polygon expects the API key as config, file expects the data path.
func NewCandleSupplier(supplierType SupplierType, config any) (CandleSupplier, error) {
	switch supplierType {
	case SupplierBinance:
		return NewBinanceSupplier(), nil
	case SupplierPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("polygon supplier requires API key string config")
		}

		supplier, err := NewPolygonSupplier(apiKey)
		if err != nil {
			return nil, err
		}

		return supplier, nil
	case SupplierFile:
		path, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("file supplier requires a data path string config")
		}

		supplier, err := NewFileSupplier(path)
		if err != nil {
			return nil, err
		}

		return supplier, nil
	default:
		return nil, fmt.Errorf("unsupported candle supplier: %s", supplierType)
	}
}
