package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/metrics"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/writer"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	Supplier      provider.SupplierType `validate:"required,oneof=polygon binance file"`
	PolygonApiKey string                `validate:"required_if=Supplier polygon"`
	// DataPath is the parquet or csv file read by the file supplier.
	DataPath string `validate:"required_if=Supplier file"`
	// RequestsPerSecond bounds the fetch rate across every caller of the client. Zero is unlimited.
	RequestsPerSecond float64 `validate:"gte=0"`
	Burst             int     `validate:"gte=0"`
}

type ClientOption func(*Client)

func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

func WithMetrics(m *metrics.Collector) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client wraps a candle supplier with request validation, rate limiting and series checks.
// It is itself a provider.CandleSupplier and is safe for concurrent use.
type Client struct {
	supplier provider.CandleSupplier
	limiter  *rate.Limiter
	validate *validator.Validate
	log      *logger.Logger
	metrics  *metrics.Collector
}

// NewClient creates the supplier named by config.
func NewClient(config ClientConfig, opts ...ClientOption) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid market data client configuration", err)
	}

	var supplierConfig any

	switch config.Supplier {
	case provider.SupplierPolygon:
		supplierConfig = config.PolygonApiKey
	case provider.SupplierFile:
		supplierConfig = config.DataPath
	case provider.SupplierBinance:
	}

	supplier, err := provider.NewCandleSupplier(config.Supplier, supplierConfig)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "failed to create candle supplier", err)
	}

	return NewClientWithSupplier(supplier, config.RequestsPerSecond, config.Burst, opts...), nil
}

// NewClientWithSupplier wraps an existing supplier. A zero rps disables rate limiting.
func NewClientWithSupplier(supplier provider.CandleSupplier, rps float64, burst int, opts ...ClientOption) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	c := &Client{
		supplier: supplier,
		limiter:  rate.NewLimiter(limit, max(burst, 1)),
		validate: validator.New(),
		log:      logger.NewNopLogger(),
		metrics:  nil,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Name() string {
	return c.supplier.Name()
}

// GetHistoricalCandles fetches and validates a series. An empty or malformed series is
// reported as an InsufficientDataError so callers can treat it as a routine outcome.
func (c *Client) GetHistoricalCandles(ctx context.Context, req provider.CandleRequest) ([]types.Candle, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid candle request", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	started := time.Now()
	candles, err := c.supplier.GetHistoricalCandles(ctx, req)
	c.metrics.ObserveMarketData(c.supplier.Name(), err)

	if err != nil {
		c.log.Warn("Candle fetch failed",
			zap.String("supplier", c.supplier.Name()),
			zap.String("symbol", req.Symbol),
			zap.Error(err),
		)

		return nil, err
	}

	c.log.Debug("Fetched candles",
		zap.String("supplier", c.supplier.Name()),
		zap.String("symbol", req.Symbol),
		zap.Int("count", len(candles)),
		zap.Duration("took", time.Since(started)),
	)

	if err := ValidateCandles(req.Symbol, candles, 1); err != nil {
		return nil, err
	}

	return candles, nil
}

// ValidateCandles checks that the series has at least minCount well-formed candles in
// strictly increasing time order.
func ValidateCandles(symbol string, candles []types.Candle, minCount int) error {
	if len(candles) < minCount {
		return errors.NewInsufficientDataErrorf(minCount, len(candles), symbol,
			"got %d candles for %s, need %d", len(candles), symbol, minCount)
	}

	if err := types.ValidateSeries(candles); err != nil {
		return errors.NewInsufficientDataErrorf(minCount, len(candles), symbol, "invalid candle series for %s: %v", symbol, err)
	}

	return nil
}

// DownloadParams selects a series to download.
type DownloadParams struct {
	Request provider.CandleRequest
	// DataPath is the directory the parquet file is written to.
	DataPath string `validate:"required"`
}

// OutputPath is the parquet file Download writes: SYMBOL_START_END_TIMEFRAME.parquet.
func (p DownloadParams) OutputPath() string {
	name := fmt.Sprintf("%s_%s_%s_%s.parquet",
		sanitizeSymbol(p.Request.Symbol),
		p.Request.From.Format("2006-01-02"),
		p.Request.To.Format("2006-01-02"),
		p.Request.Timeframe)

	return filepath.Join(p.DataPath, name)
}

// Download fetches a series and stores it as parquet for the file supplier.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	candles, err := c.GetHistoricalCandles(ctx, params.Request)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(params.DataPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	w := writer.NewDuckDBWriter(params.OutputPath())
	if err := w.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	defer func() {
		if cerr := w.Close(); cerr != nil {
			c.log.Warn("Failed to close writer", zap.Error(cerr))
		}
	}()

	for _, candle := range candles {
		if err := w.Write(params.Request.Symbol, candle); err != nil {
			return "", err
		}
	}

	path, err := w.Finalize()
	if err != nil {
		return "", err
	}

	c.log.Info("Downloaded candles",
		zap.String("symbol", params.Request.Symbol),
		zap.Int("count", len(candles)),
		zap.String("path", path),
	)

	return path, nil
}

func sanitizeSymbol(symbol string) string {
	out := []rune(symbol)
	for i, r := range out {
		if r == '/' || r == ':' || r == '\\' || r == ' ' {
			out[i] = '_'
		}
	}

	return string(out)
}
