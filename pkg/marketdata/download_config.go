package marketdata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-gate/pkg/strategy"
)

// DownloadConfig describes one download job.
type DownloadConfig struct {
	Supplier  string `json:"supplier" yaml:"supplier" jsonschema:"title=Supplier,enum=polygon,enum=binance" validate:"required,oneof=polygon binance"`
	Ticker    string `json:"ticker" yaml:"ticker" jsonschema:"title=Ticker,description=The trading symbol to download data for (e.g. SPY or BTCUSDT),required" validate:"required"`
	StartDate string `json:"startDate" yaml:"startDate" jsonschema:"title=Start Date,description=RFC3339 start time,format=date-time,required" validate:"required"`
	EndDate   string `json:"endDate" yaml:"endDate" jsonschema:"title=End Date,description=RFC3339 end time,format=date-time,required" validate:"required"`
	Timeframe string `json:"timeframe" yaml:"timeframe" jsonschema:"title=Timeframe,enum=1m,enum=5m,enum=15m,enum=30m,enum=1h,enum=4h,enum=1d" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d"`
	ApiKey    string `json:"apiKey,omitempty" yaml:"apiKey,omitempty" jsonschema:"title=API Key,description=Polygon.io API key" validate:"required_if=Supplier polygon"`
}

var downloadValidator = validator.New()

// Validate checks the fields and the RFC3339 dates.
func (c *DownloadConfig) Validate() error {
	if err := downloadValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	start, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid startDate format, expected RFC3339", err)
	}

	end, err := time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid endDate format, expected RFC3339", err)
	}

	if !end.After(start) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "endDate must be after startDate")
	}

	return nil
}

// ToDownloadParams converts the config into download parameters writing under dataPath.
func (c *DownloadConfig) ToDownloadParams(dataPath string) (DownloadParams, error) {
	if err := c.Validate(); err != nil {
		return DownloadParams{}, err
	}

	start, _ := time.Parse(time.RFC3339, c.StartDate)
	end, _ := time.Parse(time.RFC3339, c.EndDate)

	return DownloadParams{
		Request: provider.CandleRequest{
			Symbol:    c.Ticker,
			Timeframe: types.Timeframe(c.Timeframe),
			From:      start.UTC(),
			To:        end.UTC(),
		},
		DataPath: dataPath,
	}, nil
}

func (c *DownloadConfig) ToClientConfig() ClientConfig {
	return ClientConfig{
		Supplier:          provider.SupplierType(c.Supplier),
		PolygonApiKey:     c.ApiKey,
		DataPath:          "",
		RequestsPerSecond: 0,
		Burst:             0,
	}
}

// ParseDownloadConfig parses and validates a JSON download config.
func ParseDownloadConfig(jsonConfig string) (*DownloadConfig, error) {
	var config DownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetDownloadConfigSchema returns the JSON schema of DownloadConfig.
func GetDownloadConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return strategy.ToJSONSchema(DownloadConfig{})
}
