package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInitialCapital    = 10000.0
	DefaultFeeBps            = 10.0
	DefaultSlippageBps       = 5.0
	DefaultLookbackWindow    = 200
	DefaultFlattenConfidence = 0.5
)

type BacktestEngineV1Config struct {
	InitialCapital float64               `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in quote currency,minimum=0"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" validate:"oneof=basis_points interactive_broker zero_commission" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	FeeBps         float64               `yaml:"fee_bps" json:"fee_bps" validate:"gte=0,lte=1000" jsonschema:"title=Fee,description=Commission in basis points of notional for the basis_points broker,minimum=0"`
	SlippageBps    float64               `yaml:"slippage_bps" json:"slippage_bps" validate:"gte=0,lte=1000" jsonschema:"title=Slippage,description=Constant slippage in basis points applied against every fill,minimum=0"`
	// LookbackWindow caps how many candles are handed to the indicators each step. 0 means the full history.
	LookbackWindow int `yaml:"lookback_window" json:"lookback_window" validate:"gte=0" jsonschema:"title=Lookback Window,minimum=0"`
	// DecimalPrecision rounds position sizes down. Negative leaves sizes unrounded.
	DecimalPrecision int `yaml:"decimal_precision" json:"decimal_precision" jsonschema:"title=Decimal Precision,description=Quantity precision; negative for unrounded"`
	// FlattenConfidence is the confidence a flat decision needs to close a position it does not favour.
	FlattenConfidence    float64                    `yaml:"flatten_confidence" json:"flatten_confidence" validate:"gte=0,lte=1" jsonschema:"title=Flatten Confidence,minimum=0,maximum=1"`
	IndicatorParallelism int                        `yaml:"indicator_parallelism" json:"indicator_parallelism" validate:"gte=0" jsonschema:"title=Indicator Parallelism"`
	StartTime            optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime              optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Missing fields keep their defaults.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialCapital       *float64              `yaml:"initial_capital"`
		Broker               commission_fee.Broker `yaml:"broker"`
		FeeBps               *float64              `yaml:"fee_bps"`
		SlippageBps          *float64              `yaml:"slippage_bps"`
		LookbackWindow       *int                  `yaml:"lookback_window"`
		DecimalPrecision     *int                  `yaml:"decimal_precision"`
		FlattenConfidence    *float64              `yaml:"flatten_confidence"`
		IndicatorParallelism int                   `yaml:"indicator_parallelism"`
		StartTime            *time.Time            `yaml:"start_time"`
		EndTime              *time.Time            `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	*c = DefaultConfig()

	if config.InitialCapital != nil {
		c.InitialCapital = *config.InitialCapital
	}

	if config.Broker != "" {
		c.Broker = config.Broker
	}

	if config.FeeBps != nil {
		c.FeeBps = *config.FeeBps
	}

	if config.SlippageBps != nil {
		c.SlippageBps = *config.SlippageBps
	}

	if config.LookbackWindow != nil {
		c.LookbackWindow = *config.LookbackWindow
	}

	if config.DecimalPrecision != nil {
		c.DecimalPrecision = *config.DecimalPrecision
	}

	if config.FlattenConfidence != nil {
		c.FlattenConfidence = *config.FlattenConfidence
	}

	c.IndicatorParallelism = config.IndicatorParallelism

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

var configValidator = validator.New()

// Validate rejects configurations that cannot produce a meaningful simulation.
func (c BacktestEngineV1Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest engine config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && !c.EndTime.Unwrap().After(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeBacktestConfigError, "end_time must be after start_time")
	}

	return nil
}

// CommissionFee returns the fee model selected by Broker.
func (c BacktestEngineV1Config) CommissionFee() commission_fee.CommissionFee {
	return commission_fee.GetCommissionFeeHandler(c.Broker, c.FeeBps)
}

// SlippageRate is the slippage as a fraction of price.
func (c BacktestEngineV1Config) SlippageRate() float64 {
	return c.SlippageBps / 10000
}

// ParseConfig reads a YAML engine configuration and validates it.
func ParseConfig(content string) (BacktestEngineV1Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return config, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest engine config", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if strings.Contains(t.String(), "optional.Option[time.Time]") {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns the engine defaults: 10 bps fees, 5 bps slippage, 200 candle lookback.
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital:       DefaultInitialCapital,
		Broker:               commission_fee.BrokerBasisPoints,
		FeeBps:               DefaultFeeBps,
		SlippageBps:          DefaultSlippageBps,
		LookbackWindow:       DefaultLookbackWindow,
		DecimalPrecision:     -1,
		FlattenConfidence:    DefaultFlattenConfidence,
		IndicatorParallelism: 0,
		StartTime:            optional.None[time.Time](),
		EndTime:              optional.None[time.Time](),
	}
}

// FrictionlessConfig has no fees and no slippage. Used by tests and what-if runs.
func FrictionlessConfig() BacktestEngineV1Config {
	c := DefaultConfig()
	c.Broker = commission_fee.BrokerZero
	c.FeeBps = 0
	c.SlippageBps = 0

	return c
}
