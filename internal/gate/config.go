package gate

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

const (
	DefaultTrials              = 5
	DefaultMinSuccessfulTrials = 3
	DefaultMaxAttempts         = 3
	DefaultInitialBackoff      = 100 * time.Millisecond
	DefaultConcurrency         = 4
	DefaultWindow              = 30 * 24 * time.Hour
	DefaultWindowStep          = 7 * 24 * time.Hour
	DefaultMinCandles          = 30
	DefaultMinRecentTrades     = 10
	DefaultRecentLookbackDays  = 30
	DefaultRecentEquity        = 10_000
)

// Config controls how the gate samples trials and judges recent history.
type Config struct {
	// Trials is the number of independent backtest windows.
	Trials int `yaml:"trials" json:"trials" validate:"gte=1"`
	// MinSuccessfulTrials below which the check fails without evaluating thresholds.
	MinSuccessfulTrials int `yaml:"min_successful_trials" json:"minSuccessfulTrials" validate:"gte=1,ltefield=Trials"`
	// MaxAttempts counts the first try of a trial.
	MaxAttempts    int           `yaml:"max_attempts" json:"maxAttempts" validate:"gte=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initialBackoff" validate:"gte=0"`
	Concurrency    int           `yaml:"concurrency" json:"concurrency" validate:"gte=1"`
	// Window is the length of one trial; trial i ends Step*i before now.
	Window     time.Duration `yaml:"window" json:"window" validate:"gt=0"`
	WindowStep time.Duration `yaml:"window_step" json:"windowStep" validate:"gte=0"`
	MinCandles int           `yaml:"min_candles" json:"minCandles" validate:"gte=1"`
	// Budget caps the wall time of one check. Zero disables it.
	Budget time.Duration `yaml:"budget" json:"budget" validate:"gte=0"`

	MinRecentTrades    int     `yaml:"min_recent_trades" json:"minRecentTrades" validate:"gte=1"`
	RecentLookbackDays int     `yaml:"recent_lookback_days" json:"recentLookbackDays" validate:"gte=1"`
	RecentEquity       float64 `yaml:"recent_equity" json:"recentEquity" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		Trials:              DefaultTrials,
		MinSuccessfulTrials: DefaultMinSuccessfulTrials,
		MaxAttempts:         DefaultMaxAttempts,
		InitialBackoff:      DefaultInitialBackoff,
		Concurrency:         DefaultConcurrency,
		Window:              DefaultWindow,
		WindowStep:          DefaultWindowStep,
		MinCandles:          DefaultMinCandles,
		Budget:              0,
		MinRecentTrades:     DefaultMinRecentTrades,
		RecentLookbackDays:  DefaultRecentLookbackDays,
		RecentEquity:        DefaultRecentEquity,
	}
}

var configValidator = validator.New()

func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid gate config", err)
	}

	return nil
}
