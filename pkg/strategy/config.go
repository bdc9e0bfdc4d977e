package strategy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format by file extension. Anything but .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// ParseConfig decodes and validates a strategy configuration.
func ParseConfig(data []byte, format Format) (types.StrategyConfig, error) {
	var (
		cfg types.StrategyConfig
		err error
	)

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported config format %q", format)
	}

	if err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse %s strategy config", format)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadConfig reads the strategy configuration at path.
func LoadConfig(path string) (types.StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.StrategyConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read strategy config %s", path)
	}

	return ParseConfig(data, FormatFromPath(path))
}
