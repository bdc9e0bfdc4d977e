package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// getResultFolder returns <results>/<strategy id>/<symbol>_<first candle>_<last candle>.
func getResultFolder(resultsFolder string, cfg types.StrategyConfig, symbol string, candles []types.Candle) string {
	strategyFolder := filepath.Join(resultsFolder, sanitize(cfg.ID))

	timeRange := "empty"
	if len(candles) > 0 {
		timeRange = fmt.Sprintf("%s_%s",
			candles[0].Timestamp.UTC().Format("20060102"),
			candles[len(candles)-1].Timestamp.UTC().Format("20060102"))
	}

	return filepath.Join(strategyFolder, fmt.Sprintf("%s_%s", sanitize(symbol), timeRange))
}

func sanitize(name string) string {
	return strings.NewReplacer("/", "-", "\\", "-", " ", "_", ":", "-").Replace(name)
}
