package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	engine_v1 "github.com/rxtech-lab/argo-gate/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-gate/internal/decision/remote"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/metrics"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-gate/pkg/store"
	"github.com/rxtech-lab/argo-gate/pkg/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the collaborators shared by every command.
type app struct {
	log     *logger.Logger
	metrics *metrics.Collector
	server  *http.Server
}

func newAppContext(cmd *cli.Command) (*app, error) {
	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{log: log, metrics: metrics.NewCollector()}

	if addr := cmd.String("metrics-addr"); addr != "" {
		a.server = a.metrics.Serve(addr)

		go func() {
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("Metrics server stopped", zap.Error(err))
			}
		}()

		log.Info("Serving metrics", zap.String("addr", addr))
	}

	return a, nil
}

func (a *app) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = a.server.Shutdown(ctx)
	}

	_ = a.log.Sync()
}

var strategyFlag = &cli.StringFlag{
	Name:     "strategy",
	Aliases:  []string{"s"},
	Usage:    "Strategy config file (`.yaml` or .json)",
	Required: true,
}

// engineFlags configure the backtest engine and the optional remote decision provider.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "engine-config",
			Usage: "Backtest engine config YAML; defaults apply when omitted",
		},
		&cli.StringFlag{
			Name:    "decision-endpoint",
			Usage:   "Base URL of an external decision service",
			Sources: cli.EnvVars("ARGO_DECISION_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "decision-api-key",
			Usage:   "Bearer token for the decision service",
			Sources: cli.EnvVars("ARGO_DECISION_API_KEY"),
		},
		&cli.StringFlag{
			Name:  "results",
			Usage: "Write per-run decisions and results under this folder",
		},
	}
}

// supplierFlags select where candles come from.
func supplierFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "supplier",
			Aliases: []string{"p"},
			Usage:   fmt.Sprintf("Candle supplier (%s, %s, %s)", provider.SupplierBinance, provider.SupplierPolygon, provider.SupplierFile),
			Value:   string(provider.SupplierBinance),
		},
		&cli.StringFlag{
			Name:  "data",
			Usage: "Parquet or CSV file read by the file supplier",
		},
		&cli.StringFlag{
			Name:    "polygon-api-key",
			Sources: cli.EnvVars("POLYGON_API_KEY"),
		},
		&cli.FloatFlag{
			Name:  "rps",
			Usage: "Max candle requests per second; 0 is unlimited",
			Value: 5,
		},
	}
}

func (a *app) loadStrategy(cmd *cli.Command) (types.StrategyConfig, error) {
	cfg, err := strategy.LoadConfig(cmd.String(strategyFlag.Name))
	if err != nil {
		a.log.Error("Failed to load strategy config", zap.Error(err))
		return cfg, err
	}

	return cfg, nil
}

func (a *app) newEngine(cmd *cli.Command) (*engine_v1.BacktestEngineV1, error) {
	config := engine_v1.DefaultConfig()

	if path := cmd.String("engine-config"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read engine config: %w", err)
		}

		config, err = engine_v1.ParseConfig(string(content))
		if err != nil {
			return nil, err
		}
	}

	opts := []engine_v1.Option{
		engine_v1.WithLogger(a.log),
		engine_v1.WithMetrics(a.metrics),
	}

	if endpoint := cmd.String("decision-endpoint"); endpoint != "" {
		p := remote.NewProvider(remote.Config{
			Endpoint:       endpoint,
			APIKey:         cmd.String("decision-api-key"),
			MaxAttempts:    remote.DefaultMaxAttempts,
			InitialBackoff: remote.DefaultInitialBackoff,
		}, a.log)
		opts = append(opts, engine_v1.WithDecisionProvider(p))
	}

	if folder := cmd.String("results"); folder != "" {
		opts = append(opts, engine_v1.WithResultsFolder(folder))
	}

	return engine_v1.NewBacktestEngineV1(config, opts...)
}

func (a *app) newSupplier(cmd *cli.Command) (*marketdata.Client, error) {
	return marketdata.NewClient(marketdata.ClientConfig{
		Supplier:          provider.SupplierType(cmd.String("supplier")),
		PolygonApiKey:     cmd.String("polygon-api-key"),
		DataPath:          cmd.String("data"),
		RequestsPerSecond: cmd.Float("rps"),
		Burst:             1,
	}, marketdata.WithLogger(a.log), marketdata.WithMetrics(a.metrics))
}

func (a *app) openStore(cmd *cli.Command) (*store.DuckDBStore, error) {
	return store.NewDuckDBStore(cmd.String("db"))
}

// progress draws on stderr so stdout stays machine readable.
func progress(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
