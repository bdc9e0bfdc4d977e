package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/backtest/engine"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "symbol",
			Usage: "Symbol to backtest; defaults to the first symbol of the strategy universe",
		},
		&cli.TimestampFlag{
			Name:   "from",
			Usage:  "Start date in `YYYY-MM-DD` format; defaults to 30 days before --to",
			Config: cli.TimestampConfig{Layouts: []string{"2006-01-02", time.RFC3339}},
		},
		&cli.TimestampFlag{
			Name:   "to",
			Usage:  "End date in `YYYY-MM-DD` format; defaults to now",
			Config: cli.TimestampConfig{Layouts: []string{"2006-01-02", time.RFC3339}},
		},
	}
}

// candleRequest builds the request for the range flags.
func candleRequest(cmd *cli.Command, cfg types.StrategyConfig) provider.CandleRequest {
	symbol := cmd.String("symbol")
	if symbol == "" {
		symbol = cfg.Universe[0]
	}

	to := cmd.Timestamp("to")
	if to.IsZero() {
		to = time.Now().UTC()
	}

	from := cmd.Timestamp("from")
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}

	return provider.CandleRequest{
		Symbol:    symbol,
		Timeframe: cfg.Timeframe,
		From:      from,
		To:        to,
		ChainID:   cfg.ChainID,
		BaseAsset: cfg.BaseAsset,
	}
}

func backtestCommand() *cli.Command {
	flags := []cli.Flag{
		strategyFlag,
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the full result as JSON to this file",
		},
		&cli.BoolFlag{
			Name:  "record",
			Usage: "Record the closed trades for recent-performance checks",
		},
	}
	flags = append(flags, rangeFlags()...)
	flags = append(flags, supplierFlags()...)
	flags = append(flags, engineFlags()...)

	return &cli.Command{
		Name:   "backtest",
		Usage:  "Run one backtest and print its metrics",
		Flags:  flags,
		Action: backtestAction,
	}
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := a.loadStrategy(cmd)
	if err != nil {
		return err
	}

	eng, err := a.newEngine(cmd)
	if err != nil {
		return err
	}

	supplier, err := a.newSupplier(cmd)
	if err != nil {
		return err
	}

	req := candleRequest(cmd, cfg)

	candles, err := supplier.GetHistoricalCandles(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to fetch candles for %s: %w", req.Symbol, err)
	}

	bar := progress(len(candles), "backtest "+req.Symbol)
	onProcess := engine.OnProcessDataCallback(func(current, _ int) error {
		return bar.Set(current)
	})

	result, err := eng.Run(ctx, req.Symbol, candles, cfg, engine.LifecycleCallbacks{OnProcessData: &onProcess})
	_ = bar.Finish()

	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := types.WriteBacktestResult(path, result); err != nil {
			return err
		}

		a.log.Info("Backtest result written", zap.String("path", path))
	}

	if cmd.Bool("record") {
		s, err := a.openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.RecordTrades(ctx, cfg.ID, types.ClosedTrades(result.Trades)); err != nil {
			return err
		}
	}

	return printJSON(map[string]any{
		"symbol":         result.Symbol,
		"candles":        result.Candles,
		"finalEquity":    result.FinalEquity,
		"totalReturnPct": result.TotalReturnPct,
		"maxDrawdown":    result.MaxDrawdown,
		"performance":    result.Performance,
	})
}
