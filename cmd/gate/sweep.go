package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-gate/internal/sweep"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// sweepFile is the YAML grid definition read by the sweep command.
type sweepFile struct {
	Ranges map[string]types.ParamRange `yaml:"ranges"`
	Filter sweep.Filter                `yaml:"filter"`
	TopN   int                         `yaml:"top_n"`
}

func readSweepFile(path string) (sweepFile, error) {
	var f sweepFile

	content, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read sweep file: %w", err)
	}

	if err := yaml.Unmarshal(content, &f); err != nil {
		return f, fmt.Errorf("failed to parse sweep file: %w", err)
	}

	return f, nil
}

func sweepCommand() *cli.Command {
	flags := []cli.Flag{
		strategyFlag,
		&cli.StringFlag{
			Name:     "grid",
			Aliases:  []string{"g"},
			Usage:    "YAML file with ranges, filter and top_n",
			Required: true,
		},
		&cli.IntFlag{Name: "top", Usage: "Overrides top_n of the grid file"},
		&cli.IntFlag{Name: "concurrency", Value: sweep.DefaultConcurrency},
		&cli.DurationFlag{Name: "budget", Usage: "Wall time cap for the sweep; 0 disables it"},
		&cli.IntFlag{Name: "max-candidates", Usage: "Reject grids larger than this; 0 disables the check"},
	}
	flags = append(flags, rangeFlags()...)
	flags = append(flags, supplierFlags()...)
	flags = append(flags, engineFlags()...)

	return &cli.Command{
		Name:   "sweep",
		Usage:  "Backtest every parameter combination of a grid and rank the survivors",
		Flags:  flags,
		Action: sweepAction,
	}
}

func sweepAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := a.loadStrategy(cmd)
	if err != nil {
		return err
	}

	grid, err := readSweepFile(cmd.String("grid"))
	if err != nil {
		return err
	}

	if top := cmd.Int("top"); top > 0 {
		grid.TopN = int(top)
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

	bar := progress(-1, "sweep "+cfg.ID)

	sweeper := sweep.NewSweeper(eng,
		sweep.WithConcurrency(int(cmd.Int("concurrency"))),
		sweep.WithBudget(cmd.Duration("budget")),
		sweep.WithMaxCandidates(int(cmd.Int("max-candidates"))),
		sweep.WithLogger(a.log),
		sweep.WithMetrics(a.metrics),
		sweep.WithProgress(func(done, total int) {
			bar.ChangeMax(total)
			_ = bar.Set(done)
		}),
	)

	report, err := sweeper.Run(ctx, sweep.Request{
		Base:    cfg,
		Symbol:  req.Symbol,
		Candles: candles,
		Ranges:  grid.Ranges,
		Filter:  grid.Filter,
		TopN:    grid.TopN,
	})
	_ = bar.Finish()

	if err != nil {
		return err
	}

	return printJSON(report)
}
