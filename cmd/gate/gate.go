package main

import (
	"context"

	"github.com/rxtech-lab/argo-gate/internal/gate"
	"github.com/urfave/cli/v3"
)

func gateFlags() []cli.Flag {
	defaults := gate.DefaultConfig()

	return []cli.Flag{
		strategyFlag,
		&cli.IntFlag{Name: "trials", Value: int64(defaults.Trials)},
		&cli.IntFlag{Name: "min-successful", Usage: "Successful trials needed before thresholds are evaluated", Value: int64(defaults.MinSuccessfulTrials)},
		&cli.IntFlag{Name: "max-attempts", Value: int64(defaults.MaxAttempts)},
		&cli.IntFlag{Name: "concurrency", Value: int64(defaults.Concurrency)},
		&cli.DurationFlag{Name: "window", Usage: "Length of one trial window", Value: defaults.Window},
		&cli.DurationFlag{Name: "window-step", Usage: "Offset between trial windows", Value: defaults.WindowStep},
		&cli.IntFlag{Name: "min-candles", Value: int64(defaults.MinCandles)},
		&cli.DurationFlag{Name: "budget", Usage: "Wall time cap for the whole check; 0 disables it"},
		&cli.IntFlag{Name: "min-recent-trades", Value: int64(defaults.MinRecentTrades)},
		&cli.IntFlag{Name: "recent-days", Value: int64(defaults.RecentLookbackDays)},
		&cli.FloatFlag{Name: "recent-equity", Usage: "Equity the recent PnL is measured against", Value: defaults.RecentEquity},
	}
}

func gateConfig(cmd *cli.Command) gate.Config {
	c := gate.DefaultConfig()
	c.Trials = int(cmd.Int("trials"))
	c.MinSuccessfulTrials = int(cmd.Int("min-successful"))
	c.MaxAttempts = int(cmd.Int("max-attempts"))
	c.Concurrency = int(cmd.Int("concurrency"))
	c.Window = cmd.Duration("window")
	c.WindowStep = cmd.Duration("window-step")
	c.MinCandles = int(cmd.Int("min-candles"))
	c.Budget = cmd.Duration("budget")
	c.MinRecentTrades = int(cmd.Int("min-recent-trades"))
	c.RecentLookbackDays = int(cmd.Int("recent-days"))
	c.RecentEquity = cmd.Float("recent-equity")

	return c
}

func gateCommand() *cli.Command {
	flags := gateFlags()
	flags = append(flags, supplierFlags()...)
	flags = append(flags, engineFlags()...)

	return &cli.Command{
		Name:   "gate",
		Usage:  "Run the backtest profitability gate and record the verdict",
		Flags:  flags,
		Action: gateAction,
	}
}

func gateAction(ctx context.Context, cmd *cli.Command) error {
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

	s, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	config := gateConfig(cmd)
	bar := progress(config.Trials, "gate "+cfg.ID)

	g, err := gate.NewGate(eng, supplier,
		gate.WithConfig(config),
		gate.WithStore(s),
		gate.WithLogger(a.log),
		gate.WithMetrics(a.metrics),
		gate.WithTrialCallback(func(gate.TrialOutcome) { _ = bar.Add(1) }),
	)
	if err != nil {
		return err
	}

	check, err := g.Check(ctx, cfg)
	_ = bar.Finish()

	if err != nil {
		return err
	}

	return printJSON(check)
}

func recentCommand() *cli.Command {
	return &cli.Command{
		Name:   "recent",
		Usage:  "Judge the recorded trades of the last days against the thresholds",
		Flags:  gateFlags(),
		Action: recentAction,
	}
}

func recentAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := a.loadStrategy(cmd)
	if err != nil {
		return err
	}

	s, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := gate.NewRecentGate(s,
		gate.WithConfig(gateConfig(cmd)),
		gate.WithStore(s),
		gate.WithLogger(a.log),
		gate.WithMetrics(a.metrics),
	)
	if err != nil {
		return err
	}

	check, err := g.CheckRecent(ctx, cfg)
	if err != nil {
		return err
	}

	return printJSON(check)
}
