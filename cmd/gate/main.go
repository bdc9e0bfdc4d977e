package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-gate/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-gate",
		Usage:   "Backtest strategies and gate them on profitability",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address while the command runs (e.g. :9090)",
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "DuckDB file holding check history and recorded trades",
				Value:   "argo-gate.duckdb",
				Sources: cli.EnvVars("ARGO_GATE_DB"),
			},
		},
		Commands: []*cli.Command{
			backtestCommand(),
			gateCommand(),
			recentCommand(),
			sweepCommand(),
			trackCommand(),
			verifyCommand(),
			schemaCommand(),
			downloadCommand(),
			historyCommand(),
		},
	}
}
