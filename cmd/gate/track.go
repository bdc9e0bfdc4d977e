package main

import (
	"context"

	"github.com/rxtech-lab/argo-gate/internal/tracker"
	"github.com/urfave/cli/v3"
)

func trackCommand() *cli.Command {
	return &cli.Command{
		Name:  "track",
		Usage: "Show the profitability trend and a time-to-pass estimate from check history",
		Flags: []cli.Flag{
			strategyFlag,
			&cli.IntFlag{Name: "days", Usage: "History window in days; 0 reads everything", Value: 90},
		},
		Action: trackAction,
	}
}

func trackAction(ctx context.Context, cmd *cli.Command) error {
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

	report, err := tracker.NewTracker(s, a.log).Track(ctx, cfg, int(cmd.Int("days")))
	if err != nil {
		return err
	}

	return printJSON(report)
}
