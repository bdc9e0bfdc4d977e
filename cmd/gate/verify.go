package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/internal/verify"
	"github.com/urfave/cli/v3"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Recompute the PnL of a saved backtest result and flag unrealistic numbers",
		ArgsUsage: "RESULT_JSON",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "Exit with an error on warnings as well as mismatches"},
		},
		Action: verifyAction,
	}
}

func verifyAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("verify needs the path of a backtest result")
	}

	result, err := types.ReadBacktestResult(path)
	if err != nil {
		return err
	}

	report := verify.Verify(result)

	if err := printJSON(report); err != nil {
		return err
	}

	if !report.Consistent() {
		return fmt.Errorf("result %s is inconsistent: %d PnL mismatches", path, len(report.Mismatches))
	}

	if cmd.Bool("strict") && len(report.Warnings) > 0 {
		return fmt.Errorf("result %s has %d realism warnings", path, len(report.Warnings))
	}

	return nil
}
