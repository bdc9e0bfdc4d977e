package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-gate/pkg/store"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse recorded profitability checks interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Strategy id; prompts when empty"},
			&cli.IntFlag{Name: "days", Usage: "History window in days; 0 reads everything"},
		},
		Action: historyAction,
	}
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	s, err := store.NewDuckDBStore(cmd.String("db"))
	if err != nil {
		return err
	}
	defer s.Close()

	m := NewHistoryModel(s.GetHistory, cmd.String("id"), int(cmd.Int("days")))

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	return err
}
