package main

import (
	"context"
	"fmt"

	engine_v1 "github.com/rxtech-lab/argo-gate/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata"
	"github.com/rxtech-lab/argo-gate/pkg/strategy"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:      "schema",
		Usage:     "Print the JSON schema of a config file",
		ArgsUsage: "[strategy|engine|download]",
		Action:    schemaAction,
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	switch kind := cmd.Args().First(); kind {
	case "", "strategy":
		schema, err = strategy.ConfigSchema()
	case "engine":
		config := engine_v1.DefaultConfig()
		schema, err = config.GenerateSchemaJSON()
	case "download":
		schema, err = marketdata.GetDownloadConfigSchema()
	default:
		return fmt.Errorf("unknown schema %q", kind)
	}

	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}
