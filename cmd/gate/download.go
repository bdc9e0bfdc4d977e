package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata"
	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical candles to a parquet file for the file supplier",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Symbol to download",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format",
				Config:   cli.TimestampConfig{Layouts: []string{"2006-01-02", time.RFC3339}},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:   "end",
				Usage:  "End date in `YYYY-MM-DD` format. Defaults to now.",
				Config: cli.TimestampConfig{Layouts: []string{"2006-01-02", time.RFC3339}},
			},
			&cli.StringFlag{
				Name:  "timeframe",
				Value: string(types.Timeframe1h),
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s, %s)", provider.SupplierBinance, provider.SupplierPolygon),
				Value:   string(provider.SupplierBinance),
			},
			&cli.StringFlag{
				Name:    "polygon-api-key",
				Sources: cli.EnvVars("POLYGON_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   "data",
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		Supplier:      provider.SupplierType(cmd.String("provider")),
		PolygonApiKey: cmd.String("polygon-api-key"),
	}, marketdata.WithLogger(a.log), marketdata.WithMetrics(a.metrics))
	if err != nil {
		return err
	}

	end := cmd.Timestamp("end")
	if end.IsZero() {
		end = time.Now().UTC()
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Request: provider.CandleRequest{
			Symbol:    cmd.String("ticker"),
			Timeframe: types.Timeframe(cmd.String("timeframe")),
			From:      cmd.Timestamp("start"),
			To:        end,
		},
		DataPath: cmd.String("data"),
	})
	if err != nil {
		return err
	}

	a.log.Info("Download completed", zap.String("path", path))
	fmt.Println(path)

	return nil
}
