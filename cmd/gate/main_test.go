package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/gate"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"
)

type CommandTestSuite struct {
	suite.Suite
	dir string
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func (suite *CommandTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *CommandTestSuite) run(args ...string) error {
	return newApp().Run(context.Background(), append([]string{"argo-gate"}, args...))
}

func (suite *CommandTestSuite) writeResult(pnl float64) string {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trade := types.Trade{
		Symbol:     "BTCUSDT",
		Side:       types.PositionSideLong,
		Size:       1,
		EntryPrice: 100,
		ExitPrice:  optional.Some(110.0),
		Fees:       2,
		PnL:        pnl,
		OpenedAt:   at,
		Timestamp:  at.Add(time.Hour),
	}

	result := types.BacktestResult{
		Symbol:        "BTCUSDT",
		InitialEquity: 10000,
		FinalEquity:   10000 + pnl,
		Trades:        []types.Trade{trade},
		EquityCurve: []types.EquityPoint{
			{Timestamp: at, Equity: 10000},
			{Timestamp: at.Add(time.Hour), Equity: 10000 + pnl},
		},
	}

	path := filepath.Join(suite.dir, "result.json")
	suite.Require().NoError(types.WriteBacktestResult(path, result))

	return path
}

func (suite *CommandTestSuite) TestSchema() {
	for _, kind := range []string{"strategy", "engine", "download"} {
		suite.NoError(suite.run("schema", kind), kind)
	}

	suite.Error(suite.run("schema", "nope"))
}

func (suite *CommandTestSuite) TestGateConfigFromFlags() {
	var got gate.Config

	cmd := &cli.Command{
		Name:  "gate",
		Flags: gateFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			got = gateConfig(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"gate", "--strategy", "s.yaml", "--trials", "7", "--min-successful", "2", "--recent-days", "14"})
	suite.Require().NoError(err)

	defaults := gate.DefaultConfig()
	suite.Equal(7, got.Trials)
	suite.Equal(2, got.MinSuccessfulTrials)
	suite.Equal(14, got.RecentLookbackDays)
	suite.Equal(defaults.MaxAttempts, got.MaxAttempts)
	suite.Equal(defaults.Concurrency, got.Concurrency)
	suite.Equal(defaults.MinCandles, got.MinCandles)
	suite.Equal(defaults.Window, got.Window)
	suite.NoError(got.Validate())
}

func (suite *CommandTestSuite) TestVerify() {
	suite.NoError(suite.run("verify", suite.writeResult(8)))
	suite.Error(suite.run("verify", suite.writeResult(10)), "fees left out of the PnL")
	suite.Error(suite.run("verify"))
}

func (suite *CommandTestSuite) TestVerifyStrict() {
	// a single winning trade is an unrealistic win rate
	suite.Error(suite.run("verify", "--strict", suite.writeResult(8)))
}

func (suite *CommandTestSuite) TestReadSweepFile() {
	path := filepath.Join(suite.dir, "grid.yaml")
	content := `
ranges:
  stop_loss_pct: {min: 1, max: 3, step: 1}
  ema_fast: {min: 5, max: 10, step: 5}
filter:
  min_trades: 5
  min_win_rate: 0.4
top_n: 3
`
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	f, err := readSweepFile(path)
	suite.Require().NoError(err)
	suite.Equal(types.ParamRange{Min: 1, Max: 3, Step: 1}, f.Ranges["stop_loss_pct"])
	suite.Equal(5, f.Filter.MinTrades)
	suite.Require().NotNil(f.Filter.MinWinRate)
	suite.InDelta(0.4, *f.Filter.MinWinRate, 1e-9)
	suite.Equal(3, f.TopN)

	_, err = readSweepFile(filepath.Join(suite.dir, "absent.yaml"))
	suite.Error(err)
}

func (suite *CommandTestSuite) TestTrackWithoutHistory() {
	strategyPath := filepath.Join(suite.dir, "strategy.yaml")
	suite.Require().NoError(os.WriteFile(strategyPath, []byte("id: s1\nuniverse: [BTCUSDT]\ntimeframe: 1h\n"), 0644))

	suite.NoError(suite.run("--db", filepath.Join(suite.dir, "gate.duckdb"), "track", "--strategy", strategyPath))
}
