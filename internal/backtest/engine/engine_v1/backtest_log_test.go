package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/suite"
)

type BacktestLogTestSuite struct {
	suite.Suite
	log *BacktestLog
}

func TestBacktestLogSuite(t *testing.T) {
	suite.Run(t, new(BacktestLogTestSuite))
}

func (suite *BacktestLogTestSuite) SetupTest() {
	log, err := NewBacktestLog(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.log = log
}

func (suite *BacktestLogTestSuite) TearDownTest() {
	suite.NoError(suite.log.Close())
}

func (suite *BacktestLogTestSuite) entry(at time.Time, action types.Action) DecisionLogEntry {
	return DecisionLogEntry{
		Timestamp:             at,
		Symbol:                "BTCUSDT",
		Price:                 100,
		Action:                action,
		Confidence:            0.6,
		TargetPositionSizePct: 6,
		Source:                types.DecisionSourceFast,
		Strength:              4,
		Notes:                 "trend 4.76%",
	}
}

func (suite *BacktestLogTestSuite) TestLogAndRead() {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.log.Log(suite.entry(t0, types.ActionLong)))
	suite.Require().NoError(suite.log.Log(suite.entry(t0.Add(time.Hour), types.ActionFlat)))

	entries, err := suite.log.GetEntries()
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)

	suite.Equal(types.ActionLong, entries[0].Action)
	suite.Equal(types.ActionFlat, entries[1].Action)
	suite.True(t0.Equal(entries[0].Timestamp))
	suite.Equal(types.DecisionSourceFast, entries[0].Source)
	suite.Equal("trend 4.76%", entries[0].Notes)
	suite.InDelta(0.6, entries[0].Confidence, 1e-9)
}

func (suite *BacktestLogTestSuite) TestCount() {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []types.Action{types.ActionLong, types.ActionLong, types.ActionShort} {
		suite.Require().NoError(suite.log.Log(suite.entry(t0.Add(time.Duration(i)*time.Hour), action)))
	}

	counts, err := suite.log.Count()
	suite.Require().NoError(err)
	suite.Equal(2, counts[types.ActionLong])
	suite.Equal(1, counts[types.ActionShort])
	suite.Equal(0, counts[types.ActionFlat])
}

func (suite *BacktestLogTestSuite) TestCleanup() {
	suite.Require().NoError(suite.log.Log(suite.entry(time.Now().UTC(), types.ActionLong)))
	suite.Require().NoError(suite.log.Cleanup())

	entries, err := suite.log.GetEntries()
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *BacktestLogTestSuite) TestWriteParquet() {
	suite.Require().NoError(suite.log.Log(suite.entry(time.Now().UTC(), types.ActionLong)))

	dir := filepath.Join(suite.T().TempDir(), "run")
	suite.Require().NoError(suite.log.Write(dir))
	suite.FileExists(filepath.Join(dir, "decisions.parquet"))
}

func (suite *BacktestLogTestSuite) TestNilLog() {
	var log *BacktestLog

	suite.Error(log.Log(DecisionLogEntry{}))
	suite.NoError(log.Close())
}
