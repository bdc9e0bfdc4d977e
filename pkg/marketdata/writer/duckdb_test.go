package writer

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *DuckDBWriterTestSuite) candle(i int) types.Candle {
	price := 100 + float64(i)

	return types.Candle{
		Timestamp: time.Date(2024, 1, 1, i, 0, 0, 0, time.UTC),
		Open:      price,
		High:      price + 1,
		Low:       price - 1,
		Close:     price + 0.5,
		Volume:    1000,
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	w := NewDuckDBWriter(outputPath)

	duckWriter, ok := w.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(outputPath, duckWriter.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	w := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"))

	err := w.Write("BTCUSDT", suite.candle(0))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = w.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestFullWorkflow() {
	outputPath := filepath.Join(suite.tempDir, "candles.parquet")
	w := NewDuckDBWriter(outputPath)
	suite.Require().NoError(w.Initialize())

	defer w.Close()

	for i := 0; i < 5; i++ {
		suite.Require().NoError(w.Write("BTCUSDT", suite.candle(i)))
	}

	path, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)
	suite.FileExists(outputPath)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	defer db.Close()

	var (
		count int
		first float64
	)

	err = db.QueryRow(fmt.Sprintf(`SELECT COUNT(*), MIN(open) FROM read_parquet('%s') WHERE symbol = 'BTCUSDT'`, outputPath)).Scan(&count, &first)
	suite.Require().NoError(err)
	suite.Equal(5, count)
	suite.Equal(100.0, first)
}

func (suite *DuckDBWriterTestSuite) TestWriteAfterFinalize() {
	w := NewDuckDBWriter(filepath.Join(suite.tempDir, "after.parquet"))
	suite.Require().NoError(w.Initialize())

	defer w.Close()

	suite.Require().NoError(w.Write("BTCUSDT", suite.candle(0)))

	_, err := w.Finalize()
	suite.Require().NoError(err)

	suite.Error(w.Write("BTCUSDT", suite.candle(1)))

	_, err = w.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestDoubleClose() {
	w := NewDuckDBWriter(filepath.Join(suite.tempDir, "close.parquet"))
	suite.Require().NoError(w.Initialize())

	suite.NoError(w.Close())
	suite.NoError(w.Close())
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	w := NewDuckDBWriter(filepath.Join(suite.tempDir, "missing", "dir", "out.parquet"))
	suite.Require().NoError(w.Initialize())

	defer w.Close()

	suite.Require().NoError(w.Write("BTCUSDT", suite.candle(0)))

	_, err := w.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "failed to export")
}
