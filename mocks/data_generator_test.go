package mocks

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) TestGenerateProducesValidSeries() {
	config := DefaultConfig()
	config.Count = 300
	config.Volatility = 0.03

	candles := NewDataGenerator(42).Generate(config)

	suite.Len(candles, 300)
	suite.NoError(types.ValidateSeries(candles))

	for i := 1; i < len(candles); i++ {
		suite.Equal(config.Interval, candles[i].Timestamp.Sub(candles[i-1].Timestamp))
	}
}

func (suite *DataGeneratorTestSuite) TestReproducible() {
	config := DefaultConfig()
	config.Count = 20

	suite.Equal(NewDataGenerator(7).Generate(config), NewDataGenerator(7).Generate(config))
	suite.NotEqual(NewDataGenerator(7).Generate(config), NewDataGenerator(8).Generate(config))
}

func (suite *DataGeneratorTestSuite) TestCandlesFromCloses() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := CandlesFromCloses(start, 100, 101, 97)

	suite.Require().Len(candles, 3)
	suite.NoError(types.ValidateSeries(candles))
	suite.Equal(101.0, candles[2].Open)
	suite.Equal(97.0, candles[2].Low)
	suite.Equal(101.0, candles[2].High)
	suite.Equal(start.Add(2*time.Hour), candles[2].Timestamp)
}
