package types

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CandleTestSuite struct {
	suite.Suite
}

func TestCandleSuite(t *testing.T) {
	suite.Run(t, new(CandleTestSuite))
}

func (suite *CandleTestSuite) TestValidate() {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		candle    Candle
		expectErr bool
	}{
		{name: "valid", candle: Candle{Timestamp: ts, Open: 100, High: 105, Low: 95, Close: 101, Volume: 10}},
		{name: "high below low", candle: Candle{Timestamp: ts, Open: 100, High: 90, Low: 95, Close: 92}, expectErr: true},
		{name: "zero price", candle: Candle{Timestamp: ts, Open: 0, High: 105, Low: 0, Close: 101}, expectErr: true},
		{name: "nan close", candle: Candle{Timestamp: ts, Open: 100, High: 105, Low: 95, Close: math.NaN()}, expectErr: true},
		{name: "close above high", candle: Candle{Timestamp: ts, Open: 100, High: 105, Low: 95, Close: 106}, expectErr: true},
		{name: "negative volume", candle: Candle{Timestamp: ts, Open: 100, High: 105, Low: 95, Close: 100, Volume: -1}, expectErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.candle.Validate()
			if tc.expectErr {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidCandles))
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *CandleTestSuite) TestValidateSeriesOrdering() {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Candle{Timestamp: ts, Open: 100, High: 100, Low: 100, Close: 100}
	next := c
	next.Timestamp = ts.Add(time.Hour)

	suite.NoError(ValidateSeries([]Candle{c, next}))
	suite.Error(ValidateSeries([]Candle{next, c}))
	suite.Error(ValidateSeries([]Candle{c, c}))
	suite.Equal([]float64{100, 100}, Closes([]Candle{c, next}))
}

func (suite *CandleTestSuite) TestTimeframeDuration() {
	d, err := Timeframe1h.Duration()
	suite.NoError(err)
	suite.Equal(time.Hour, d)

	_, err = Timeframe("7m").Duration()
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimeframe))
}
