package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RetryTestSuite struct {
	suite.Suite
}

func TestRetryTestSuite(t *testing.T) {
	suite.Run(t, new(RetryTestSuite))
}

func (suite *RetryTestSuite) fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func (suite *RetryTestSuite) TestSucceedsAfterFailures() {
	notified := 0

	attempts, err := Retry(context.Background(), suite.fastPolicy(3), func(attempt int) error {
		if attempt < 3 {
			return errors.New("flaky")
		}

		return nil
	}, func(error, time.Duration) { notified++ })

	suite.NoError(err)
	suite.Equal(3, attempts)
	suite.Equal(2, notified)
}

func (suite *RetryTestSuite) TestGivesUpAfterMaxAttempts() {
	boom := errors.New("boom")

	attempts, err := Retry(context.Background(), suite.fastPolicy(3), func(int) error {
		return boom
	}, nil)

	suite.ErrorIs(err, boom)
	suite.Equal(3, attempts)
}

func (suite *RetryTestSuite) TestPermanentStopsImmediately() {
	fatal := errors.New("fatal")

	attempts, err := Retry(context.Background(), suite.fastPolicy(5), func(int) error {
		return Permanent(fatal)
	}, nil)

	suite.ErrorIs(err, fatal)
	suite.Equal(1, attempts)
}

func (suite *RetryTestSuite) TestSingleAttemptPolicy() {
	attempts, err := Retry(context.Background(), RetryPolicy{}, func(int) error {
		return errors.New("nope")
	}, nil)

	suite.Error(err)
	suite.Equal(1, attempts)
}
