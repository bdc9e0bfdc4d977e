package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the attempts of Retry.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean a single attempt.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry runs op until it succeeds, returns a Permanent error, the attempts are
// used up or ctx is done. op receives the 1-based attempt number.
// notify, when set, is called before each wait.
func Retry(ctx context.Context, policy RetryPolicy, op func(attempt int) error, notify func(err error, wait time.Duration)) (int, error) {
	attempts := max(policy.MaxAttempts, 1)

	expo := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		expo.InitialInterval = policy.InitialInterval
	}

	if policy.MaxInterval > 0 {
		expo.MaxInterval = policy.MaxInterval
	}

	expo.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(attempts-1)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++

		return op(attempt)
	}, b, notify)

	return attempt, unwrapPermanent(err)
}

func unwrapPermanent(err error) error {
	if p, ok := err.(*backoff.PermanentError); ok {
		return p.Err
	}

	return err
}
