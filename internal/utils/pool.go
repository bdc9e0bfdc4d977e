package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunBounded calls fn for every index in [0, n) with at most limit calls in flight.
// Once ctx is done no new calls start; calls already running finish.
// It returns ctx.Err() when the context ended before every index was scheduled.
func RunBounded(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) error {
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	scheduled := 0

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			fn(gctx, i)

			return nil
		})

		scheduled++
	}

	_ = g.Wait()

	if scheduled < n || ctx.Err() != nil {
		return ctx.Err()
	}

	return nil
}
