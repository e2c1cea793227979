package core

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelRows executes fn over [0, n) in contiguous bands, one goroutine per
// band. Ranges smaller than minChunk run inline on the caller. The first
// error cancels the remaining bands.
func ParallelRows(ctx context.Context, n, minChunk int, fn func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}
	workers := runtime.GOMAXPROCS(0)
	if n <= minChunk || workers <= 1 {
		return fn(ctx, 0, n)
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		s, e := start, start+chunk
		if e > n {
			e = n
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, s, e)
		})
	}
	return g.Wait()
}
