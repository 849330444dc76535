package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunParallel fans work out across an opt-in worker pool, joining before
// returning. maxConcurrency <= 0 means unlimited.
// The first error from any work item is returned; others are discarded,
// matching the task-level "first failure wins" semantics the run loop
// already applies at the task-queue level.
func RunParallel(ctx context.Context, maxConcurrency int, work []func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}
	for _, fn := range work {
		fn := fn
		g.Go(func() error { return fn(gctx) })
	}
	return g.Wait()
}
