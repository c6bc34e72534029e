// Package pool runs a batch of tasks with a concurrency ceiling, collecting
// results in task order. It backs the per-process download and render fan-out.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task produces one result. Tasks must honor ctx cancellation on their
// blocking calls.
type Task[T any] func(ctx context.Context) (T, error)

// Run executes tasks with at most limit running concurrently and returns the
// results aligned index-for-index with the input. On the first task failure
// the shared context is canceled, tasks not yet started are skipped, and the
// first error is returned once in-flight tasks have finished. A limit below 1
// runs everything concurrently.
func Run[T any](ctx context.Context, limit int, tasks []Task[T]) ([]T, error) {
	results := make([]T, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, task := range tasks {
		// Stop scheduling once a task has failed or the caller canceled.
		if gctx.Err() != nil {
			break
		}

		i, task := i, task
		g.Go(func() error {
			res, err := task(gctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
