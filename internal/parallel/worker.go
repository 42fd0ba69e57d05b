// Package parallel provides the worker pool that runs model search jobs.
//
// Jobs run on at most Workers goroutines. TryIndexed returns results in
// input order, so callers that reduce over the results get the same answer
// however the jobs were scheduled.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool manages a pool of goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool. A non-positive count means one
// worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	return NewWorkerPoolContext(context.Background(), numWorkers)
}

// NewWorkerPoolContext creates a worker pool that stops taking work once ctx
// is done.
func NewWorkerPoolContext(ctx context.Context, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Workers returns the number of goroutines the pool runs.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// Err returns the pool context's error: non-nil once the pool was closed or
// its parent context was cancelled.
func (wp *WorkerPool) Err() error {
	return wp.ctx.Err()
}

// TryIndexed runs a fallible worker over items and returns the results in
// input order. The first failure cancels the jobs that have not started yet
// and is the error returned; a cancelled pool reports its context error.
func TryIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, wp.Err()
	}

	// each goroutine owns one slot
	results := make([]R, len(items))

	g, gctx := errgroup.WithContext(wp.ctx)
	g.SetLimit(min(wp.numWorkers, len(items)))

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			v, err := worker(i, item)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := wp.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.cancel()
}
