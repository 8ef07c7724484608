package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

type ProcessFunc[T any] func(ctx context.Context, job T) error

type WorkerPool[T any] struct {
	numWorkers int
	jobs       chan T
	processor  ProcessFunc[T]
	wg         sync.WaitGroup
	processed  atomic.Int64
	failed     atomic.Int64
}

func NewWorkerPool[T any](numWorkers int, bufferSize int, processor ProcessFunc[T]) *WorkerPool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan T, bufferSize),
		processor:  processor,
	}
}

func (wp *WorkerPool[T]) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool[T]) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			if err := wp.processor(ctx, job); err != nil {
				wp.failed.Add(1)
			}
			wp.processed.Add(1)
		}
	}
}

func (wp *WorkerPool[T]) Submit(job T) {
	wp.jobs <- job
}

// Stop closes the queue and waits for workers to drain it.
func (wp *WorkerPool[T]) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
}

func (wp *WorkerPool[T]) Processed() int64 {
	return wp.processed.Load()
}

func (wp *WorkerPool[T]) Failed() int64 {
	return wp.failed.Load()
}

// RunAll processes every job on a pool of numWorkers and returns once all of
// them have been handled or ctx is cancelled.
func RunAll[T any](ctx context.Context, numWorkers int, jobs []T, processor ProcessFunc[T]) (processed, failed int64) {
	if len(jobs) == 0 {
		return 0, 0
	}
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	pool := NewWorkerPool(numWorkers, len(jobs), processor)
	pool.Start(ctx)
	for _, job := range jobs {
		pool.Submit(job)
	}
	pool.Stop()

	return pool.Processed(), pool.Failed()
}
