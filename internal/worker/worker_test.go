package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWorkerPool_StartStop(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job int) error {
		processed.Add(1)
		return nil
	}

	pool := NewWorkerPool(2, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		pool.Submit(i)
	}

	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
	if pool.Processed() != 5 {
		t.Errorf("expected pool to count 5 jobs, got %d", pool.Processed())
	}
}

func TestWorkerPool_CountsFailures(t *testing.T) {
	processor := func(ctx context.Context, job int) error {
		if job%2 == 0 {
			return errors.New("even")
		}
		return nil
	}

	pool := NewWorkerPool(3, 10, processor)
	pool.Start(context.Background())
	for i := 0; i < 10; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if pool.Failed() != 5 {
		t.Errorf("expected 5 failures, got %d", pool.Failed())
	}
}

func TestWorkerPool_ConcurrentSubmit(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job int) error {
		processed.Add(1)
		return nil
	}

	pool := NewWorkerPool(4, 100, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			pool.Submit(n)
		}(i)
	}
	wg.Wait()
	pool.Stop()

	if processed.Load() != 100 {
		t.Errorf("expected 100 jobs processed, got %d", processed.Load())
	}
}

func TestWorkerPool_GracefulShutdown(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job int) error {
		time.Sleep(10 * time.Millisecond)
		processed.Add(1)
		return nil
	}

	pool := NewWorkerPool(2, 50, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(i)
	}

	cancel()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool.Stop() timed out")
	}

	t.Logf("processed %d jobs before shutdown", processed.Load())
}

func TestRunAll(t *testing.T) {
	results := make([]int, 8)
	processed, failed := RunAll(context.Background(), 3, []int{0, 1, 2, 3, 4, 5, 6, 7}, func(ctx context.Context, i int) error {
		results[i] = i * i
		if i == 7 {
			return errors.New("boom")
		}
		return nil
	})

	if processed != 8 || failed != 1 {
		t.Errorf("expected 8 processed and 1 failed, got %d/%d", processed, failed)
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("job %d not processed", i)
		}
	}
}

func TestRunAll_Empty(t *testing.T) {
	processed, failed := RunAll(context.Background(), 4, []string(nil), func(ctx context.Context, s string) error {
		t.Error("processor should not be called")
		return nil
	})
	if processed != 0 || failed != 0 {
		t.Errorf("expected no work, got %d/%d", processed, failed)
	}
}
