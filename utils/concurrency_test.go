package utils

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)

	var counter int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}
	pool.Wait()

	if counter != 100 {
		t.Errorf("ran %d jobs; want 100", counter)
	}
}

func TestWorkerPoolPreservesSlotOrder(t *testing.T) {
	pool := NewWorkerPool(8)

	results := make([]int, 50)
	for i := range results {
		i := i
		pool.Submit(func() {
			results[i] = i * 2
		})
	}
	pool.Wait()

	for i, got := range results {
		if got != i*2 {
			t.Errorf("slot %d = %d; want %d", i, got, i*2)
		}
	}
}

func TestWorkerPoolMinimumSize(t *testing.T) {
	pool := NewWorkerPool(0) // degenerates to sequential

	done := false
	pool.Submit(func() { done = true })
	pool.Wait()

	if !done {
		t.Error("job did not run")
	}
}
