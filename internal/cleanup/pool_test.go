package cleanup

import (
	"fmt"
	"sync/atomic"
	"testing"
)

func TestRunIndexed(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 2, 4, 8} {
		workers := workers
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			const n = 100
			results := make([]int, n)
			var calls atomic.Int64
			runIndexed(n, workers, func(i int) {
				calls.Add(1)
				results[i] = i * i
			})

			if calls.Load() != n {
				t.Fatalf("calls = %d, want %d", calls.Load(), n)
			}
			for i, got := range results {
				if got != i*i {
					t.Fatalf("results[%d] = %d, want %d", i, got, i*i)
				}
			}
		})
	}
}

func TestRunIndexedEmpty(t *testing.T) {
	t.Parallel()

	called := false
	runIndexed(0, 4, func(int) { called = true })
	if called {
		t.Error("fn called for n=0")
	}
}

func TestPoolSize(t *testing.T) {
	t.Parallel()

	if got := poolSize(3); got != 3 {
		t.Errorf("poolSize(3) = %d, want 3", got)
	}
	if got := poolSize(0); got < 1 {
		t.Errorf("poolSize(0) = %d, want >= 1", got)
	}
}
