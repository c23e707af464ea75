package cleanup

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// parallelThreshold is the minimum number of work items before the worker
// pool is worth its overhead.
const parallelThreshold = 10

// runIndexed executes fn(i) for i in [0, n) using a bounded pool of workers
// pulling from a shared cursor. Callers write results into a pre-sized slice
// at index i, so output order matches input order regardless of completion
// order. workers <= 1 runs sequentially.
func runIndexed(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	if workers > n {
		workers = n
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}

// poolSize resolves the worker count: explicit concurrency wins, otherwise
// one worker per CPU.
func poolSize(concurrency int) int {
	if concurrency > 0 {
		return concurrency
	}
	return runtime.NumCPU()
}
