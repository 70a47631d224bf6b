package workers

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
)

// EnvOverride names the environment variable that pins the worker count.
const EnvOverride = "SCAN_WORKERS"

// Count returns the number of workers for a task with the given
// per-CPU multiplier. It respects container CPU limits via GOMAXPROCS.
//
// The limit parameter caps the worker count. Use 0 for no limit.
// SCAN_WORKERS overrides the calculation when set to a positive integer.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks such as tag reading
// (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// Process fans jobs out to n goroutines running fn and collects the results
// that fn accepts. The output channel is closed once every worker has
// finished, either because jobs was closed or ctx was cancelled. Result
// order is not preserved.
func Process[T, R any](ctx context.Context, n int, jobs <-chan T, fn func(T) (R, bool)) <-chan R {
	if n < 1 {
		n = 1
	}

	results := make(chan R, n*2)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					r, keep := fn(job)
					if !keep {
						continue
					}
					select {
					case results <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
