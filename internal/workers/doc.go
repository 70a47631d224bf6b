/*
Package workers sizes and runs the worker pools used by the library scanner.

Count, ForCPU and ForIO derive a worker count from GOMAXPROCS, which Go
sets from the container CPU limit, rather than runtime.NumCPU:

	n := workers.ForIO(16) // 2 per CPU, at most 16

Operators can pin the count with SCAN_WORKERS:

	env:
	- name: SCAN_WORKERS
	  value: "4"

Process runs a bounded fan-out over a job channel:

	results := workers.Process(ctx, n, paths, func(p string) (Track, bool) {
		return readTags(p)
	})
	for t := range results {
		...
	}

All functions are safe for concurrent use.
*/
package workers
