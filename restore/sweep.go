package restore

import (
	"golang.org/x/sync/errgroup"
)

// chunksPerWorker over-partitions a sweep so slow rows do not stall one worker.
const chunksPerWorker = 4

// parallelFor calls fn over contiguous chunks of [0, n) on at most workers
// goroutines and returns after every chunk has finished. The return is the
// barrier that separates one sweep from the buffer swap.
func parallelFor(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 1 || n == 1 {
		fn(0, n)
		return
	}

	chunks := min(n, workers*chunksPerWorker)
	size := (n + chunks - 1) / chunks

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
