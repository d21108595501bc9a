package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
)

// Parallelize splits [0, items) into contiguous ranges and runs fn on each
// range in its own goroutine. workers <= 0 means one worker per CPU core.
// fn must only write to indices inside its own range.
func Parallelize(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > items {
		numWorkers = items
	}
	if numWorkers == 1 {
		fn(0, items)
		return
	}

	// Ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items does not exceed threshold, and through Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold, workers int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, workers, fn)
}

// ForEach calls fn(i) for every index in [0, items) and returns the error of
// the lowest failing index, or nil. Up to threshold items run on the calling
// goroutine; larger inputs are split across workers. Every index is visited
// even when an earlier one fails, so the reported error does not depend on
// scheduling. A panic in fn is returned as a *errors.PanicError for its index.
func ForEach(items, threshold, workers int, fn func(i int) error) error {
	if items <= 0 {
		return nil
	}
	errs := make([]error, items)
	ParallelizeWithThreshold(items, threshold, workers, func(start, end int) {
		for i := start; i < end; i++ {
			errs[i] = errors.SafeExecute("parallel.ForEach", func() error { return fn(i) })
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
