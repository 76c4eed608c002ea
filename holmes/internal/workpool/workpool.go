// Package workpool provides the generic concurrent fan-out used both by
// Analyzer.Run to dispatch un-cached Contexts to a remote analyze
// capability, and by the fixpoint driver to run every analyzer in a
// generation concurrently. Adapted from the teacher's
// datalog/executor/worker_pool.go, generalized from order-preserving
// interface{} mapping to an error-aggregating concurrent-map primitive.
package workpool

import (
	"runtime"
	"sync"
)

// Map runs operation(input[i]) for every i concurrently, bounded to at
// most workers goroutines at a time (0 means runtime.NumCPU()), and
// returns results in input order. If any call returns an error, Map
// collects every error rather than failing fast — callers that need
// first-error semantics can inspect the returned slice themselves — since
// the fixpoint driver wants every analyzer's facts ingested even if a
// sibling analyzer failed (spec §7: "Facts inserted before the failure
// remain").
func Map[T, R any](workers int, inputs []T, operation func(T) (R, error)) ([]R, []error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(inputs) == 0 {
		return nil, nil
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	results := make([]R, len(inputs))
	errs := make([]error, len(inputs))

	jobs := make(chan int, len(inputs))
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := operation(inputs[i])
				results[i] = r
				errs[i] = err
			}
		}()
	}
	wg.Wait()

	return results, errs
}

// FirstError returns the first non-nil error in errs, or nil.
func FirstError(errs []error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
