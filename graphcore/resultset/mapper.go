package resultset

import (
	"fmt"
	"runtime"
	"sync"
)

// Group is the (possibly empty, possibly >1 on Cardinality.Many
// explosion) set of rows one input row expanded into.
type Group []*Result

// Mapper applies fn to every row, returning one Group per row in the
// same order. The injected "mapper" of spec.md §5: SyncMapper runs
// in-process and in order; WorkerPoolMapper parallelises across a fixed
// worker count while preserving row order.
type Mapper func(fn func(*Result) (Group, error), rows []*Result) ([]Group, error)

// SyncMapper applies fn to each row sequentially, in order.
func SyncMapper(fn func(*Result) (Group, error), rows []*Result) ([]Group, error) {
	out := make([]Group, len(rows))
	for i, r := range rows {
		g, err := fn(r)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// WorkerPoolMapper returns a Mapper that fans rows out across n worker
// goroutines, preserving row order in the result. n <= 0 uses
// runtime.NumCPU(). Grounded on the teacher's
// datalog/executor.WorkerPool.ExecuteParallel: a bounded pool of workers
// draining an index channel into a pre-sized, order-preserving result
// slice.
func WorkerPoolMapper(n int) Mapper {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return func(fn func(*Result) (Group, error), rows []*Result) ([]Group, error) {
		if len(rows) == 0 {
			return nil, nil
		}

		out := make([]Group, len(rows))
		errs := make([]error, len(rows))
		jobs := make(chan int, len(rows))

		var wg sync.WaitGroup
		for w := 0; w < n; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for idx := range jobs {
					g, err := fn(rows[idx])
					out[idx] = g
					errs[idx] = err
				}
			}()
		}

		for i := range rows {
			jobs <- i
		}
		close(jobs)
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("resultset: rule application failed at row %d: %w", i, err)
			}
		}
		return out, nil
	}
}
