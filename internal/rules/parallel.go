package rules

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// ResolveAllOptions controls parallel resolution.
type ResolveAllOptions struct {
	// Workers is the maximum number of goroutines.
	// Defaults to GOMAXPROCS if zero.
	Workers int
}

// Result is the outcome of resolving one path in ResolveAll.
type Result struct {
	Path     string   `json:"path" yaml:"path"`
	Pipeline Pipeline `json:"pipeline" yaml:"pipeline"`
	// Err holds per-path problems such as an InvalidRuleError warning.
	Err error `json:"-" yaml:"-"`
}

// ResolveAll resolves every path across a bounded worker pool. Results are
// returned in input order. Per-path errors are stored on each Result; the
// returned error is only set for cancellation or a worker panic.
func (r *Resolver) ResolveAll(ctx context.Context, paths []string, opts ResolveAllOptions) ([]Result, error) {
	results := make([]Result, len(paths))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// For small workloads, avoid goroutine overhead.
	if len(paths) <= 2 || workers <= 1 {
		for i, p := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			pl, err := r.Resolve(p)
			results[i] = Result{Path: p, Pipeline: pl, Err: err}
		}

		return results, nil
	}

	panics := make([]error, len(paths))

	var wg sync.WaitGroup

	sem := make(chan struct{}, workers)

	for i, p := range paths {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}: // acquire semaphore slot
		}

		wg.Add(1)

		go func(idx int, path string) {
			defer wg.Done()
			defer func() { <-sem }() // release slot
			defer func() {
				if rec := recover(); rec != nil {
					panics[idx] = fmt.Errorf("panic resolving %s: %v", path, rec)
				}
			}()

			pl, err := r.Resolve(path)
			results[idx] = Result{Path: path, Pipeline: pl, Err: err}
		}(i, p)
	}

	wg.Wait()

	for _, err := range panics {
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
