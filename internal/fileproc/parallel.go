// Package fileproc provides the bounded worker pool used for pass-1 file
// extraction. Each worker owns its parser, so no shared mutable state exists
// across files; failure isolation is per file.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/codelantern/lantern/pkg/parser"
)

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. 2x works well for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProcessingError records an error for one file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects per-file errors across workers.
type ProcessingErrors struct {
	mu     sync.Mutex
	Errors []ProcessingError
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors reports whether any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Paths returns the failing paths in collection order.
func (e *ProcessingErrors) Paths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	paths := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		paths[i] = pe.Path
	}
	return paths
}

func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// ProgressFunc is called after each file finishes, success or not.
type ProgressFunc func()

// Options configures a MapFiles run.
type Options struct {
	// MaxWorkers bounds the pool; <= 0 means 2x NumCPU.
	MaxWorkers int
	// FileTimeout bounds a single file's processing; 0 means no deadline.
	FileTimeout time.Duration
	// OnProgress, if set, is invoked once per completed file.
	OnProgress ProgressFunc
}

// MapFiles processes files in parallel, calling fn for each file with a
// dedicated parser and a per-file context. Results arrive in arbitrary
// order; callers sort at assembly time. Per-file errors are collected, never
// propagated: a failing file contributes nothing but does not stop the run.
func MapFiles[T any](ctx context.Context, files []string, opts Options, fn func(context.Context, *parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, 0, len(files))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, path := range files {
		p.Go(func() {
			defer func() {
				if opts.OnProgress != nil {
					opts.OnProgress()
				}
			}()

			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return
			default:
			}

			fileCtx := ctx
			if opts.FileTimeout > 0 {
				var cancel context.CancelFunc
				fileCtx, cancel = context.WithTimeout(ctx, opts.FileTimeout)
				defer cancel()
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(fileCtx, psr, path)
			if err != nil {
				errs.Add(path, err)
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
