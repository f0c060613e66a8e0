package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/docmodel/pkg/model"
)

// ErrNoLoader is returned by Run when the Runner has no LoadFunc.
var ErrNoLoader = errors.New("runner has no document loader")

// LoadFunc reads and parses the document stored at path. It must be safe for
// concurrent use.
type LoadFunc func(ctx context.Context, path string) (*model.Node, error)

// Runner checks documents from many files concurrently.
type Runner struct {
	// Load parses one file into a document.
	Load LoadFunc
}

// New creates a Runner that parses files with load.
func New(load LoadFunc) *Runner {
	return &Runner{Load: load}
}

// Run discovers files under opts.Paths, then loads and checks them with a
// pool of workers. Outcomes are returned in discovery order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.RunFiles(ctx, files, opts.Jobs)
}

// RunFiles checks the given files without discovery.
func (r *Runner) RunFiles(ctx context.Context, files []string, jobs int) (*Result, error) {
	if r.Load == nil {
		return nil, ErrNoLoader
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- FileOutcome) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := r.checkFile(ctx, path)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

func (r *Runner) checkFile(ctx context.Context, path string) FileOutcome {
	outcome := FileOutcome{Path: path}

	node, err := r.Load(ctx, path)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if err := node.Check(); err != nil {
		outcome.Err = fmt.Errorf("%s: %w", path, err)
		return outcome
	}

	outcome.Node = node
	return outcome
}
