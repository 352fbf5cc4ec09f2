package runner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/wrapfix/internal/logging"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
)

// Runner rewrites many files through one pipeline.
type Runner struct {
	Pipeline *pipeline.Pipeline
}

// New creates a Runner with the given pipeline.
func New(p *pipeline.Pipeline) *Runner {
	return &Runner{Pipeline: p}
}

// Run discovers files and processes them on a bounded worker pool. Outcomes
// are returned in discovery order whatever order the workers finish in.
// A file that fails is recorded and does not stop the others.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logger := logging.FromContext(ctx)
	logger.Debug("processing files", logging.FieldFiles, len(files), logging.FieldJobs, jobs)

	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.process(gctx, path, opts.Pipeline)
			done[i] = true
			return nil
		})
	}
	waitErr := group.Wait()

	for i, outcome := range outcomes {
		if done[i] {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	if waitErr != nil {
		return result, fmt.Errorf("run cancelled: %w", waitErr)
	}
	return result, nil
}

func (r *Runner) process(ctx context.Context, path string, opts pipeline.Options) FileOutcome {
	logger := logging.FromContext(ctx).With(logging.FieldPath, path)

	outcome := FileOutcome{Path: path}
	pr, err := r.Pipeline.ProcessFile(ctx, path, opts)
	if err != nil {
		logger.Warn("file failed", logging.FieldError, err)
		outcome.Error = err
		return outcome
	}

	logger.Debug("file processed", logging.FieldOutcome, pr.Summary())
	outcome.Result = pr
	return outcome
}
