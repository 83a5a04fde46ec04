package app

import (
	"context"
	"runtime"
	"time"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
	"photocopier/internal/logging"
)

// Orchestrator runs a bounded pool of copy workers over the scanned tasks and
// aggregates their outcomes.
type Orchestrator struct {
	Planner LayoutPlanner
	Worker  *CopyWorker
	Logger  logging.Logger
}

type copyJob struct {
	task        domain.FileTask
	destination string
}

// Run copies tasks and returns the aggregated result. Per-file failures never
// abort the run. When ctx is cancelled no further files are dispatched,
// in-flight files finish, and the partial result is returned with an Aborted error.
func (o *Orchestrator) Run(ctx context.Context, tasks []domain.FileTask, opts domain.CopyOptions, progress *Progress) (domain.CopyResult, error) {
	if o.Worker == nil {
		return domain.CopyResult{}, errors.New("orchestrator requires a worker")
	}
	if progress == nil {
		progress = NewProgress()
	}

	stop := o.Logger.Measure("Copying files")
	defer stop()
	started := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}
	if workers < 1 {
		workers = 1
	}
	o.Logger.Verbosef("Copying %d files with %d workers (dry run: %t)", len(tasks), workers, opts.DryRun)

	result := domain.CopyResult{
		TotalCount: len(tasks),
		DryRun:     opts.DryRun,
	}
	progress.Start(len(tasks))

	outcomes := make(chan domain.CopyOutcome, workers)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for outcome := range outcomes {
			result.Add(outcome)
			progress.Record(outcome)
			if outcome.Success {
				o.Logger.Verbosef("Copied %s -> %s (%d bytes)", outcome.Task.SourcePath, outcome.Destination, outcome.Bytes)
			} else {
				o.Logger.Warnf("Failed %s", outcome.Message())
			}
		}
	}()

	jobs := make(chan copyJob)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for job := range jobs {
				outcomes <- o.Worker.Execute(job.task, job.destination, opts)
			}
			return nil
		})
	}

	aborted := o.dispatch(ctx, tasks, opts, jobs, outcomes)
	close(jobs)
	_ = g.Wait()
	close(outcomes)
	<-collected

	result.Duration = time.Since(started)
	if aborted {
		result.State = domain.StateAborted
		progress.Finish(domain.StateAborted)
		o.Logger.Warnf("Copy aborted after %d of %d files", result.Processed(), result.TotalCount)
		return result, appErrors.Wrap(appErrors.Aborted, "copy", opts.TargetDir, context.Cause(ctx))
	}

	result.State = domain.StateCompleted
	progress.Finish(domain.StateCompleted)
	o.Logger.Infof("Copied %d files (%d failed, %d bytes)", result.SuccessCount, result.ErrorCount, result.TotalSize)
	return result, nil
}

// dispatch feeds jobs in scan order and reports whether it stopped because ctx
// was cancelled. Each destination is claimed once per run; a second task that
// maps to the same destination fails instead of overwriting the first.
func (o *Orchestrator) dispatch(ctx context.Context, tasks []domain.FileTask, opts domain.CopyOptions, jobs chan<- copyJob, outcomes chan<- domain.CopyOutcome) bool {
	claimed := make(map[string]string, len(tasks))
	for _, task := range tasks {
		if ctx.Err() != nil {
			return true
		}

		destination := o.Planner.Plan(task, opts)
		if owner, ok := claimed[destination]; ok {
			outcomes <- domain.CopyOutcome{
				Task:        task,
				Destination: destination,
				Err:         appErrors.New(appErrors.DestinationExists, "copy", destination, "destination already used by "+owner+" in this run"),
			}
			continue
		}
		claimed[destination] = task.SourcePath

		select {
		case <-ctx.Done():
			return true
		case jobs <- copyJob{task: task, destination: destination}:
		}
	}
	return false
}
