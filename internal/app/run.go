package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"photocopier/internal/domain"
)

// Run is a copy executing in the background. It is safe for concurrent use.
type Run struct {
	ID        string
	StartedAt time.Time

	progress *Progress
	cancel   context.CancelCauseFunc
	done     chan struct{}

	mu         sync.Mutex
	result     domain.CopyResult
	err        error
	finishedAt time.Time
}

// ErrCancelled is the cause recorded when a run is cancelled through Cancel.
var ErrCancelled = context.Canceled

// StartCopy launches CopyPhotos in its own goroutine. The run is detached
// from ctx's cancellation but keeps its values; use Cancel to stop it.
func (s *Service) StartCopy(ctx context.Context, opts domain.CopyOptions) *Run {
	runCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		progress:  NewProgress(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	logger := s.Logger.With("run", run.ID)
	logger.Verbosef("Starting copy %s -> %s", opts.SourceDir, opts.TargetDir)

	go func() {
		defer close(run.done)
		defer cancel(nil)
		result, err := s.copyPhotos(runCtx, opts, run.progress, logger)
		run.mu.Lock()
		run.result, run.err = result, err
		run.finishedAt = time.Now()
		run.mu.Unlock()
	}()
	return run
}

func (r *Run) Progress() *Progress {
	return r.progress
}

// Cancel asks the run to stop dispatching files. It does not wait.
func (r *Run) Cancel() {
	r.cancel(ErrCancelled)
}

// Done is closed once the run has reached a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx is done.
func (r *Run) Wait(ctx context.Context) (domain.CopyResult, error) {
	select {
	case <-ctx.Done():
		return domain.CopyResult{}, ctx.Err()
	case <-r.done:
	}
	result, _, err := r.Result()
	return result, err
}

// Result returns the final result; finished is false while the run is still going.
func (r *Run) Result() (result domain.CopyResult, finished bool, err error) {
	select {
	case <-r.done:
	default:
		return domain.CopyResult{}, false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, true, r.err
}

// FinishedAt is when the run reached its terminal state.
func (r *Run) FinishedAt() (time.Time, bool) {
	select {
	case <-r.done:
	default:
		return time.Time{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishedAt, true
}
