package restore

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/heartlog/internal/clock"
)

// Restorer performs one restore. *Service implements it.
type Restorer interface {
	Restore(ctx context.Context, path string) Result
}

// Callbacks are invoked around a background restore. OnStart runs on the
// caller's goroutine before Start returns; OnDone runs on the worker once the
// result is available and before the runner accepts another start.
type Callbacks struct {
	OnStart func(run *Run)
	OnDone  func(run *Run, result Result)
}

// Run is one background restore.
type Run struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	StartedAt time.Time `json:"started_at"`

	done   chan struct{}
	result Result
}

// Done is closed when the run has finished and its callbacks have returned.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx is done.
func (r *Run) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome and true once the run has finished.
func (r *Run) Result() (Result, bool) {
	select {
	case <-r.done:
		return r.result, true
	default:
		return Result{}, false
	}
}

// Runner owns the single background restore slot. A start while a restore
// is in flight is ignored, never queued.
type Runner struct {
	restorer Restorer
	clock    clock.Clock
	logger   *slog.Logger

	busy    atomic.Bool
	mu      sync.Mutex
	current *Run
	last    *Run
}

// NewRunner creates a runner around restorer. A nil clock reads the wall clock.
func NewRunner(restorer Restorer, clk clock.Clock, logger *slog.Logger) *Runner {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{restorer: restorer, clock: clk, logger: logger}
}

// Busy reports whether a restore is in flight.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Current returns the in-flight run, or nil.
func (r *Runner) Current() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Last returns the most recently finished run, or nil.
func (r *Runner) Last() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Start launches a restore of path in the background. It returns false and
// does nothing when a restore is already running. The restore cannot be
// cancelled: it ignores ctx cancellation and runs to completion.
func (r *Runner) Start(ctx context.Context, path string, cb Callbacks) (*Run, bool) {
	if !r.busy.CompareAndSwap(false, true) {
		r.logger.Debug("restore already running, ignoring start", "file", path)
		return nil, false
	}

	run := &Run{
		ID:        uuid.NewString(),
		File:      path,
		StartedAt: r.clock.Now(),
		done:      make(chan struct{}),
	}
	r.mu.Lock()
	r.current = run
	r.mu.Unlock()

	if cb.OnStart != nil {
		cb.OnStart(run)
	}
	r.logger.Info("restore started", "run_id", run.ID, "file", path)

	workCtx := context.WithoutCancel(ctx)
	go func() {
		run.result = r.restorer.Restore(workCtx, path)
		if cb.OnDone != nil {
			cb.OnDone(run, run.result)
		}

		r.mu.Lock()
		r.current = nil
		r.last = run
		r.mu.Unlock()
		r.busy.Store(false)
		close(run.done)
	}()

	return run, true
}
