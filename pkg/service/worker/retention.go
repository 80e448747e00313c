package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

// DefaultDeleteConcurrency bounds parallel deletes within one cleanup pass
const DefaultDeleteConcurrency = 8

// PassResult summarizes one cleanup pass. Per-entry failures are collected
// here and never abort the pass.
type PassResult struct {
	StartedAt    time.Time
	Duration     time.Duration
	DeletedCount int
	Errors       []error
}

// Status is a snapshot of the worker's timer and last pass
type Status struct {
	TimerActive bool
	LastRun     time.Time
	LastResult  *PassResult
}

// RetentionWorker deletes expired transcripts on a repeating timer.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type RetentionWorker struct {
	repo        interfaces.Repository
	interval    time.Duration
	now         func() time.Time
	concurrency int

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	running  atomic.Bool

	mu          sync.Mutex
	timerActive bool
	lastRun     time.Time
	lastResult  *PassResult
}

// Option is a functional option for worker configuration
type Option func(*RetentionWorker)

func WithNowFunc(fn func() time.Time) Option {
	return func(w *RetentionWorker) {
		w.now = fn
	}
}

func WithDeleteConcurrency(n int) Option {
	return func(w *RetentionWorker) {
		w.concurrency = n
	}
}

// NewRetentionWorker creates a worker that runs one cleanup pass per interval
func NewRetentionWorker(repo interfaces.Repository, interval time.Duration, opts ...Option) *RetentionWorker {
	w := &RetentionWorker{
		repo:        repo,
		interval:    interval,
		now:         time.Now,
		concurrency: DefaultDeleteConcurrency,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background cleanup loop. It does not block and does not
// run an immediate pass; the first pass happens after one interval.
func (w *RetentionWorker) Start(ctx context.Context) error {
	if w.started.Swap(true) {
		return goerr.New("retention worker already started")
	}

	logging.Default().Info("retention worker starting", "interval", w.interval.String())

	w.mu.Lock()
	w.timerActive = true
	w.mu.Unlock()

	go w.run(ctx)

	return nil
}

// Stop cancels the timer and waits for the loop to exit. Safe to call more
// than once and safe to call on a worker that was never started.
func (w *RetentionWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	if w.started.Load() {
		<-w.doneCh
	}

	w.mu.Lock()
	w.timerActive = false
	w.mu.Unlock()
}

// run is the main worker loop (runs in goroutine)
func (w *RetentionWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				logging.Default().Info("cleanup tick skipped, pass already running")
			}

		case <-w.stopCh:
			logging.Default().Info("retention worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("retention worker context cancelled")
			return
		}
	}
}

// RunOnce performs one cleanup pass synchronously. When a pass is already in
// flight the call is rejected instead of queued.
func (w *RetentionWorker) RunOnce(ctx context.Context) (*PassResult, error) {
	if !w.running.CompareAndSwap(false, true) {
		return nil, goerr.Wrap(types.ErrConflict, "a cleanup pass is already running")
	}
	defer w.running.Store(false)

	result := w.pass(ctx)

	w.mu.Lock()
	w.lastRun = result.StartedAt
	w.lastResult = result
	w.mu.Unlock()

	logging.Default().Info("cleanup pass finished",
		"deleted", result.DeletedCount,
		"errors", len(result.Errors),
		"duration", result.Duration.String())

	return result, nil
}

// Status reports whether the timer is active plus the last pass summary
func (w *RetentionWorker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Status{
		TimerActive: w.timerActive,
		LastRun:     w.lastRun,
		LastResult:  w.lastResult,
	}
}

// pass deletes every transcript past its expiry. Failures on individual
// entries are collected, the pass itself never fails.
func (w *RetentionWorker) pass(ctx context.Context) *PassResult {
	startedAt := w.now()
	result := &PassResult{StartedAt: startedAt}

	expired, err := w.repo.Transcript().ListExpired(ctx, startedAt)
	if err != nil {
		result.Errors = append(result.Errors, goerr.Wrap(err, "failed to list expired transcripts"))
		result.Duration = w.now().Sub(startedAt)
		return result
	}

	var deleted atomic.Int64
	var errMu sync.Mutex

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for _, tr := range expired {
		g.Go(func() error {
			removed, err := w.repo.Transcript().Delete(ctx, tr.StandupID)
			if err != nil {
				errMu.Lock()
				result.Errors = append(result.Errors, goerr.Wrap(err, "failed to delete expired transcript",
					goerr.V("standupID", tr.StandupID),
					goerr.V("labID", tr.LabID)))
				errMu.Unlock()
				return nil
			}
			if removed {
				deleted.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.DeletedCount = int(deleted.Load())
	result.Duration = w.now().Sub(startedAt)

	return result
}
