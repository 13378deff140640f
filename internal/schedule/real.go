package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Real is a wall-clock Scheduler. Each Every/After job gets its own goroutine.
type Real struct {
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	hooks   []Job
	stopped bool
}

// NewReal returns a running scheduler. A nil logger discards output.
func NewReal(logger *zap.Logger) *Real {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Real{logger: logger, ctx: ctx, cancel: cancel}
}

// Every runs job on each tick of interval until cancelled or Stop.
func (r *Real) Every(interval time.Duration, job Job) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return func() {}
	}

	jobCtx, jobCancel := context.WithCancel(r.ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				safeRun(jobCtx, r.logger, "every", job)
			case <-jobCtx.Done():
				return
			}
		}
	}()

	r.logger.Debug("periodic job scheduled", zap.Duration("interval", interval))
	return jobCancel
}

// After runs job once after delay unless cancelled or stopped first.
func (r *Real) After(delay time.Duration, job Job) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return func() {}
	}

	jobCtx, jobCancel := context.WithCancel(r.ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer jobCancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			safeRun(jobCtx, r.logger, "after", job)
		case <-jobCtx.Done():
		}
	}()

	return jobCancel
}

// OnShutdown registers job to run once during Stop, in registration order.
func (r *Real) OnShutdown(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.hooks = append(r.hooks, job)
}

// Stop cancels all pending jobs, waits for running ones, then runs the
// shutdown hooks with ctx. Subsequent calls are no-ops.
func (r *Real) Stop(ctx context.Context) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	hooks := r.hooks
	r.hooks = nil
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()

	for _, hook := range hooks {
		safeRun(ctx, r.logger, "shutdown", hook)
	}
	r.logger.Debug("scheduler stopped", zap.Int("shutdown_hooks", len(hooks)))
}
