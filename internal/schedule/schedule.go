// Package schedule abstracts timers so periodic work (auto-backup, delayed
// change notifications) can be driven deterministically in tests.
package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of scheduled work. Jobs must not block for long; the context
// is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler runs jobs periodically, once after a delay, or at shutdown.
// The returned cancel funcs are idempotent.
type Scheduler interface {
	Every(interval time.Duration, job Job) (cancel func())
	After(delay time.Duration, job Job) (cancel func())
	OnShutdown(job Job)
}

// safeRun runs job, converting a panic into a logged error.
func safeRun(ctx context.Context, logger *zap.Logger, name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled job panicked",
				zap.String("job", name),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	job(ctx)
}

var (
	_ Scheduler = (*Real)(nil)
	_ Scheduler = (*Manual)(nil)
)
