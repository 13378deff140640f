package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manual is a virtual-clock Scheduler for tests. Nothing runs until Advance
// or Shutdown is called.
type Manual struct {
	mu       sync.Mutex
	now      time.Duration
	seq      int
	timers   []*manualTimer
	hooks    []Job
	shutdown bool
	logger   *zap.Logger
}

type manualTimer struct {
	seq       int
	due       time.Duration
	interval  time.Duration // 0 for one-shot
	job       Job
	cancelled bool
}

// NewManual returns a scheduler whose clock starts at zero.
func NewManual() *Manual {
	return &Manual{logger: zap.NewNop()}
}

func (m *Manual) Every(interval time.Duration, job Job) func() {
	return m.add(interval, interval, job)
}

func (m *Manual) After(delay time.Duration, job Job) func() {
	return m.add(delay, 0, job)
}

func (m *Manual) add(delay, interval time.Duration, job Job) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return func() {}
	}

	m.seq++
	t := &manualTimer{seq: m.seq, due: m.now + delay, interval: interval, job: job}
	m.timers = append(m.timers, t)

	return func() {
		m.mu.Lock()
		t.cancelled = true
		m.mu.Unlock()
	}
}

func (m *Manual) OnShutdown(job Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return
	}
	m.hooks = append(m.hooks, job)
}

// Advance moves the clock forward by d, running every job that comes due in
// due-time order (ties in scheduling order). Jobs run on the caller's goroutine.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		if next.interval > 0 {
			next.due += next.interval
		} else {
			next.cancelled = true
		}
		job := next.job
		m.mu.Unlock()

		safeRun(context.Background(), m.logger, "manual", job)
	}
}

// nextDue returns the earliest live timer due at or before target. Caller holds mu.
func (m *Manual) nextDue(target time.Duration) *manualTimer {
	var best *manualTimer
	live := m.timers[:0]
	for _, t := range m.timers {
		if t.cancelled {
			continue
		}
		live = append(live, t)
		if t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	m.timers = live
	return best
}

// Shutdown runs the registered hooks once, in order.
func (m *Manual) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	hooks := m.hooks
	m.hooks = nil
	m.mu.Unlock()

	for _, hook := range hooks {
		safeRun(ctx, m.logger, "shutdown", hook)
	}
}

// Pending reports the number of timers that have not fired or been cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}
