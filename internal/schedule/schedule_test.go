package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManual_EveryFiresPerInterval(t *testing.T) {
	m := NewManual()
	var runs int
	m.Every(30*time.Minute, func(context.Context) { runs++ })

	m.Advance(29 * time.Minute)
	if runs != 0 {
		t.Fatalf("runs = %d before first interval, want 0", runs)
	}

	m.Advance(time.Minute)
	if runs != 1 {
		t.Fatalf("runs = %d after 30m, want 1", runs)
	}

	m.Advance(2 * time.Hour)
	if runs != 5 {
		t.Fatalf("runs = %d after 2h30m, want 5", runs)
	}
}

func TestManual_AfterFiresOnce(t *testing.T) {
	m := NewManual()
	var runs int
	m.After(1500*time.Millisecond, func(context.Context) { runs++ })

	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}
	m.Advance(time.Second)
	if runs != 0 {
		t.Fatalf("runs = %d before delay, want 0", runs)
	}
	m.Advance(time.Hour)
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if m.Pending() != 0 {
		t.Fatalf("Pending() = %d after firing, want 0", m.Pending())
	}
}

func TestManual_CancelPreventsRun(t *testing.T) {
	m := NewManual()
	var runs int
	cancel := m.After(time.Second, func(context.Context) { runs++ })
	cancel()
	cancel() // idempotent

	m.Advance(time.Minute)
	if runs != 0 {
		t.Fatalf("runs = %d after cancel, want 0", runs)
	}
}

func TestManual_OrderByDueThenSchedule(t *testing.T) {
	m := NewManual()
	var order []string
	m.After(2*time.Second, func(context.Context) { order = append(order, "b") })
	m.After(time.Second, func(context.Context) { order = append(order, "a") })
	m.After(2*time.Second, func(context.Context) { order = append(order, "c") })

	m.Advance(5 * time.Second)

	if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestManual_ShutdownHooksRunOnceInOrder(t *testing.T) {
	m := NewManual()
	var order []int
	m.OnShutdown(func(context.Context) { order = append(order, 1) })
	m.OnShutdown(func(context.Context) { order = append(order, 2) })

	m.Shutdown(context.Background())
	m.Shutdown(context.Background())

	if diff := cmp.Diff([]int{1, 2}, order); diff != "" {
		t.Errorf("hooks mismatch (-want +got):\n%s", diff)
	}
}

func TestManual_PanicIsContained(t *testing.T) {
	m := NewManual()
	var after bool
	m.After(time.Second, func(context.Context) { panic("boom") })
	m.After(2*time.Second, func(context.Context) { after = true })

	m.Advance(3 * time.Second)

	if !after {
		t.Error("job after a panicking job did not run")
	}
}

func TestReal_EveryAndStop(t *testing.T) {
	r := NewReal(nil)

	var ticks atomic.Int32
	r.Every(5*time.Millisecond, func(context.Context) { ticks.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if ticks.Load() < 2 {
		t.Fatalf("ticks = %d, want at least 2", ticks.Load())
	}

	r.Stop(context.Background())
	stopped := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if ticks.Load() != stopped {
		t.Errorf("job kept running after Stop")
	}
}

func TestReal_AfterCancel(t *testing.T) {
	r := NewReal(nil)
	defer r.Stop(context.Background())

	var ran atomic.Bool
	cancel := r.After(50*time.Millisecond, func(context.Context) { ran.Store(true) })
	cancel()

	time.Sleep(80 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled After job ran")
	}
}

func TestReal_AfterRuns(t *testing.T) {
	r := NewReal(nil)
	defer r.Stop(context.Background())

	done := make(chan struct{})
	r.After(time.Millisecond, func(context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("After job did not run")
	}
}

func TestReal_StopRunsHooksAfterTimers(t *testing.T) {
	r := NewReal(nil)

	var (
		mu    sync.Mutex
		order []string
	)
	r.OnShutdown(func(context.Context) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	r.OnShutdown(func(context.Context) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})
	r.Every(time.Hour, func(context.Context) {})

	r.Stop(context.Background())
	r.Stop(context.Background())

	if diff := cmp.Diff([]string{"first", "second"}, order); diff != "" {
		t.Errorf("hooks mismatch (-want +got):\n%s", diff)
	}

	// scheduling after Stop is a no-op
	cancel := r.Every(time.Millisecond, func(context.Context) { t.Error("ran after Stop") })
	cancel()
}
