package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/edesteves10/contrat-cond/internal/testsupport"
	"github.com/edesteves10/contrat-cond/pkg/debounce"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	clock := testsupport.NewManualClock()
	d := debounce.New(time.Second, debounce.WithClock(clock))

	var calls int32
	var last string
	for _, value := range []string{"a", "b", "c"} {
		value := value
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			last = value
		})
		clock.Advance(300 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no call inside the window, got %d", got)
	}
	clock.Advance(time.Second)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one call, got %d", got)
	}
	if last != "c" {
		t.Fatalf("expected last value to win, got %q", last)
	}
	if d.Pending() {
		t.Fatal("debouncer should be idle after firing")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := testsupport.NewManualClock()
	d := debounce.New(time.Second, debounce.WithClock(clock))

	fired := false
	d.Trigger(func() { fired = true })
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	if !d.Cancel() {
		t.Fatal("expected Cancel to report a pending call")
	}
	clock.Advance(2 * time.Second)
	if fired {
		t.Fatal("cancelled call must not fire")
	}
	if d.Cancel() {
		t.Fatal("second Cancel should report nothing pending")
	}
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	if got := debounce.New(0).Delay(); got != debounce.DefaultDelay {
		t.Fatalf("Delay = %v, want %v", got, debounce.DefaultDelay)
	}
}

func TestDebouncer_RealClock(t *testing.T) {
	d := debounce.New(10 * time.Millisecond)
	done := make(chan struct{})
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced call")
	}
}

func TestDebouncer_BusyWhileRunning(t *testing.T) {
	clock := testsupport.NewManualClock()
	d := debounce.New(time.Second, debounce.WithClock(clock))

	var busyInside bool
	d.Trigger(func() {
		busyInside = d.Busy()
	})
	if !d.Busy() {
		t.Fatal("expected busy while scheduled")
	}
	clock.Advance(time.Second)

	if !busyInside {
		t.Fatal("expected busy while the callback runs")
	}
	if d.Busy() {
		t.Fatal("expected idle after the callback returned")
	}
}
