// Package debounce coalesces bursts of triggers into a single delayed call.
// A Debouncer owns exactly one timer slot: scheduling replaces whatever was
// pending.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the pause required before a lookup fires.
const DefaultDelay = 1000 * time.Millisecond

// Timer is the handle returned by a Clock.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// Debouncer delays a callback until Trigger stops being called for Delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	clock   Clock
	timer   Timer
	seq     uint64
	running int
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock swaps the clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(d *Debouncer) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// New returns a Debouncer with the given delay; non-positive delays fall back
// to DefaultDelay.
func New(delay time.Duration, options ...Option) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	d := &Debouncer{delay: delay, clock: realClock{}}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Delay reports the configured delay.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger cancels any pending call and schedules fn after the delay. A
// superseded fn never runs, even when its timer already fired and is waiting
// on the lock.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	scheduled := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != scheduled || d.timer == nil {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.running++
		d.mu.Unlock()

		defer func() {
			d.mu.Lock()
			d.running--
			d.mu.Unlock()
		}()
		fn()
	})
}

// Cancel drops the pending call, reporting whether one existed.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Busy reports whether a call is scheduled or currently running.
func (d *Debouncer) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil || d.running > 0
}

func (d *Debouncer) stopLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	return true
}
