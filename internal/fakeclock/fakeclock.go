// Package fakeclock provides a manually advanced clock for tests of
// timer-driven code.
package fakeclock

import (
	"sort"
	"sync"
	"time"
)

// Clock is a fake clock. Timers fire only from Advance, on the caller's
// goroutine, in deadline order.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*timer
	stops  int
}

type timer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

// New returns a clock reading start.
func New(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
// The returned stop function reports whether it prevented f from running.
func (c *Clock) AfterFunc(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.stops++
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

// Advance moves the clock forward by d and runs every timer that became due.
// Callbacks run without the clock's lock held.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*timer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of timers that are neither stopped nor fired.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Stops returns how many times any stop function has been called.
func (c *Clock) Stops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stops
}

// Callbacks returns every callback ever scheduled, stopped ones included,
// in scheduling order. Tests call them directly to simulate a timer that
// fires after it was cancelled.
func (c *Clock) Callbacks() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fs := make([]func(), len(c.timers))
	for i, t := range c.timers {
		fs[i] = t.f
	}
	return fs
}
