package progress

import "time"

// Clock supplies time and one-shot timers to a Tracker.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f after d on its own goroutine. The returned function
	// cancels the timer and reports whether it stopped f from running.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemClock is the Clock backed by package time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
