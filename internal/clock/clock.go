// Package clock abstracts wall-clock time and one-shot timers so that
// playback scheduling and cache expiry can be driven deterministically
// in tests.
package clock

import "time"

// Timer is a cancellable one-shot timer.
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired.
	Stop() bool
}

// Clock provides the current time and one-shot timer scheduling.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f on its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// System returns a Clock backed by the time package.
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
