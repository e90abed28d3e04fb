package clock

import "time"

// Timer is a single-shot timer armed by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the timer from firing.
	// Returns false if the timer already fired or was already stopped.
	Stop() bool
}

// Clock arms single-shot timers.
//
// Callbacks run on whatever goroutine the implementation chooses. The real
// clock fires on a runtime goroutine; callers that own single-threaded state
// must marshal the callback back onto their own loop (see session.Session).
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the wall clock backed by the time package.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
