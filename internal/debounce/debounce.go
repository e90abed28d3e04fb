// Package debounce turns a rapidly changing text input into a settled value.
//
// Text is a trailing debounce: every raw change restarts a single-shot timer,
// and the settled value is published only after the input has been quiet for
// the full interval. Reset bypasses the timer for external resets such as
// "clear filters".
//
// Text is not safe for concurrent use. It is owned by the session's
// single-writer loop; timer callbacks must be delivered on that loop.
package debounce

import (
	"time"

	"github.com/roach88/campusnav/internal/clock"
)

// DefaultInterval is the quiet period before a raw value settles.
const DefaultInterval = 300 * time.Millisecond

// Text holds a raw value and its settled counterpart.
type Text struct {
	clock    clock.Clock
	interval time.Duration
	onSettle func(string)

	raw     string
	settled string

	timer clock.Timer
	// gen invalidates callbacks from timers that fired but were delivered
	// after being superseded.
	gen uint64
}

// New creates a Text. onSettle may be nil; it is called with every new
// settled value that differs from the previous one.
func New(c clock.Clock, interval time.Duration, onSettle func(string)) *Text {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Text{
		clock:    c,
		interval: interval,
		onSettle: onSettle,
	}
}

// Raw returns the latest raw value.
func (t *Text) Raw() string {
	return t.raw
}

// Settled returns the latest settled value.
func (t *Text) Settled() string {
	return t.settled
}

// Pending reports whether a settle is scheduled.
func (t *Text) Pending() bool {
	return t.timer != nil
}

// Interval returns the quiet period.
func (t *Text) Interval() time.Duration {
	return t.interval
}

// Set records a raw change and (re)arms the settle timer.
func (t *Text) Set(raw string) {
	t.raw = raw
	t.stop()

	gen := t.gen
	t.timer = t.clock.AfterFunc(t.interval, func() {
		if gen != t.gen {
			return
		}
		t.timer = nil
		t.settle(t.raw)
	})
}

// Reset sets raw and settled to value immediately, cancelling any pending
// settle.
func (t *Text) Reset(value string) {
	t.stop()
	t.raw = value
	t.settle(value)
}

// Flush settles the pending raw value now. No-op when nothing is pending.
func (t *Text) Flush() {
	if t.timer == nil {
		return
	}
	t.stop()
	t.settle(t.raw)
}

// Cancel drops any pending settle. The raw value is kept.
// Call on teardown so no callback fires into a discarded owner.
func (t *Text) Cancel() {
	t.stop()
}

func (t *Text) stop() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Text) settle(v string) {
	if v == t.settled {
		return
	}
	t.settled = v
	if t.onSettle != nil {
		t.onSettle(v)
	}
}
