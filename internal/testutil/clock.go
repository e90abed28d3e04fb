package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/campusnav/internal/clock"
)

// ManualClock is a virtual clock.Clock for deterministic tests.
//
// Time only moves when Advance is called. Due timers fire synchronously on
// the caller's goroutine, in deadline order; timers with equal deadlines fire
// in the order they were armed. Callbacks may arm or stop other timers.
//
// Thread-safety: all methods are safe for concurrent use, but callbacks run
// without the internal lock held, on the goroutine that called Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int64
	timers []*manualTimer
}

var _ clock.Clock = (*ManualClock)(nil)

// Epoch is the start time of every new ManualClock.
var Epoch = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

// NewManualClock creates a clock at Epoch with no timers.
func NewManualClock() *ManualClock {
	return &ManualClock{now: Epoch}
}

// Now returns the virtual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc arms a timer that fires once the virtual time reaches now+d.
// A non-positive d fires on the next Advance (including Advance(0)).
func (c *ManualClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{
		clock: c,
		id:    c.nextID,
		when:  c.now.Add(d),
		fn:    f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves virtual time forward by d, firing every timer that falls
// due, including timers armed by callbacks during the advance.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.popDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.when
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of armed timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// popDueLocked removes and returns the earliest timer due at or before
// target. Caller must hold c.mu.
func (c *ManualClock) popDueLocked(target time.Time) *manualTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].when.Equal(c.timers[j].when) {
			return c.timers[i].id < c.timers[j].id
		}
		return c.timers[i].when.Before(c.timers[j].when)
	})
	first := c.timers[0]
	if first.when.After(target) {
		return nil
	}
	c.timers = c.timers[1:]
	return first
}

// removeLocked drops t. Caller must hold c.mu.
func (c *ManualClock) removeLocked(t *manualTimer) bool {
	for i, candidate := range c.timers {
		if candidate == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	clock *ManualClock
	id    int64
	when  time.Time
	fn    func()
}

// Stop disarms the timer. Returns false if it already fired or was stopped.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.clock.removeLocked(t)
}
