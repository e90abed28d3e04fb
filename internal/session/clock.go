package session

import (
	"time"

	"github.com/roach88/campusnav/internal/clock"
)

// loopClock delivers timer callbacks as commands on the session queue.
//
// Stop still stops the underlying timer. A callback that was already
// enqueued when Stop ran is delivered anyway; the store's owners discard
// such stale callbacks themselves.
type loopClock struct {
	inner clock.Clock
	queue *commandQueue
}

var _ clock.Clock = (*loopClock)(nil)

func (c *loopClock) Now() time.Time {
	return c.inner.Now()
}

func (c *loopClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	return c.inner.AfterFunc(d, func() {
		c.queue.Enqueue(Command{Kind: commandTimer, fire: f})
	})
}
