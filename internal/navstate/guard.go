package navstate

import (
	"time"

	"github.com/roach88/campusnav/internal/clock"
)

// guard is a flag that drops on its own after a window.
//
// The timer is single-shot and always stopped before being re-armed. gen
// invalidates callbacks that were already queued when the guard was
// re-raised or released.
type guard struct {
	clock     clock.Clock
	window    time.Duration
	onRelease func()

	active bool
	timer  clock.Timer
	gen    uint64
}

func newGuard(c clock.Clock, window time.Duration, onRelease func()) *guard {
	return &guard{clock: c, window: window, onRelease: onRelease}
}

// raise sets the flag and (re)starts the window.
func (g *guard) raise() {
	g.stopTimer()
	g.active = true
	gen := g.gen
	g.timer = g.clock.AfterFunc(g.window, func() {
		if gen != g.gen || !g.active {
			return
		}
		g.timer = nil
		g.active = false
		g.gen++
		if g.onRelease != nil {
			g.onRelease()
		}
	})
}

// release drops the flag early. onRelease is not called.
func (g *guard) release() {
	g.stopTimer()
	g.active = false
}

func (g *guard) stopTimer() {
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
