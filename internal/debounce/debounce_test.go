package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/campusnav/internal/clock"
	"github.com/roach88/campusnav/internal/testutil"
)

type recorder struct {
	values []string
}

func (r *recorder) settle(v string) { r.values = append(r.values, v) }

func TestText_SettlesAfterQuietInterval(t *testing.T) {
	clk := testutil.NewManualClock()
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	text.Set("libra")
	assert.Equal(t, "libra", text.Raw())
	assert.Equal(t, "", text.Settled())
	assert.True(t, text.Pending())

	clk.Advance(299 * time.Millisecond)
	assert.Empty(t, rec.values)

	clk.Advance(time.Millisecond)
	assert.Equal(t, []string{"libra"}, rec.values)
	assert.Equal(t, "libra", text.Settled())
	assert.False(t, text.Pending())
}

func TestText_RapidUpdatesEmitOnce(t *testing.T) {
	clk := testutil.NewManualClock()
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	for _, v := range []string{"l", "li", "lib", "libr", "libra"} {
		text.Set(v)
		clk.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, rec.values, "timer restarts on every change")

	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"libra"}, rec.values)

	clk.Advance(time.Second)
	assert.Equal(t, []string{"libra"}, rec.values)
	assert.Equal(t, 0, clk.Pending(), "superseded timers are stopped, not left armed")
}

func TestText_RevertToSettledDoesNotEmit(t *testing.T) {
	clk := testutil.NewManualClock()
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	text.Set("a")
	text.Set("")
	clk.Advance(time.Second)

	assert.Empty(t, rec.values)
	assert.False(t, text.Pending())
}

func TestText_ResetEmitsImmediately(t *testing.T) {
	clk := testutil.NewManualClock()
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	text.Set("gym")
	clk.Advance(300 * time.Millisecond)
	text.Set("gymn")

	text.Reset("")
	assert.Equal(t, []string{"gym", ""}, rec.values)
	assert.Equal(t, "", text.Raw())
	assert.False(t, text.Pending())

	clk.Advance(time.Second)
	assert.Equal(t, []string{"gym", ""}, rec.values, "pending settle was cancelled by reset")
}

func TestText_Flush(t *testing.T) {
	clk := testutil.NewManualClock()
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	text.Flush()
	assert.Empty(t, rec.values, "nothing pending")

	text.Set("caf")
	text.Flush()
	assert.Equal(t, []string{"caf"}, rec.values)

	clk.Advance(time.Second)
	assert.Equal(t, []string{"caf"}, rec.values)
}

func TestText_CancelKeepsRawDropsSettle(t *testing.T) {
	clk := testutil.NewManualClock()
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	text.Set("health")
	text.Cancel()
	clk.Advance(time.Second)

	assert.Empty(t, rec.values)
	assert.Equal(t, "health", text.Raw())
	assert.Equal(t, "", text.Settled())
	assert.Equal(t, 0, clk.Pending())
}

// queuedClock hands callbacks to the test instead of firing them, and its
// timers cannot be stopped. This models a real timer whose callback was
// already queued on the loop when it was stopped.
type queuedClock struct {
	fns []func()
}

type spentTimer struct{}

func (spentTimer) Stop() bool { return false }

func (c *queuedClock) Now() time.Time { return testutil.Epoch }

func (c *queuedClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.fns = append(c.fns, f)
	return spentTimer{}
}

func TestText_StaleCallbackIgnored(t *testing.T) {
	clk := &queuedClock{}
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	text.Set("old")
	text.Set("new")
	clk.fns[0]() // superseded timer delivers late
	assert.Empty(t, rec.values)
	assert.Equal(t, "", text.Settled())

	clk.fns[1]()
	assert.Equal(t, []string{"new"}, rec.values)
}

func TestText_CallbackAfterCancelIgnored(t *testing.T) {
	clk := &queuedClock{}
	rec := &recorder{}
	text := New(clk, 300*time.Millisecond, rec.settle)

	text.Set("gone")
	text.Cancel()
	clk.fns[0]()

	assert.Empty(t, rec.values)
}

func TestNew_DefaultInterval(t *testing.T) {
	text := New(testutil.NewManualClock(), 0, nil)
	assert.Equal(t, DefaultInterval, text.Interval())
}
