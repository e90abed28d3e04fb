// Package clock provides the time sources used by the navigation core.
//
// Two kinds of time are involved:
//
// Wall time with timers (Clock): debounce windows and guard windows are
// armed through Clock.AfterFunc so that tests can substitute a virtual
// clock (testutil.ManualClock) and advance time deterministically.
//
// Logical time (Sequence): every recorded transition is stamped with a
// strictly increasing seq from Sequence.Next(). Journals and traces are
// ordered by seq, never by wall-clock timestamps.
package clock
