package harness

import (
	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/session"
	"github.com/roach88/campusnav/internal/testutil"
)

// TraceEvent is one transition in the trace, tagged with the step that
// produced it.
type TraceEvent struct {
	Seq        int64  `json:"seq"`
	Step       int    `json:"step"`
	Kind       string `json:"kind"`
	FacilityID string `json:"facility_id,omitempty"`
	Tab        string `json:"tab,omitempty"`
	URL        string `json:"url,omitempty"`
	Value      string `json:"value,omitempty"`
}

func newTraceEvent(seq int64, step int, t navstate.Transition) TraceEvent {
	return TraceEvent{
		Seq:        seq,
		Step:       step,
		Kind:       string(t.Kind),
		FacilityID: t.FacilityID,
		Tab:        string(t.Tab),
		URL:        t.URL,
		Value:      t.Value,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every transition in order.
	Trace []TraceEvent `json:"trace"`

	// Flights contains every camera animation in order.
	Flights []testutil.Flight `json:"flights"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the session view after the last step.
	Final session.View `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Flights: []testutil.Flight{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
