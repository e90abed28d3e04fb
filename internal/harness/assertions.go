package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] step %d %s", event.Seq, event.Step, event.Kind)
			if event.FacilityID != "" {
				fmt.Fprintf(&buf, " facility=%s", event.FacilityID)
			}
			if event.URL != "" {
				fmt.Fprintf(&buf, " url=%s", event.URL)
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// checkAssertion evaluates one assertion against the trace.
func checkAssertion(trace []TraceEvent, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(trace, a)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTraceContains checks that a transition of the given kind appears,
// narrowed by facility id and URL when set.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Kind != a.Kind {
			continue
		}
		if a.FacilityID != "" && event.FacilityID != a.FacilityID {
			continue
		}
		if a.URL != "" && event.URL != a.URL {
			continue
		}
		return nil
	}

	expected := a.Kind
	if a.FacilityID != "" {
		expected += " facility=" + a.FacilityID
	}
	if a.URL != "" {
		expected += " url=" + a.URL
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that kinds appear in the given order.
// They don't need to be consecutive; each kind is matched at its first
// occurrence after the previous match.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	pos := 0
	for i, kind := range a.Kinds {
		found := false
		for pos < len(trace) {
			pos++
			if trace[pos-1].Kind == kind {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
				Actual:   fmt.Sprintf("%s (index %d) not found after previous kinds", kind, i),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that kind appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Kind == a.Kind {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}
