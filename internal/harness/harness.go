package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/campusnav/internal/catalog"
	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/session"
	"github.com/roach88/campusnav/internal/testutil"
	"github.com/roach88/campusnav/internal/viewport"
)

// DefaultCameraZoom is the camera zoom when a scenario sets none: zoomed
// out far enough that selecting flies in.
const DefaultCameraZoom = 15

// Harness drives one session through a scenario with a virtual clock,
// an in-memory history and a fake camera.
type Harness struct {
	session *session.Session
	clock   *testutil.ManualClock
	history *testutil.FakeHistory
	camera  *testutil.FakeCamera
	source  *facility.MemorySource

	step int
	held []heldLocation
}

type heldLocation struct {
	path, rawQuery string
}

// RunOption adjusts how scenarios run.
type RunOption func(*runConfig)

type runConfig struct {
	storeDefaults []navstate.Option
	viewport      viewport.Options
	center        viewport.LatLng
}

// WithStoreDefaults sets navigation store options applied before the
// scenario's own timing.
func WithStoreDefaults(opts ...navstate.Option) RunOption {
	return func(c *runConfig) {
		c.storeDefaults = append(c.storeDefaults, opts...)
	}
}

// WithViewport replaces the default viewport options.
func WithViewport(opts viewport.Options) RunOption {
	return func(c *runConfig) {
		c.viewport = opts
	}
}

// WithDefaultCenter sets the initial camera center for scenarios that do
// not place the camera themselves.
func WithDefaultCenter(c viewport.LatLng) RunOption {
	return func(rc *runConfig) {
		rc.center = c
	}
}

// Run executes a scenario and returns the result.
//
// Every scenario runs in a fresh session with a ManualClock starting at
// testutil.Epoch and a fixed session token, so traces are reproducible.
// Expectation and assertion failures are reported in Result.Errors; the
// error return is for scenarios that cannot run at all.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{viewport: viewport.DefaultOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}

	facilities, rooms, err := scenarioData(scenario)
	if err != nil {
		return nil, err
	}
	timing, err := timingOptions(scenario.Timing)
	if err != nil {
		return nil, err
	}
	// Scenario timing is applied last so it wins over run defaults.
	storeOpts := append(append([]navstate.Option{}, cfg.storeDefaults...), timing...)

	url := scenario.URL
	if url == "" {
		url = "/"
	}
	center := viewport.LatLng{Lat: scenario.Camera.Lat, Lng: scenario.Camera.Lng}
	if center == (viewport.LatLng{}) {
		center = cfg.center
	}
	zoom := scenario.Camera.Zoom
	if zoom == 0 {
		zoom = DefaultCameraZoom
	}

	h := &Harness{
		clock:   testutil.NewManualClock(),
		history: testutil.NewFakeHistory(url),
		camera:  testutil.NewFakeCamera(center, zoom),
		source:  facility.NewMemorySource(facilities, rooms),
	}

	result := NewResult()
	var seq int64
	h.session = session.New(h.history,
		session.WithClock(h.clock),
		session.WithCamera(h.camera, cfg.viewport),
		session.WithStoreOptions(storeOpts...),
		session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		session.WithTokenGenerator(testutil.NewFixedTokenGenerator(scenario.Token)),
		session.WithRecorder(func(t navstate.Transition) {
			seq++
			result.Trace = append(result.Trace, newTraceEvent(seq, h.step, t))
		}),
	)
	defer h.session.Close()

	if scenario.Router == RouterManual {
		h.history.OnChange = func(path, rawQuery string) {
			h.held = append(h.held, heldLocation{path: path, rawQuery: rawQuery})
		}
	} else {
		h.history.OnChange = func(path, rawQuery string) {
			h.session.Enqueue(session.Location(path, rawQuery))
		}
	}

	ctx := context.Background()
	for i, step := range scenario.Steps {
		h.step = i + 1
		if err := h.runStep(ctx, step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Expect != nil {
			for _, msg := range checkExpect(h.session.Snapshot(), h.camera, *step.Expect) {
				result.AddError(fmt.Sprintf("steps[%d]: %s", i, msg))
			}
		}
	}

	for _, a := range scenario.Assertions {
		if err := checkAssertion(result.Trace, a); err != nil {
			result.AddError(err.Error())
		}
	}

	if flights := h.camera.Flights(); flights != nil {
		result.Flights = flights
	}
	result.Final = h.session.Snapshot()
	return result, nil
}

// runStep performs one action and applies everything it queued.
func (h *Harness) runStep(ctx context.Context, st Step) error {
	s := h.session
	switch {
	case st.Type != nil:
		s.Enqueue(session.Type(*st.Type))
	case st.Flush:
		s.Enqueue(session.FlushSearch())
	case st.ClearFilters:
		s.Enqueue(session.ClearFilters())
	case st.Category != nil:
		s.Enqueue(session.SetCategory(*st.Category))
	case st.Advance != "":
		d, err := parseDuration(st.Advance)
		if err != nil {
			return err
		}
		h.clock.Advance(d)
	case st.Select != "":
		s.Enqueue(session.Select(st.Select))
	case st.Close:
		s.Enqueue(session.CloseSelection())
	case st.Tab != "":
		s.Enqueue(session.SetTab(st.Tab, st.ClearSelection))
	case st.Location != "":
		h.history.Navigate(st.Location)
	case st.Back:
		if !h.history.Back() {
			return errors.New("back: already at the first history entry")
		}
	case st.MapClick != nil:
		s.Enqueue(session.MapClick(st.MapClick.FromMarker))
	case st.Load != nil:
		if err := h.load(ctx, st.Load); err != nil {
			return err
		}
	case st.Commit:
		held := h.held
		h.held = nil
		for _, loc := range held {
			s.Enqueue(session.Location(loc.path, loc.rawQuery))
		}
	}
	s.Step()
	return nil
}

func (h *Harness) load(ctx context.Context, st *LoadStep) error {
	if st.Fail == "" {
		return h.session.Load(ctx, h.source)
	}
	h.source.FailWith(errors.New(st.Fail))
	defer h.source.FailWith(nil)
	if err := h.session.Load(ctx, h.source); !session.IsLoadFailed(err) {
		return fmt.Errorf("load: expected a load failure, got %v", err)
	}
	return nil
}

// scenarioData loads the catalog (if any) and appends inline data.
func scenarioData(s *Scenario) ([]facility.Facility, []facility.Room, error) {
	var facilities []facility.Facility
	var rooms []facility.Room
	if path := s.catalogPath(); path != "" {
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		if errs := catalog.Blocking(catalog.Validate(cat)); len(errs) > 0 {
			return nil, nil, fmt.Errorf("catalog %s: %w", path, errs[0])
		}
		facilities = append(facilities, cat.Facilities...)
		rooms = append(rooms, cat.Rooms...)
	}
	facilities = append(facilities, s.Facilities...)
	rooms = append(rooms, s.Rooms...)
	return facilities, rooms, nil
}

func timingOptions(t Timing) ([]navstate.Option, error) {
	var opts []navstate.Option
	for _, d := range []struct {
		value string
		opt   func(time.Duration) navstate.Option
	}{
		{t.Debounce, navstate.WithDebounce},
		{t.ClosingGuard, navstate.WithClosingGuard},
		{t.NavigationGuard, navstate.WithNavigationGuard},
	} {
		if d.value == "" {
			continue
		}
		v, err := parseDuration(d.value)
		if err != nil {
			return nil, err
		}
		opts = append(opts, d.opt(v))
	}
	return opts, nil
}
