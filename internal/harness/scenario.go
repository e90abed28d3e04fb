package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/campusnav/internal/facility"
)

// Scenario is one scripted navigation session: initial location, data,
// a list of steps, and assertions over the resulting transition trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// URL is the initial location (default "/").
	URL string `yaml:"url,omitempty"`

	// Token is the session token stamped on the trace.
	// If empty, defaults to "test-session-default".
	Token string `yaml:"token,omitempty"`

	// Router is "immediate" (default): every location change is delivered
	// to the session as soon as it happens. With "manual", changes are held
	// until a commit step, to model a router that commits late.
	Router string `yaml:"router,omitempty"`

	// Catalog is a CUE catalog path, relative to the scenario file.
	Catalog string `yaml:"catalog,omitempty"`

	// Facilities and Rooms are inline data, appended after the catalog.
	Facilities []facility.Facility `yaml:"facilities,omitempty"`
	Rooms      []facility.Room     `yaml:"rooms,omitempty"`

	// Timing overrides the store's debounce and guard windows.
	Timing Timing `yaml:"timing,omitempty"`

	// Camera is the initial map camera.
	Camera CameraSetup `yaml:"camera,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	baseDir string
}

// Router modes.
const (
	RouterImmediate = "immediate"
	RouterManual    = "manual"
)

// Timing overrides durations, as Go duration strings ("300ms").
type Timing struct {
	Debounce        string `yaml:"debounce,omitempty"`
	ClosingGuard    string `yaml:"closing_guard,omitempty"`
	NavigationGuard string `yaml:"navigation_guard,omitempty"`
}

// CameraSetup places the fake camera before the first step.
type CameraSetup struct {
	Lat  float64 `yaml:"lat,omitempty"`
	Lng  float64 `yaml:"lng,omitempty"`
	Zoom float64 `yaml:"zoom,omitempty"`
}

// Step is one scripted action, optionally followed by expectations.
// At most one action field may be set; a step with only Expect checks the
// current view.
type Step struct {
	// Type sets the raw search text.
	Type *string `yaml:"type,omitempty"`
	// Flush settles pending search text (Enter).
	Flush bool `yaml:"flush,omitempty"`
	// ClearFilters resets search and category.
	ClearFilters bool `yaml:"clear_filters,omitempty"`
	// Category sets the category filter.
	Category *string `yaml:"category,omitempty"`
	// Advance moves the virtual clock ("300ms").
	Advance string `yaml:"advance,omitempty"`
	// Select selects a facility by id.
	Select string `yaml:"select,omitempty"`
	// Close closes the selection.
	Close bool `yaml:"close,omitempty"`
	// Tab navigates to a tab; ClearSelection drops the selection.
	Tab            string `yaml:"tab,omitempty"`
	ClearSelection bool   `yaml:"clear_selection,omitempty"`
	// Location navigates the browser to a URL from outside the app
	// (typed URL, deep link).
	Location string `yaml:"location,omitempty"`
	// Back is the browser back button.
	Back bool `yaml:"back,omitempty"`
	// MapClick is a raw map click.
	MapClick *MapClick `yaml:"map_click,omitempty"`
	// Load fetches the facility data.
	Load *LoadStep `yaml:"load,omitempty"`
	// Commit delivers held location changes (manual router only).
	Commit bool `yaml:"commit,omitempty"`

	// Expect is checked after the action.
	Expect *Expect `yaml:"expect,omitempty"`
}

// MapClick describes a map click.
type MapClick struct {
	FromMarker bool `yaml:"from_marker"`
}

// LoadStep describes a facility fetch. A non-empty Fail makes the fetch
// fail with that message.
type LoadStep struct {
	Fail string `yaml:"fail,omitempty"`
}

// Expect is a subset match against the session view. Nil fields are not
// checked; an empty list checks for no results.
type Expect struct {
	Selected        *string       `yaml:"selected,omitempty"`
	Pending         *string       `yaml:"pending,omitempty"`
	Phase           string        `yaml:"phase,omitempty"`
	Tab             string        `yaml:"tab,omitempty"`
	URL             *string       `yaml:"url,omitempty"`
	Search          *string       `yaml:"search,omitempty"`
	Settled         *string       `yaml:"settled,omitempty"`
	Category        *string       `yaml:"category,omitempty"`
	Results         []string      `yaml:"results,omitempty"`
	Directory       []string      `yaml:"directory,omitempty"`
	ClosingGuard    *bool         `yaml:"closing_guard,omitempty"`
	NavigationGuard *bool         `yaml:"navigation_guard,omitempty"`
	Camera          *CameraExpect `yaml:"camera,omitempty"`
}

// CameraExpect checks the fake camera.
type CameraExpect struct {
	Lat     *float64 `yaml:"lat,omitempty"`
	Lng     *float64 `yaml:"lng,omitempty"`
	Zoom    *float64 `yaml:"zoom,omitempty"`
	Flights *int     `yaml:"flights,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count.
	Type string `yaml:"type"`

	// Kind is the transition kind (trace_contains, trace_count).
	Kind string `yaml:"kind,omitempty"`

	// FacilityID and URL narrow trace_contains. Empty means any.
	FacilityID string `yaml:"facility_id,omitempty"`
	URL        string `yaml:"url,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected order (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.baseDir = filepath.Dir(path)
	return scenario, nil
}

// ParseScenario parses scenario YAML. Catalog paths resolve against the
// working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// catalogPath returns the catalog path resolved against the scenario file.
func (s *Scenario) catalogPath() string {
	if s.Catalog == "" || filepath.IsAbs(s.Catalog) || s.baseDir == "" {
		return s.Catalog
	}
	return filepath.Join(s.baseDir, s.Catalog)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	switch s.Router {
	case "", RouterImmediate, RouterManual:
	default:
		return fmt.Errorf("unknown router %q (want %s or %s)", s.Router, RouterImmediate, RouterManual)
	}

	for name, d := range map[string]string{
		"timing.debounce":         s.Timing.Debounce,
		"timing.closing_guard":    s.Timing.ClosingGuard,
		"timing.navigation_guard": s.Timing.NavigationGuard,
	} {
		if _, err := parseDuration(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step, s.Router == RouterManual); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step, manual bool) error {
	if st.ClearSelection && st.Tab == "" {
		return fmt.Errorf("steps[%d]: clear_selection requires tab", index)
	}
	n := st.actionCount()
	if n > 1 {
		return fmt.Errorf("steps[%d]: exactly one action per step, got %d", index, n)
	}
	if n == 0 && st.Expect == nil {
		return fmt.Errorf("steps[%d]: step has no action and no expect", index)
	}
	if st.Advance != "" {
		d, err := parseDuration(st.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d].advance: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("steps[%d].advance: must not be negative", index)
		}
	}
	if st.Commit && !manual {
		return fmt.Errorf("steps[%d]: commit requires router: %s", index, RouterManual)
	}
	return nil
}

func (st *Step) actionCount() int {
	n := 0
	for _, set := range []bool{
		st.Type != nil,
		st.Flush,
		st.ClearFilters,
		st.Category != nil,
		st.Advance != "",
		st.Select != "",
		st.Close,
		st.Tab != "",
		st.Location != "",
		st.Back,
		st.MapClick != nil,
		st.Load != nil,
		st.Commit,
	} {
		if set {
			n++
		}
	}
	return n
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
