package harness

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/viewport"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

var library = facility.Facility{
	ID: "lib", Name: "Main Library", Code: "LIB",
	Category: facility.CategoryLibrary, Lat: 40.7128, Lng: -74.006,
}

func ptr[T any](v T) *T {
	return &v
}

func TestRun_ReportsExpectMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Expectations that do not hold are reported per step",
		Facilities:  []facility.Facility{library},
		Steps: []Step{
			{Load: &LoadStep{}},
			{
				Select: "lib",
				Expect: &Expect{
					Selected: ptr("gym"),
					URL:      ptr("/"),
					Camera:   &CameraExpect{Zoom: ptr(12.0)},
				},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, `steps[1]: selected: expected "gym", got "lib"`, result.Errors[0])
	assert.Equal(t, `steps[1]: url: expected "/", got "/?facility=lib"`, result.Errors[1])
	assert.Equal(t, "steps[1]: camera.zoom: expected 12, got 17", result.Errors[2])
}

func TestRun_StoreDefaults(t *testing.T) {
	typeAndWait := func(timing Timing) *Scenario {
		return &Scenario{
			Name:        "store_defaults",
			Description: "Run defaults apply unless the scenario sets its own timing",
			Facilities:  []facility.Facility{library},
			Timing:      timing,
			Steps: []Step{
				{Type: ptr("lib")},
				{Advance: "50ms"},
			},
		}
	}

	result, err := Run(typeAndWait(Timing{}), WithStoreDefaults(navstate.WithDebounce(50*time.Millisecond)))
	require.NoError(t, err)
	assert.Equal(t, "lib", result.Final.State.DebouncedQuery)

	result, err = Run(typeAndWait(Timing{Debounce: "200ms"}), WithStoreDefaults(navstate.WithDebounce(50*time.Millisecond)))
	require.NoError(t, err)
	assert.Equal(t, "", result.Final.State.DebouncedQuery)
}

func TestRun_WithViewport(t *testing.T) {
	scenario := &Scenario{
		Name:        "viewport",
		Description: "Viewport options control the selection zoom",
		Facilities:  []facility.Facility{library},
		Steps: []Step{
			{Load: &LoadStep{}},
			{Select: "lib", Expect: &Expect{Camera: &CameraExpect{Zoom: ptr(19.0)}}},
		},
	}

	opts := viewport.DefaultOptions()
	opts.MinSelectZoom = 19
	result, err := Run(scenario, WithViewport(opts))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_WithDefaultCenter(t *testing.T) {
	placed := &Scenario{
		Name:        "placed",
		Description: "A scenario camera wins over the run default",
		Camera:      CameraSetup{Lat: 1, Lng: 2},
		Steps:       []Step{{Expect: &Expect{Camera: &CameraExpect{Lat: ptr(1.0), Lng: ptr(2.0)}}}},
	}
	unplaced := &Scenario{
		Name:        "unplaced",
		Description: "Without a camera block the run default is used",
		Steps:       []Step{{Expect: &Expect{Camera: &CameraExpect{Lat: ptr(40.7), Lng: ptr(-74.0)}}}},
	}

	center := WithDefaultCenter(viewport.LatLng{Lat: 40.7, Lng: -74.0})
	for _, s := range []*Scenario{placed, unplaced} {
		result, err := Run(s, center)
		require.NoError(t, err)
		assert.True(t, result.Pass, "%s: %v", s.Name, result.Errors)
	}
}

func TestRun_EmptyResultsExpectation(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_results",
		Description: "An empty results list means no facility matches",
		Facilities:  []facility.Facility{library},
		Steps: []Step{
			{Load: &LoadStep{}},
			{Type: ptr("zzz")},
			{Flush: true, Expect: &Expect{Results: []string{}, Directory: []string{}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 0, result.Final.MatchCount)
}

func TestRun_AssertionFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertion_failure",
		Description: "A failing assertion marks the result as failed",
		Facilities:  []facility.Facility{library},
		Steps:       []Step{{Load: &LoadStep{}}, {Select: "lib"}},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Kind: "select", Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "2 occurrences of select")
}

func TestRun_BackAtFirstEntryFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "back_first",
		Description: "Back with no history is a scenario error",
		Steps:       []Step{{Back: true}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]")
}

func TestRun_LoadExpectedToFail(t *testing.T) {
	scenario := &Scenario{
		Name:        "load_fail",
		Description: "A failing load leaves the deep link pending",
		URL:         "/?facility=lib",
		Facilities:  []facility.Facility{library},
		Steps: []Step{
			{Load: &LoadStep{Fail: "timeout"}, Expect: &Expect{Phase: "pending"}},
			{Load: &LoadStep{}, Expect: &Expect{Phase: "resolved"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, result.Final.Loaded)
}

func TestRun_MissingCatalog(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_catalog",
		Description: "A catalog that cannot be read is a scenario error",
		Catalog:     "testdata/does-not-exist.cue",
		Steps:       []Step{{Load: &LoadStep{}}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: y\nsteps:\n  - selct: lib\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: y\nsteps:\n  - close: true\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nsteps:\n  - close: true\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: y\n",
			want: "steps list is required",
		},
		{
			name: "two actions",
			yaml: "name: x\ndescription: y\nsteps:\n  - close: true\n    select: lib\n",
			want: "exactly one action per step",
		},
		{
			name: "empty step",
			yaml: "name: x\ndescription: y\nsteps:\n  - {}\n",
			want: "no action and no expect",
		},
		{
			name: "bad duration",
			yaml: "name: x\ndescription: y\nsteps:\n  - advance: soon\n",
			want: "steps[0].advance",
		},
		{
			name: "bad timing",
			yaml: "name: x\ndescription: y\ntiming: {debounce: fast}\nsteps:\n  - close: true\n",
			want: "timing.debounce",
		},
		{
			name: "unknown router",
			yaml: "name: x\ndescription: y\nrouter: lazy\nsteps:\n  - close: true\n",
			want: "unknown router",
		},
		{
			name: "commit without manual router",
			yaml: "name: x\ndescription: y\nsteps:\n  - commit: true\n",
			want: "commit requires router: manual",
		},
		{
			name: "clear_selection without tab",
			yaml: "name: x\ndescription: y\nsteps:\n  - clear_selection: true\n",
			want: "clear_selection requires tab",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: y\nsteps:\n  - close: true\nassertions:\n  - type: final_state\n",
			want: `unknown assertion type "final_state"`,
		},
		{
			name: "trace_order without kinds",
			yaml: "name: x\ndescription: y\nsteps:\n  - close: true\nassertions:\n  - type: trace_order\n",
			want: "kinds list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_Valid(t *testing.T) {
	src := `
name: inline
description: "Inline data and an expect-only step"
url: /directory
facilities:
  - {id: lib, name: Main Library, category: library, lat: 1, lng: 2}
rooms:
  - {id: r1, facility_id: lib, code: B12}
steps:
  - expect: {tab: directory}
  - type: ""
`
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	require.Len(t, s.Facilities, 1)
	assert.Equal(t, facility.CategoryLibrary, s.Facilities[0].Category)
	assert.Equal(t, "lib", s.Rooms[0].FacilityID)
	require.NotNil(t, s.Steps[1].Type)
	assert.Equal(t, "", *s.Steps[1].Type)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario("testdata/nope.yaml")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to read scenario file"))
}
