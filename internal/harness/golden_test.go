package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/campusnav/internal/testutil"
	"github.com/roach88/campusnav/internal/viewport"
)

func TestMarshalSnapshot(t *testing.T) {
	data, err := MarshalSnapshot(TraceSnapshot{
		ScenarioName: "s",
		Session:      "tok",
		Trace:        []TraceEvent{{Seq: 1, Step: 2, Kind: "url_replace", URL: "/?a=1&b=2"}},
		Flights: []testutil.Flight{{
			Target:   viewport.LatLng{Lat: 1.5, Lng: -2},
			Zoom:     17,
			Duration: "500ms",
		}},
		FinalURL: "/?a=1&b=2",
	})
	require.NoError(t, err)

	want := `{
  "scenario_name": "s",
  "session": "tok",
  "trace": [
    {
      "seq": 1,
      "step": 2,
      "kind": "url_replace",
      "url": "/?a=1&b=2"
    }
  ],
  "flights": [
    {
      "target": {
        "lat": 1.5,
        "lng": -2
      },
      "zoom": 17,
      "duration": "500ms"
    }
  ],
  "final_url": "/?a=1&b=2"
}
`
	assert.Equal(t, want, string(data))
}

func TestRunWithGolden_Minimal(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/navigation_timeout.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, AssertGolden(t, "navigation_timeout", result))
}
