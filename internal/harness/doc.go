// Package harness runs scripted navigation sessions and checks them.
//
// A scenario drives one session with a virtual clock, an in-memory browser
// history and a fake map camera, so every run is deterministic and its
// transition trace can be compared against a golden file.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: search_then_select
//	description: "Typing filters after the debounce; selecting flies in"
//	url: /
//	router: immediate          # or manual: location changes wait for commit
//	catalog: ../campus.cue     # optional, relative to the scenario file
//	facilities:                # optional inline data
//	  - {id: lib, name: Main Library, code: LIB, category: library, lat: 40.7128, lng: -74.006}
//	timing:
//	  debounce: 300ms
//	steps:
//	  - load: {}
//	  - type: libra
//	  - advance: 300ms
//	    expect:
//	      results: [lib]
//	      url: /?q=libra
//	  - select: lib
//	    expect:
//	      camera: {zoom: 17}
//	assertions:
//	  - type: trace_count
//	    kind: resolve
//	    count: 0
//
// Each step carries at most one action: type, flush, clear_filters,
// category, advance, select, close, tab (with clear_selection), location,
// back, map_click, load (optionally failing) or commit. Its expect block is
// checked after every command the action caused has been applied.
//
// # Assertion Types
//
//   - trace_contains: a transition of kind appears (optionally with facility_id and url)
//   - trace_order: kinds appear in the given order
//   - trace_count: a kind appears exactly N times
//
// # Deterministic Testing
//
// The harness uses:
//   - a fixed session token (scenario.token or "test-session-default")
//   - testutil.ManualClock starting at testutil.Epoch
//   - testutil.FakeHistory and testutil.FakeCamera
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/deep_link.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
