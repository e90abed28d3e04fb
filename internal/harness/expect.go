package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/session"
	"github.com/roach88/campusnav/internal/testutil"
)

// checkExpect compares the view and camera against e and returns one
// message per mismatch.
func checkExpect(v session.View, cam *testutil.FakeCamera, e Expect) []string {
	var errs []string
	mismatch := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	st := v.State
	if e.Selected != nil && *e.Selected != st.SelectedID() {
		mismatch("selected", quote(*e.Selected), quote(st.SelectedID()))
	}
	if e.Pending != nil && *e.Pending != st.PendingFacilityID {
		mismatch("pending", quote(*e.Pending), quote(st.PendingFacilityID))
	}
	if e.Phase != "" && e.Phase != string(v.Phase) {
		mismatch("phase", e.Phase, v.Phase)
	}
	if e.Tab != "" && e.Tab != string(st.ActiveTab) {
		mismatch("tab", e.Tab, st.ActiveTab)
	}
	if e.URL != nil && *e.URL != v.URL {
		mismatch("url", quote(*e.URL), quote(v.URL))
	}
	if e.Search != nil && *e.Search != st.SearchQuery {
		mismatch("search", quote(*e.Search), quote(st.SearchQuery))
	}
	if e.Settled != nil && *e.Settled != st.DebouncedQuery {
		mismatch("settled", quote(*e.Settled), quote(st.DebouncedQuery))
	}
	if e.Category != nil && *e.Category != string(st.SelectedCategory) {
		mismatch("category", quote(*e.Category), quote(string(st.SelectedCategory)))
	}
	if e.Results != nil {
		if got := facilityIDs(v.Results); !slices.Equal(e.Results, got) {
			mismatch("results", e.Results, got)
		}
	}
	if e.Directory != nil {
		if got := facilityIDs(v.Directory); !slices.Equal(e.Directory, got) {
			mismatch("directory", e.Directory, got)
		}
	}
	if e.ClosingGuard != nil && *e.ClosingGuard != v.ClosingGuard {
		mismatch("closing_guard", *e.ClosingGuard, v.ClosingGuard)
	}
	if e.NavigationGuard != nil && *e.NavigationGuard != v.NavigationGuard {
		mismatch("navigation_guard", *e.NavigationGuard, v.NavigationGuard)
	}

	if c := e.Camera; c != nil {
		center := cam.Center()
		if c.Lat != nil && *c.Lat != center.Lat {
			mismatch("camera.lat", *c.Lat, center.Lat)
		}
		if c.Lng != nil && *c.Lng != center.Lng {
			mismatch("camera.lng", *c.Lng, center.Lng)
		}
		if c.Zoom != nil && *c.Zoom != cam.Zoom() {
			mismatch("camera.zoom", *c.Zoom, cam.Zoom())
		}
		if c.Flights != nil {
			if n := len(cam.Flights()); n != *c.Flights {
				mismatch("camera.flights", *c.Flights, n)
			}
		}
	}
	return errs
}

func facilityIDs(items []facility.Facility) []string {
	out := make([]string, 0, len(items))
	for _, f := range items {
		out = append(out, f.ID)
	}
	return out
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
