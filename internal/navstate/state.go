package navstate

import (
	"strings"

	"github.com/roach88/campusnav/internal/facility"
)

// Tab is a top-level section of the app. Each tab maps 1:1 to a route.
type Tab string

const (
	TabMap       Tab = "map"
	TabDirectory Tab = "directory"
	TabChat      Tab = "chat"
)

// routes is the fixed tab -> route table.
var routes = []struct {
	tab  Tab
	path string
}{
	{TabMap, "/"},
	{TabDirectory, "/directory"},
	{TabChat, "/chat"},
}

// RouteFor returns the route path for tab.
func RouteFor(tab Tab) (string, bool) {
	for _, r := range routes {
		if r.tab == tab {
			return r.path, true
		}
	}
	return "", false
}

// TabForPath derives the tab from a route path by prefix match.
// Anything that is not a known section is the map.
func TabForPath(path string) Tab {
	for _, r := range routes {
		if r.path == "/" {
			continue
		}
		if path == r.path || strings.HasPrefix(path, r.path+"/") {
			return r.tab
		}
	}
	return TabMap
}

// ParseTab maps user input to a Tab.
func ParseTab(s string) (Tab, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range routes {
		if string(r.tab) == s {
			return r.tab, true
		}
	}
	return "", false
}

// State is a read-only snapshot of the navigation state.
type State struct {
	SelectedFacility  *facility.Facility `json:"selected_facility,omitempty"`
	PendingFacilityID string             `json:"pending_facility_id,omitempty"`
	SearchQuery       string             `json:"search_query"`
	DebouncedQuery    string             `json:"debounced_query"`
	SelectedCategory  facility.Category  `json:"selected_category,omitempty"`
	ActiveTab         Tab                `json:"active_tab"`
}

// SelectedID returns the resolved selection id, or "".
func (s State) SelectedID() string {
	if s.SelectedFacility == nil {
		return ""
	}
	return s.SelectedFacility.ID
}

// Phase names the selection phase.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePending  Phase = "pending"
	PhaseResolved Phase = "resolved"
)

// Phase reports which selection phase the snapshot is in.
func (s State) Phase() Phase {
	switch {
	case s.SelectedFacility != nil:
		return PhaseResolved
	case s.PendingFacilityID != "":
		return PhasePending
	default:
		return PhaseIdle
	}
}

// NavigateOptions modifies SetActiveTab.
type NavigateOptions struct {
	// ClearSelection drops the selection instead of carrying it to the
	// destination route.
	ClearSelection bool
}

// History is the browser navigation surface the store reads and writes.
// Replace is used for filter and selection sync, Push for explicit tab
// navigation.
type History interface {
	Path() string
	RawQuery() string
	Replace(url string)
	Push(url string)
}
