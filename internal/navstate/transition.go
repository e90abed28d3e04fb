package navstate

// TransitionKind names a recorded state transition.
type TransitionKind string

const (
	// KindSelect: the user selected a facility directly.
	KindSelect TransitionKind = "select"
	// KindClose: the user cleared the selection; the closing guard is up.
	KindClose TransitionKind = "close"
	// KindRequest: a facility id became pending (deep link, back/forward,
	// or a request by id).
	KindRequest TransitionKind = "request"
	// KindResolve: a pending id was confirmed against loaded data.
	KindResolve TransitionKind = "resolve"
	// KindClear: the selection was cleared by the system (URL without a
	// facility, or a tab change that drops the selection).
	KindClear TransitionKind = "clear"
	// KindResolveSuppressed: a resolution arrived while the closing guard
	// was up and was ignored.
	KindResolveSuppressed TransitionKind = "resolve_suppressed"
	// KindLocationSuppressed: a URL-driven selection change arrived while
	// the closing guard was up and was ignored.
	KindLocationSuppressed TransitionKind = "location_suppressed"
	// KindSearchSettled: the debounced search value changed.
	KindSearchSettled TransitionKind = "search_settled"
	// KindCategory: the category filter changed.
	KindCategory TransitionKind = "category"
	// KindTab: the active tab changed.
	KindTab TransitionKind = "tab"
	// KindURLReplace: state was synced to the URL.
	KindURLReplace TransitionKind = "url_replace"
	// KindURLPush: the store navigated to another route.
	KindURLPush TransitionKind = "url_push"
	// KindSyncSuppressed: a URL sync was skipped because the navigation
	// guard was up.
	KindSyncSuppressed TransitionKind = "sync_suppressed"
	// KindNavigationSettled: the location caught up with the store's own
	// navigation, or the guard timed out.
	KindNavigationSettled TransitionKind = "navigation_settled"
)

// Transition is one recorded state change.
type Transition struct {
	Kind       TransitionKind `json:"kind" yaml:"kind"`
	FacilityID string         `json:"facility_id,omitempty" yaml:"facility_id,omitempty"`
	Tab        Tab            `json:"tab,omitempty" yaml:"tab,omitempty"`
	URL        string         `json:"url,omitempty" yaml:"url,omitempty"`
	Value      string         `json:"value,omitempty" yaml:"value,omitempty"`
}

// Observer receives every transition, synchronously, on the store's
// goroutine. Observers must not call back into the store.
type Observer func(Transition)
