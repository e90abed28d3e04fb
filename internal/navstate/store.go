package navstate

import (
	"log/slog"
	"time"

	"github.com/roach88/campusnav/internal/clock"
	"github.com/roach88/campusnav/internal/debounce"
	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/urlstate"
)

// Default guard windows. Both races depend on host scheduling latency, so
// deployments should tune them (see config).
const (
	DefaultClosingGuard    = 100 * time.Millisecond
	DefaultNavigationGuard = 100 * time.Millisecond
)

// Resolver looks up a loaded facility by id.
type Resolver func(id string) (facility.Facility, bool)

// Store is the single writer of the navigation state.
//
// INVARIANTS:
//   - selected != nil implies selected.ID == pendingID
//   - clearing the selection always clears pendingID as well
//   - the URL is derived from {settled search, category, selection id};
//     the raw search text never reaches it
type Store struct {
	history   History
	clock     clock.Clock
	logger    *slog.Logger
	observers []Observer
	resolver  Resolver

	debounceInterval time.Duration
	closingWindow    time.Duration
	navigationWindow time.Duration

	selected  *facility.Facility
	pendingID string
	search    *debounce.Text
	category  facility.Category
	activeTab Tab

	closing    *guard
	navigating *guard
	navTarget  string
	lastSynced urlstate.State

	ready    bool
	applying bool
	closed   bool
}

// Option configures a Store.
type Option func(*Store)

// WithDebounce sets the search quiet interval (default 300ms).
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.debounceInterval = d
	}
}

// WithClosingGuard sets the closing guard window (default 100ms).
func WithClosingGuard(d time.Duration) Option {
	return func(s *Store) {
		s.closingWindow = d
	}
}

// WithNavigationGuard sets how long the navigation guard may stay up
// waiting for the route to commit (default 100ms).
func WithNavigationGuard(d time.Duration) Option {
	return func(s *Store) {
		s.navigationWindow = d
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers a transition observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithResolver sets the facility lookup used to resolve pending ids during
// reconcile.
func WithResolver(r Resolver) Option {
	return func(s *Store) {
		s.resolver = r
	}
}

// New mounts a store on the current location of history.
//
// The initial tab comes from the path; search, category and a pending
// facility id come from the query. Nothing is written back to the URL until
// the first transition.
func New(history History, c clock.Clock, opts ...Option) *Store {
	s := &Store{
		history:          history,
		clock:            c,
		logger:           slog.Default(),
		debounceInterval: debounce.DefaultInterval,
		closingWindow:    DefaultClosingGuard,
		navigationWindow: DefaultNavigationGuard,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.search = debounce.New(c, s.debounceInterval, s.onSettled)
	s.closing = newGuard(c, s.closingWindow, s.onClosingReleased)
	s.navigating = newGuard(c, s.navigationWindow, s.onNavigationTimeout)

	initial := urlstate.Decode(history.RawQuery())
	s.activeTab = TabForPath(history.Path())
	s.search.Reset(initial.Search)
	s.category = initial.Category
	s.lastSynced = initial
	if initial.FacilityID != "" {
		s.pendingID = initial.FacilityID
		s.emit(Transition{Kind: KindRequest, FacilityID: initial.FacilityID})
	}
	s.ready = true

	s.logger.Debug("navigation state mounted",
		"tab", s.activeTab,
		"search", initial.Search,
		"category", initial.Category,
		"pending", s.pendingID,
	)
	return s
}

// SetResolver replaces the resolver. Used when the owner is constructed
// after the store.
func (s *Store) SetResolver(r Resolver) {
	s.resolver = r
}

// State returns a snapshot. The selected facility is a copy.
func (s *Store) State() State {
	st := State{
		PendingFacilityID: s.pendingID,
		SearchQuery:       s.search.Raw(),
		DebouncedQuery:    s.search.Settled(),
		SelectedCategory:  s.category,
		ActiveTab:         s.activeTab,
	}
	if s.selected != nil {
		f := *s.selected
		st.SelectedFacility = &f
	}
	return st
}

// URLState returns the URL-visible state as it should currently be encoded.
func (s *Store) URLState() urlstate.State {
	return urlstate.State{
		Search:     s.search.Settled(),
		Category:   s.category,
		FacilityID: s.selectionID(),
	}
}

// URL returns the current location of the history.
func (s *Store) URL() string {
	return currentURL(s.history)
}

// ClosingGuardActive reports whether the closing guard is up.
func (s *Store) ClosingGuardActive() bool {
	return s.closing.active
}

// NavigationGuardActive reports whether the navigation guard is up.
func (s *Store) NavigationGuardActive() bool {
	return s.navigating.active
}

// Close tears the store down: pending settles and guard timers are
// cancelled and later calls are ignored.
func (s *Store) Close() {
	if s.closed {
		return
	}
	s.search.Cancel()
	s.closing.release()
	s.navigating.release()
	s.closed = true
	s.logger.Debug("navigation state unmounted")
}

// selectionID is the id the URL carries: the resolved id, else the pending one.
func (s *Store) selectionID() string {
	if s.selected != nil {
		return s.selected.ID
	}
	return s.pendingID
}

func (s *Store) emit(t Transition) {
	for _, o := range s.observers {
		o(t)
	}
}

// reconcile runs after every transition: resolve what can be resolved, then
// push the result to the URL.
func (s *Store) reconcile() {
	s.resolveFromResolver()
	s.syncURL()
}

func (s *Store) onClosingReleased() {
	if s.closed {
		return
	}
	s.logger.Debug("closing guard released")
	s.reconcile()
}
