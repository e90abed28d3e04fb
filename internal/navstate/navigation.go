package navstate

import (
	"github.com/roach88/campusnav/internal/urlstate"
)

// SetActiveTab navigates to tab's route, carrying the settled search and
// category, and the selection unless opts.ClearSelection is set.
//
// The tab flips immediately; the route change commits later. Until the
// location reaches the destination the navigation guard suppresses URL sync
// so the store's own push is not mistaken for an external change.
// Returns false for an unknown tab.
func (s *Store) SetActiveTab(tab Tab, opts NavigateOptions) bool {
	if s.closed {
		return false
	}
	route, ok := RouteFor(tab)
	if !ok {
		s.logger.Debug("ignoring unknown tab", "tab", tab)
		return false
	}

	if opts.ClearSelection {
		s.clearSelection()
	}
	if s.activeTab != tab {
		s.activeTab = tab
		s.emit(Transition{Kind: KindTab, Tab: tab})
	}

	if s.history.Path() == route {
		s.syncURL()
		return true
	}

	carried := s.URLState()
	dest := urlstate.Build(route, carried)
	s.navTarget = route
	s.navigating.raise()
	s.lastSynced = urlstate.Normalize(carried)
	s.emit(Transition{Kind: KindURLPush, Tab: tab, URL: dest})
	s.logger.Debug("navigating", "tab", tab, "url", dest)
	s.history.Push(dest)
	return true
}

// ApplyLocation processes a location change reported by the router: the
// store's own navigation committing, back/forward, or a typed/deep link.
//
// Events that no longer describe the current location are stale and
// dropped. The tab is always re-derived from the path. While the navigation
// guard is up the event is the store's own navigation: it only releases the
// guard once the path reaches the target. Otherwise each query field that
// differs from what the store last synced is applied as external intent.
func (s *Store) ApplyLocation(path, rawQuery string) {
	if s.closed {
		return
	}
	if path != s.history.Path() || rawQuery != s.history.RawQuery() {
		s.logger.Debug("dropping stale location event", "path", path, "query", rawQuery)
		return
	}
	s.applyLocation(path, rawQuery)
}

func (s *Store) applyLocation(path, rawQuery string) {
	if tab := TabForPath(path); tab != s.activeTab {
		s.activeTab = tab
		s.emit(Transition{Kind: KindTab, Tab: tab})
	}

	if s.navigating.active {
		if path == s.navTarget {
			s.navigating.release()
			s.navTarget = ""
			s.emit(Transition{Kind: KindNavigationSettled, URL: currentURL(s.history)})
			s.reconcile()
		}
		return
	}

	incoming := urlstate.Decode(rawQuery)

	// Settling the search below must not sync a half-applied URL.
	s.applying = true

	if incoming.Search != s.lastSynced.Search {
		s.lastSynced.Search = incoming.Search
		s.search.Reset(incoming.Search)
	}
	if incoming.Category != s.lastSynced.Category {
		s.lastSynced.Category = incoming.Category
		s.setCategory(incoming.Category)
	}
	if incoming.FacilityID != s.lastSynced.FacilityID {
		if s.closing.active {
			s.emit(Transition{Kind: KindLocationSuppressed, FacilityID: incoming.FacilityID})
			s.logger.Debug("location selection suppressed by closing guard", "facility_id", incoming.FacilityID)
		} else {
			s.lastSynced.FacilityID = incoming.FacilityID
			s.requestFacility(incoming.FacilityID)
		}
	}

	s.applying = false
	s.reconcile()
}

func (s *Store) onNavigationTimeout() {
	if s.closed {
		return
	}
	s.logger.Debug("navigation guard timed out", "target", s.navTarget)
	s.navTarget = ""
	s.emit(Transition{Kind: KindNavigationSettled, URL: currentURL(s.history)})
	// Whatever the location is now was never applied while the guard was up.
	s.applyLocation(s.history.Path(), s.history.RawQuery())
}
