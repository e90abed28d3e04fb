package navstate

import (
	"github.com/roach88/campusnav/internal/urlstate"
)

// syncURL writes the current URL state to the address bar with a replace.
// Short-circuits when the URL is already correct. Suppressed while the
// navigation guard is up.
func (s *Store) syncURL() {
	st := s.URLState()
	desired := urlstate.Build(s.history.Path(), st)
	current := currentURL(s.history)
	if desired == current {
		s.lastSynced = urlstate.Normalize(st)
		return
	}
	if s.navigating.active {
		s.emit(Transition{Kind: KindSyncSuppressed, URL: desired})
		return
	}
	s.lastSynced = urlstate.Normalize(st)
	s.emit(Transition{Kind: KindURLReplace, URL: desired})
	s.history.Replace(desired)
}

func currentURL(h History) string {
	path := h.Path()
	if path == "" {
		path = "/"
	}
	if q := h.RawQuery(); q != "" {
		return path + "?" + q
	}
	return path
}
