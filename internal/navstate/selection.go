package navstate

import (
	"strings"

	"github.com/roach88/campusnav/internal/facility"
)

// SelectFacility is the direct user action: clicking a marker or a
// directory row. A non-nil facility becomes both the pending id and the
// resolved selection at once. nil clears both and raises the closing guard.
// The last call wins.
func (s *Store) SelectFacility(f *facility.Facility) {
	if s.closed {
		return
	}
	if f == nil {
		prev := s.selectionID()
		s.selected = nil
		s.pendingID = ""
		s.closing.raise()
		s.emit(Transition{Kind: KindClose, FacilityID: prev})
		s.logger.Debug("selection closed", "facility_id", prev)
		s.reconcile()
		return
	}
	if f.ID == "" {
		s.logger.Debug("ignoring selection of facility without id", "name", f.Name)
		return
	}

	cp := *f
	s.pendingID = cp.ID
	s.selected = &cp
	// An explicit selection supersedes the close that raised the guard.
	s.closing.release()
	s.emit(Transition{Kind: KindSelect, FacilityID: cp.ID})
	s.logger.Debug("facility selected", "facility_id", cp.ID)
	s.reconcile()
}

// RequestFacility asks for a facility by id when only the id is known.
// The id becomes pending and resolves once the facility is loaded. An
// empty id clears the selection without raising the closing guard.
func (s *Store) RequestFacility(id string) {
	if s.closed {
		return
	}
	s.requestFacility(strings.TrimSpace(id))
	s.reconcile()
}

// ResolvePendingFacility is the system action invoked once candidate data
// has loaded. It promotes f to the selection iff f.ID is the pending id and
// f is not already selected. Ignored while the closing guard is up.
// Idempotent. Returns true if the selection changed.
func (s *Store) ResolvePendingFacility(f facility.Facility) bool {
	if s.closed {
		return false
	}
	if !s.resolve(f) {
		return false
	}
	s.syncURL()
	return true
}

// ResolveFrom resolves the pending id against a loaded facility list.
// A pending id with no match stays pending.
func (s *Store) ResolveFrom(items []facility.Facility) bool {
	if s.closed || s.pendingID == "" {
		return false
	}
	f, ok := facility.Find(items, s.pendingID)
	if !ok {
		return false
	}
	return s.ResolvePendingFacility(f)
}

func (s *Store) resolve(f facility.Facility) bool {
	if f.ID == "" {
		return false
	}
	if s.closing.active {
		s.emit(Transition{Kind: KindResolveSuppressed, FacilityID: f.ID})
		s.logger.Debug("resolution suppressed by closing guard", "facility_id", f.ID)
		return false
	}
	if f.ID != s.pendingID {
		return false
	}
	if s.selected != nil && s.selected.ID == f.ID {
		return false
	}
	cp := f
	s.selected = &cp
	s.emit(Transition{Kind: KindResolve, FacilityID: f.ID})
	s.logger.Debug("pending facility resolved", "facility_id", f.ID)
	return true
}

func (s *Store) resolveFromResolver() {
	if s.resolver == nil || s.pendingID == "" || s.closing.active {
		return
	}
	if s.selected != nil && s.selected.ID == s.pendingID {
		return
	}
	if f, ok := s.resolver(s.pendingID); ok {
		s.resolve(f)
	}
}

// requestFacility moves to Pending(id), or Idle for "". A resolved
// selection survives only if it already is id.
func (s *Store) requestFacility(id string) {
	if id == s.pendingID {
		return
	}
	if id == "" {
		prev := s.selectionID()
		s.selected = nil
		s.pendingID = ""
		s.emit(Transition{Kind: KindClear, FacilityID: prev})
		return
	}
	s.pendingID = id
	if s.selected != nil && s.selected.ID != id {
		s.selected = nil
	}
	s.emit(Transition{Kind: KindRequest, FacilityID: id})
}

// clearSelection is a system-initiated clear. No closing guard.
func (s *Store) clearSelection() {
	if s.selected == nil && s.pendingID == "" {
		return
	}
	s.requestFacility("")
}
