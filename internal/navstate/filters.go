package navstate

import (
	"github.com/roach88/campusnav/internal/facility"
)

// SetSearchQuery records raw search text. Filtering and the URL follow the
// settled value once typing pauses.
func (s *Store) SetSearchQuery(raw string) {
	if s.closed {
		return
	}
	s.search.Set(raw)
}

// FlushSearch settles pending search text now (e.g. on Enter).
func (s *Store) FlushSearch() {
	if s.closed {
		return
	}
	s.search.Flush()
}

// SetCategory sets the category filter. "" and invalid values mean "all".
func (s *Store) SetCategory(c facility.Category) {
	if s.closed {
		return
	}
	s.setCategory(c)
	s.reconcile()
}

// ClearFilters resets the search (settling immediately) and the category.
func (s *Store) ClearFilters() {
	if s.closed {
		return
	}
	s.applying = true
	s.search.Reset("")
	s.applying = false
	s.setCategory("")
	s.reconcile()
}

func (s *Store) setCategory(c facility.Category) {
	if !c.Valid() {
		c = ""
	}
	if c == s.category {
		return
	}
	s.category = c
	s.emit(Transition{Kind: KindCategory, Value: string(c)})
}

func (s *Store) onSettled(v string) {
	if !s.ready || s.closed {
		return
	}
	s.emit(Transition{Kind: KindSearchSettled, Value: v})
	if s.applying {
		return
	}
	s.reconcile()
}
