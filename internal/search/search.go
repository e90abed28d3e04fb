// Package search is the pure filter pipeline behind the map and directory
// lists.
//
// An item is kept iff it matches the term AND the category:
//
//	term:     empty, or name contains term, or code contains term,
//	          or (map variant) item id is in the extra match set
//	category: empty, or item category equals it
//
// Matching is a case-folded substring test. Input order is preserved and
// inputs are never mutated, so Filter is safe to call on every render.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/campusnav/internal/facility"
)

// Item is anything the pipeline can filter.
type Item interface {
	FacilityID() string
	FacilityName() string
	FacilityCode() string
	FacilityCategory() facility.Category
}

// IDSet is a set of facility ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids, skipping empty strings.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports membership. A nil set contains nothing.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Result is the output of Filter.
type Result[T Item] struct {
	Results []T
	// MatchCount is always len(Results).
	MatchCount int
}

// Filter returns the items matching term and category, in input order.
// Pass a nil extra set for the directory variant.
func Filter[T Item](items []T, term string, category facility.Category, extra IDSet) Result[T] {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))

	results := make([]T, 0, len(items))
	for _, item := range items {
		if category != "" && item.FacilityCategory() != category {
			continue
		}
		if !matchesTerm(fold, item, needle, extra) {
			continue
		}
		results = append(results, item)
	}
	return Result[T]{Results: results, MatchCount: len(results)}
}

func matchesTerm(fold cases.Caser, item Item, needle string, extra IDSet) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(fold.String(item.FacilityName()), needle) {
		return true
	}
	if code := item.FacilityCode(); code != "" && strings.Contains(fold.String(code), needle) {
		return true
	}
	return extra.Has(item.FacilityID())
}

// MatchRooms returns the parent facility ids of rooms whose code or name
// contains term. An empty term yields an empty set: with no term every
// facility already matches.
func MatchRooms(rooms []facility.Room, term string) IDSet {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))
	out := IDSet{}
	if needle == "" {
		return out
	}
	for _, r := range rooms {
		if strings.Contains(fold.String(r.Code), needle) || strings.Contains(fold.String(r.Name), needle) {
			out[r.FacilityID] = struct{}{}
		}
	}
	return out
}
