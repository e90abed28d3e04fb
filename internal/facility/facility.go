// Package facility defines the campus entities the navigation core selects,
// filters and flies the map to, plus the data-source contracts that supply
// them.
package facility

import (
	"context"
	"strings"
)

// Category is a facility category. The empty Category means "all".
type Category string

const (
	CategoryAcademic       Category = "academic"
	CategoryAdministrative Category = "administrative"
	CategoryLibrary        Category = "library"
	CategoryDining         Category = "dining"
	CategoryResidential    Category = "residential"
	CategorySports         Category = "sports"
	CategoryHealth         Category = "health"
	CategoryParking        Category = "parking"
	CategoryOther          Category = "other"
)

// categories is in display order.
var categories = []Category{
	CategoryAcademic,
	CategoryAdministrative,
	CategoryLibrary,
	CategoryDining,
	CategoryResidential,
	CategorySports,
	CategoryHealth,
	CategoryParking,
	CategoryOther,
}

// AllCategories returns the known categories in display order.
// The returned slice is a copy.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory maps user or URL input to a known category.
// Input is trimmed and matched case-insensitively. Unknown values report false.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Facility is a campus building or site.
type Facility struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Code        string   `json:"code,omitempty" yaml:"code,omitempty"`
	Category    Category `json:"category" yaml:"category"`
	Lat         float64  `json:"lat" yaml:"lat"`
	Lng         float64  `json:"lng" yaml:"lng"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasLocation reports whether the facility carries map coordinates.
// (0,0) is treated as unset.
func (f Facility) HasLocation() bool {
	return f.Lat != 0 || f.Lng != 0
}

// FacilityID, FacilityName, FacilityCode and FacilityCategory expose the
// fields the search pipeline matches on.
func (f Facility) FacilityID() string         { return f.ID }
func (f Facility) FacilityName() string       { return f.Name }
func (f Facility) FacilityCode() string       { return f.Code }
func (f Facility) FacilityCategory() Category { return f.Category }

// Room is a room inside a facility. Room codes are searchable so that a
// room-code query can surface its parent facility.
type Room struct {
	ID         string `json:"id" yaml:"id"`
	FacilityID string `json:"facility_id" yaml:"facility_id"`
	Code       string `json:"code" yaml:"code"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Floor      int    `json:"floor,omitempty" yaml:"floor,omitempty"`
}

// Source supplies facilities. Implementations are eventually consistent
// and may be cached; List order is the display order.
type Source interface {
	List(ctx context.Context) ([]Facility, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]Facility, error)
}

// RoomSource supplies rooms.
type RoomSource interface {
	ListRooms(ctx context.Context) ([]Room, error)
	SearchRooms(ctx context.Context, term string) ([]Room, error)
}

// Find returns the facility with the given id.
func Find(items []Facility, id string) (Facility, bool) {
	if id == "" {
		return Facility{}, false
	}
	for _, f := range items {
		if f.ID == id {
			return f, true
		}
	}
	return Facility{}, false
}
