// Package urlstate encodes the shareable navigation state into a URL query
// string and decodes it back.
//
// Exactly three keys are recognized:
//
//	q         settled free-text search (trimmed)
//	category  one facility.Category value
//	facility  selected or pending facility id (opaque, not validated)
//
// Decoding never fails. Malformed escapes, unknown keys and invalid
// categories degrade to "absent". Encoding omits keys whose value is empty,
// and key order is fixed, so Encode is a pure deterministic function of its
// input.
package urlstate

import (
	"net/url"
	"strings"

	"github.com/roach88/campusnav/internal/facility"
)

// Query keys.
const (
	KeySearch   = "q"
	KeyCategory = "category"
	KeyFacility = "facility"
)

// State is the URL-visible part of the navigation state.
type State struct {
	Search     string
	Category   facility.Category
	FacilityID string
}

// IsZero reports whether no key would be encoded.
func (s State) IsZero() bool {
	return Normalize(s) == State{}
}

// Normalize trims text fields and drops an invalid category.
func Normalize(s State) State {
	out := State{
		Search:     strings.TrimSpace(s.Search),
		FacilityID: strings.TrimSpace(s.FacilityID),
	}
	if c, ok := facility.ParseCategory(string(s.Category)); ok {
		out.Category = c
	}
	return out
}

// Decode parses a raw query string. A leading '?' is accepted.
func Decode(rawQuery string) State {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	// ParseQuery keeps every well-formed pair even when another pair fails
	// to unescape, so the error only tells us something was dropped.
	values, _ := url.ParseQuery(rawQuery)

	s := State{
		Search:     strings.TrimSpace(values.Get(KeySearch)),
		FacilityID: strings.TrimSpace(values.Get(KeyFacility)),
	}
	if c, ok := facility.ParseCategory(values.Get(KeyCategory)); ok {
		s.Category = c
	}
	return s
}

// Encode serializes s without a leading '?'. Empty values are omitted.
func Encode(s State) string {
	s = Normalize(s)
	values := url.Values{}
	if s.Search != "" {
		values.Set(KeySearch, s.Search)
	}
	if s.Category != "" {
		values.Set(KeyCategory, string(s.Category))
	}
	if s.FacilityID != "" {
		values.Set(KeyFacility, s.FacilityID)
	}
	// url.Values.Encode sorts by key.
	return values.Encode()
}

// Build joins a route path with the encoded state.
// The '?' is only added when at least one key is present.
func Build(path string, s State) string {
	if path == "" {
		path = "/"
	}
	q := Encode(s)
	if q == "" {
		return path
	}
	return path + "?" + q
}

// Parse splits a URL (absolute, or path plus query) into its path and
// decoded state. Fragments are ignored. An unparseable URL yields "/" and
// the zero State.
func Parse(rawURL string) (string, State) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "/", State{}
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return path, Decode(u.RawQuery)
}
