package catalog

import (
	"fmt"
	"strings"
)

// Validation error codes (E200-E209)
const (
	ErrUnknownFacility   = "E201" // room references a facility not in the catalog
	ErrDuplicateRoomCode = "E202" // two rooms in one facility share a code
	ErrDuplicateCode     = "E203" // two facilities share a short code
	ErrMissingLocation   = "E204" // facility has no coordinates
)

// ValidationError is a cross-reference problem in a loaded catalog.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Warning reports whether the catalog is still usable despite e.
func (e ValidationError) Warning() bool {
	return e.Code == ErrMissingLocation
}

// Blocking returns the errors in errs that are not warnings.
func Blocking(errs []ValidationError) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if !e.Warning() {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks what the schema cannot: references between entries and
// uniqueness across entries. Returns all errors found (does not fail-fast).
//
// A facility without coordinates is reported but still usable: it is
// listed and searchable, the map just cannot fly to it.
func Validate(c *Catalog) []ValidationError {
	var errs []ValidationError

	known := make(map[string]bool, len(c.Facilities))
	codes := make(map[string]string, len(c.Facilities))
	for _, f := range c.Facilities {
		known[f.ID] = true

		if !f.HasLocation() {
			errs = append(errs, ValidationError{
				Field:   "facilities." + f.ID,
				Message: "no lat/lng; the map cannot show this facility",
				Code:    ErrMissingLocation,
			})
		}

		if f.Code == "" {
			continue
		}
		key := strings.ToLower(f.Code)
		if other, ok := codes[key]; ok {
			errs = append(errs, ValidationError{
				Field:   "facilities." + f.ID + ".code",
				Message: fmt.Sprintf("code %q already used by %q", f.Code, other),
				Code:    ErrDuplicateCode,
			})
			continue
		}
		codes[key] = f.ID
	}

	roomCodes := make(map[string]string, len(c.Rooms))
	for _, r := range c.Rooms {
		if !known[r.FacilityID] {
			errs = append(errs, ValidationError{
				Field:   "rooms." + r.ID + ".facility",
				Message: fmt.Sprintf("unknown facility %q", r.FacilityID),
				Code:    ErrUnknownFacility,
			})
			continue
		}
		key := r.FacilityID + "/" + strings.ToLower(r.Code)
		if other, ok := roomCodes[key]; ok {
			errs = append(errs, ValidationError{
				Field:   "rooms." + r.ID + ".code",
				Message: fmt.Sprintf("code %q already used by room %q in %q", r.Code, other, r.FacilityID),
				Code:    ErrDuplicateRoomCode,
			})
			continue
		}
		roomCodes[key] = r.ID
	}

	return errs
}
