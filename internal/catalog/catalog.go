// Package catalog loads the campus facility catalog from CUE.
//
// A catalog file declares facilities and rooms keyed by id:
//
//	facilities: lib: {
//		name:     "Main Library"
//		code:     "LIB"
//		category: "library"
//		lat:      40.7128
//		lng:      -74.0060
//	}
//	rooms: "lib-b12": {facility: "lib", code: "B12", floor: -1}
//
// The file is unified with an embedded schema, so unknown fields, unknown
// categories and out-of-range coordinates are rejected with positions.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/campusnav/internal/facility"
)

//go:embed schema.cue
var schemaSrc string

// Catalog is a loaded facility catalog in declaration order.
type Catalog struct {
	Facilities []facility.Facility `json:"facilities"`
	Rooms      []facility.Room     `json:"rooms"`
}

// LoadError is a CUE evaluation or decoding error.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads and loads a catalog file.
func LoadFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadString(path, string(src))
}

// LoadString loads a catalog from source. name is used in error positions.
func LoadString(name, src string) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	user := ctx.CompileString(src, cue.Filename(name))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	facilities, err := decodeFacilities(v.LookupPath(cue.ParsePath("facilities")))
	if err != nil {
		return nil, err
	}
	rooms, err := decodeRooms(v.LookupPath(cue.ParsePath("rooms")))
	if err != nil {
		return nil, err
	}

	return &Catalog{Facilities: facilities, Rooms: rooms}, nil
}

type facilityDoc struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Category    string  `json:"category"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
}

type roomDoc struct {
	Facility string `json:"facility"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Floor    int    `json:"floor"`
}

func decodeFacilities(v cue.Value) ([]facility.Facility, error) {
	out := []facility.Facility{}
	if !v.Exists() {
		return out, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		var doc facilityDoc
		if err := iter.Value().Decode(&doc); err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, facility.Facility{
			ID:          iter.Selector().Unquoted(),
			Name:        doc.Name,
			Code:        doc.Code,
			Category:    facility.Category(doc.Category),
			Lat:         doc.Lat,
			Lng:         doc.Lng,
			Description: doc.Description,
		})
	}
	return out, nil
}

func decodeRooms(v cue.Value) ([]facility.Room, error) {
	out := []facility.Room{}
	if !v.Exists() {
		return out, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		var doc roomDoc
		if err := iter.Value().Decode(&doc); err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, facility.Room{
			ID:         iter.Selector().Unquoted(),
			FacilityID: doc.Facility,
			Code:       doc.Code,
			Name:       doc.Name,
			Floor:      doc.Floor,
		})
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	field := "cue"
	if path := firstErr.Path(); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	msg, args := firstErr.Msg()
	loadErr := &LoadError{
		Field:   field,
		Message: fmt.Sprintf(msg, args...),
	}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
