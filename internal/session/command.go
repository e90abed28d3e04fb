package session

import (
	"github.com/roach88/campusnav/internal/facility"
)

// CommandKind distinguishes between command kinds.
type CommandKind int

const (
	// CommandType records raw search text.
	CommandType CommandKind = iota + 1
	// CommandFlushSearch settles pending search text now.
	CommandFlushSearch
	// CommandClearFilters resets search and category.
	CommandClearFilters
	// CommandSetCategory sets the category filter.
	CommandSetCategory
	// CommandSelect selects a facility by id (marker or directory row click).
	CommandSelect
	// CommandCloseSelection is the user closing the selected facility.
	CommandCloseSelection
	// CommandSetTab navigates to a tab.
	CommandSetTab
	// CommandLocation reports a location change from the router.
	CommandLocation
	// CommandMapClick reports a raw click on the map surface.
	CommandMapClick
	// CommandFacilitiesLoaded delivers the result of a facility fetch.
	CommandFacilitiesLoaded

	// commandTimer runs a clock callback on the loop.
	commandTimer
)

var commandNames = map[CommandKind]string{
	CommandType:             "type",
	CommandFlushSearch:      "flush_search",
	CommandClearFilters:     "clear_filters",
	CommandSetCategory:      "set_category",
	CommandSelect:           "select",
	CommandCloseSelection:   "close_selection",
	CommandSetTab:           "set_tab",
	CommandLocation:         "location",
	CommandMapClick:         "map_click",
	CommandFacilitiesLoaded: "facilities_loaded",
	commandTimer:            "timer",
}

// String returns the command's metric/log name.
func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is one unit of work for the session loop.
// Build commands with the constructors below.
type Command struct {
	Kind CommandKind

	// Text is the search text, category, facility id, tab or path.
	Text string
	// Query is the raw query string of a location.
	Query string
	// Flag is clearSelection for CommandSetTab and fromMarker for
	// CommandMapClick.
	Flag bool

	Facilities []facility.Facility
	Rooms      []facility.Room
	Err        error

	fire func()
}

// Type records raw search text.
func Type(raw string) Command {
	return Command{Kind: CommandType, Text: raw}
}

// FlushSearch settles pending search text now (e.g. on Enter).
func FlushSearch() Command {
	return Command{Kind: CommandFlushSearch}
}

// ClearFilters resets search and category.
func ClearFilters() Command {
	return Command{Kind: CommandClearFilters}
}

// SetCategory sets the category filter. "" or an unknown value means all.
func SetCategory(category string) Command {
	return Command{Kind: CommandSetCategory, Text: category}
}

// Select selects a facility by id. An id that is not loaded yet becomes
// pending.
func Select(id string) Command {
	return Command{Kind: CommandSelect, Text: id}
}

// CloseSelection is the user closing the selected facility.
func CloseSelection() Command {
	return Command{Kind: CommandCloseSelection}
}

// SetTab navigates to tab, carrying the selection unless clearSelection.
func SetTab(tab string, clearSelection bool) Command {
	return Command{Kind: CommandSetTab, Text: tab, Flag: clearSelection}
}

// Location reports that the router is now at path?rawQuery.
func Location(path, rawQuery string) Command {
	return Command{Kind: CommandLocation, Text: path, Query: rawQuery}
}

// MapClick reports a raw click on the map.
func MapClick(fromMarker bool) Command {
	return Command{Kind: CommandMapClick, Flag: fromMarker}
}

// FacilitiesLoaded delivers a facility fetch result. A non-nil err leaves
// the loaded set unchanged.
func FacilitiesLoaded(facilities []facility.Facility, rooms []facility.Room, err error) Command {
	return Command{Kind: CommandFacilitiesLoaded, Facilities: facilities, Rooms: rooms, Err: err}
}
