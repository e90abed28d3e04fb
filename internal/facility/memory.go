package facility

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// MemorySource is an in-memory Source and RoomSource.
//
// Used by the scenario harness and tests. An optional error can be injected
// to simulate a failed fetch.
//
// Thread-safety: all methods are safe for concurrent use.
type MemorySource struct {
	mu         sync.RWMutex
	facilities []Facility
	rooms      []Room
	err        error
}

// NewMemorySource creates a source holding copies of the given data.
func NewMemorySource(facilities []Facility, rooms []Room) *MemorySource {
	m := &MemorySource{}
	m.facilities = append(m.facilities, facilities...)
	m.rooms = append(m.rooms, rooms...)
	return m
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MemorySource) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// List returns all facilities in insertion order.
func (m *MemorySource) List(ctx context.Context) ([]Facility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Facility, len(m.facilities))
	copy(out, m.facilities)
	return out, nil
}

// GetManyByIDs returns the facilities with the given ids, in ids order.
// Unknown ids are skipped.
func (m *MemorySource) GetManyByIDs(ctx context.Context, ids []string) ([]Facility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Facility, 0, len(ids))
	for _, id := range ids {
		if f, ok := Find(m.facilities, id); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// ListRooms returns all rooms in insertion order.
func (m *MemorySource) ListRooms(ctx context.Context) ([]Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Room, len(m.rooms))
	copy(out, m.rooms)
	return out, nil
}

// SearchRooms returns rooms whose code or name contains term, ignoring case.
// An empty term matches nothing.
func (m *MemorySource) SearchRooms(ctx context.Context, term string) ([]Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))
	out := []Room{}
	if needle == "" {
		return out, nil
	}
	for _, r := range m.rooms {
		if strings.Contains(fold.String(r.Code), needle) || strings.Contains(fold.String(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}
