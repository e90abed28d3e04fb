package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/campusnav/internal/facility"
)

var (
	_ facility.Source     = (*Store)(nil)
	_ facility.RoomSource = (*Store)(nil)
)

const facilityColumns = `id, name, code, category, lat, lng, description`

// UpsertFacility inserts f or overwrites the stored row with the same id.
func (s *Store) UpsertFacility(ctx context.Context, f facility.Facility) error {
	return upsertFacility(ctx, s.db, s.bind, f)
}

// UpsertRoom inserts r or overwrites the stored row with the same id.
// The parent facility must already be stored.
func (s *Store) UpsertRoom(ctx context.Context, r facility.Room) error {
	return upsertRoom(ctx, s.db, s.bind, r)
}

// Import upserts a whole catalog in one transaction: facilities first,
// then rooms. Nothing is written if any row fails.
func (s *Store) Import(ctx context.Context, facilities []facility.Facility, rooms []facility.Room) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range facilities {
		if err := upsertFacility(ctx, tx, s.bind, f); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}
	for _, r := range rooms {
		if err := upsertRoom(ctx, tx, s.bind, r); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}
	return nil
}

func upsertFacility(ctx context.Context, db execer, bind func(string) string, f facility.Facility) error {
	_, err := db.ExecContext(ctx, bind(`
		INSERT INTO facilities (`+facilityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			category = excluded.category,
			lat = excluded.lat,
			lng = excluded.lng,
			description = excluded.description
	`),
		f.ID,
		f.Name,
		f.Code,
		string(f.Category),
		f.Lat,
		f.Lng,
		f.Description,
	)
	if err != nil {
		return fmt.Errorf("upsert facility %s: %w", f.ID, err)
	}
	return nil
}

func upsertRoom(ctx context.Context, db execer, bind func(string) string, r facility.Room) error {
	_, err := db.ExecContext(ctx, bind(`
		INSERT INTO rooms (id, facility_id, code, name, floor)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			facility_id = excluded.facility_id,
			code = excluded.code,
			name = excluded.name,
			floor = excluded.floor
	`),
		r.ID,
		r.FacilityID,
		r.Code,
		r.Name,
		r.Floor,
	)
	if err != nil {
		return fmt.Errorf("upsert room %s: %w", r.ID, err)
	}
	return nil
}

// List returns every facility ordered by name, then id.
//
// Returns an empty slice (not nil) when nothing is stored.
func (s *Store) List(ctx context.Context) ([]facility.Facility, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+facilityColumns+`
		FROM facilities
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}
	defer rows.Close()

	return scanFacilities(rows)
}

// GetManyByIDs returns the stored facilities among ids, in the order of
// ids. Unknown ids are skipped.
func (s *Store) GetManyByIDs(ctx context.Context, ids []string) ([]facility.Facility, error) {
	if len(ids) == 0 {
		return []facility.Facility{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, s.bind(`
		SELECT `+facilityColumns+`
		FROM facilities
		WHERE id IN (`+placeholders+`)
	`), args...)
	if err != nil {
		return nil, fmt.Errorf("query facilities by id: %w", err)
	}
	defer rows.Close()

	found, err := scanFacilities(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]facility.Facility, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	out := make([]facility.Facility, 0, len(found))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
			delete(byID, id)
		}
	}
	return out, nil
}

// ListRooms returns every room ordered by facility, code, then id.
func (s *Store) ListRooms(ctx context.Context) ([]facility.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, facility_id, code, name, floor
		FROM rooms
		ORDER BY facility_id ASC, code ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	return scanRooms(rows)
}

// SearchRooms returns rooms whose code or name contains term, ignoring
// ASCII case. An empty term returns no rooms.
func (s *Store) SearchRooms(ctx context.Context, term string) ([]facility.Room, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []facility.Room{}, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	rows, err := s.db.QueryContext(ctx, s.bind(`
		SELECT id, facility_id, code, name, floor
		FROM rooms
		WHERE LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\'
		ORDER BY facility_id ASC, code ASC, id ASC
	`), pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search rooms: %w", err)
	}
	defer rows.Close()

	return scanRooms(rows)
}

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

func scanFacilities(rows *sql.Rows) ([]facility.Facility, error) {
	out := []facility.Facility{}
	for rows.Next() {
		var (
			f        facility.Facility
			category string
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Code, &category, &f.Lat, &f.Lng, &f.Description); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		f.Category = facility.Category(category)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facilities: %w", err)
	}
	return out, nil
}

func scanRooms(rows *sql.Rows) ([]facility.Room, error) {
	out := []facility.Room{}
	for rows.Next() {
		var r facility.Room
		if err := rows.Scan(&r.ID, &r.FacilityID, &r.Code, &r.Name, &r.Floor); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return out, nil
}
