package store

import (
	"context"
	"fmt"
	"time"
)

// TransitionRecord is one journaled navigation state change.
// Records are keyed by (Session, Seq); Seq orders them within a session.
type TransitionRecord struct {
	Session    string    `json:"session"`
	Seq        int64     `json:"seq"`
	Kind       string    `json:"kind"`
	FacilityID string    `json:"facility_id,omitempty"`
	Tab        string    `json:"tab,omitempty"`
	URL        string    `json:"url,omitempty"`
	Value      string    `json:"value,omitempty"`
	At         time.Time `json:"at"`
}

// AppendTransition appends rec to the journal.
// Uses ON CONFLICT DO NOTHING for idempotency - rewriting the same
// (session, seq) is silently ignored.
func (s *Store) AppendTransition(ctx context.Context, rec TransitionRecord) error {
	_, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO transitions
		(session, seq, kind, facility_id, tab, url, value, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`),
		rec.Session,
		rec.Seq,
		rec.Kind,
		rec.FacilityID,
		rec.Tab,
		rec.URL,
		rec.Value,
		rec.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}
	return nil
}

// ReadTransitions returns a session's journal ordered by seq.
//
// Returns an empty slice (not nil) for an unknown session.
func (s *Store) ReadTransitions(ctx context.Context, session string) ([]TransitionRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`
		SELECT session, seq, kind, facility_id, tab, url, value, at
		FROM transitions
		WHERE session = ?
		ORDER BY seq ASC
	`), session)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	out := []TransitionRecord{}
	for rows.Next() {
		var (
			rec TransitionRecord
			at  string
		)
		if err := rows.Scan(&rec.Session, &rec.Seq, &rec.Kind, &rec.FacilityID, &rec.Tab, &rec.URL, &rec.Value, &at); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		rec.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse transition time %q: %w", at, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}

// Sessions returns every session id with journaled transitions, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT session
		FROM transitions
		ORDER BY session ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
