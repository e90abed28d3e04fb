// Package store provides durable storage for the campus facility catalog
// and the session transition journal.
//
// The store holds:
//   - Facilities: the buildings shown on the map and in the directory
//   - Rooms: rooms inside facilities, searched by code or name
//   - Transitions: an append-only journal of navigation state changes,
//     keyed by (session, seq)
//
// # Ordering
//
// Every list query has an explicit ORDER BY so results are identical
// across runs and backends. Journal reads are ordered by seq (a logical
// clock), never by the recorded wall time.
//
// # Backends
//
// Open uses SQLite (github.com/mattn/go-sqlite3) with:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: rooms must reference a stored facility
//
// OpenPostgres runs the same queries against Postgres through the pgx
// database/sql driver. Queries are written with '?' placeholders and
// rebound to $n for Postgres.
package store
