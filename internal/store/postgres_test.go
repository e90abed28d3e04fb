package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/campusnav/internal/facility"
)

// recordingConn is a driver.Conn that records every statement and answers
// every query with no rows.
type recordingConn struct {
	mu      sync.Mutex
	execs   []string
	queries []string
	pingErr error
}

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *recordingConn) Close() error               { return nil }
func (c *recordingConn) Begin() (driver.Tx, error)  { return nil, errors.New("begin not supported") }
func (c *recordingConn) Ping(context.Context) error { return c.pingErr }

func (c *recordingConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	return driver.RowsAffected(1), nil
}

func (c *recordingConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, query)
	return emptyRows{}, nil
}

type emptyRows struct{}

func (emptyRows) Columns() []string         { return nil }
func (emptyRows) Close() error              { return nil }
func (emptyRows) Next([]driver.Value) error { return io.EOF }

type recordingConnector struct{ conn *recordingConn }

func (r recordingConnector) Connect(context.Context) (driver.Conn, error) { return r.conn, nil }
func (r recordingConnector) Driver() driver.Driver                        { return recordingDriver{r.conn} }

type recordingDriver struct{ conn *recordingConn }

func (d recordingDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func openRecordingPostgres(t *testing.T) (*Store, *recordingConn) {
	t.Helper()
	conn := &recordingConn{}
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driverName)
		assert.Equal(t, DefaultPostgresDSN, dsn)
		return sql.OpenDB(recordingConnector{conn}), nil
	})
	t.Cleanup(restore)

	s, err := OpenPostgres(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, conn
}

func TestPgxDriverRegistered(t *testing.T) {
	assert.Contains(t, sql.Drivers(), "pgx")
}

func TestOpenPostgres_AppliesSchema(t *testing.T) {
	_, conn := openRecordingPostgres(t)

	require.Len(t, conn.execs, 6)
	assert.Contains(t, conn.execs[0], "CREATE TABLE IF NOT EXISTS facilities")
	assert.Contains(t, conn.execs[0], "DOUBLE PRECISION")
	assert.Contains(t, conn.execs[5], "CREATE TABLE IF NOT EXISTS transitions")
}

func TestOpenPostgres_PingFailure(t *testing.T) {
	conn := &recordingConn{pingErr: errors.New("connection refused")}
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) {
		return sql.OpenDB(recordingConnector{conn}), nil
	})
	defer restore()

	_, err := OpenPostgres(context.Background(), "postgres://db/campusnav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
}

func TestPostgres_QueriesUseNumberedPlaceholders(t *testing.T) {
	s, conn := openRecordingPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertFacility(ctx, testLibrary))
	last := conn.execs[len(conn.execs)-1]
	assert.Contains(t, last, "VALUES ($1, $2, $3, $4, $5, $6, $7)")
	assert.NotContains(t, last, "?")

	got, err := s.GetManyByIDs(ctx, []string{"lib", "gym"})
	require.NoError(t, err)
	assert.Empty(t, got)
	q := conn.queries[len(conn.queries)-1]
	assert.True(t, strings.Contains(q, "IN ($1, $2)"), q)

	_, err = s.SearchRooms(ctx, "b12")
	require.NoError(t, err)
	q = conn.queries[len(conn.queries)-1]
	assert.Contains(t, q, "LIKE $1")
	assert.Contains(t, q, "LIKE $2")
}

func TestPostgres_ImplementsFacilitySource(t *testing.T) {
	s, _ := openRecordingPostgres(t)

	var src facility.Source = s
	got, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
