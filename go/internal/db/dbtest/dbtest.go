// Package dbtest opens throwaway in-memory SQLite databases carrying the
// full schema, for tests that need real transactions.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mcdev12/auctionhouse/go/internal/db"
)

// DSN keeps times in a lexically ordered text format so range predicates
// compare correctly.
const DSN = ":memory:?_time_format=sqlite&_pragma=foreign_keys(1)"

// Open returns a private in-memory database. A single connection is used so
// every statement sees the same memory database.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", DSN)
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.ApplySchema(context.Background(), conn, db.SQLite))
	return conn
}

// FailInserts makes every INSERT into table abort, simulating a storage
// failure in the middle of a transaction.
func FailInserts(t testing.TB, conn *sql.DB, table string) {
	t.Helper()

	stmt := fmt.Sprintf(`CREATE TRIGGER fail_%[1]s_insert BEFORE INSERT ON %[1]s
BEGIN
    SELECT RAISE(ABORT, 'simulated storage failure');
END;`, table)
	_, err := conn.Exec(stmt)
	require.NoError(t, err)
}

// Count returns the number of rows in table.
func Count(t testing.TB, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
