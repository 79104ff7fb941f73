package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashstudy/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	conn, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), conn), "failed to apply migrations")
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// FixedClock returns a clock that always reports now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}
