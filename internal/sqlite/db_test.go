package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"samples", "activity_log"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Migrations are idempotent so the server can run them on every start.
	require.NoError(t, db.RunMigrations())
}

// TestSamplesTable verifies nullable heart rate and beat interval columns
func TestSamplesTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO samples (date, start_date, hr, rr) VALUES (?, ?, NULL, NULL)`, 10, 5)
	require.NoError(t, err)

	var hr, rr any
	err = db.QueryRowContext(ctx, `SELECT hr, rr FROM samples WHERE date = 10`).Scan(&hr, &rr)
	require.NoError(t, err)
	require.Nil(t, hr)
	require.Nil(t, rr)

	_, err = db.ExecContext(ctx, `INSERT INTO samples (start_date) VALUES (1)`)
	require.Error(t, err, "date is required")
}
