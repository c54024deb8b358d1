package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabase(t *testing.T) {
	s := openTestStore(t)
	assert.NotNil(t, s.DB())
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	rows, err := s.Query(context.Background(), "PRAGMA journal_mode")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "wal", rows[0]["journal_mode"])
}

func TestExecAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Exec(ctx, `CREATE TABLE users (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	affected, err := s.Exec(ctx, `INSERT INTO users (id, name) VALUES (?, ?)`, "u-1", "Ana")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err := s.Query(ctx, `SELECT * FROM users WHERE id = ?`, "u-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u-1", rows[0]["id"])
	assert.Equal(t, "Ana", rows[0]["name"])
}

func TestQueryEmptyResultIsNeverNil(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Exec(ctx, `CREATE TABLE empty_t (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	rows, err := s.Query(ctx, `SELECT * FROM empty_t`)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQueryReturningRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Exec(ctx, `CREATE TABLE notes (id TEXT PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)

	rows, err := s.Query(ctx, `INSERT INTO notes (id, body) VALUES (?, ?) RETURNING *`, "n-1", "hello")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "n-1", rows[0]["id"])
}

func TestConstraintErrorSurfacesVerbatim(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Exec(ctx, `CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT UNIQUE)`)
	require.NoError(t, err)

	_, err = s.Exec(ctx, `INSERT INTO users (id, email) VALUES (?, ?)`, "u-1", "a@b.c")
	require.NoError(t, err)

	_, err = s.Exec(ctx, `INSERT INTO users (id, email) VALUES (?, ?)`, "u-2", "a@b.c")
	require.Error(t, err)
	// The engine's constraint text is preserved; callers match on it.
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestCloseIsIdempotentOnNil(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}
