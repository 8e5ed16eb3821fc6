package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdeck/internal/database"
)

func TestOpenCreatesSchemaAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := database.Open(path)
	require.NoError(t, err)

	for _, table := range []string{"users", "user_sessions", "watch_items", "accounts"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoErrorf(t, err, "table %s should exist", table)
	}
	require.NoError(t, db.Close())

	// Reopening an already-migrated database applies nothing and succeeds.
	db, err = database.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var enabled int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled))
	assert.Equal(t, 1, enabled)
}
