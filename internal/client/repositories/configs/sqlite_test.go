package configs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE config (
  key TEXT PRIMARY KEY NOT NULL,
  value TEXT NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'pending',
  updated_at TEXT NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func newRepoAt(db *sql.DB, now string) *SQLiteRepository {
	r := NewSQLiteRepository(db)
	r.now = func() string { return now }
	return r
}

func TestSetAndGet(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-01T00:00:00.000Z")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "theme", "dark"))

	got, err := r.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)

	pending, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "theme", pending[0].Key)
}

func TestGet_NotFound(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-01T00:00:00.000Z")

	_, err := r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetMany(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-01T00:00:00.000Z")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "theme", "dark"))
	require.NoError(t, r.Set(ctx, "reminder_time", "21:00"))

	got, err := r.GetMany(ctx, []string{"theme", "reminder_time", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "dark", "reminder_time": "21:00"}, got)

	empty, err := r.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSetLocal_NeverPushed(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-01T00:00:00.000Z")
	ctx := context.Background()

	// Device-local values (like the sync checkpoint) are written synced so
	// they never enter a push batch.
	require.NoError(t, r.SetLocal(ctx, common.LastSyncedAtKey, "2024-01-01T00:00:00.000Z"))

	pending, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := r.Get(ctx, common.LastSyncedAtKey)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", got)
}

func TestSet_OverwritesAndGoesPendingAgain(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-02T00:00:00.000Z")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "theme", "dark"))
	require.NoError(t, r.MarkSynced(ctx, []string{"theme"}))
	require.NoError(t, r.Set(ctx, "theme", "light"))

	pending, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "light", pending[0].Value)
}

func TestMarkSynced_EmptyIsNoOp(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-01T00:00:00.000Z")
	require.NoError(t, r.MarkSynced(context.Background(), nil))
}

func TestUpsertFromServer_LWW(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-05T00:00:00.000Z")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "theme", "local-edit"))

	// Stale server value loses.
	require.NoError(t, r.UpsertFromServer(ctx, api.Config{
		Key: "theme", Value: "server-stale", UpdatedAt: "2024-01-02T00:00:00.000Z",
	}))
	got, err := r.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "local-edit", got)

	// Newer server value wins and is synced.
	require.NoError(t, r.UpsertFromServer(ctx, api.Config{
		Key: "theme", Value: "server-newer", UpdatedAt: "2024-01-09T00:00:00.000Z",
	}))
	got, err = r.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "server-newer", got)

	pending, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestClearAll(t *testing.T) {
	db := setupDB(t)
	r := newRepoAt(db, "2024-01-01T00:00:00.000Z")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "theme", "dark"))
	require.NoError(t, r.ClearAll(ctx))

	_, err := r.Get(ctx, "theme")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
