package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharipovr/aws-url-shortener/internal/repository"
	"github.com/sharipovr/aws-url-shortener/internal/repository/storetest"
)

func TestStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.LinkStore {
		return setupTestStore(t)
	})
}

func TestStore_New(t *testing.T) {
	store, err := New(createTempDB(t), "url-shortener")
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Equal(t, `"url-shortener"`, store.table)

	// Verify database connection is working
	assert.NoError(t, store.db.Ping())
	assert.NoError(t, store.Close())
}

func TestStore_New_InvalidPath(t *testing.T) {
	store, err := New("/invalid/path/to/database.db", "links")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestStore_New_EmptyTable(t *testing.T) {
	store, err := New(createTempDB(t), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "table name cannot be empty")
	assert.Nil(t, store)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dbPath := createTempDB(t)
	ctx := context.Background()

	store, err := New(dbPath, "links")
	require.NoError(t, err)
	_, err = store.Put(ctx, "abc1234", "https://example.com", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.IncrementClicks(ctx, "abc1234", 2))
	require.NoError(t, store.Close())

	// Migrations are not re-applied and the row survives
	store, err = New(dbPath, "links")
	require.NoError(t, err)
	defer store.Close()

	link, err := store.Get(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.ClickCount)

	applied, err := store.getAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
}

func TestStore_SeparateTablesInOneFile(t *testing.T) {
	dbPath := createTempDB(t)
	ctx := context.Background()

	first, err := New(dbPath, "links_a")
	require.NoError(t, err)
	defer first.Close()

	second, err := New(dbPath, "links_b")
	require.NoError(t, err)
	defer second.Close()

	_, err = first.Put(ctx, "abc1234", "https://a.example.com", time.Now())
	require.NoError(t, err)

	_, err = second.Get(ctx, "abc1234")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_Close(t *testing.T) {
	store, err := New(createTempDB(t), "links")
	require.NoError(t, err)

	require.NoError(t, store.Close())

	// Use after close fails with a storage error, not a sentinel
	_, err = store.Get(context.Background(), "abc1234")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_ContextCancellation(t *testing.T) {
	store := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "abc1234", "https://example.com", time.Now())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(`"links"`)
	require.NoError(t, err)
	require.Len(t, migrations, 1)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create_links_table", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, `CREATE TABLE IF NOT EXISTS "links"`)
	assert.NotContains(t, migrations[0].SQL, "{{table}}")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"links"`, quoteIdent("links"))
	assert.Equal(t, `"url-shortener"`, quoteIdent("url-shortener"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}

// Helper functions

func createTempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(createTempDB(t), "url-shortener")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})

	return store
}
