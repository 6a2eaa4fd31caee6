package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "research.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStore_ItemsRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "filesystem", "/notes.md")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Put(ctx, "filesystem", "/notes.md", []byte("v1")))
			require.NoError(t, store.Put(ctx, "filesystem", "/notes.md", []byte("v2")))
			require.NoError(t, store.Put(ctx, "other", "/notes.md", []byte("elsewhere")))

			item, err := store.Get(ctx, "filesystem", "/notes.md")
			require.NoError(t, err)
			assert.Equal(t, "v2", string(item.Value))
			assert.Equal(t, "filesystem", item.Namespace)
			assert.False(t, item.UpdatedAt.Before(item.CreatedAt))

			require.NoError(t, store.Delete(ctx, "filesystem", "/notes.md"))
			_, err = store.Get(ctx, "filesystem", "/notes.md")
			assert.ErrorIs(t, err, ErrNotFound)

			item, err = store.Get(ctx, "other", "/notes.md")
			require.NoError(t, err)
			assert.Equal(t, "elsewhere", string(item.Value))
		})
	}
}

func TestStore_ListByPrefix(t *testing.T) {
	t.Parallel()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, key := range []string{"/b.md", "/a.md", "/sub/c.md", "/sub/d.md", "/笔记/a.md", "/笔记本.md"} {
				require.NoError(t, store.Put(ctx, "fs", key, []byte(key)))
			}

			all, err := store.List(ctx, "fs", "")
			require.NoError(t, err)
			require.Len(t, all, 6)
			assert.Equal(t, "/a.md", all[0].Key)

			sub, err := store.List(ctx, "fs", "/sub/")
			require.NoError(t, err)
			require.Len(t, sub, 2)
			assert.Equal(t, "/sub/c.md", sub[0].Key)
			assert.Equal(t, "/sub/d.md", sub[1].Key)

			notes, err := store.List(ctx, "fs", "/笔记/")
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, "/笔记/a.md", notes[0].Key)

			notes, err = store.List(ctx, "fs", "/笔记")
			require.NoError(t, err)
			assert.Len(t, notes, 2)

			none, err := store.List(ctx, "missing", "")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStore_RunsRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start := time.Now().UTC().Truncate(time.Second)

			first := RunRecord{ID: "run-1", Topic: "a", Status: RunRunning, StartedAt: start.Add(-time.Hour)}
			second := RunRecord{ID: "run-2", Topic: "b", Status: RunRunning, StartedAt: start}
			require.NoError(t, store.RecordRun(ctx, first))
			require.NoError(t, store.RecordRun(ctx, second))

			second.Status = RunFailed
			second.Attempts = 3
			second.Error = "boom"
			second.FinishedAt = start.Add(time.Minute)
			require.NoError(t, store.RecordRun(ctx, second))

			runs, err := store.ListRuns(ctx, 0)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "run-2", runs[0].ID)
			assert.Equal(t, RunFailed, runs[0].Status)
			assert.Equal(t, 3, runs[0].Attempts)
			assert.Equal(t, "boom", runs[0].Error)
			assert.True(t, runs[0].FinishedAt.Equal(start.Add(time.Minute)))
			assert.True(t, runs[1].FinishedAt.IsZero())

			latest, err := store.ListRuns(ctx, 1)
			require.NoError(t, err)
			require.Len(t, latest, 1)
			assert.Equal(t, "run-2", latest[0].ID)
		})
	}
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "research.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "fs", "/memories/prefs.md", []byte("keep")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	item, err := reopened.Get(ctx, "fs", "/memories/prefs.md")
	require.NoError(t, err)
	assert.Equal(t, "keep", string(item.Value))
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("  ")
	require.Error(t, err)
}

func TestMigrationVersion(t *testing.T) {
	assert.Equal(t, 1, migrationVersion("001_init.sql"))
	assert.Equal(t, 12, migrationVersion("012_runs.sql"))
	assert.Equal(t, 0, migrationVersion("init.sql"))
}
