package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/textguard/internal/models"
)

// implementations returns a fresh instance of every Workspace implementation.
func implementations(t *testing.T) map[string]Workspace {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "workspace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return map[string]Workspace{
		"memory": NewMemory(),
		"sqlite": store,
	}
}

func TestWorkspaceAddAndGet(t *testing.T) {
	for name, ws := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			stored, err := ws.Add(models.TextResource{Name: "notes", Content: "hello", Source: "a.blend"})
			require.NoError(t, err)
			assert.Equal(t, "notes", stored)

			res, err := ws.Get("notes")
			require.NoError(t, err)
			assert.Equal(t, "hello", res.Content)
			assert.Equal(t, "a.blend", res.Source)

			_, err = ws.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = ws.Add(models.TextResource{Content: "nameless"})
			assert.Error(t, err)
		})
	}
}

func TestWorkspaceAddAssignsUniqueNames(t *testing.T) {
	for name, ws := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			first, err := ws.Add(models.TextResource{Name: "Text", Content: "1"})
			require.NoError(t, err)
			second, err := ws.Add(models.TextResource{Name: "Text", Content: "2"})
			require.NoError(t, err)
			third, err := ws.Add(models.TextResource{Name: "Text", Content: "3"})
			require.NoError(t, err)

			assert.Equal(t, "Text", first)
			assert.Equal(t, "Text.001", second)
			assert.Equal(t, "Text.002", third)

			names, err := ws.Names()
			require.NoError(t, err)
			assert.Equal(t, []string{"Text", "Text.001", "Text.002"}, names)
		})
	}
}

func TestWorkspaceRename(t *testing.T) {
	for name, ws := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			_, err := ws.Add(models.TextResource{Name: "a", Content: "A"})
			require.NoError(t, err)
			_, err = ws.Add(models.TextResource{Name: "b", Content: "B"})
			require.NoError(t, err)

			require.NoError(t, ws.Rename("a", "demo_a"))
			assert.ErrorIs(t, ws.Rename("b", "demo_a"), ErrExists)
			assert.ErrorIs(t, ws.Rename("missing", "x"), ErrNotFound)
			assert.NoError(t, ws.Rename("b", "b"))

			res, err := ws.Get("demo_a")
			require.NoError(t, err)
			assert.Equal(t, "A", res.Content)
			assert.Equal(t, "demo_a", res.Name)

			names, err := ws.Names()
			require.NoError(t, err)
			assert.Equal(t, []string{"demo_a", "b"}, names, "rename keeps creation order")
		})
	}
}

func TestWorkspaceRemove(t *testing.T) {
	for name, ws := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			_, err := ws.Add(models.TextResource{Name: "a", Content: "A"})
			require.NoError(t, err)

			require.NoError(t, ws.Remove("a"))
			assert.ErrorIs(t, ws.Remove("a"), ErrNotFound)

			names, err := ws.Names()
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestReplace(t *testing.T) {
	for name, ws := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Replace(ws, models.TextResource{Name: "Report", Content: "v1"}))
			require.NoError(t, Replace(ws, models.TextResource{Name: "Report", Content: "v2"}))

			names, err := ws.Names()
			require.NoError(t, err)
			assert.Equal(t, []string{"Report"}, names)

			res, err := ws.Get("Report")
			require.NoError(t, err)
			assert.Equal(t, "v2", res.Content)
		})
	}
}

func TestNameSet(t *testing.T) {
	ws := NewMemory()
	_, _ = ws.Add(models.TextResource{Name: "a"})
	_, _ = ws.Add(models.TextResource{Name: "b"})

	set, err := NameSet(ws)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, set)
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"Text": true, "Text.001": true, "v1.5": true}
	isTaken := func(n string) bool { return taken[n] }

	assert.Equal(t, "free", UniqueName("free", isTaken))
	assert.Equal(t, "Text.002", UniqueName("Text", isTaken))
	assert.Equal(t, "Text.002", UniqueName("Text.001", isTaken))
	assert.Equal(t, "v1.5.001", UniqueName("v1.5", isTaken))
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	_, err = store.Add(models.TextResource{Name: "kept", Content: "data"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	version, err := reopened.GetLatestVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	res, err := reopened.Get("kept")
	require.NoError(t, err)
	assert.Equal(t, "data", res.Content)
}

func TestStoreInMemory(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Add(models.TextResource{Name: "a", Content: "A"})
	require.NoError(t, err)
	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestRunHistory(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	older := NewRunRecord("/assets", []string{"eval"}, models.RunResult{TotalCount: 1, ProcessedFiles: 1},
		time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	newer := NewRunRecord("/assets", []string{"eval", "exec"}, models.RunResult{
		TotalCount:     3,
		ProcessedFiles: 2,
		Flagged: []models.FlaggedMatch{
			{Container: "demo", Resource: "script1", Keywords: []string{"exec"}},
			{Container: "demo", Resource: "script2", Keywords: []string{"eval", "exec"}},
		},
		Skipped: []models.SkippedFile{{FileName: "broken.blend", Error: "blend: missing BLENDER magic (offset 0)"}},
	}, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))

	require.NoError(t, store.RecordRun(ctx, older))
	require.NoError(t, store.RecordRun(ctx, newer))
	assert.NotEqual(t, older.ID, newer.ID)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, []string{"eval", "exec"}, runs[0].Keywords)
	assert.Equal(t, 3, runs[0].TotalCount)
	assert.Equal(t, newer.Flagged, runs[0].Flagged)
	assert.Equal(t, newer.Skipped, runs[0].Skipped)
	assert.True(t, runs[0].StartedAt.Equal(newer.StartedAt))

	assert.Equal(t, older.ID, runs[1].ID)
	assert.Empty(t, runs[1].Flagged)

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

type fakeRows struct {
	remaining int
	err       error
	closed    bool
}

func (f *fakeRows) Next() bool {
	if f.remaining == 0 {
		return false
	}
	f.remaining--
	return true
}

func (f *fakeRows) Err() error   { return f.err }
func (f *fakeRows) Close() error { f.closed = true; return nil }

func TestDrainRowsReportsIterationError(t *testing.T) {
	connLost := errors.New("connection lost")
	rows := &fakeRows{remaining: 2, err: connLost}

	scanned := 0
	err := drainRows(rows, func() error { scanned++; return nil })
	require.ErrorIs(t, err, connLost)
	assert.Equal(t, 2, scanned)
	assert.True(t, rows.closed)
}

func TestDrainRowsStopsOnScanError(t *testing.T) {
	rows := &fakeRows{remaining: 3}
	bad := errors.New("bad row")

	scanned := 0
	err := drainRows(rows, func() error { scanned++; return bad })
	require.ErrorIs(t, err, bad)
	assert.Equal(t, 1, scanned)
	assert.True(t, rows.closed)
}
