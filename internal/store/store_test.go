package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/dsatrack/internal/progress"
	"github.com/abhisek/dsatrack/internal/spacedrep"
)

func openTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

// flakyBackend wraps a backend and fails writes on demand.
type flakyBackend struct {
	Backend
	failWrites bool
	writes     int
}

func (f *flakyBackend) Write(ctx context.Context, blob []byte) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	f.writes++
	return f.Backend.Write(ctx, blob)
}

func TestPragmasApplied(t *testing.T) {
	db := openTestSQLite(t).DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got), tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestSQLiteBackend_ReadWrite(t *testing.T) {
	b := openTestSQLite(t)
	ctx := context.Background()

	blob, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, blob, "empty database should read as absent")

	require.NoError(t, b.Write(ctx, []byte(`{"a":{"done":true}}`)))
	require.NoError(t, b.Write(ctx, []byte(`{"b":{"done":true}}`)))

	blob, err = b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"b":{"done":true}}`, string(blob))

	var n int
	require.NoError(t, b.DB().QueryRow("SELECT COUNT(*) FROM kv").Scan(&n))
	assert.Equal(t, 1, n, "writes should upsert a single row")
}

func TestSQLiteBackend_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	ctx := context.Background()

	b, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, b.Write(ctx, []byte(`{"x":true}`)))
	require.NoError(t, b.Close())

	b, err = OpenSQLite(path)
	require.NoError(t, err)
	defer b.Close()

	blob, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"x":true}`, string(blob))
}

func TestBackups_SaveListGet(t *testing.T) {
	b := openTestSQLite(t)
	ctx := context.Background()

	list, err := b.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	first, err := b.SaveBackup(ctx, "import", []byte(`{"a":{"done":true}}`))
	require.NoError(t, err)
	second, err := b.SaveBackup(ctx, "reset", []byte(`{"b":{"done":true}}`))
	require.NoError(t, err)
	assert.NotEqual(t, first.Label, second.Label)

	list, err = b.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Label, list[0].Label, "newest first")
	assert.Equal(t, "reset", list[0].Reason)

	got, err := b.GetBackup(ctx, first.Label)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"done":true}}`, string(got.Data))
	assert.Equal(t, "import", got.Reason)

	_, err = b.GetBackup(ctx, "nope")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}

func TestBackups_Prune(t *testing.T) {
	b := openTestSQLite(t)
	ctx := context.Background()

	var labels []string
	for i := 0; i < 7; i++ {
		bk, err := b.SaveBackup(ctx, "reset", []byte(`{}`))
		require.NoError(t, err)
		labels = append(labels, bk.Label)
	}

	require.NoError(t, b.PruneBackups(ctx, 5))
	list, err := b.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, labels[6], list[0].Label)
	assert.Equal(t, labels[2], list[4].Label)

	// Fewer than keep is a no-op.
	require.NoError(t, b.PruneBackups(ctx, 10))
	list, err = b.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestFileBackend_ReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "progress.json")
	f := NewFileBackend(path)
	ctx := context.Background()

	blob, err := f.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, blob)

	require.NoError(t, f.Write(ctx, []byte(`{"a":true}`)))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":true}`, string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should be cleaned up")
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()

	b, err := OpenBackend(BackendFile, filepath.Join(dir, "p.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = OpenBackend(BackendSQLite, filepath.Join(dir, "p.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	b.Close()

	_, err = OpenBackend("redis", "x")
	assert.Error(t, err)
}

func TestStore_LoadMigratesLegacy(t *testing.T) {
	f := NewFileBackend(filepath.Join(t.TempDir(), "p.json"))
	ctx := context.Background()
	require.NoError(t, f.Write(ctx, []byte(`{"a":true,"b":false}`)))

	s := New(f)
	m := s.Load(ctx)
	require.Len(t, m, 2)
	assert.Equal(t, progress.Record{Done: true}, m["a"])
	assert.Equal(t, progress.Record{}, m["b"])
}

func TestStore_LoadCorruptStartsEmpty(t *testing.T) {
	tests := []string{`not json`, `[]`, `{"a": 5}`, `null`}
	for _, blob := range tests {
		t.Run(blob, func(t *testing.T) {
			f := NewFileBackend(filepath.Join(t.TempDir(), "p.json"))
			ctx := context.Background()
			require.NoError(t, f.Write(ctx, []byte(blob)))

			s := New(f)
			assert.Empty(t, s.Load(ctx))
			assert.Equal(t, progress.Record{}, s.Get("a"))
		})
	}
}

func TestStore_SetDoneAndNotesPersist(t *testing.T) {
	for _, kind := range []string{BackendSQLite, BackendFile} {
		t.Run(kind, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "progress")
			ctx := context.Background()

			b, err := OpenBackend(kind, path)
			require.NoError(t, err)
			s := New(b)
			s.Load(ctx)

			require.NoError(t, s.SetNotes(ctx, "a", "hash map"))
			require.NoError(t, s.SetDone(ctx, "a", true))
			require.NoError(t, s.SetDone(ctx, "b", true))
			require.NoError(t, s.SetDone(ctx, "b", false))
			require.NoError(t, s.Close())

			b, err = OpenBackend(kind, path)
			require.NoError(t, err)
			defer b.Close()
			s = New(b)
			m := s.Load(ctx)

			assert.Equal(t, progress.Record{Done: true, Notes: "hash map"}, m["a"])
			assert.False(t, m["b"].Done)
		})
	}
}

func TestStore_GetDoesNotInsert(t *testing.T) {
	s := New(NewFileBackend(filepath.Join(t.TempDir(), "p.json")))
	s.Load(context.Background())

	assert.Equal(t, progress.Record{}, s.Get("missing"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_ApplyReview(t *testing.T) {
	s := New(NewFileBackend(filepath.Join(t.TempDir(), "p.json")))
	ctx := context.Background()
	s.Load(ctx)
	require.NoError(t, s.SetNotes(ctx, "a", "keep me"))

	now := time.UnixMilli(1_700_000_000_000)
	rec, err := s.ApplyReview(ctx, "a", spacedrep.Good, now)
	require.NoError(t, err)

	assert.True(t, rec.Done)
	assert.Equal(t, "keep me", rec.Notes)
	assert.Equal(t, 4, rec.Interval)
	require.NotNil(t, rec.LastReview)
	require.NotNil(t, rec.NextReview)
	assert.Equal(t, now.UnixMilli(), *rec.LastReview)
	assert.Equal(t, now.UnixMilli()+4*spacedrep.DayMillis, *rec.NextReview)
	assert.Equal(t, rec, s.Get("a"))

	rec, err = s.ApplyReview(ctx, "a", spacedrep.Again, now)
	require.NoError(t, err)
	assert.True(t, rec.Done)
	assert.Nil(t, rec.NextReview)
	assert.Equal(t, 0, rec.Interval)

	_, err = s.ApplyReview(ctx, "a", spacedrep.Rating(9), now)
	assert.ErrorIs(t, err, spacedrep.ErrInvalidRating)
}

func TestStore_FailedWriteLeavesMemoryUnchanged(t *testing.T) {
	fb := &flakyBackend{Backend: NewFileBackend(filepath.Join(t.TempDir(), "p.json"))}
	s := New(fb)
	ctx := context.Background()
	s.Load(ctx)
	require.NoError(t, s.SetDone(ctx, "a", true))

	fb.failWrites = true
	assert.Error(t, s.SetDone(ctx, "b", true))
	assert.Error(t, s.SetNotes(ctx, "a", "lost"))
	_, err := s.ApplyReview(ctx, "a", spacedrep.Easy, time.Now())
	assert.Error(t, err)
	assert.Error(t, s.ResetAll(ctx))

	assert.Equal(t, progress.Map{"a": {Done: true}}, s.Snapshot())
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := New(NewFileBackend(filepath.Join(t.TempDir(), "a.json")))
	src.Load(ctx)
	require.NoError(t, src.SetNotes(ctx, "x", "two pointers"))
	_, err := src.ApplyReview(ctx, "y", spacedrep.Hard, time.UnixMilli(1000))
	require.NoError(t, err)

	blob, err := src.ExportAll()
	require.NoError(t, err)

	dst := New(openTestSQLite(t))
	dst.Load(ctx)
	require.NoError(t, dst.SetDone(ctx, "stale", true))
	require.NoError(t, dst.ImportAll(ctx, blob))

	assert.Equal(t, src.Snapshot(), dst.Snapshot())
	assert.Equal(t, progress.Record{}, dst.Get("stale"), "import replaces the whole map")
}

func TestStore_ImportInvalidLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := New(openTestSQLite(t))
	s.Load(ctx)
	require.NoError(t, s.SetDone(ctx, "a", true))
	before := s.Snapshot()

	for _, blob := range []string{`[1,2]`, `"hello"`, `{"a": 3}`, `{broken`} {
		err := s.ImportAll(ctx, []byte(blob))
		require.Error(t, err, blob)
		assert.ErrorIs(t, err, ErrInvalidFormat)

		var ie *ImportError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, InvalidFormat, ie.Kind)
	}
	assert.Equal(t, before, s.Snapshot())

	repo, ok := s.Backups()
	require.True(t, ok)
	list, err := repo.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected imports take no backup")
}

func TestStore_ImportLegacyBooleans(t *testing.T) {
	ctx := context.Background()
	s := New(NewFileBackend(filepath.Join(t.TempDir(), "p.json")))
	s.Load(ctx)

	require.NoError(t, s.ImportAll(ctx, []byte(`{"a":true}`)))
	assert.Equal(t, progress.Record{Done: true}, s.Get("a"))
}

func TestStore_ResetAll(t *testing.T) {
	ctx := context.Background()
	b := openTestSQLite(t)
	s := New(b)
	s.Load(ctx)
	require.NoError(t, s.SetDone(ctx, "a", true))
	require.NoError(t, s.SetNotes(ctx, "b", "note"))

	require.NoError(t, s.ResetAll(ctx))
	assert.Empty(t, s.Snapshot())

	blob, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(blob))

	// Resetting an empty store is not an error.
	require.NoError(t, s.ResetAll(ctx))
}

func TestStore_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	s := New(openTestSQLite(t))
	s.Load(ctx)
	require.NoError(t, s.SetNotes(ctx, "a", "before reset"))
	require.NoError(t, s.ResetAll(ctx))

	repo, ok := s.Backups()
	require.True(t, ok)
	list, err := repo.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "reset", list[0].Reason)

	require.NoError(t, s.RestoreBackup(ctx, list[0].Label))
	assert.Equal(t, "before reset", s.Get("a").Notes)

	assert.ErrorIs(t, s.RestoreBackup(ctx, "missing"), ErrBackupNotFound)
}

func TestStore_BackupKeep(t *testing.T) {
	ctx := context.Background()
	s := New(openTestSQLite(t), WithBackupKeep(2))
	s.Load(ctx)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.SetDone(ctx, "a", true))
		require.NoError(t, s.ResetAll(ctx))
	}

	repo, _ := s.Backups()
	list, err := repo.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStore_FileBackendHasNoBackups(t *testing.T) {
	ctx := context.Background()
	s := New(NewFileBackend(filepath.Join(t.TempDir(), "p.json")))
	s.Load(ctx)

	_, ok := s.Backups()
	assert.False(t, ok)
	assert.ErrorIs(t, s.RestoreBackup(ctx, "any"), ErrBackupsUnsupported)

	require.NoError(t, s.SetDone(ctx, "a", true))
	require.NoError(t, s.ResetAll(ctx))
	assert.Empty(t, s.Snapshot())
}
