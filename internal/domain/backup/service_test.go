package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB pretends to be the live SQLite store: a real file on disk plus
// swap bookkeeping.
type fakeDB struct {
	path  string
	swaps int
}

func newFakeDB(t *testing.T, content []byte) *fakeDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "live.db")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return &fakeDB{path: path}
}

func (f *fakeDB) Path() string { return f.path }

func (f *fakeDB) Checkpoint(_ context.Context) error { return nil }

func (f *fakeDB) Swap(data []byte) error {
	f.swaps++
	return os.WriteFile(f.path, data, 0o644)
}

type fakeHistory struct {
	rows []Backup
}

func (h *fakeHistory) Create(_ context.Context, b *Backup) error {
	b.ID = int64(len(h.rows) + 1)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	h.rows = append(h.rows, *b)
	return nil
}

func (h *fakeHistory) List(_ context.Context, limit int) ([]Backup, error) {
	if len(h.rows) > limit {
		return h.rows[:limit], nil
	}
	return h.rows, nil
}

func (h *fakeHistory) DeleteByPath(_ context.Context, path string) error {
	for i, b := range h.rows {
		if b.Path == path {
			h.rows = append(h.rows[:i], h.rows[i+1:]...)
			break
		}
	}
	return nil
}

func dbContent() []byte {
	return append(append([]byte{}, sqliteMagic...), []byte("rest of the database")...)
}

func newTestService(t *testing.T, db *fakeDB) (*Service, string) {
	t.Helper()
	backupDir := filepath.Join(t.TempDir(), "backups")
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"shop_name":"test"}`), 0o644))

	stamp := time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)
	svc := NewService(db, &fakeHistory{}, backupDir, settingsPath, nil, func() time.Time {
		stamp = stamp.Add(time.Second)
		return stamp
	})
	return svc, backupDir
}

func TestCreate_PlainCopy(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, backupDir := newTestService(t, db)

	b, err := svc.Create(context.Background(), false, false)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(b.FileName, filePrefix))
	assert.True(t, strings.HasSuffix(b.FileName, ".db"))
	assert.False(t, b.Compressed)

	copied, err := os.ReadFile(filepath.Join(backupDir, b.FileName))
	require.NoError(t, err)
	assert.Equal(t, dbContent(), copied)
}

func TestCreate_ZipHoldsDatabaseManifestAndSettings(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, _ := newTestService(t, db)

	b, err := svc.Create(context.Background(), true, true)
	require.NoError(t, err)
	assert.True(t, b.Compressed)
	assert.True(t, b.Automatic)

	zr, err := zip.OpenReader(b.Path)
	require.NoError(t, err)
	defer zr.Close()

	names := make(map[string]bool)
	for _, entry := range zr.File {
		names[entry.Name] = true
	}
	assert.True(t, names["manifest.json"], "missing manifest")
	assert.True(t, names["settings.json"], "missing settings")

	hasDB := false
	for name := range names {
		if strings.HasSuffix(name, ".db") {
			hasDB = true
		}
	}
	assert.True(t, hasDB, "missing database entry")
}

func TestRestore_RoundTrip(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, _ := newTestService(t, db)
	ctx := context.Background()

	b, err := svc.Create(ctx, true, false)
	require.NoError(t, err)

	// Mutate the live file, then restore the backup over it.
	require.NoError(t, os.WriteFile(db.path, append(dbContent(), []byte("garbage")...), 0o644))

	require.NoError(t, svc.Restore(ctx, b.Path))

	restored, err := os.ReadFile(db.path)
	require.NoError(t, err)
	assert.Equal(t, dbContent(), restored)
	assert.Equal(t, 1, db.swaps)
}

func TestRestore_RejectsNonDatabaseFile(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, backupDir := newTestService(t, db)

	require.NoError(t, os.MkdirAll(backupDir, 0o755))
	bogus := filepath.Join(backupDir, "not-a-db.db")
	require.NoError(t, os.WriteFile(bogus, []byte("definitely not sqlite"), 0o644))

	err := svc.Restore(context.Background(), bogus)
	require.Error(t, err)

	// The live database was never touched.
	live, readErr := os.ReadFile(db.path)
	require.NoError(t, readErr)
	assert.Equal(t, dbContent(), live)
	assert.Zero(t, db.swaps)
}

func TestRestore_MissingFile(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, _ := newTestService(t, db)

	err := svc.Restore(context.Background(), filepath.Join(t.TempDir(), "nope.zip"))
	require.Error(t, err)
}

func TestList_IncludesUntrackedDiskFiles(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, backupDir := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, false, false)
	require.NoError(t, err)

	// Drop a file in manually, as a user restoring from another machine would.
	manual := filepath.Join(backupDir, filePrefix+"manual.db")
	require.NoError(t, os.WriteFile(manual, dbContent(), 0o644))

	backups, err := svc.List(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestCleanup_KeepsNewest(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, backupDir := newTestService(t, db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, false, false)
		require.NoError(t, err)
	}

	removed, err := svc.Cleanup(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExportToFolder(t *testing.T) {
	db := newFakeDB(t, dbContent())
	svc, _ := newTestService(t, db)
	ctx := context.Background()

	b, err := svc.Create(ctx, false, false)
	require.NoError(t, err)

	folder := filepath.Join(t.TempDir(), "cloud")
	dst, err := svc.ExportToFolder(ctx, b.Path, folder)
	require.NoError(t, err)

	exported, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, dbContent(), exported)

	_, err = svc.ExportToFolder(ctx, b.Path, "")
	require.Error(t, err)
}
