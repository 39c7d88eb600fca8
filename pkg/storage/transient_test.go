package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCreatesDirAndUniqueNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "temp")
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	a, err := store.Acquire()
	require.NoError(t, err)
	b, err := store.Acquire()
	require.NoError(t, err)

	isDir, err := afero.IsDir(fs, "temp")
	require.NoError(t, err)
	assert.True(t, isDir)

	assert.NotEqual(t, a.Path, b.Path, "same-millisecond leases must not collide")
	assert.Equal(t, "temp", filepath.Dir(a.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(a.Path), "1700000000000-"))
	assert.Equal(t, AudioExt, filepath.Ext(a.Path))

	// acquiring again with an existing directory is fine
	_, err = store.Acquire()
	require.NoError(t, err)
}

func TestReleaseRemovesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "temp")

	lease, err := store.Acquire()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, lease.Path, []byte("ID3"), 0o600))

	require.NoError(t, lease.Release())
	exists, err := afero.Exists(fs, lease.Path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, lease.Release())
}

func TestReleaseWithoutWriteIsNoop(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "temp")
	lease, err := store.Acquire()
	require.NoError(t, err)

	assert.NoError(t, lease.Release())
}

func TestAcquireFailsOnReadOnlyFs(t *testing.T) {
	store := NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "temp")
	_, err := store.Acquire()
	require.Error(t, err)
}

func TestSweepRemovesOnlyStaleFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store := NewStore(fs, "temp")
	store.now = func() time.Time { return now }

	writeAged(t, fs, "temp/old.mp3", now.Add(-2*time.Hour))
	writeAged(t, fs, "temp/fresh.mp3", now.Add(-time.Minute))
	require.NoError(t, fs.MkdirAll("temp/nested", 0o755))

	removed, err := store.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	exists, _ := afero.Exists(fs, "temp/old.mp3")
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, "temp/fresh.mp3")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "temp/nested")
	assert.True(t, exists)
}

func TestSweepMissingDir(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "nowhere")
	removed, err := store.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPurge(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "temp")
	writeAged(t, fs, "temp/a.mp3", time.Now())
	writeAged(t, fs, "temp/b.mp3", time.Now())

	removed, err := store.Purge()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestSweeperStartRunsImmediately(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "temp")
	writeAged(t, fs, "temp/crashed.mp3", time.Now().Add(-3*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := NewSweeper(store, "@every 1h", time.Hour)
	require.NoError(t, sweeper.Start(ctx))

	exists, _ := afero.Exists(fs, "temp/crashed.mp3")
	assert.False(t, exists)
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	sweeper := NewSweeper(NewStore(afero.NewMemMapFs(), "temp"), "every now and then", time.Hour)
	err := sweeper.Start(context.Background())
	require.Error(t, err)
}

func writeAged(t *testing.T, fs afero.Fs, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte("audio"), 0o600))
	require.NoError(t, fs.Chtimes(path, mtime, mtime))
}
