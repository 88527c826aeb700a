package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

func backends(t *testing.T) map[string]Cache {
	t.Helper()
	dir := t.TempDir()

	fc, err := NewFileCache(filepath.Join(dir, "files"))
	require.NoError(t, err)
	sc, err := OpenSQLCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Close() })

	return map[string]Cache{
		BackendFile:   fc,
		BackendSQLite: sc,
		BackendMemory: NewMemoryCache(),
	}
}

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(ctx, "libraryOccupancy")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, c.Set(ctx, "libraryOccupancy", []byte("first")))
			require.NoError(t, c.Set(ctx, "libraryOccupancy", []byte("second")))
			got, err := c.Get(ctx, "libraryOccupancy")
			require.NoError(t, err)
			assert.Equal(t, "second", string(got))

			_, err = c.Get(ctx, "other")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileCache_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c1, err := NewFileCache(dir)
	require.NoError(t, err)
	require.NoError(t, c1.Set(ctx, "a/b key", []byte("v")))

	c2, err := NewFileCache(dir)
	require.NoError(t, err)
	got, err := c2.Get(ctx, "a/b key")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSQLCache_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c1, err := OpenSQLCache(path)
	require.NoError(t, err)
	require.NoError(t, c1.Set(ctx, DefaultSnapshotKey, []byte{1, 2, 3}))
	require.NoError(t, c1.Close())

	c2, err := OpenSQLCache(path)
	require.NoError(t, err)
	defer c2.Close()
	got, err := c2.Get(ctx, DefaultSnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	v := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(BackendFile, filepath.Join(dir, "f"))
	require.NoError(t, err)
	assert.IsType(t, &FileCache{}, c)

	c, err = Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
	assert.NoError(t, Close(c))

	c, err = Open(BackendSQLite, filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.NoError(t, Close(c))

	_, err = Open("redis", "")
	assert.Error(t, err)
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotStore(NewMemoryCache(), "")
	assert.Equal(t, DefaultSnapshotKey, s.Key())

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 5, 2, 9, 15, 0, 0, time.UTC)
	snap := occupancy.Snapshot{
		Values:     occupancy.Values{}.With(occupancy.Main, 42).With(occupancy.Newton, 7),
		ReceivedAt: at,
	}
	require.NoError(t, s.Save(ctx, snap))

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.Values, got.Values)
	assert.True(t, at.Equal(got.ReceivedAt))
}

func TestDecodeSnapshot_JSON(t *testing.T) {
	got, err := DecodeSnapshot([]byte(` {"main": 55.6, "north": "12", "south": null}`))
	require.NoError(t, err)
	assert.Equal(t, 55, got.Values.Get(occupancy.Main))
	assert.Equal(t, 12, got.Values.Get(occupancy.North))
	assert.Equal(t, 0, got.Values.Get(occupancy.South))
	assert.True(t, got.ReceivedAt.IsZero())
}

func TestDecodeSnapshot_Garbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte("{not json"))
	assert.Error(t, err)

	_, err = DecodeSnapshot([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}
