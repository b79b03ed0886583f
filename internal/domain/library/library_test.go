package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackID(t *testing.T) {
	mod := time.UnixMilli(1700000000123)
	assert.Equal(t, "song-a.mp3-42-1700000000123", TrackID("a.mp3", 42, mod))
}

func TestSessionStoreBasics(t *testing.T) {
	s := NewSessionStore()
	s.Add("x", Track{ID: "x", Name: "x.mp3", Path: "/nowhere/x.mp3"})

	assert.True(t, s.Has("x"))
	assert.Equal(t, 1, s.Len())

	s.Remove("x")
	assert.False(t, s.Has("x"))

	s.Add("y", Track{ID: "y"})
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Night Drive.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0644))

	s := NewSessionStore()
	n, err := s.ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, ok := s.Resolve("Night Drive")
	require.True(t, ok)
	assert.Equal(t, "Night Drive.mp3", res.Name())

	tracks := s.Tracks()
	require.Len(t, tracks, 1)
	res, ok = s.Resolve(tracks[0].ID)
	assert.True(t, ok)

	_, ok = s.Resolve("unknown")
	assert.False(t, ok)

	require.NoError(t, os.Remove(path))
	_, ok = s.Resolve("Night Drive")
	assert.False(t, ok, "deleted files are unavailable")
}

func TestScanDirSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.wav"), []byte("RIFF"), 0644))

	s := NewSessionStore()
	n, err := s.ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("cover"))
}

func TestScanDirMissing(t *testing.T) {
	_, err := NewSessionStore().ScanDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
