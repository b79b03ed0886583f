package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2024, 5, 1, 21, 30, 0, 0, time.UTC)

func exercise(t *testing.T, r *Recorder) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, r.LogPlay(ctx, "song-a"))
	require.NoError(t, r.LogFinish(ctx, "song-a"))
	require.NoError(t, r.LogPlay(ctx, "song-a"))
	require.NoError(t, r.LogDislike(ctx, "song-a"))
	require.NoError(t, r.LogSkip(ctx, "song-a"))
	require.NoError(t, r.LogFavorite(ctx, "song-b"))
	require.NoError(t, r.LogPlay(ctx, ""))

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	a := stats["song-a"]
	assert.Equal(t, int64(2), a.PlayCount)
	assert.Equal(t, int64(1), a.FinishCount)
	assert.Equal(t, int64(1), a.SkipCount)
	assert.Equal(t, int64(1), a.DislikeCount)
	assert.Equal(t, int64(0), a.FavoriteCount)
	assert.True(t, fixed.Equal(a.LastPlayed))

	b := stats["song-b"]
	assert.Equal(t, int64(1), b.FavoriteCount)
	assert.True(t, b.LastPlayed.IsZero())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewFileStore(path)
	store.now = func() time.Time { return fixed }

	exercise(t, NewRecorder(store))

	// survives a reopen
	stats, err := NewFileStore(path).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["song-a"].PlayCount)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	err := NewFileStore(path).Record(context.Background(), "x", ActionPlay)
	assert.Error(t, err)
}

func TestFileStoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFileStore(filepath.Join(t.TempDir(), "h.json")).Record(ctx, "x", ActionPlay)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewRedisStore(rdb)
	store.now = func() time.Time { return fixed }

	exercise(t, NewRecorder(store))

	assert.Equal(t, "2", mr.HGet(keyPrefix+"song-a", "play"))
	members, err := mr.Members(keyTracks)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"song-a", "song-b"}, members)
}

func TestRedisStoreUnknownAction(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	assert.Error(t, store.Record(context.Background(), "x", Action("rewind")))
}

func TestDial(t *testing.T) {
	c, err := Dial("redis://localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)

	c, err = Dial("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", c.Options().Addr)

	_, err = Dial("redis://bad url/x")
	assert.Error(t, err)
}
