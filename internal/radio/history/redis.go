package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "airadio:history:"
	keyTracks = "airadio:history-tracks"
)

var counterFields = map[Action]string{
	ActionPlay:     "play",
	ActionFinish:   "finish",
	ActionSkip:     "skip",
	ActionFavorite: "favorite",
	ActionDislike:  "dislike",
}

// RedisStore keeps one hash of counters per track plus a set of known tracks.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

// Dial accepts either a redis:// URL or a bare host:port.
func Dial(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func (r *RedisStore) Record(ctx context.Context, ref string, a Action) error {
	field, ok := counterFields[a]
	if !ok {
		return fmt.Errorf("unknown history action %q", a)
	}

	key := keyPrefix + ref
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, field, 1)
		if a == ActionPlay {
			pipe.HSet(ctx, key, "last_played", r.now().UTC().Format(time.RFC3339Nano))
		}
		pipe.SAdd(ctx, keyTracks, ref)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", a, ref, err)
	}
	return nil
}

func (r *RedisStore) Stats(ctx context.Context) (map[string]Entry, error) {
	refs, err := r.rdb.SMembers(ctx, keyTracks).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}

	out := make(map[string]Entry, len(refs))
	for _, ref := range refs {
		fields, err := r.rdb.HGetAll(ctx, keyPrefix+ref).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ref, err)
		}
		out[ref] = entryFromHash(fields)
	}
	return out, nil
}

func entryFromHash(fields map[string]string) Entry {
	count := func(name string) int64 {
		n, _ := strconv.ParseInt(fields[name], 10, 64)
		return n
	}
	e := Entry{
		PlayCount:     count("play"),
		FinishCount:   count("finish"),
		SkipCount:     count("skip"),
		FavoriteCount: count("favorite"),
		DislikeCount:  count("dislike"),
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["last_played"]); err == nil {
		e.LastPlayed = ts
	}
	return e
}
