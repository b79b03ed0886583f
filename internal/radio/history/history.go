package history

import (
	"context"
	"time"
)

type Action string

const (
	ActionPlay     Action = "play"
	ActionFinish   Action = "finish"
	ActionSkip     Action = "skip"
	ActionFavorite Action = "favorite"
	ActionDislike  Action = "dislike"
)

// Entry is the listening record of one track.
type Entry struct {
	PlayCount     int64     `json:"playCount"`
	FinishCount   int64     `json:"finishCount"`
	SkipCount     int64     `json:"skipCount"`
	FavoriteCount int64     `json:"favoriteCount"`
	DislikeCount  int64     `json:"dislikeCount"`
	LastPlayed    time.Time `json:"lastPlayed,omitempty"`
}

func (e *Entry) apply(a Action, at time.Time) {
	switch a {
	case ActionPlay:
		e.PlayCount++
		e.LastPlayed = at
	case ActionFinish:
		e.FinishCount++
	case ActionSkip:
		e.SkipCount++
	case ActionFavorite:
		e.FavoriteCount++
	case ActionDislike:
		e.DislikeCount++
	}
}

// Store persists listening events.
type Store interface {
	Record(ctx context.Context, ref string, a Action) error
	Stats(ctx context.Context) (map[string]Entry, error)
}

// Recorder gives the per-action calls a player makes. Empty refs are ignored.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) log(ctx context.Context, ref string, a Action) error {
	if ref == "" {
		return nil
	}
	return r.store.Record(ctx, ref, a)
}

func (r *Recorder) LogPlay(ctx context.Context, ref string) error {
	return r.log(ctx, ref, ActionPlay)
}

func (r *Recorder) LogFinish(ctx context.Context, ref string) error {
	return r.log(ctx, ref, ActionFinish)
}

func (r *Recorder) LogSkip(ctx context.Context, ref string) error {
	return r.log(ctx, ref, ActionSkip)
}

func (r *Recorder) LogFavorite(ctx context.Context, ref string) error {
	return r.log(ctx, ref, ActionFavorite)
}

func (r *Recorder) LogDislike(ctx context.Context, ref string) error {
	return r.log(ctx, ref, ActionDislike)
}

func (r *Recorder) Stats(ctx context.Context) (map[string]Entry, error) {
	return r.store.Stats(ctx)
}
