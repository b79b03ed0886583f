package show

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type wireItem struct {
	Type       Kind     `json:"type"`
	Track      string   `json:"track"`
	Commentary string   `json:"commentary"`
	Genre      string   `json:"genre"`
	Adverts    []string `json:"adverts"`
	Script     string   `json:"script"`
}

type wireShow struct {
	Title     string            `json:"showTitle"`
	Art       string            `json:"showArt"`
	Intro     string            `json:"introCommentary"`
	Outro     string            `json:"outroCommentary"`
	Playlist  []wireItem        `json:"playlist"`
	Reactions map[string]string `json:"userReactions"`
	Sources   []Source          `json:"sources"`
	Host      Host              `json:"dj"`
}

var reactionKeys = map[string]ReactionKind{
	"onFavorite": ReactionFavorite,
	"onSkip":     ReactionSkip,
	"onPause":    ReactionPause,
	"onPlay":     ReactionPlay,
	"onMute":     ReactionMute,
	"onUnmute":   ReactionUnmute,
}

// Load reads a show from a JSON file.
func Load(path string) (*Show, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open show: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses the JSON show format.
func Decode(r io.Reader) (*Show, error) {
	var w wireShow
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode show: %w", err)
	}

	items := make([]Item, 0, len(w.Playlist))
	for i, wi := range w.Playlist {
		switch wi.Type {
		case KindTrack:
			if wi.Track == "" {
				return nil, fmt.Errorf("playlist item %d: song without track", i)
			}
			items = append(items, Track{Ref: wi.Track, Commentary: wi.Commentary, Genre: wi.Genre})
		case KindAdBreak:
			items = append(items, AdBreak{Scripts: append([]string(nil), wi.Adverts...)})
		case KindJingle:
			items = append(items, Jingle{Script: wi.Script})
		case KindJoke:
			items = append(items, Joke{})
		default:
			return nil, fmt.Errorf("playlist item %d: unknown type %q", i, wi.Type)
		}
	}

	reactions := make(map[ReactionKind]string)
	for key, text := range w.Reactions {
		kind, ok := reactionKeys[key]
		if !ok {
			kind = ReactionKind(key)
		}
		reactions[kind] = text
	}

	s := New(w.Title, w.Intro, w.Outro, items, reactions)
	s.ArtworkRef = w.Art
	s.Sources = w.Sources
	s.Host = w.Host
	return s, nil
}
