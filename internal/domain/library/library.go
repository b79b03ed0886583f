package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"airadio/internal/radio/audio"

	"github.com/sirupsen/logrus"
)

// Track is one audio file known to the session.
type Track struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// TrackID derives a stable id from file name, size and modification time.
func TrackID(name string, size int64, modTime time.Time) string {
	return fmt.Sprintf("song-%s-%d-%d", name, size, modTime.UnixMilli())
}

// SessionStore holds the audio files attached to the current session. Nothing
// is persisted; a track not attached this session resolves as unavailable.
type SessionStore struct {
	mu     sync.RWMutex
	tracks map[string]Track
}

func NewSessionStore() *SessionStore {
	return &SessionStore{tracks: make(map[string]Track)}
}

func (s *SessionStore) Add(id string, t Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[id] = t
}

func (s *SessionStore) Get(id string) (Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tracks[id]
	return t, ok
}

func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracks, id)
}

func (s *SessionStore) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = make(map[string]Track)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Tracks lists distinct tracks sorted by name.
func (s *SessionStore) Tracks() []Track {
	s.mu.RLock()
	seen := make(map[string]bool)
	var out []Track
	for _, t := range s.tracks {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve looks ref up locally. A missing entry, or one whose file has gone
// away, is unavailable rather than an error.
func (s *SessionStore) Resolve(ref string) (audio.Resource, bool) {
	t, ok := s.Get(ref)
	if !ok {
		return nil, false
	}
	if _, err := os.Stat(t.Path); err != nil {
		logrus.WithError(err).WithField("track", ref).Debug("Track file missing")
		return nil, false
	}
	return audio.NewFileResource(t.Path), true
}

// ScanDir registers every playable file under dir, keyed both by TrackID
// and by file name without extension. It returns the number of files found.
func (s *SessionStore) ScanDir(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !audio.Supported(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		t := Track{
			Name:    d.Name(),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		t.ID = TrackID(t.Name, t.Size, t.ModTime)
		s.Add(t.ID, t)
		s.Add(strings.TrimSuffix(t.Name, filepath.Ext(t.Name)), t)
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	logrus.WithFields(logrus.Fields{"dir": dir, "tracks": count}).Info("Music library scanned")
	return count, nil
}
