package diary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxEntries is how many entries a DJ's diary keeps.
const MaxEntries = 50

type Kind string

const (
	KindThought   Kind = "thought"
	KindMilestone Kind = "milestone"
)

type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Type      Kind      `json:"type"`
}

// Thinker writes the text of a post-show entry.
type Thinker interface {
	Think(ctx context.Context, dj string, tracks []string) (string, error)
}

// FileDiary stores one JSON file per DJ, newest entry first.
type FileDiary struct {
	dir     string
	thinker Thinker

	mu  sync.Mutex
	now func() time.Time
}

// NewFileDiary creates a diary rooted at dir. thinker may be nil.
func NewFileDiary(dir string, thinker Thinker) *FileDiary {
	return &FileDiary{dir: dir, thinker: thinker, now: time.Now}
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func (d *FileDiary) path(dj string) string {
	name := unsafeName.ReplaceAllString(strings.TrimSpace(dj), "_")
	if name == "" {
		name = "dj"
	}
	return filepath.Join(d.dir, name+".json")
}

// Entries returns a DJ's entries, newest first.
func (d *FileDiary) Entries(dj string) ([]Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read(dj)
}

func (d *FileDiary) read(dj string) ([]Entry, error) {
	data, err := os.ReadFile(d.path(dj))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read diary: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse diary: %w", err)
	}
	return entries, nil
}

// Add prepends an entry, dropping the oldest beyond MaxEntries.
func (d *FileDiary) Add(dj, content string, kind Kind) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := d.read(dj)
	if err != nil {
		return err
	}
	entries = append([]Entry{{Timestamp: d.now().UTC(), Content: content, Type: kind}}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("failed to create diary dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(d.path(dj), data, 0644)
}

// SaveSessionSummary writes the DJ's thought about the show that just ended.
func (d *FileDiary) SaveSessionSummary(ctx context.Context, dj string, tracks []string) error {
	var content string
	if d.thinker != nil {
		text, err := d.thinker.Think(ctx, dj, tracks)
		if err != nil {
			logrus.WithError(err).WithField("dj", dj).Warn("Diary thought failed, using template")
		}
		content = strings.TrimSpace(text)
	}
	if content == "" {
		content = summarize(tracks)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.Add(dj, content, KindThought)
}

func summarize(tracks []string) string {
	switch len(tracks) {
	case 0:
		return "Quiet show tonight. Not a single song made it to air."
	case 1:
		return fmt.Sprintf("Short one tonight. Just %s.", tracks[0])
	default:
		return fmt.Sprintf("Played %d songs tonight, from %s to %s.", len(tracks), tracks[0], tracks[len(tracks)-1])
	}
}
