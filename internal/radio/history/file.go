package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps the whole history in one JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (f *FileStore) Record(ctx context.Context, ref string, a Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := f.read()
	if err != nil {
		return err
	}
	e := entries[ref]
	e.apply(a, f.now().UTC())
	entries[ref] = e
	return f.write(entries)
}

func (f *FileStore) Stats(ctx context.Context) (map[string]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FileStore) read() (map[string]Entry, error) {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", f.path, err)
	}
	return entries, nil
}

func (f *FileStore) write(entries map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return os.Rename(tmp, f.path)
}
