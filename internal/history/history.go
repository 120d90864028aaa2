package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/promoload/promoload/internal/score"
)

// Entry is one saved run.
type Entry struct {
	ID      string        `json:"id"`
	SavedAt time.Time     `json:"saved_at"`
	Result  *score.Result `json:"result"`
}

// Store persists run entries as one JSON file each under a directory.
type Store struct {
	dir       string
	retention time.Duration
	now       func() time.Time // injectable for deterministic tests
}

// New creates a Store rooted at dir, creating it if needed. Entries
// older than retention are removed by Prune; a non-positive retention
// keeps everything.
func New(dir string, retention time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}
	return &Store{dir: dir, retention: retention, now: time.Now}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Put saves a run result under the given ID.
func (s *Store) Put(id string, res *score.Result) error {
	if id == "" {
		return fmt.Errorf("history: empty run id")
	}
	entry := Entry{ID: id, SavedAt: s.now().UTC(), Result: res}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("history: encode entry %s: %w", id, err)
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return fmt.Errorf("history: write entry %s: %w", id, err)
	}
	slog.Debug("history: saved run", "id", id, "url", res.URL)
	return nil
}

// Get loads one saved run by ID.
func (s *Store) Get(id string) (*Entry, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("history: read entry %s: %w", id, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("history: decode entry %s: %w", id, err)
	}
	return &entry, nil
}

// List returns all saved runs, newest first. Files that fail to decode
// are skipped with a warning so one corrupt entry cannot hide the rest.
func (s *Store) List() ([]*Entry, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("history: list entries: %w", err)
	}

	entries := make([]*Entry, 0, len(matches))
	for _, path := range matches {
		id := strings.TrimSuffix(filepath.Base(path), ".json")
		entry, err := s.Get(id)
		if err != nil {
			slog.Warn("history: skipping unreadable entry", "path", path, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})
	return entries, nil
}

// Prune removes entries older than the retention period and returns
// how many were deleted.
func (s *Store) Prune() (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	entries, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	for _, e := range entries {
		if e.SavedAt.After(cutoff) {
			continue
		}
		if err := os.Remove(s.path(e.ID)); err != nil {
			slog.Warn("history: prune failed", "id", e.ID, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("history: pruned old runs", "count", removed)
	}
	return removed, nil
}
