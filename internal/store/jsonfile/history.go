// Package jsonfile provides JSON-file-backed persistence for snapshot
// history, the notification sentinel, and the shared health documents.
//
// All stores are single-writer: mutation is whole-document read-modify-write
// without file locking, which is safe only under the single-daemon
// assumption documented for the pipeline.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/hay-kot/tracksync/internal/core/stats"
)

// DefaultMaxEntries is the history retention bound.
const DefaultMaxEntries = 100

// HistoryEntry pairs a snapshot with the time it was taken.
type HistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Stats     stats.Snapshot `json:"stats"`
}

// HistoryStore persists successive snapshots to a JSON array on disk,
// most-recent-last, bounded to maxEntries. Corrupted or partially written
// storage degrades to an empty history so the pipeline can proceed on a
// fresh baseline.
type HistoryStore struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewHistoryStore creates a history store at the given path with the
// default retention bound.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path, maxEntries: DefaultMaxEntries}
}

// Append adds an entry and evicts the oldest entries once the bound is
// exceeded. Truncation is enforced on every write.
func (s *HistoryStore) Append(entry HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries = append(entries, entry)
	if len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}

	return writeJSON(s.path, entries)
}

// Latest returns the most recent entry, or false if the store is empty or
// unreadable.
func (s *HistoryStore) Latest() (HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	if len(entries) == 0 {
		return HistoryEntry{}, false
	}
	return entries[len(entries)-1], true
}

// List returns all stored entries, oldest first.
func (s *HistoryStore) List() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Len returns the number of stored entries.
func (s *HistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.load())
}

// Clear removes all history entries.
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(s.path, []HistoryEntry{})
}

// load reads the history file. Missing, empty, or corrupt files all
// degrade to no history.
func (s *HistoryStore) load() []HistoryEntry {
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return nil
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// writeJSON marshals v and writes it atomically, creating the parent
// directory if needed.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
