package jsonfile

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/hay-kot/tracksync/internal/core/stats"
)

// BaselineFile persists the single snapshot a comparison runs against.
// The notification check keeps its baseline here, separate from the sync
// history, so sync cycles recording snapshots do not absorb changes the
// notifier has not reported yet.
type BaselineFile struct {
	path string
	mu   sync.Mutex
}

type baselineDoc struct {
	Timestamp time.Time      `json:"timestamp"`
	Stats     stats.Snapshot `json:"stats"`
}

func NewBaselineFile(path string) *BaselineFile {
	return &BaselineFile{path: path}
}

// Load returns the stored snapshot, or false when none has been saved or
// the file is unreadable. Corruption degrades to no baseline.
func (b *BaselineFile) Load() (stats.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if err != nil || len(data) == 0 {
		return stats.Snapshot{}, false
	}

	var doc baselineDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return stats.Snapshot{}, false
	}
	return doc.Stats, true
}

// Save replaces the stored snapshot.
func (b *BaselineFile) Save(snap stats.Snapshot, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return writeJSON(b.path, baselineDoc{Timestamp: at, Stats: snap})
}
