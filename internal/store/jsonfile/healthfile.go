package jsonfile

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/hay-kot/tracksync/internal/core/health"
)

// HealthDoc is the shared multi-service health report document.
type HealthDoc struct {
	Services      map[string]health.Service `json:"services"`
	OverallStatus health.Status             `json:"overall_status"`
	LastUpdated   string                    `json:"last_updated"`
}

// HealthFile performs read-modify-write merges on the shared health
// document. An absent or malformed document starts from an empty
// structure, and entries belonging to other services are never destroyed.
type HealthFile struct {
	path string
	mu   sync.Mutex
}

// NewHealthFile creates a health document store at the given path.
func NewHealthFile(path string) *HealthFile {
	return &HealthFile{path: path}
}

// Merge upserts one service entry and recomputes the document's overall
// status as the worst of all entries.
func (f *HealthFile) Merge(name string, svc health.Service, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	if doc.Services == nil {
		doc.Services = map[string]health.Service{}
	}
	doc.Services[name] = svc

	statuses := make([]health.Status, 0, len(doc.Services))
	for _, s := range doc.Services {
		statuses = append(statuses, s.Status)
	}
	doc.OverallStatus = health.Worst(statuses...)
	doc.LastUpdated = now.Format(time.RFC3339)

	return writeJSON(f.path, doc)
}

// Load returns the current document, empty when absent or malformed.
func (f *HealthFile) Load() HealthDoc {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load()
}

func (f *HealthFile) load() HealthDoc {
	var doc HealthDoc

	data, err := os.ReadFile(f.path)
	if err != nil || len(data) == 0 {
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return HealthDoc{}
	}
	return doc
}

// MonitorEntry is one service's row in the monitor status document.
type MonitorEntry struct {
	Enabled   bool          `json:"enabled"`
	LastCheck string        `json:"last_check"`
	Status    health.Status `json:"status"`
	NextCheck string        `json:"next_check"`
}

// MonitorFile merges per-service monitor status entries into a shared JSON
// document with the same tolerance rules as HealthFile.
type MonitorFile struct {
	path string
	mu   sync.Mutex
}

// NewMonitorFile creates a monitor status store at the given path.
func NewMonitorFile(path string) *MonitorFile {
	return &MonitorFile{path: path}
}

// Merge upserts one service's monitor entry, preserving other entries.
func (f *MonitorFile) Merge(name string, entry MonitorEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := map[string]MonitorEntry{}
	if data, err := os.ReadFile(f.path); err == nil && len(data) > 0 {
		// Malformed content falls through to a fresh map.
		_ = json.Unmarshal(data, &entries)
	}
	entries[name] = entry

	return writeJSON(f.path, entries)
}
