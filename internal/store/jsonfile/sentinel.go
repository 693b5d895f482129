package jsonfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// Sentinel records the last notification send time in a flat file holding
// one RFC 3339 timestamp. It exists solely to enforce the notification
// cooldown across process restarts.
type Sentinel struct {
	path string
}

// NewSentinel creates a sentinel backed by the given file path.
func NewSentinel(path string) *Sentinel {
	return &Sentinel{path: path}
}

// Last returns the recorded send time, or false when none is recorded or
// the file is unreadable or malformed.
func (s *Sentinel) Last() (time.Time, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return time.Time{}, false
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Mark records t as the last send time.
func (s *Sentinel) Mark(t time.Time) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader([]byte(t.Format(time.RFC3339))))
}
