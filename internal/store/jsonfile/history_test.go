package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tracksync/internal/core/stats"
)

func entryAt(i int) HistoryEntry {
	return HistoryEntry{
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		Stats:     stats.Snapshot{TotalTickets: i},
	}
}

func TestHistoryAppendAndLatest(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))

	_, ok := store.Latest()
	assert.False(t, ok, "empty store has no latest entry")

	require.NoError(t, store.Append(entryAt(1)))
	require.NoError(t, store.Append(entryAt(2)))

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, 2, latest.Stats.TotalTickets, "latest must be the most recent append")

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Stats.TotalTickets, "entries are stored oldest first")
}

func TestHistoryBound(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))

	const n = DefaultMaxEntries + 5
	for i := 1; i <= n; i++ {
		require.NoError(t, store.Append(entryAt(i)))
	}

	list := store.List()
	require.Len(t, list, DefaultMaxEntries, "store must never exceed the bound")

	// Oldest retained entry is the (n-99)-th appended; newest is the n-th.
	assert.Equal(t, n-DefaultMaxEntries+1, list[0].Stats.TotalTickets)
	assert.Equal(t, n, list[len(list)-1].Stats.TotalTickets)
}

func TestHistoryCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewHistoryStore(path)

	_, ok := store.Latest()
	assert.False(t, ok, "corrupt storage degrades to no previous entry")
	assert.Empty(t, store.List())

	// A write over the corrupt file starts a fresh baseline.
	require.NoError(t, store.Append(entryAt(1)))
	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, 1, latest.Stats.TotalTickets)
}

func TestHistoryClear(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))

	require.NoError(t, store.Append(entryAt(1)))
	require.NoError(t, store.Clear())

	assert.Zero(t, store.Len())
}

func TestHistoryPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	require.NoError(t, NewHistoryStore(path).Append(entryAt(7)))

	latest, ok := NewHistoryStore(path).Latest()
	require.True(t, ok)
	assert.Equal(t, 7, latest.Stats.TotalTickets)
}

func TestHistoryCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "history.json")
	store := NewHistoryStore(path)

	require.NoError(t, store.Append(entryAt(1)))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestSentinel(t *testing.T) {
	s := NewSentinel(filepath.Join(t.TempDir(), "last_notification.txt"))

	_, ok := s.Last()
	assert.False(t, ok, "no sentinel recorded yet")

	ts := time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, s.Mark(ts))

	got, ok := s.Last()
	require.True(t, ok)
	assert.True(t, got.Equal(ts), fmt.Sprintf("Last() = %v, want %v", got, ts))
}

func TestSentinelMalformedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_notification.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a timestamp"), 0o644))

	_, ok := NewSentinel(path).Last()
	assert.False(t, ok, "malformed sentinel degrades to no record")
}
