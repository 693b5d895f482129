package jsonfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tracksync/internal/core/health"
)

func TestHealthFileMergePreservesOtherServices(t *testing.T) {
	f := NewHealthFile(filepath.Join(t.TempDir(), "health-report.json"))
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, f.Merge("memory_service", health.Service{
		Service: "memory_service", Status: health.StatusHealthy,
	}, now))
	require.NoError(t, f.Merge("documentation_sync", health.Service{
		Service: "documentation_sync", Status: health.StatusWarning,
	}, now.Add(time.Minute)))

	doc := f.Load()
	require.Len(t, doc.Services, 2, "merging must not destroy unrelated entries")
	assert.Equal(t, health.StatusHealthy, doc.Services["memory_service"].Status)
	assert.Equal(t, health.StatusWarning, doc.Services["documentation_sync"].Status)
}

func TestHealthFileOverallStatusIsWorst(t *testing.T) {
	f := NewHealthFile(filepath.Join(t.TempDir(), "health-report.json"))
	now := time.Now()

	require.NoError(t, f.Merge("a", health.Service{Status: health.StatusHealthy}, now))
	assert.Equal(t, health.StatusHealthy, f.Load().OverallStatus)

	require.NoError(t, f.Merge("b", health.Service{Status: health.StatusError}, now))
	assert.Equal(t, health.StatusError, f.Load().OverallStatus)

	// Recovery of the failing service brings the overall status back.
	require.NoError(t, f.Merge("b", health.Service{Status: health.StatusHealthy}, now))
	assert.Equal(t, health.StatusHealthy, f.Load().OverallStatus)
}

func TestHealthFileMalformedDocumentStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health-report.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	f := NewHealthFile(path)
	require.NoError(t, f.Merge("documentation_sync", health.Service{Status: health.StatusHealthy}, time.Now()))

	doc := f.Load()
	require.Len(t, doc.Services, 1)
	assert.Equal(t, health.StatusHealthy, doc.OverallStatus)
}

func TestHealthFileLastUpdated(t *testing.T) {
	f := NewHealthFile(filepath.Join(t.TempDir(), "health-report.json"))
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, f.Merge("a", health.Service{Status: health.StatusHealthy}, now))
	assert.Equal(t, now.Format(time.RFC3339), f.Load().LastUpdated)
}

func TestMonitorFileMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor-status.json")
	f := NewMonitorFile(path)

	require.NoError(t, f.Merge("other_service", MonitorEntry{Enabled: true, Status: health.StatusHealthy}))
	require.NoError(t, f.Merge("documentation_sync", MonitorEntry{
		Enabled: true, Status: health.StatusWarning, NextCheck: "continuous",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "other_service")
	assert.Contains(t, string(data), "documentation_sync")
	assert.Contains(t, string(data), "continuous")
}
