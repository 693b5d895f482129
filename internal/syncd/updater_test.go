package syncd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/tracksync/internal/core/backlog"
	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/core/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpliceOverview(t *testing.T) {
	doc := []string{
		"# Ticketing System",
		"",
		"## Overview",
		"",
		"Stale content.",
		"",
		"## Tickets",
		"",
		"- **[MEM-001]** Something",
	}

	snap := stats.Snapshot{
		TotalTickets:         4,
		CompletedTickets:     2,
		CompletionPercentage: 50,
		InProgressTickets:    1,
		TotalStoryPoints:     10,
		CompletedStoryPoints: 5,
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	result := spliceOverview(doc, snap, now)
	joined := joinLines(result)

	assert.Contains(t, joined, "Last synchronized: 2025-06-01 12:00:00")
	assert.Contains(t, joined, "- Total tickets: 4")
	assert.Contains(t, joined, "- Completed: 2 (50.0%)")
	assert.NotContains(t, joined, "Stale content.")
	assert.Contains(t, joined, "## Tickets", "following sections must survive")
	assert.Contains(t, joined, "- **[MEM-001]** Something")
}

func TestSpliceOverviewNoSection(t *testing.T) {
	doc := []string{"# Plain doc", "", "No overview here."}
	result := spliceOverview(doc, stats.Snapshot{}, time.Now())
	assert.Equal(t, doc, result)
}

func TestRefreshStatusMarker(t *testing.T) {
	byID := map[string]backlog.Ticket{
		"MEM-001": {ID: "MEM-001", Status: backlog.StatusCompleted},
		"MEM-002": {ID: "MEM-002", Status: backlog.StatusInProgress},
		"MEM-003": {ID: "MEM-003", Status: backlog.StatusBlocked},
		"MEM-004": {ID: "MEM-004", Status: backlog.StatusPending},
	}

	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "adds completed marker",
			line: "- **[MEM-001]** Memory schema",
			want: "- **[MEM-001]** Memory schema ✅ COMPLETED",
		},
		{
			name: "replaces stale marker",
			line: "- **[MEM-002]** Memory writes ✅ COMPLETED",
			want: "- **[MEM-002]** Memory writes 🔄 IN PROGRESS",
		},
		{
			name: "blocked marker",
			line: "- **[MEM-003]** Old task 🔄 IN PROGRESS",
			want: "- **[MEM-003]** Old task 🚫 BLOCKED",
		},
		{
			name: "pending strips markers",
			line: "- **[MEM-004]** Not started ✅ COMPLETED",
			want: "- **[MEM-004]** Not started",
		},
		{
			name: "unknown ticket untouched",
			line: "- **[OTH-001]** Someone else's work 🔄",
			want: "- **[OTH-001]** Someone else's work 🔄",
		},
		{
			name: "multiple ids untouched",
			line: "See **[MEM-001]** and **[MEM-002]** for details",
			want: "See **[MEM-001]** and **[MEM-002]** for details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, refreshStatusMarker(tt.line, byID))
		})
	}
}

func TestUpdateTicketingDocs(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default(root)
	cfg.SecondaryDocs = []string{"docs/TICKETING_SYSTEM.md"}

	docPath := filepath.Join(root, "docs", "TICKETING_SYSTEM.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(docPath), 0o755))

	content := `# Ticketing System

## Overview

Old stats.

## Tickets

- **[MEM-001]** Memory schema
- **[MEM-002]** Memory writes 🔄 IN PROGRESS
`
	require.NoError(t, os.WriteFile(docPath, []byte(content), 0o644))

	tickets := []backlog.Ticket{
		{ID: "MEM-001", Status: backlog.StatusCompleted},
		{ID: "MEM-002", Status: backlog.StatusCompleted},
	}
	snap := stats.Snapshot{TotalTickets: 2, CompletedTickets: 2, CompletionPercentage: 100}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, UpdateTicketingDocs(cfg, tickets, snap, now))

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Last synchronized: 2025-06-01 12:00:00")
	assert.Contains(t, text, "- **[MEM-001]** Memory schema ✅ COMPLETED")
	assert.Contains(t, text, "- **[MEM-002]** Memory writes ✅ COMPLETED")
	assert.NotContains(t, text, "Old stats.")
	assert.NotContains(t, text, "IN PROGRESS")
}

func TestUpdateTicketingDocsNoRewriteWhenUnchanged(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default(root)
	cfg.SecondaryDocs = []string{"docs/*.md"}

	docPath := filepath.Join(root, "docs", "notes.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(docPath), 0o755))
	require.NoError(t, os.WriteFile(docPath, []byte("# Notes\n\nNothing relevant.\n"), 0o644))

	before, err := os.Stat(docPath)
	require.NoError(t, err)

	require.NoError(t, UpdateTicketingDocs(cfg, nil, stats.Snapshot{}, time.Now().Add(time.Hour)))

	after, err := os.Stat(docPath)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "unchanged docs must not be rewritten")
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
