package syncd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/tracksync/internal/core/backlog"
	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/core/stats"
	"github.com/natefinch/atomic"
)

// UpdateTicketingDocs refreshes the overview block and per-ticket status
// markers in each secondary ticketing document so they track the backlog.
// Documents are rewritten only when their content actually changes.
func UpdateTicketingDocs(cfg *config.Config, tickets []backlog.Ticket, snap stats.Snapshot, now time.Time) error {
	byID := make(map[string]backlog.Ticket, len(tickets))
	for _, t := range tickets {
		byID[t.ID] = t
	}

	fsys := os.DirFS(cfg.Root)
	seen := map[string]struct{}{}
	var docs []string
	for _, pattern := range cfg.SecondaryDocs {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				docs = append(docs, m)
			}
		}
	}
	sort.Strings(docs)

	for _, rel := range docs {
		path := filepath.Join(cfg.Root, filepath.FromSlash(rel))
		if err := updateDoc(path, byID, snap, now); err != nil {
			return fmt.Errorf("update %s: %w", rel, err)
		}
	}
	return nil
}

func updateDoc(path string, byID map[string]backlog.Ticket, snap stats.Snapshot, now time.Time) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	original := string(data)
	lines := strings.Split(original, "\n")

	lines = spliceOverview(lines, snap, now)
	for i, line := range lines {
		lines[i] = refreshStatusMarker(line, byID)
	}

	updated := strings.Join(lines, "\n")
	if updated == original {
		return nil
	}
	return atomic.WriteFile(path, strings.NewReader(updated))
}

// spliceOverview replaces the body of the "## Overview" section, up to the
// next "## " header, with current statistics. Documents without an
// overview section are left structurally untouched.
func spliceOverview(lines []string, snap stats.Snapshot, now time.Time) []string {
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "## Overview" {
			start = i
			break
		}
	}
	if start < 0 {
		return lines
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}

	body := []string{
		"## Overview",
		"",
		fmt.Sprintf("Last synchronized: %s", now.Format(stats.TimeFormat)),
		"",
		fmt.Sprintf("- Total tickets: %d", snap.TotalTickets),
		fmt.Sprintf("- Completed: %d (%.1f%%)", snap.CompletedTickets, snap.CompletionPercentage),
		fmt.Sprintf("- In progress: %d", snap.InProgressTickets),
		fmt.Sprintf("- Blocked: %d", snap.BlockedTickets),
		fmt.Sprintf("- Story points: %d/%d", snap.CompletedStoryPoints, snap.TotalStoryPoints),
		"",
	}

	result := make([]string, 0, len(lines)-(end-start)+len(body))
	result = append(result, lines[:start]...)
	result = append(result, body...)
	result = append(result, lines[end:]...)
	return result
}

// refreshStatusMarker rewrites the status marker on a line that mentions a
// known ticket ID so it reflects the backlog status. Lines mentioning no
// known ticket, or more than one, are left alone.
func refreshStatusMarker(line string, byID map[string]backlog.Ticket) string {
	var found *backlog.Ticket
	for id := range byID {
		if strings.Contains(line, "**"+id+"**") {
			if found != nil {
				return line
			}
			t := byID[id]
			found = &t
		}
	}
	if found == nil {
		return line
	}

	stripped := stripStatusMarkers(line)
	marker := statusMarker(found.Status)
	if marker == "" {
		return stripped
	}
	return strings.TrimRight(stripped, " ") + " " + marker
}

var statusMarkers = []string{"✅ COMPLETED", "🔄 IN PROGRESS", "🚫 BLOCKED", "✅", "🔄", "🚫", "COMPLETED", "IN PROGRESS", "BLOCKED", "PENDING"}

func stripStatusMarkers(line string) string {
	for {
		trimmed := strings.TrimRight(line, " ")
		matched := false
		for _, m := range statusMarkers {
			if strings.HasSuffix(trimmed, m) {
				line = strings.TrimRight(strings.TrimSuffix(trimmed, m), " ")
				matched = true
				break
			}
		}
		if !matched {
			return strings.TrimRight(line, " ")
		}
	}
}

func statusMarker(s backlog.Status) string {
	switch s {
	case backlog.StatusCompleted:
		return "✅ COMPLETED"
	case backlog.StatusInProgress:
		return "🔄 IN PROGRESS"
	case backlog.StatusBlocked:
		return "🚫 BLOCKED"
	default:
		return ""
	}
}
