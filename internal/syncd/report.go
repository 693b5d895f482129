package syncd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hay-kot/tracksync/internal/core/backlog"
	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/core/stats"
	"github.com/natefinch/atomic"
)

const (
	reportPrefix     = "doc_sync_report_"
	reportTimeLayout = "20060102_150405"
)

// WriteLatestStats overwrites the machine-readable latest stats file.
func WriteLatestStats(path string, snap stats.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// WriteReport writes a timestamped markdown sync report into the logs
// directory and prunes old reports beyond the configured limit. The report
// carries the overall status plus per-section rollups and ticket lists
// grouped by status.
func WriteReport(cfg *config.Config, snap stats.Snapshot, tickets []backlog.Ticket, now time.Time) error {
	logsDir := cfg.LogsDir()
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Documentation Sync Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format(stats.TimeFormat))

	if fm, ok := readFrontmatter(cfg.BacklogFile()); ok {
		b.WriteString("## Project\n\n")
		if fm.Title != "" {
			fmt.Fprintf(&b, "- Title: %s\n", fm.Title)
		}
		if fm.Sprint != "" {
			fmt.Fprintf(&b, "- Sprint: %s\n", fm.Sprint)
		}
		if fm.Updated != "" {
			fmt.Fprintf(&b, "- Updated: %s\n", fm.Updated)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Status\n\n")
	fmt.Fprintf(&b, "- Total tickets: %d\n", snap.TotalTickets)
	fmt.Fprintf(&b, "- Completed: %d (%.1f%%)\n", snap.CompletedTickets, snap.CompletionPercentage)
	fmt.Fprintf(&b, "- In progress: %d\n", snap.InProgressTickets)
	fmt.Fprintf(&b, "- Pending: %d\n", snap.PendingTickets)
	fmt.Fprintf(&b, "- Blocked: %d\n", snap.BlockedTickets)
	fmt.Fprintf(&b, "- Story points: %d/%d (%.1f%%)\n",
		snap.CompletedStoryPoints, snap.TotalStoryPoints, snap.PointsPercentage())
	fmt.Fprintf(&b, "- Phase 1 completion: %.1f%%\n", snap.Phase1Completion)

	writeMilestones(&b, tickets)
	writeTicketGroups(&b, tickets)

	if len(snap.InconsistenciesFound) > 0 {
		fmt.Fprintf(&b, "\n## Inconsistencies (%d)\n\n", len(snap.InconsistenciesFound))
		for _, inc := range snap.InconsistenciesFound {
			fmt.Fprintf(&b, "- %s\n", inc)
		}
	}

	name := reportPrefix + now.Format(reportTimeLayout) + ".md"
	path := filepath.Join(logsDir, name)
	if err := atomic.WriteFile(path, strings.NewReader(b.String())); err != nil {
		return err
	}

	return pruneReports(logsDir, cfg.MaxReportFiles)
}

// writeMilestones appends a per-section progress rollup, in the order the
// sections appear in the backlog. Tickets outside any section are skipped.
func writeMilestones(b *strings.Builder, tickets []backlog.Ticket) {
	type rollup struct {
		total, completed int
		points, done     int
	}

	var order []string
	sections := map[string]*rollup{}
	for _, t := range tickets {
		if t.Section == "" {
			continue
		}
		r, ok := sections[t.Section]
		if !ok {
			r = &rollup{}
			sections[t.Section] = r
			order = append(order, t.Section)
		}
		r.total++
		r.points += t.StoryPoints
		if t.Completed() {
			r.completed++
			r.done += t.StoryPoints
		}
	}
	if len(order) == 0 {
		return
	}

	b.WriteString("\n## Milestones\n\n")
	for _, name := range order {
		r := sections[name]
		pct := 0.0
		if r.total > 0 {
			pct = float64(r.completed) / float64(r.total) * 100
		}
		fmt.Fprintf(b, "- %s: %d/%d tickets (%.1f%%), %d/%d points\n",
			name, r.completed, r.total, pct, r.done, r.points)
	}
}

// writeTicketGroups appends the completed, in progress, and blocked ticket
// lists. Pending tickets are the remainder and are not listed.
func writeTicketGroups(b *strings.Builder, tickets []backlog.Ticket) {
	groups := []struct {
		heading string
		status  backlog.Status
	}{
		{"Completed", backlog.StatusCompleted},
		{"In Progress", backlog.StatusInProgress},
		{"Blocked", backlog.StatusBlocked},
	}

	wroteHeading := false
	for _, g := range groups {
		var members []backlog.Ticket
		for _, t := range tickets {
			if t.Status == g.status {
				members = append(members, t)
			}
		}
		if len(members) == 0 {
			continue
		}

		if !wroteHeading {
			b.WriteString("\n## Tickets\n")
			wroteHeading = true
		}
		fmt.Fprintf(b, "\n### %s (%d)\n\n", g.heading, len(members))
		for _, t := range members {
			fmt.Fprintf(b, "- %s %s", t.ID, t.CleanTitle())
			if t.StoryPoints > 0 {
				fmt.Fprintf(b, " (%d pts)", t.StoryPoints)
			}
			if t.CompletionDate != "" {
				fmt.Fprintf(b, " (%s)", t.CompletionDate)
			}
			b.WriteString("\n")
		}
	}
}

// pruneReports deletes the oldest report files beyond the keep limit.
// Filenames embed the generation time, so lexical order is age order.
func pruneReports(logsDir string, keep int) error {
	if keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return err
	}

	var reports []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, reportPrefix) && strings.HasSuffix(name, ".md") {
			reports = append(reports, name)
		}
	}
	if len(reports) <= keep {
		return nil
	}

	sort.Strings(reports)
	for _, name := range reports[:len(reports)-keep] {
		if err := os.Remove(filepath.Join(logsDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func readFrontmatter(backlogPath string) (backlog.Frontmatter, bool) {
	data, err := os.ReadFile(backlogPath)
	if err != nil {
		return backlog.Frontmatter{}, false
	}
	fm := backlog.ParseFrontmatter(string(data))
	return fm, fm != (backlog.Frontmatter{})
}
