// Package stats computes point-in-time statistics over parsed tickets and
// detects significant changes between successive snapshots.
package stats

import (
	"time"

	"github.com/hay-kot/tracksync/internal/core/backlog"
)

// TimeFormat is the timestamp layout used in snapshots and reports.
const TimeFormat = "2006-01-02 15:04:05"

// Snapshot is a point-in-time aggregate summary of all tickets.
// All derived percentages are recomputed from counts on every aggregation
// pass, never mutated independently.
type Snapshot struct {
	TotalTickets         int      `json:"total_tickets"`
	CompletedTickets     int      `json:"completed_tickets"`
	InProgressTickets    int      `json:"in_progress_tickets"`
	PendingTickets       int      `json:"pending_tickets"`
	BlockedTickets       int      `json:"blocked_tickets"`
	CompletionPercentage float64  `json:"completion_percentage"`
	TotalStoryPoints     int      `json:"total_story_points"`
	CompletedStoryPoints int      `json:"completed_story_points"`
	Phase1Completion     float64  `json:"phase_1_completion"`
	InconsistenciesFound []string `json:"inconsistencies_found"`
	LastUpdate           string   `json:"last_update"`
}

// PointsPercentage returns completed story points as a percentage of total,
// 0.0 when no points are tracked.
func (s *Snapshot) PointsPercentage() float64 {
	return percentage(s.CompletedStoryPoints, s.TotalStoryPoints)
}

// Aggregate reduces a ticket sequence into one Snapshot stamped with now.
func Aggregate(tickets []backlog.Ticket, now time.Time) Snapshot {
	snap := Snapshot{
		TotalTickets: len(tickets),
		LastUpdate:   now.Format(TimeFormat),
	}

	var phase1Total, phase1Completed int

	for i := range tickets {
		t := &tickets[i]

		switch t.Status {
		case backlog.StatusCompleted:
			snap.CompletedTickets++
		case backlog.StatusInProgress:
			snap.InProgressTickets++
		case backlog.StatusBlocked:
			snap.BlockedTickets++
		default:
			snap.PendingTickets++
		}

		snap.TotalStoryPoints += t.StoryPoints
		if t.Completed() {
			snap.CompletedStoryPoints += t.StoryPoints
		}

		if t.Phase == "1" {
			phase1Total++
			if t.Completed() {
				phase1Completed++
			}
		}
	}

	snap.CompletionPercentage = percentage(snap.CompletedTickets, snap.TotalTickets)
	snap.Phase1Completion = percentage(phase1Completed, phase1Total)

	return snap
}

// percentage guards the divide-by-zero case to 0.0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100
}
