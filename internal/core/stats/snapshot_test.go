package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/tracksync/internal/core/backlog"
)

func tickets(statuses ...backlog.Status) []backlog.Ticket {
	out := make([]backlog.Ticket, len(statuses))
	for i, s := range statuses {
		out[i] = backlog.Ticket{ID: "M01-001", Status: s}
	}
	return out
}

func TestAggregateCounts(t *testing.T) {
	in := tickets(
		backlog.StatusCompleted, backlog.StatusCompleted, backlog.StatusCompleted,
		backlog.StatusCompleted, backlog.StatusCompleted, backlog.StatusCompleted,
		backlog.StatusInProgress, backlog.StatusInProgress,
		backlog.StatusPending,
		backlog.StatusBlocked,
	)

	snap := Aggregate(in, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

	if snap.TotalTickets != 10 {
		t.Errorf("TotalTickets = %d, want 10", snap.TotalTickets)
	}
	sum := snap.CompletedTickets + snap.InProgressTickets + snap.PendingTickets + snap.BlockedTickets
	if sum != snap.TotalTickets {
		t.Errorf("status counts sum to %d, want %d", sum, snap.TotalTickets)
	}
	if snap.CompletionPercentage != 60.0 {
		t.Errorf("CompletionPercentage = %v, want 60.0", snap.CompletionPercentage)
	}
	if snap.LastUpdate != "2025-07-01 12:00:00" {
		t.Errorf("LastUpdate = %q, want formatted timestamp", snap.LastUpdate)
	}
}

func TestAggregateEmpty(t *testing.T) {
	snap := Aggregate(nil, time.Now())

	if snap.TotalTickets != 0 {
		t.Errorf("TotalTickets = %d, want 0", snap.TotalTickets)
	}
	if snap.CompletionPercentage != 0.0 {
		t.Errorf("CompletionPercentage = %v, want 0.0", snap.CompletionPercentage)
	}
	if snap.Phase1Completion != 0.0 {
		t.Errorf("Phase1Completion = %v, want 0.0", snap.Phase1Completion)
	}
}

func TestAggregateStoryPoints(t *testing.T) {
	in := []backlog.Ticket{
		{ID: "MEM-001", Status: backlog.StatusCompleted, StoryPoints: 8},
		{ID: "MEM-002", Status: backlog.StatusPending, StoryPoints: 5},
		{ID: "M01-003", Status: backlog.StatusCompleted},
	}

	snap := Aggregate(in, time.Now())

	if snap.TotalStoryPoints != 13 {
		t.Errorf("TotalStoryPoints = %d, want 13", snap.TotalStoryPoints)
	}
	if snap.CompletedStoryPoints != 8 {
		t.Errorf("CompletedStoryPoints = %d, want 8", snap.CompletedStoryPoints)
	}
	if snap.CompletedStoryPoints > snap.TotalStoryPoints {
		t.Error("completed points exceed total points")
	}
}

func TestAggregatePhase1(t *testing.T) {
	t.Run("subset only", func(t *testing.T) {
		in := []backlog.Ticket{
			{ID: "MEM-001", Status: backlog.StatusCompleted, Phase: "1"},
			{ID: "LGR-001", Status: backlog.StatusPending, Phase: "1"},
			{ID: "M01-001", Status: backlog.StatusPending},
			{ID: "M01-002", Status: backlog.StatusPending},
		}

		snap := Aggregate(in, time.Now())
		if snap.Phase1Completion != 50.0 {
			t.Errorf("Phase1Completion = %v, want 50.0", snap.Phase1Completion)
		}
	})

	t.Run("no phase 1 tickets", func(t *testing.T) {
		in := []backlog.Ticket{{ID: "M01-001", Status: backlog.StatusCompleted}}

		snap := Aggregate(in, time.Now())
		if snap.Phase1Completion != 0.0 {
			t.Errorf("Phase1Completion = %v, want 0.0", snap.Phase1Completion)
		}
	})
}

func TestPointsPercentage(t *testing.T) {
	snap := Snapshot{TotalStoryPoints: 0, CompletedStoryPoints: 0}
	if got := snap.PointsPercentage(); got != 0.0 {
		t.Errorf("PointsPercentage() with zero totals = %v, want 0.0", got)
	}

	snap = Snapshot{TotalStoryPoints: 20, CompletedStoryPoints: 5}
	if got := snap.PointsPercentage(); got != 25.0 {
		t.Errorf("PointsPercentage() = %v, want 25.0", got)
	}
}

func TestCompletionPercentageBounds(t *testing.T) {
	for _, in := range [][]backlog.Ticket{
		nil,
		tickets(backlog.StatusCompleted),
		tickets(backlog.StatusPending),
		tickets(backlog.StatusCompleted, backlog.StatusPending, backlog.StatusBlocked),
	} {
		snap := Aggregate(in, time.Now())
		if snap.CompletionPercentage < 0.0 || snap.CompletionPercentage > 100.0 {
			t.Errorf("CompletionPercentage = %v out of [0,100] for %d tickets",
				snap.CompletionPercentage, len(in))
		}
	}
}

func TestTicketPrefix(t *testing.T) {
	for id, want := range map[string]string{
		"MEM-001":  "MEM",
		"M01-041":  "M01",
		"NOHYPHEN": "NOHYPHEN",
	} {
		tk := backlog.Ticket{ID: id}
		if got := tk.Prefix(); got != want {
			t.Errorf("Prefix(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestSnapshotTimestampFormat(t *testing.T) {
	snap := Aggregate(nil, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if !strings.HasPrefix(snap.LastUpdate, "2025-01-02") {
		t.Errorf("LastUpdate = %q, want date-first layout", snap.LastUpdate)
	}
}
