package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/tracksync/internal/core/stats"
)

const maxInconsistencyLines = 3

// FormatMessage renders the plain-text notification body for a set of
// detected changes and the snapshot they came from.
func FormatMessage(changes []string, snap stats.Snapshot, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Documentation update - %s\n\n", now.Format(stats.TimeFormat))

	b.WriteString("Changes detected:\n")
	for _, change := range changes {
		fmt.Fprintf(&b, "  - %s\n", change)
	}

	b.WriteString("\nCurrent status:\n")
	fmt.Fprintf(&b, "  Tickets: %d/%d completed (%.1f%%)\n",
		snap.CompletedTickets, snap.TotalTickets, snap.CompletionPercentage)
	fmt.Fprintf(&b, "  Story points: %d/%d completed (%.1f%%)\n",
		snap.CompletedStoryPoints, snap.TotalStoryPoints, snap.PointsPercentage())
	fmt.Fprintf(&b, "  Phase 1: %.1f%% complete\n", snap.Phase1Completion)

	if len(snap.InconsistenciesFound) > 0 {
		fmt.Fprintf(&b, "\nInconsistencies (%d):\n", len(snap.InconsistenciesFound))
		shown := snap.InconsistenciesFound
		if len(shown) > maxInconsistencyLines {
			shown = shown[:maxInconsistencyLines]
		}
		for _, inc := range shown {
			fmt.Fprintf(&b, "  - %s\n", inc)
		}
		if rest := len(snap.InconsistenciesFound) - maxInconsistencyLines; rest > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", rest)
		}
	}

	return b.String()
}
