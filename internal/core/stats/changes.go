package stats

import (
	"fmt"
	"math"
)

// DefaultChangeThreshold is the default completion-percentage delta that
// counts as a significant change.
const DefaultChangeThreshold = 5.0

// phase1Threshold is fixed and independent of the configurable change
// threshold; the two are deliberately not unified.
const phase1Threshold = 5.0

// Detector produces human-readable change descriptions between two
// snapshots.
type Detector struct {
	// Threshold is the minimum completion-percentage delta that fires a
	// significant-change description.
	Threshold float64
}

// NewDetector returns a Detector with the given significant-change
// threshold. A zero or negative threshold falls back to the default.
func NewDetector(threshold float64) Detector {
	if threshold <= 0 {
		threshold = DefaultChangeThreshold
	}
	return Detector{Threshold: threshold}
}

// Detect diffs the current snapshot against the previous one and returns an
// ordered sequence of change descriptions. With no previous snapshot a
// single initial-scan description is emitted and no diff rules apply. All
// diff rules fire independently in a fixed order.
func (d Detector) Detect(previous *Snapshot, current Snapshot) []string {
	if previous == nil {
		return []string{fmt.Sprintf(
			"initial documentation scan: %d tickets, %.1f%% complete",
			current.TotalTickets, current.CompletionPercentage,
		)}
	}

	var changes []string

	if diff := current.CompletionPercentage - previous.CompletionPercentage; math.Abs(diff) >= d.Threshold {
		changes = append(changes, fmt.Sprintf(
			"completion %s by %.1f%% (%.1f%% -> %.1f%%)",
			direction(diff), math.Abs(diff),
			previous.CompletionPercentage, current.CompletionPercentage,
		))
	}

	if n := current.CompletedTickets - previous.CompletedTickets; n > 0 {
		changes = append(changes, fmt.Sprintf("%d new tickets completed", n))
	}
	if n := current.InProgressTickets - previous.InProgressTickets; n > 0 {
		changes = append(changes, fmt.Sprintf("%d tickets moved to in progress", n))
	}
	if n := current.BlockedTickets - previous.BlockedTickets; n > 0 {
		changes = append(changes, fmt.Sprintf("%d tickets became blocked", n))
	}
	if n := current.CompletedStoryPoints - previous.CompletedStoryPoints; n > 0 {
		changes = append(changes, fmt.Sprintf("%d story points completed", n))
	}

	if diff := current.Phase1Completion - previous.Phase1Completion; math.Abs(diff) >= phase1Threshold {
		changes = append(changes, fmt.Sprintf(
			"phase 1 completion %s by %.1f%% (%.1f%% -> %.1f%%)",
			direction(diff), math.Abs(diff),
			previous.Phase1Completion, current.Phase1Completion,
		))
	}

	return changes
}

func direction(diff float64) string {
	if diff > 0 {
		return "increased"
	}
	return "decreased"
}
