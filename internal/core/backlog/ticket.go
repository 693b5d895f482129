// Package backlog defines the ticket domain model and the backlog
// document parser.
package backlog

import "strings"

// titleMarkers are the status annotations stripped from titles for
// display. Longer forms come first so the emoji is removed with its word.
var titleMarkers = []string{
	"✅ COMPLETED", "🔄 IN PROGRESS", "🚫 BLOCKED",
	"✅", "🔄", "🚫", "COMPLETED", "IN PROGRESS", "BLOCKED",
}

// Status represents the lifecycle state of a ticket.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Ticket represents a single unit of tracked work parsed from the backlog.
// Tickets are not persisted individually; they live for one parse cycle.
type Ticket struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Status         Status `json:"status"`
	StoryPoints    int    `json:"story_points,omitempty"`
	Phase          string `json:"phase,omitempty"`
	Section        string `json:"section,omitempty"`
	CompletionDate string `json:"completion_date,omitempty"`
	Line           int    `json:"line"`
}

// Completed reports whether the ticket is in the completed state.
func (t *Ticket) Completed() bool {
	return t.Status == StatusCompleted
}

// CleanTitle returns the title with status markers, story point, and
// completion date annotations removed. Parse keeps Title as written so the
// raw line can be reconstructed; display surfaces use this instead.
func (t *Ticket) CleanTitle() string {
	s := storyPointsRe.ReplaceAllString(t.Title, "")
	s = completionDateRe.ReplaceAllString(s, "")
	for _, m := range titleMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.Join(strings.Fields(s), " ")
}

// Prefix returns the letter prefix of the ticket ID (the part before the
// first hyphen), or the whole ID if no hyphen is present.
func (t *Ticket) Prefix() string {
	for i := 0; i < len(t.ID); i++ {
		if t.ID[i] == '-' {
			return t.ID[:i]
		}
	}
	return t.ID
}
