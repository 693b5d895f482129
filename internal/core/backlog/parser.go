package backlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ticketLineRe matches the checkbox-and-bracketed-id ticket convention:
	//   - [x] **[M01-041]** Implement documentation sync
	ticketLineRe = regexp.MustCompile(`^- \[([x ])\] \*\*\[([A-Z][A-Z0-9]*-\d+)\]\*\* (.+)$`)

	sectionRe        = regexp.MustCompile(`^###\s+(.+?)\s*$`)
	completionDateRe = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2})\)`)
	storyPointsRe    = regexp.MustCompile(`\((\d+) pts\)`)
)

// ParseOptions controls ticket parsing.
type ParseOptions struct {
	// Phase1Prefixes lists ticket ID prefixes that belong to phase 1.
	// Tickets with a matching prefix get Phase set to "1".
	Phase1Prefixes []string
}

// Parse reads a backlog document and returns all tickets in document order.
// Malformed lines are skipped rather than failing the parse, and duplicate
// ticket IDs are kept as-is.
func Parse(r io.Reader, opts ParseOptions) ([]Ticket, error) {
	var (
		tickets []Ticket
		section string
		lineNum int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}

		m := ticketLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ticket := Ticket{
			ID:      m[2],
			Title:   strings.TrimSpace(m[3]),
			Status:  statusFromLine(m[1], line),
			Section: section,
			Line:    lineNum,
		}

		if dm := completionDateRe.FindStringSubmatch(line); dm != nil {
			ticket.CompletionDate = dm[1]
		}
		if pm := storyPointsRe.FindStringSubmatch(line); pm != nil {
			// Regex guarantees digits; errors cannot occur here.
			ticket.StoryPoints, _ = strconv.Atoi(pm[1])
		}
		for _, prefix := range opts.Phase1Prefixes {
			if ticket.Prefix() == prefix {
				ticket.Phase = "1"
				break
			}
		}

		tickets = append(tickets, ticket)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan backlog: %w", err)
	}

	return tickets, nil
}

// ParseFile parses the backlog document at path. An unreadable file is an
// explicit error, never an empty result.
func ParseFile(path string, opts ParseOptions) ([]Ticket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backlog: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f, opts)
}

// statusFromLine resolves a ticket's status from its checkbox mark plus any
// additional status markers present on the line. Later markers override
// earlier ones so a line carrying both completed and blocked markers ends
// up blocked.
func statusFromLine(checkbox, line string) Status {
	status := StatusPending
	if checkbox == "x" {
		status = StatusCompleted
	}

	upper := strings.ToUpper(line)

	if strings.Contains(line, "✅") || strings.Contains(upper, "COMPLETED") {
		status = StatusCompleted
	}
	if strings.Contains(line, "🔄") || strings.Contains(upper, "IN PROGRESS") {
		status = StatusInProgress
	}
	if strings.Contains(upper, "PENDING") {
		status = StatusPending
	}
	if strings.Contains(line, "🚫") || strings.Contains(upper, "BLOCKED") {
		status = StatusBlocked
	}

	return status
}
