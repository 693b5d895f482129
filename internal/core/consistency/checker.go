// Package consistency cross-validates backlog tickets against secondary
// ticketing documents.
package consistency

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hay-kot/tracksync/internal/core/backlog"
)

// Checker compares the parsed ticket set against secondary documents
// resolved from glob patterns. Secondary documents are loosely structured
// prose, so matching degrades to substring heuristics. The checker never
// fails hard: a missing or unreadable document becomes an inconsistency
// entry, not an error.
type Checker struct {
	// Root is the directory glob patterns are resolved against.
	Root string
	// Patterns are doublestar glob patterns relative to Root.
	Patterns []string
}

// New returns a Checker for the given root directory and glob patterns.
func New(root string, patterns []string) *Checker {
	return &Checker{Root: root, Patterns: patterns}
}

// Check returns human-readable inconsistency descriptions. An empty result
// means the documents agree with the backlog.
func (c *Checker) Check(tickets []backlog.Ticket) []string {
	docs := c.resolveDocs()
	if len(docs) == 0 {
		return []string{fmt.Sprintf(
			"no secondary ticketing documents found matching %s",
			strings.Join(c.Patterns, ", "),
		)}
	}

	var inconsistencies []string
	for _, doc := range docs {
		inconsistencies = append(inconsistencies, c.checkDoc(doc, tickets)...)
	}
	return inconsistencies
}

// resolveDocs expands the glob patterns into a sorted, de-duplicated list
// of document paths relative to Root.
func (c *Checker) resolveDocs() []string {
	seen := map[string]bool{}
	var docs []string

	for _, pattern := range c.Patterns {
		matches, err := doublestar.Glob(os.DirFS(c.Root), pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				docs = append(docs, m)
			}
		}
	}

	sort.Strings(docs)
	return docs
}

// checkDoc scans a single document for every ticket's status line and
// reports disagreements with the backlog.
func (c *Checker) checkDoc(rel string, tickets []backlog.Ticket) []string {
	f, err := os.Open(filepath.Join(c.Root, rel))
	if err != nil {
		return []string{fmt.Sprintf("secondary document %s is unreadable: %v", rel, err)}
	}
	defer func() { _ = f.Close() }()

	// Index document lines per ticket ID before comparing so each ticket
	// is judged against every line that mentions it.
	mentions := map[string][]string{}
	wanted := map[string]bool{}
	for i := range tickets {
		wanted[tickets[i].ID] = true
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for id := range wanted {
			if strings.Contains(line, "**"+id+"**") {
				mentions[id] = append(mentions[id], line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return []string{fmt.Sprintf("secondary document %s is unreadable: %v", rel, err)}
	}

	var out []string
	for i := range tickets {
		t := &tickets[i]
		for _, line := range mentions[t.ID] {
			docCompleted := lineShowsCompleted(line)

			// A completed ticket must carry a completed marker wherever
			// it is mentioned. The absence of any marker counts as stale.
			switch {
			case t.Status == backlog.StatusCompleted && !docCompleted:
				out = append(out, fmt.Sprintf(
					"%s: completed in backlog but not marked completed in %s", t.ID, rel))
			case t.Status == backlog.StatusPending && docCompleted:
				out = append(out, fmt.Sprintf(
					"%s: backlog shows pending but %s shows completed", t.ID, rel))
			}
		}
	}
	return out
}

func lineShowsCompleted(line string) bool {
	return strings.Contains(line, "✅") ||
		strings.Contains(strings.ToUpper(line), "COMPLETED")
}
