package backlog

import (
	"bufio"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds metadata parsed from the backlog's YAML front matter.
// All fields are best-effort: missing or malformed front matter produces
// zero values.
type Frontmatter struct {
	Title   string `yaml:"title"`
	Sprint  string `yaml:"sprint"`
	Updated string `yaml:"updated"`
}

// ParseFrontmatter extracts YAML front matter from document content.
// Front matter must be delimited by "---" on its own line at the start of
// the file.
func ParseFrontmatter(content string) Frontmatter {
	scanner := bufio.NewScanner(strings.NewReader(content))

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return Frontmatter{}
	}

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			break
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return Frontmatter{}
	}

	var fm Frontmatter
	_ = yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &fm)

	return fm
}
