package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/tracksync/internal/core/backlog"
	"github.com/hay-kot/tracksync/internal/core/config"
)

// BacklogCheck verifies the primary backlog document exists and parses.
type BacklogCheck struct {
	cfg *config.Config
}

func NewBacklogCheck(cfg *config.Config) *BacklogCheck {
	return &BacklogCheck{cfg: cfg}
}

func (c *BacklogCheck) Name() string {
	return "Backlog"
}

func (c *BacklogCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	path := c.cfg.BacklogFile()
	info, err := os.Stat(path)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "backlog file",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s not found", path),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "backlog file",
		Status: StatusPass,
		Detail: path,
	})

	tickets, err := backlog.ParseFile(path, backlog.ParseOptions{Phase1Prefixes: c.cfg.Phase1Prefixes})
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "backlog parse",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if len(tickets) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "backlog parse",
			Status: StatusWarn,
			Detail: fmt.Sprintf("no tickets found in %d bytes", info.Size()),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "backlog parse",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d tickets", len(tickets)),
		})
	}

	return result
}

// ConfigCheck validates the active configuration.
type ConfigCheck struct {
	cfg *config.Config
}

func NewConfigCheck(cfg *config.Config) *ConfigCheck {
	return &ConfigCheck{cfg: cfg}
}

func (c *ConfigCheck) Name() string {
	return "Config"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.cfg.Validate(); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "validation",
			Status: StatusFail,
			Detail: err.Error(),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "validation",
			Status: StatusPass,
		})
	}

	return result
}

// SecondaryDocsCheck reports whether the secondary document patterns
// resolve to any files.
type SecondaryDocsCheck struct {
	cfg *config.Config
}

func NewSecondaryDocsCheck(cfg *config.Config) *SecondaryDocsCheck {
	return &SecondaryDocsCheck{cfg: cfg}
}

func (c *SecondaryDocsCheck) Name() string {
	return "Secondary Docs"
}

func (c *SecondaryDocsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	fsys := os.DirFS(c.cfg.Root)
	for _, pattern := range c.cfg.SecondaryDocs {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
		switch {
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  pattern,
				Status: StatusFail,
				Detail: err.Error(),
			})
		case len(matches) == 0:
			result.Items = append(result.Items, CheckItem{
				Label:  pattern,
				Status: StatusWarn,
				Detail: "no files match",
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  pattern,
				Status: StatusPass,
				Detail: fmt.Sprintf("%d files", len(matches)),
			})
		}
	}

	return result
}

// StateCheck verifies the logs directory is writable and the history
// file, if present, is valid JSON.
type StateCheck struct {
	cfg *config.Config
}

func NewStateCheck(cfg *config.Config) *StateCheck {
	return &StateCheck{cfg: cfg}
}

func (c *StateCheck) Name() string {
	return "State"
}

func (c *StateCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	logsDir := c.cfg.LogsDir()
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "logs directory",
			Status: StatusFail,
			Detail: err.Error(),
		})
	} else if err := probeWritable(logsDir); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "logs directory",
			Status: StatusFail,
			Detail: fmt.Sprintf("not writable: %v", err),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "logs directory",
			Status: StatusPass,
			Detail: logsDir,
		})
	}

	historyPath := c.cfg.HistoryFile()
	data, err := os.ReadFile(historyPath)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:  "history file",
			Status: StatusPass,
			Detail: "not yet created",
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "history file",
			Status: StatusFail,
			Detail: err.Error(),
		})
	case !json.Valid(data):
		result.Items = append(result.Items, CheckItem{
			Label:  "history file",
			Status: StatusWarn,
			Detail: "corrupt JSON, will be rebuilt on next sync",
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "history file",
			Status: StatusPass,
			Detail: historyPath,
		})
	}

	return result
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// DefaultChecks returns the standard check set for a project.
func DefaultChecks(cfg *config.Config) []Check {
	return []Check{
		NewConfigCheck(cfg),
		NewBacklogCheck(cfg),
		NewSecondaryDocsCheck(cfg),
		NewStateCheck(cfg),
	}
}
