package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/syncd"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	Root       string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Service runs the sync pipeline for all commands
	Service *syncd.Service
}

// DefaultRoot returns the current working directory, the default project root.
func DefaultRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ConfigFile resolves the config file path, defaulting to the conventional
// location inside the project root.
func (f *Flags) ConfigFile() string {
	if f.ConfigPath != "" {
		return f.ConfigPath
	}
	return filepath.Join(f.Root, "config", "doc_sync_config.json")
}
