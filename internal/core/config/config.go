// Package config handles configuration loading, environment overrides, and
// validation for tracksync.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// Config holds the documentation sync tunables. It is constructed once at
// process start and passed explicitly to every component; it is never
// mutated outside the explicit Update/Save operations.
type Config struct {
	// Root is the project root directory; set by the caller, not from the
	// config file.
	Root string `json:"-"`

	// Document locations, relative to Root.
	BacklogPath   string   `json:"backlog_path"`
	SecondaryDocs []string `json:"secondary_docs"`

	// Phase1Prefixes lists ticket ID prefixes tracked as phase 1.
	Phase1Prefixes []string `json:"phase_1_prefixes"`

	// Scheduling intervals, in seconds.
	SyncInterval              int `json:"sync_interval"`
	NotificationCheckInterval int `json:"notification_check_interval"`
	ForceSyncInterval         int `json:"force_sync_interval"`
	HealthCheckInterval       int `json:"health_check_interval"`

	// Notification settings.
	SignificantChangeThreshold float64 `json:"significant_change_threshold"`
	NotificationCooldown       int     `json:"notification_cooldown"`
	AlertOnInconsistencies     bool    `json:"alert_on_inconsistencies"`

	// Health monitoring integration.
	HealthMonitoringEnabled bool `json:"health_monitoring_enabled"`

	// Validation settings.
	StrictValidation bool `json:"strict_validation"`

	// Logging and report retention.
	LogLevel       string `json:"log_level"`
	MaxReportFiles int    `json:"max_report_files"`
}

// Default returns a Config with the documented defaults for the given root.
func Default(root string) *Config {
	return &Config{
		Root:                       root,
		BacklogPath:                filepath.Join("trackdown", "BACKLOG.md"),
		SecondaryDocs:              []string{filepath.Join("docs", "TICKETING_SYSTEM.md")},
		Phase1Prefixes:             []string{"MEM", "LGR"},
		SyncInterval:               300,
		NotificationCheckInterval:  600,
		ForceSyncInterval:          3600,
		HealthCheckInterval:        1800,
		SignificantChangeThreshold: 5.0,
		NotificationCooldown:       3600,
		AlertOnInconsistencies:     true,
		HealthMonitoringEnabled:    true,
		StrictValidation:           true,
		LogLevel:                   "info",
		MaxReportFiles:             50,
	}
}

// Load reads configuration from the given path. A missing file yields
// defaults, not an error. On a malformed file Load returns defaults along
// with the parse error so callers can decide between refusing to start and
// falling back.
func Load(configPath, root string) (*Config, error) {
	cfg := Default(root)

	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return Default(root), fmt.Errorf("parse config file: %w", err)
	}

	// Re-set root since it is caller-owned, never file-owned.
	cfg.Root = root
	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	defaults := Default(c.Root)
	if c.BacklogPath == "" {
		c.BacklogPath = defaults.BacklogPath
	}
	if len(c.SecondaryDocs) == 0 {
		c.SecondaryDocs = defaults.SecondaryDocs
	}
	if len(c.Phase1Prefixes) == 0 {
		c.Phase1Prefixes = defaults.Phase1Prefixes
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = defaults.SyncInterval
	}
	if c.NotificationCheckInterval == 0 {
		c.NotificationCheckInterval = defaults.NotificationCheckInterval
	}
	if c.ForceSyncInterval == 0 {
		c.ForceSyncInterval = defaults.ForceSyncInterval
	}
	if c.HealthCheckInterval == 0 {
		c.HealthCheckInterval = defaults.HealthCheckInterval
	}
	if c.SignificantChangeThreshold == 0 {
		c.SignificantChangeThreshold = defaults.SignificantChangeThreshold
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.MaxReportFiles == 0 {
		c.MaxReportFiles = defaults.MaxReportFiles
	}
}

// Save writes the configuration to path atomically, creating the parent
// directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SyncEvery returns the regular sync interval as a duration.
func (c *Config) SyncEvery() time.Duration {
	return time.Duration(c.SyncInterval) * time.Second
}

// NotificationCheckEvery returns the notification check interval as a
// duration.
func (c *Config) NotificationCheckEvery() time.Duration {
	return time.Duration(c.NotificationCheckInterval) * time.Second
}

// ForceSyncEvery returns the forced full-sync interval as a duration.
func (c *Config) ForceSyncEvery() time.Duration {
	return time.Duration(c.ForceSyncInterval) * time.Second
}

// HealthCheckEvery returns the health refresh interval as a duration.
func (c *Config) HealthCheckEvery() time.Duration {
	return time.Duration(c.HealthCheckInterval) * time.Second
}

// Cooldown returns the notification cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.NotificationCooldown) * time.Second
}

// BacklogFile returns the absolute path of the backlog document.
func (c *Config) BacklogFile() string {
	return filepath.Join(c.Root, c.BacklogPath)
}

// LogsDir returns the directory holding logs, reports, and pipeline state.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Root, "logs")
}

// HistoryFile returns the path of the snapshot history store.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.LogsDir(), "doc_stats_history.json")
}

// NotificationBaselineFile returns the path of the snapshot the
// notification check compares against.
func (c *Config) NotificationBaselineFile() string {
	return filepath.Join(c.LogsDir(), "last_notified_stats.json")
}

// SentinelFile returns the path of the notification cooldown sentinel.
func (c *Config) SentinelFile() string {
	return filepath.Join(c.LogsDir(), "last_doc_notification.txt")
}

// LatestNotificationFile returns the path of the latest-notification
// snapshot file, overwritten on every send.
func (c *Config) LatestNotificationFile() string {
	return filepath.Join(c.LogsDir(), "latest_doc_notification.txt")
}

// AlertsFile returns the path of the append-only shared alerts log.
func (c *Config) AlertsFile() string {
	return filepath.Join(c.LogsDir(), "health-alerts.log")
}

// HealthReportFile returns the path of the shared health document.
func (c *Config) HealthReportFile() string {
	return filepath.Join(c.LogsDir(), "health-report.json")
}

// MonitorStatusFile returns the path of the shared monitor status document.
func (c *Config) MonitorStatusFile() string {
	return filepath.Join(c.LogsDir(), "monitor-status.json")
}

// LatestStatsFile returns the path of the latest statistics JSON.
func (c *Config) LatestStatsFile() string {
	return filepath.Join(c.LogsDir(), "latest_doc_stats.json")
}
