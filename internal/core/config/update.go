package config

import (
	"fmt"
	"sort"
)

// setters maps config file keys to typed assignment functions, reusing the
// same coercions as the environment overrides.
var setters = map[string]func(c *Config, value string) error{
	"backlog_path": func(c *Config, v string) error {
		c.BacklogPath = v
		return nil
	},
	"sync_interval": func(c *Config, v string) error {
		return setInt(&c.SyncInterval, v)
	},
	"notification_check_interval": func(c *Config, v string) error {
		return setInt(&c.NotificationCheckInterval, v)
	},
	"force_sync_interval": func(c *Config, v string) error {
		return setInt(&c.ForceSyncInterval, v)
	},
	"health_check_interval": func(c *Config, v string) error {
		return setInt(&c.HealthCheckInterval, v)
	},
	"significant_change_threshold": func(c *Config, v string) error {
		return setFloat(&c.SignificantChangeThreshold, v)
	},
	"notification_cooldown": func(c *Config, v string) error {
		return setInt(&c.NotificationCooldown, v)
	},
	"alert_on_inconsistencies": func(c *Config, v string) error {
		return setBool(&c.AlertOnInconsistencies, v)
	},
	"health_monitoring_enabled": func(c *Config, v string) error {
		return setBool(&c.HealthMonitoringEnabled, v)
	},
	"strict_validation": func(c *Config, v string) error {
		return setBool(&c.StrictValidation, v)
	},
	"log_level": func(c *Config, v string) error {
		if err := validLogLevel(v); err != nil {
			return err
		}
		c.LogLevel = v
		return nil
	},
	"max_report_files": func(c *Config, v string) error {
		return setInt(&c.MaxReportFiles, v)
	},
}

// Set updates one tunable by its config file key, coercing the value to
// the field's type. Unknown keys and malformed values are errors; the
// caller persists the change with an explicit Save.
func (c *Config) Set(key, value string) error {
	setter, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown configuration key %q (known keys: %v)", key, SettableKeys())
	}
	if err := setter(c, value); err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

// SettableKeys returns the sorted list of keys accepted by Set.
func SettableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
