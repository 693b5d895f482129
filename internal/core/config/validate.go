package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// Validate checks the configuration and returns field-level errors for
// every invalid value via criterio.FieldErrors.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("root", c.Root, nonEmpty),
		criterio.Run("backlog_path", c.BacklogPath, nonEmpty),
		criterio.Run("sync_interval", c.SyncInterval, positive),
		criterio.Run("notification_check_interval", c.NotificationCheckInterval, positive),
		criterio.Run("force_sync_interval", c.ForceSyncInterval, positive),
		criterio.Run("health_check_interval", c.HealthCheckInterval, positive),
		criterio.Run("significant_change_threshold", c.SignificantChangeThreshold, percentRange),
		criterio.Run("notification_cooldown", c.NotificationCooldown, nonNegative),
		criterio.Run("max_report_files", c.MaxReportFiles, positive),
		criterio.Run("log_level", c.LogLevel, validLogLevel),
		c.validateSecondaryDocs(),
	)
}

// ValidateStrict additionally requires the project root and backlog
// document to exist. Used by validate mode, where the daemon refuses to
// start on failure instead of falling back to defaults.
func (c *Config) ValidateStrict() error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		criterio.Run("root", c.Root, directoryExists),
		criterio.Run("backlog_path", c.BacklogFile(), fileExists),
	)
}

func (c *Config) validateSecondaryDocs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.SecondaryDocs {
		if pattern == "" {
			errs = errs.Append(fmt.Sprintf("secondary_docs[%d]", i), fmt.Errorf("pattern cannot be empty"))
		}
	}
	return errs.ToError()
}

func nonEmpty(v string) error {
	if v == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func positive(v int) error {
	if v <= 0 {
		return fmt.Errorf("must be positive, got %d", v)
	}
	return nil
}

func nonNegative(v int) error {
	if v < 0 {
		return fmt.Errorf("cannot be negative, got %d", v)
	}
	return nil
}

func percentRange(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("must be between 0 and 100, got %v", v)
	}
	return nil
}

func validLogLevel(v string) error {
	if _, err := zerolog.ParseLevel(v); err != nil {
		return fmt.Errorf("invalid log level %q", v)
	}
	return nil
}

func directoryExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}
