package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// envOverride binds one environment variable to one config field with a
// declared type coercion.
type envOverride struct {
	name  string
	apply func(c *Config, value string) error
}

var envOverrides = []envOverride{
	{"TRACKSYNC_SYNC_INTERVAL", func(c *Config, v string) error {
		return setInt(&c.SyncInterval, v)
	}},
	{"TRACKSYNC_NOTIFICATION_INTERVAL", func(c *Config, v string) error {
		return setInt(&c.NotificationCheckInterval, v)
	}},
	{"TRACKSYNC_FORCE_SYNC_INTERVAL", func(c *Config, v string) error {
		return setInt(&c.ForceSyncInterval, v)
	}},
	{"TRACKSYNC_CHANGE_THRESHOLD", func(c *Config, v string) error {
		return setFloat(&c.SignificantChangeThreshold, v)
	}},
	{"TRACKSYNC_COOLDOWN", func(c *Config, v string) error {
		return setInt(&c.NotificationCooldown, v)
	}},
	{"TRACKSYNC_ALERT_ON_INCONSISTENCIES", func(c *Config, v string) error {
		return setBool(&c.AlertOnInconsistencies, v)
	}},
	{"TRACKSYNC_HEALTH_MONITORING", func(c *Config, v string) error {
		return setBool(&c.HealthMonitoringEnabled, v)
	}},
	{"TRACKSYNC_STRICT_VALIDATION", func(c *Config, v string) error {
		return setBool(&c.StrictValidation, v)
	}},
	{"TRACKSYNC_LOG_LEVEL", func(c *Config, v string) error {
		c.LogLevel = v
		return nil
	}},
}

// ApplyEnv overlays environment variable overrides onto the config.
// Malformed values are logged and ignored, falling back to the file or
// default value.
func (c *Config) ApplyEnv(log zerolog.Logger) {
	for _, ov := range envOverrides {
		value, ok := os.LookupEnv(ov.name)
		if !ok {
			continue
		}
		if err := ov.apply(c, value); err != nil {
			log.Warn().
				Str("var", ov.name).
				Str("value", value).
				Err(err).
				Msg("ignoring malformed environment override")
			continue
		}
		log.Debug().Str("var", ov.name).Str("value", value).Msg("environment override applied")
	}
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

// setBool accepts case-insensitive "true"/"false" only.
func setBool(dst *bool, v string) error {
	switch strings.ToLower(v) {
	case "true":
		*dst = true
	case "false":
		*dst = false
	default:
		return strconv.ErrSyntax
	}
	return nil
}
