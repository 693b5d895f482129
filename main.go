package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tracksync/internal/commands"
	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/syncd"
	"github.com/hay-kot/tracksync/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tracksync",
		Usage:     "Keep project documentation in sync with the ticket backlog",
		UsageText: "tracksync [global options] command [command options]",
		Description: `Tracksync parses the ticket backlog, tracks completion statistics over
time, cross-checks secondary ticketing documents, and sends notifications
when the project state changes significantly.

Run 'tracksync sync' for a one-off cycle or 'tracksync daemon' to keep
documentation synchronized continuously.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TRACKSYNC_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <root>/logs/doc-sync.log)",
				Sources:     cli.EnvVars("TRACKSYNC_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TRACKSYNC_CONFIG"),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "root",
				Usage:       "project root directory",
				Sources:     cli.EnvVars("TRACKSYNC_ROOT"),
				Value:       commands.DefaultRoot(),
				Destination: &flags.Root,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <root>/logs/doc-sync.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.Root, "logs", "doc-sync.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigFile(), flags.Root)
			if err != nil {
				// A broken config file falls back to defaults so the
				// pipeline keeps running; the problem is still logged.
				log.Warn().Err(err).Msg("config file unreadable, using defaults")
			}

			cfg.ApplyEnv(log.Logger)

			// Invalid values fall back to defaults so the daemon keeps
			// running; 'config --validate' is the strict entry point.
			if err := cfg.Validate(); err != nil {
				log.Warn().Err(err).Msg("invalid configuration, using defaults")
				cfg = config.Default(flags.Root)
			}

			flags.Config = cfg
			flags.Service = syncd.NewService(log.Logger, cfg)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewSyncCmd(flags).Register(app)
	app = commands.NewDaemonCmd(flags).Register(app)
	app = commands.NewNotifyCmd(flags).Register(app)
	app = commands.NewHealthCmd(flags).Register(app)
	app = commands.NewHistoryCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
