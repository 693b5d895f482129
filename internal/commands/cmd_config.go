package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/core/styles"
	"github.com/hay-kot/tracksync/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type ConfigCmd struct {
	flags    *Flags
	sets     []string
	validate bool
	reset    bool
	initNew  bool
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "config",
		Usage:       "Show and modify the sync configuration",
		UsageText:   "tracksync config [options]",
		Description: "Without options, prints the active configuration as JSON. Settings changed with --set are validated before being written back.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "set",
				Usage:       "set a key=value pair (repeatable)",
				Destination: &cmd.sets,
			},
			&cli.BoolFlag{
				Name:        "validate",
				Usage:       "validate the configuration and file layout; exits 1 on failure",
				Destination: &cmd.validate,
			},
			&cli.BoolFlag{
				Name:        "reset",
				Usage:       "restore defaults, backing up the old file first",
				Destination: &cmd.reset,
			},
			&cli.BoolFlag{
				Name:        "init",
				Usage:       "write a default config file if none exists",
				Destination: &cmd.initNew,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ConfigCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	path := cmd.flags.ConfigFile()

	switch {
	case cmd.initNew:
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.Default(cmd.flags.Root).Save(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render("created "+path))
		return nil

	case cmd.reset:
		if _, err := os.Stat(path); err == nil {
			backup := path + ".backup"
			if err := os.Rename(path, backup); err != nil {
				return fmt.Errorf("back up config: %w", err)
			}
			fmt.Fprintln(os.Stderr, styles.TextMutedStyle.Render("backed up to "+backup))
		}
		if err := config.Default(cmd.flags.Root).Save(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render("reset to defaults"))
		return nil

	case len(cmd.sets) > 0:
		for _, pair := range cmd.sets {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q, expected key=value", pair)
			}
			if err := cfg.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render(fmt.Sprintf("updated %d setting(s)", len(cmd.sets))))
		return nil

	case cmd.validate:
		if err := cfg.ValidateStrict(); err != nil {
			cmd.printValidationError(err)
			return cli.Exit("", 1)
		}
		fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render("configuration is valid"))
		return nil

	default:
		return iojson.WriteWith(c.Root().Writer, os.Stderr, cfg)
	}
}

func (cmd *ConfigCmd) printValidationError(err error) {
	w := os.Stderr

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render("configuration is invalid"))
		for _, fe := range fieldErrs {
			_, _ = fmt.Fprintf(w, "  %s %s: %s\n", styles.TextErrorStyle.Render("✘"), fe.Field, fe.Err)
		}
		return
	}

	_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render(err.Error()))
}
