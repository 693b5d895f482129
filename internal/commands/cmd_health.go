package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/tracksync/internal/core/health"
	"github.com/hay-kot/tracksync/internal/core/styles"
	"github.com/hay-kot/tracksync/internal/syncd"
	"github.com/hay-kot/tracksync/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type HealthCmd struct {
	flags  *Flags
	update bool
	format string
}

// NewHealthCmd creates a new health command.
func NewHealthCmd(flags *Flags) *HealthCmd {
	return &HealthCmd{flags: flags}
}

func (cmd *HealthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "health",
		Usage:       "Show or refresh the shared health report",
		UsageText:   "tracksync health [options]",
		Description: "Reads this service's entry from the shared health report. With --update, a fresh scan is merged into the report first. Exits 1 when the status is error.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "update",
				Usage:       "run a scan and merge the result into the health report",
				Destination: &cmd.update,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *HealthCmd) run(ctx context.Context, c *cli.Command) error {
	svc := cmd.flags.Service

	if cmd.update {
		result, err := svc.Sync(ctx, true)
		if err == nil {
			err = svc.UpdateHealth(ctx, result.Snapshot, nil)
		} else {
			err = svc.UpdateHealth(ctx, result.Snapshot, err)
		}
		if err != nil {
			return err
		}
	}

	summary, _ := svc.Summarize()
	status := summary.Health

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, os.Stderr, summary); err != nil {
			return err
		}
	} else {
		cmd.printText(summary)
	}

	if status == health.StatusError {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *HealthCmd) printText(summary syncd.Summary) {
	w := os.Stderr

	var badge string
	switch summary.Health {
	case health.StatusHealthy:
		badge = styles.TextSuccessStyle.Render(string(summary.Health))
	case health.StatusWarning:
		badge = styles.TextWarningStyle.Render(string(summary.Health))
	case health.StatusError:
		badge = styles.TextErrorStyle.Render(string(summary.Health))
	default:
		badge = styles.TextMutedStyle.Render(string(health.StatusUnknown))
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextPrimaryBoldStyle.Render("doc-sync"), badge)
	if summary.LastSync != "" {
		_, _ = fmt.Fprintf(w, "  Last sync:       %s\n", summary.LastSync)
		_, _ = fmt.Fprintf(w, "  Completion:      %.1f%%\n", summary.Snapshot.CompletionPercentage)
		_, _ = fmt.Fprintf(w, "  Inconsistencies: %d\n", summary.Inconsistencies)
	}
}
