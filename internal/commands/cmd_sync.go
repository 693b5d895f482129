package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/tracksync/internal/core/styles"
	"github.com/hay-kot/tracksync/internal/syncd"
	"github.com/hay-kot/tracksync/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type SyncCmd struct {
	flags        *Flags
	format       string
	validateOnly bool
}

// NewSyncCmd creates a new sync command.
func NewSyncCmd(flags *Flags) *SyncCmd {
	return &SyncCmd{flags: flags}
}

func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "sync",
		Usage:       "Run one documentation sync cycle",
		UsageText:   "tracksync sync [options]",
		Description: "Parses the backlog, records statistics, checks secondary documents for inconsistencies, and refreshes generated reports.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "validate-only",
				Usage:       "scan and report without writing state; exits 1 on inconsistencies",
				Destination: &cmd.validateOnly,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config.StrictValidation {
		if err := cmd.flags.Config.ValidateStrict(); err != nil {
			return err
		}
	}

	result, err := cmd.flags.Service.Sync(ctx, cmd.validateOnly)
	if err != nil {
		return err
	}

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, os.Stderr, result); err != nil {
			return err
		}
	} else {
		cmd.printText(result)
	}

	if cmd.validateOnly && len(result.Inconsistencies) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *SyncCmd) printText(result syncd.SyncResult) {
	w := os.Stderr

	_, _ = fmt.Fprintln(w, styles.TextPrimaryBoldStyle.Render("Documentation Sync"))
	_, _ = fmt.Fprintf(w, "  Tickets:      %d/%d completed (%.1f%%)\n",
		result.Snapshot.CompletedTickets, result.Snapshot.TotalTickets, result.Snapshot.CompletionPercentage)
	_, _ = fmt.Fprintf(w, "  Story points: %d/%d\n",
		result.Snapshot.CompletedStoryPoints, result.Snapshot.TotalStoryPoints)
	_, _ = fmt.Fprintf(w, "  Phase 1:      %.1f%%\n", result.Snapshot.Phase1Completion)

	if len(result.Changes) > 0 {
		_, _ = fmt.Fprintln(w, styles.TextForegroundBoldStyle.Render("Changes"))
		for _, change := range result.Changes {
			_, _ = fmt.Fprintf(w, "  %s %s\n", styles.TextSuccessStyle.Render("+"), change)
		}
	}

	if len(result.Inconsistencies) > 0 {
		_, _ = fmt.Fprintln(w, styles.TextWarningStyle.Render(fmt.Sprintf("Inconsistencies (%d)", len(result.Inconsistencies))))
		for _, inc := range result.Inconsistencies {
			_, _ = fmt.Fprintf(w, "  %s %s\n", styles.TextWarningStyle.Render("!"), inc)
		}
	}
}
