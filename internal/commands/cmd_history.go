package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/tracksync/internal/core/stats"
	"github.com/hay-kot/tracksync/internal/core/styles"
	"github.com/hay-kot/tracksync/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type HistoryCmd struct {
	flags  *Flags
	limit  int
	clear  bool
	format string
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "history",
		Usage:       "Show recorded sync snapshots",
		UsageText:   "tracksync history [options]",
		Description: "Lists recorded statistics snapshots, most recent last.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "show only the most recent N entries (0 = all)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete the recorded history",
				Destination: &cmd.clear,
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

func (cmd *HistoryCmd) run(_ context.Context, c *cli.Command) error {
	store := cmd.flags.Service.History()

	if cmd.clear {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render("history cleared"))
		return nil
	}

	entries := store.List()
	if cmd.limit > 0 && len(entries) > cmd.limit {
		entries = entries[len(entries)-cmd.limit:]
	}

	if cmd.format == "json" {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, styles.TextMutedStyle.Render("no history recorded yet"))
		return nil
	}

	w := os.Stderr
	_, _ = fmt.Fprintln(w, styles.TextPrimaryBoldStyle.Render("Sync History"))
	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "  %s  %3d tickets  %5.1f%% complete  %d inconsistencies\n",
			entry.Timestamp.Format(stats.TimeFormat),
			entry.Stats.TotalTickets,
			entry.Stats.CompletionPercentage,
			len(entry.Stats.InconsistenciesFound),
		)
	}

	return nil
}
