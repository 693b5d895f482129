package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hay-kot/tracksync/internal/core/notify"
	"github.com/hay-kot/tracksync/internal/core/stats"
	"github.com/hay-kot/tracksync/internal/core/styles"
	"github.com/urfave/cli/v3"
)

type NotifyCmd struct {
	flags *Flags
	force bool
	test  bool
}

// NewNotifyCmd creates a new notify command.
func NewNotifyCmd(flags *Flags) *NotifyCmd {
	return &NotifyCmd{flags: flags}
}

func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "notify",
		Usage:       "Check for documentation changes and send notifications",
		UsageText:   "tracksync notify [options]",
		Description: "Compares the current backlog against the last recorded snapshot and delivers a notification when significant changes are found, subject to the cooldown window.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "send even when the cooldown window is open",
				Destination: &cmd.force,
			},
			&cli.BoolFlag{
				Name:        "test",
				Usage:       "print a sample notification without sending",
				Destination: &cmd.test,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *NotifyCmd) run(ctx context.Context, _ *cli.Command) error {
	if cmd.test {
		sample := notify.FormatMessage(
			[]string{"2 new tickets completed", "completion increased by 8.0% (52.0% -> 60.0%)"},
			stats.Snapshot{
				TotalTickets:         25,
				CompletedTickets:     15,
				CompletionPercentage: 60,
				TotalStoryPoints:     80,
				CompletedStoryPoints: 44,
				Phase1Completion:     75,
			},
			time.Now(),
		)
		fmt.Print(sample)
		return nil
	}

	result, err := cmd.flags.Service.CheckNotifications(ctx, cmd.force)
	if err != nil {
		return err
	}

	w := os.Stderr
	switch result {
	case notify.ResultSent:
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render("notification sent"))
	case notify.ResultCooldown:
		_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render("changes detected but cooldown window is open"))
	case notify.ResultNoChanges:
		_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render("no significant changes"))
	}

	return nil
}
