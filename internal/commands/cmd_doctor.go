package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/tracksync/internal/core/doctor"
	"github.com/hay-kot/tracksync/internal/core/styles"
	"github.com/hay-kot/tracksync/pkg/iojson"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type DoctorCmd struct {
	flags  *Flags
	format string
}

// NewDoctorCmd creates a new doctor command.
func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on the project setup",
		UsageText:   "tracksync doctor [options]",
		Description: "Runs diagnostic checks on the configuration, backlog document, secondary documents, and pipeline state files.",
		Flags: []cli.Flag{
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

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, doctor.DefaultChecks(cmd.flags.Config))

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputText(results []doctor.Result) error {
	w := os.Stderr
	styled := term.IsTerminal(int(os.Stderr.Fd()))

	render := func(s interface{ Render(...string) string }, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	divider := render(styles.TextMutedStyle, strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, render(styles.TextPrimaryBoldStyle, "Tracksync Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, render(styles.TextForegroundBoldStyle, result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + render(styles.TextMutedStyle, item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = render(styles.TextSuccessStyle, "✔")
			case doctor.StatusWarn:
				icon = render(styles.TextWarningStyle, "●")
			case doctor.StatusFail:
				icon = render(styles.TextErrorStyle, "✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	passed, warned, failed := doctor.Summary(results)
	summary := fmt.Sprintf("%s  %s  %s",
		render(styles.TextSuccessStyle, fmt.Sprintf("%d passed", passed)),
		render(styles.TextWarningStyle, fmt.Sprintf("%d warnings", warned)),
		render(styles.TextErrorStyle, fmt.Sprintf("%d failed", failed)),
	)
	_, _ = fmt.Fprintln(w, summary)

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
