package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hay-kot/tracksync/internal/syncd"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type DaemonCmd struct {
	flags          *Flags
	once           bool
	watch          bool
	syncInterval   int
	notifyInterval int
	threshold      float64
}

// NewDaemonCmd creates a new daemon command.
func NewDaemonCmd(flags *Flags) *DaemonCmd {
	return &DaemonCmd{flags: flags}
}

func (cmd *DaemonCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "daemon",
		Usage:       "Run the sync pipeline on a schedule",
		UsageText:   "tracksync daemon [options]",
		Description: "Runs sync, notification, and health cycles continuously until interrupted. SIGINT and SIGTERM stop the daemon gracefully.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "once",
				Usage:       "run a single forced cycle and exit",
				Destination: &cmd.once,
			},
			&cli.BoolFlag{
				Name:        "watch",
				Usage:       "also trigger a cycle whenever the backlog file changes",
				Destination: &cmd.watch,
			},
			&cli.IntFlag{
				Name:        "sync-interval",
				Usage:       "override the sync interval in seconds",
				Destination: &cmd.syncInterval,
			},
			&cli.IntFlag{
				Name:        "notification-interval",
				Usage:       "override the notification check interval in seconds",
				Destination: &cmd.notifyInterval,
			},
			&cli.FloatFlag{
				Name:        "threshold",
				Usage:       "override the significant change threshold percentage",
				Destination: &cmd.threshold,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DaemonCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config

	overridden := false
	if cmd.syncInterval > 0 {
		cfg.SyncInterval = cmd.syncInterval
		overridden = true
	}
	if cmd.notifyInterval > 0 {
		cfg.NotificationCheckInterval = cmd.notifyInterval
		overridden = true
	}
	if cmd.threshold > 0 {
		cfg.SignificantChangeThreshold = cmd.threshold
		overridden = true
	}
	if overridden {
		if err := cfg.Validate(); err != nil {
			return err
		}
		// The change detector snapshots the threshold at construction.
		cmd.flags.Service = syncd.NewService(log.Logger, cfg)
	}

	if cfg.StrictValidation {
		if err := cfg.ValidateStrict(); err != nil {
			return err
		}
	}

	svc := cmd.flags.Service
	daemon := syncd.NewDaemon(log.Logger, svc)

	if cmd.once {
		daemon.RunOnce(ctx)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.watch {
		watcher, err := syncd.NewBacklogWatcher(svc.Config().BacklogFile())
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-watcher.Events():
					if !ok {
						return
					}
					log.Info().Msg("backlog changed, requesting sync cycle")
					daemon.Kick()
				}
			}
		}()
	}

	return daemon.Run(ctx)
}
