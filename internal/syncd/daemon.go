package syncd

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State represents the daemon lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)

const (
	tickEvery    = 30 * time.Second
	errorBackoff = 60 * time.Second
)

// Daemon runs the sync pipeline on a schedule. Each activity keeps its own
// last-run stamp so an overdue sync does not delay the notification check
// and vice versa. All cycles execute on the Run goroutine, which is the
// sole owner of the stamps.
type Daemon struct {
	svc   *Service
	log   zerolog.Logger
	kicks chan struct{}

	mu    sync.Mutex
	state State

	// Test seams.
	now  func() time.Time
	tick time.Duration

	lastSync      time.Time
	lastNotify    time.Time
	lastForceSync time.Time
	lastHealth    time.Time
}

func NewDaemon(log zerolog.Logger, svc *Service) *Daemon {
	return &Daemon{
		svc:   svc,
		log:   log.With().Str("cmp", "daemon").Logger(),
		kicks: make(chan struct{}, 1),
		state: StateIdle,
		now:   time.Now,
		tick:  tickEvery,
	}
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Daemon) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// Run executes the schedule loop until ctx is cancelled. The first cycle
// runs immediately and unconditionally.
func (d *Daemon) Run(ctx context.Context) error {
	d.setState(StateRunning)
	defer d.setState(StateStopped)

	cfg := d.svc.Config()
	d.log.Info().
		Dur("sync_interval", cfg.SyncEvery()).
		Dur("notification_interval", cfg.NotificationCheckEvery()).
		Dur("force_sync_interval", cfg.ForceSyncEvery()).
		Msg("daemon starting")

	// Establish a baseline before the schedule takes over.
	d.runCycle(ctx, true)

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.setState(StateStopping)
			d.log.Info().Msg("daemon stopping")
			return nil
		case <-ticker.C:
			d.runCycle(ctx, false)
		case <-d.kicks:
			d.log.Info().Msg("running kicked sync cycle")
			d.runCycle(ctx, true)
		}
	}
}

// Kick requests a sync cycle outside the schedule, used by the file
// watcher. The cycle itself runs on the Run goroutine; requests arriving
// while one is already pending coalesce.
func (d *Daemon) Kick() {
	select {
	case d.kicks <- struct{}{}:
	default:
	}
}

// RunOnce executes a single forced cycle without starting the schedule
// loop.
func (d *Daemon) RunOnce(ctx context.Context) {
	d.runCycle(ctx, true)
}

func (d *Daemon) runCycle(ctx context.Context, force bool) {
	now := d.now()
	cfg := d.svc.Config()

	syncDue := force || now.Sub(d.lastSync) >= cfg.SyncEvery()
	forceDue := now.Sub(d.lastForceSync) >= cfg.ForceSyncEvery()
	notifyDue := force || now.Sub(d.lastNotify) >= cfg.NotificationCheckEvery()
	healthDue := cfg.HealthMonitoringEnabled && now.Sub(d.lastHealth) >= cfg.HealthCheckEvery()

	if syncDue || forceDue {
		if _, err := d.svc.Sync(ctx, false); err != nil {
			d.log.Error().Err(err).Msg("sync failed")
			d.backoff(ctx)
			return
		}
		// A failed sync leaves the stamp alone so the next tick retries.
		d.lastSync = now
		if forceDue {
			d.lastForceSync = now
		}
	}

	if notifyDue {
		// A forced cycle checks early but never bypasses the cooldown.
		// The explicit notify --force path is the only bypass.
		if _, err := d.svc.CheckNotifications(ctx, false); err != nil {
			d.log.Error().Err(err).Msg("notification check failed")
			d.backoff(ctx)
			return
		}
		d.lastNotify = now
	}

	if healthDue {
		if entry, ok := d.svc.History().Latest(); ok {
			if err := d.svc.UpdateHealth(ctx, entry.Stats, nil); err != nil {
				d.log.Error().Err(err).Msg("health update failed")
			}
		}
		// Stamped regardless so a missing baseline does not spin.
		d.lastHealth = now
	}
}

// backoff pauses the loop after a failure, respecting cancellation.
func (d *Daemon) backoff(ctx context.Context) {
	d.log.Info().Dur("backoff", errorBackoff).Msg("backing off after error")
	select {
	case <-ctx.Done():
	case <-time.After(errorBackoff):
	}
}
