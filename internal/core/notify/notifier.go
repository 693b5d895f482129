// Package notify delivers documentation change notifications to the
// configured local sinks and enforces the cooldown window between sends.
package notify

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/tracksync/internal/core/stats"
	"github.com/hay-kot/tracksync/internal/store/jsonfile"
	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"
)

// Result describes the outcome of a notification attempt.
type Result string

const (
	ResultSent      Result = "sent"
	ResultNoChanges Result = "no_changes"
	ResultCooldown  Result = "cooldown"
)

const alertDelimiter = "=================================================="

// Notifier fans a formatted message out to the log, the latest-notification
// file, and the append-only alerts log. Sink failures are logged and do not
// abort the remaining sinks.
type Notifier struct {
	log        zerolog.Logger
	sentinel   *jsonfile.Sentinel
	cooldown   time.Duration
	latestPath string
	alertsPath string

	now func() time.Time
}

func New(log zerolog.Logger, sentinel *jsonfile.Sentinel, cooldown time.Duration, latestPath, alertsPath string) *Notifier {
	return &Notifier{
		log:        log.With().Str("cmp", "notify").Logger(),
		sentinel:   sentinel,
		cooldown:   cooldown,
		latestPath: latestPath,
		alertsPath: alertsPath,
		now:        time.Now,
	}
}

// Notify sends a notification for the given changes unless the cooldown
// window is still open. force bypasses the cooldown check but not the
// empty-changes check. The cooldown sentinel is stamped only when a message
// is actually delivered.
func (n *Notifier) Notify(changes []string, snap stats.Snapshot, force bool) (Result, error) {
	if len(changes) == 0 {
		return ResultNoChanges, nil
	}

	now := n.now()
	if !force {
		if last, ok := n.sentinel.Last(); ok && now.Sub(last) < n.cooldown {
			n.log.Debug().
				Time("last_sent", last).
				Dur("cooldown", n.cooldown).
				Msg("notification suppressed by cooldown")
			return ResultCooldown, nil
		}
	}

	msg := FormatMessage(changes, snap, now)

	n.log.Info().
		Int("changes", len(changes)).
		Msg("documentation changes detected")
	for _, change := range changes {
		n.log.Info().Msg(change)
	}

	if err := n.writeLatest(msg); err != nil {
		n.log.Error().Err(err).Str("path", n.latestPath).Msg("failed to write latest notification")
	}
	if err := n.appendAlert(msg, now); err != nil {
		n.log.Error().Err(err).Str("path", n.alertsPath).Msg("failed to append alert")
	}

	if err := n.sentinel.Mark(now); err != nil {
		return ResultSent, fmt.Errorf("mark notification time: %w", err)
	}

	return ResultSent, nil
}

func (n *Notifier) writeLatest(msg string) error {
	return atomic.WriteFile(n.latestPath, bytes.NewReader([]byte(msg)))
}

func (n *Notifier) appendAlert(msg string, now time.Time) error {
	f, err := os.OpenFile(n.alertsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	fmt.Fprintf(&b, "\n[doc-notification] %s\n", now.Format(stats.TimeFormat))
	b.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(alertDelimiter + "\n")

	_, err = f.WriteString(b.String())
	return err
}
