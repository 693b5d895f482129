// Package syncd implements the documentation sync pipeline: parsing the
// backlog, aggregating statistics, detecting changes, checking consistency,
// and driving notifications and health reporting.
package syncd

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/tracksync/internal/core/backlog"
	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/core/consistency"
	"github.com/hay-kot/tracksync/internal/core/health"
	"github.com/hay-kot/tracksync/internal/core/notify"
	"github.com/hay-kot/tracksync/internal/core/stats"
	"github.com/hay-kot/tracksync/internal/store/jsonfile"
	"github.com/rs/zerolog"
)

// ServiceName identifies this service in the shared health report.
const ServiceName = "doc-sync"

// SyncResult captures one full sync cycle.
type SyncResult struct {
	Snapshot        stats.Snapshot `json:"snapshot"`
	Changes         []string       `json:"changes"`
	Inconsistencies []string       `json:"inconsistencies"`
	Duration        time.Duration  `json:"-"`
	DurationMS      int64          `json:"duration_ms"`
}

// Service wires the pipeline stages together over one project root.
type Service struct {
	cfg      *config.Config
	log      zerolog.Logger
	history  *jsonfile.HistoryStore
	baseline *jsonfile.BaselineFile
	notifier *notify.Notifier
	checker  *consistency.Checker
	detector stats.Detector
	healthf  *jsonfile.HealthFile
	monitorf *jsonfile.MonitorFile

	now func() time.Time
}

func NewService(log zerolog.Logger, cfg *config.Config) *Service {
	return &Service{
		cfg:      cfg,
		log:      log.With().Str("cmp", "syncd").Logger(),
		history:  jsonfile.NewHistoryStore(cfg.HistoryFile()),
		baseline: jsonfile.NewBaselineFile(cfg.NotificationBaselineFile()),
		notifier: notify.New(
			log,
			jsonfile.NewSentinel(cfg.SentinelFile()),
			cfg.Cooldown(),
			cfg.LatestNotificationFile(),
			cfg.AlertsFile(),
		),
		checker:  consistency.New(cfg.Root, cfg.SecondaryDocs),
		detector: stats.NewDetector(cfg.SignificantChangeThreshold),
		healthf:  jsonfile.NewHealthFile(cfg.HealthReportFile()),
		monitorf: jsonfile.NewMonitorFile(cfg.MonitorStatusFile()),
		now:      time.Now,
	}
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// History exposes the snapshot history store.
func (s *Service) History() *jsonfile.HistoryStore {
	return s.history
}

// scan parses the backlog and builds the current snapshot, including
// consistency results.
func (s *Service) scan() (stats.Snapshot, []backlog.Ticket, error) {
	now := s.now()

	tickets, err := backlog.ParseFile(s.cfg.BacklogFile(), backlog.ParseOptions{
		Phase1Prefixes: s.cfg.Phase1Prefixes,
	})
	if err != nil {
		return stats.Snapshot{}, nil, fmt.Errorf("parse backlog: %w", err)
	}

	snap := stats.Aggregate(tickets, now)
	snap.InconsistenciesFound = s.checker.Check(tickets)

	return snap, tickets, nil
}

// Sync runs one full sync cycle. With validateOnly set it scans and reports
// but writes nothing, leaving the history baseline untouched.
func (s *Service) Sync(ctx context.Context, validateOnly bool) (SyncResult, error) {
	start := s.now()

	snap, tickets, err := s.scan()
	if err != nil {
		s.recordFailure(err)
		return SyncResult{}, err
	}

	var previous *stats.Snapshot
	if entry, ok := s.history.Latest(); ok {
		prev := entry.Stats
		previous = &prev
	}
	changes := s.detector.Detect(previous, snap)

	result := SyncResult{
		Snapshot:        snap,
		Changes:         changes,
		Inconsistencies: snap.InconsistenciesFound,
	}

	if validateOnly {
		result.Duration = s.now().Sub(start)
		result.DurationMS = result.Duration.Milliseconds()
		return result, nil
	}

	if err := s.history.Append(jsonfile.HistoryEntry{Timestamp: s.now(), Stats: snap}); err != nil {
		return result, fmt.Errorf("append history: %w", err)
	}

	if err := WriteLatestStats(s.cfg.LatestStatsFile(), snap); err != nil {
		s.log.Error().Err(err).Msg("failed to write latest stats")
	}

	if err := WriteReport(s.cfg, snap, tickets, s.now()); err != nil {
		s.log.Error().Err(err).Msg("failed to write sync report")
	}

	if err := UpdateTicketingDocs(s.cfg, tickets, snap, s.now()); err != nil {
		s.log.Error().Err(err).Msg("failed to update ticketing docs")
	}

	if s.cfg.HealthMonitoringEnabled {
		if err := s.UpdateHealth(ctx, snap, nil); err != nil {
			s.log.Error().Err(err).Msg("failed to update health report")
		}
	}

	result.Duration = s.now().Sub(start)
	result.DurationMS = result.Duration.Milliseconds()

	s.log.Info().
		Int("tickets", snap.TotalTickets).
		Float64("completion", snap.CompletionPercentage).
		Int("changes", len(changes)).
		Int("inconsistencies", len(snap.InconsistenciesFound)).
		Dur("took", result.Duration).
		Msg("sync complete")

	return result, nil
}

// CheckNotifications compares the current backlog state against the last
// snapshot the notifier reported and sends a notification when changes are
// found. The notifier keeps its own baseline file, independent of the sync
// history, and advances it only when a message is sent, so changes recorded
// by intervening sync cycles or suppressed by the cooldown are still
// reported once a send goes through.
func (s *Service) CheckNotifications(ctx context.Context, force bool) (notify.Result, error) {
	snap, _, err := s.scan()
	if err != nil {
		s.recordFailure(err)
		return "", err
	}

	var previous *stats.Snapshot
	if prev, ok := s.baseline.Load(); ok {
		previous = &prev
	}
	changes := s.detector.Detect(previous, snap)

	result, err := s.notifier.Notify(changes, snap, force)
	if err != nil {
		return result, err
	}

	if result == notify.ResultSent {
		if err := s.baseline.Save(snap, s.now()); err != nil {
			return result, fmt.Errorf("save notification baseline: %w", err)
		}
	}

	return result, nil
}

// UpdateHealth merges this service's entry into the shared health report
// and monitor status documents. failure carries the error of a failed
// cycle, nil for a healthy one.
func (s *Service) UpdateHealth(_ context.Context, snap stats.Snapshot, failure error) error {
	now := s.now()
	status := health.Classify(len(snap.InconsistenciesFound), failure != nil)

	svc := health.Service{
		Service:   ServiceName,
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
		Details: map[string]any{
			"total_tickets":         snap.TotalTickets,
			"completion_percentage": snap.CompletionPercentage,
			"inconsistencies":       len(snap.InconsistenciesFound),
		},
		Metrics: map[string]any{
			"completed_tickets":      snap.CompletedTickets,
			"completed_story_points": snap.CompletedStoryPoints,
			"phase_1_completion":     snap.Phase1Completion,
		},
	}
	if failure != nil {
		svc.Alerts = append(svc.Alerts, failure.Error())
	}
	if s.cfg.AlertOnInconsistencies {
		svc.Alerts = append(svc.Alerts, snap.InconsistenciesFound...)
	}

	if err := s.healthf.Merge(ServiceName, svc, now); err != nil {
		return fmt.Errorf("merge health report: %w", err)
	}

	entry := jsonfile.MonitorEntry{
		Enabled:   true,
		LastCheck: now.Format(time.RFC3339),
		Status:    status,
		NextCheck: now.Add(s.cfg.SyncEvery()).Format(time.RFC3339),
	}
	if err := s.monitorf.Merge(ServiceName, entry); err != nil {
		return fmt.Errorf("merge monitor status: %w", err)
	}

	return nil
}

// recordFailure writes an error entry into the health report so a broken
// backlog shows up in monitoring even when sync cannot complete.
func (s *Service) recordFailure(failure error) {
	if !s.cfg.HealthMonitoringEnabled {
		return
	}
	if err := s.UpdateHealth(context.Background(), stats.Snapshot{}, failure); err != nil {
		s.log.Error().Err(err).Msg("failed to record failure in health report")
	}
}

// HealthStatus returns this service's current status from the shared
// health report, or unknown when no entry exists.
func (s *Service) HealthStatus() health.Status {
	doc := s.healthf.Load()
	if svc, ok := doc.Services[ServiceName]; ok {
		return svc.Status
	}
	return health.StatusUnknown
}

// Summary describes the most recent recorded state for status output.
type Summary struct {
	LastSync        string         `json:"last_sync"`
	Snapshot        stats.Snapshot `json:"snapshot"`
	Health          health.Status  `json:"health"`
	HistoryEntries  int            `json:"history_entries"`
	Inconsistencies int            `json:"inconsistencies"`
}

// Summarize reports the latest recorded snapshot and health state.
func (s *Service) Summarize() (Summary, bool) {
	entry, ok := s.history.Latest()
	if !ok {
		return Summary{Health: s.HealthStatus()}, false
	}

	return Summary{
		LastSync:        entry.Timestamp.Format(stats.TimeFormat),
		Snapshot:        entry.Stats,
		Health:          s.HealthStatus(),
		HistoryEntries:  s.history.Len(),
		Inconsistencies: len(entry.Stats.InconsistenciesFound),
	}, true
}
