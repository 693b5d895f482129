package syncd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/tracksync/internal/core/config"
	"github.com/hay-kot/tracksync/internal/core/health"
	"github.com/hay-kot/tracksync/internal/core/notify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBacklog = `# Backlog

### Phase 1

- [x] **[MEM-001]** Memory schema (3 pts) (2025-05-01)
- [x] **[MEM-002]** Memory writes (5 pts)
- [ ] **[LGR-001]** Ledger intake (8 pts)

### Phase 2

- [ ] **[API-001]** Public endpoints 🔄 IN PROGRESS (5 pts)
- [ ] **[API-002]** Rate limiting 🚫 BLOCKED
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default(root)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.BacklogFile()), 0o755))
	require.NoError(t, os.WriteFile(cfg.BacklogFile(), []byte(sampleBacklog), 0o644))

	return NewService(zerolog.Nop(), cfg)
}

func TestSyncFirstRun(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Snapshot.TotalTickets)
	assert.Equal(t, 2, result.Snapshot.CompletedTickets)
	assert.Equal(t, 1, result.Snapshot.InProgressTickets)
	assert.Equal(t, 1, result.Snapshot.BlockedTickets)
	assert.Equal(t, 21, result.Snapshot.TotalStoryPoints)
	assert.Equal(t, 8, result.Snapshot.CompletedStoryPoints)

	require.Len(t, result.Changes, 1)
	assert.Contains(t, result.Changes[0], "initial documentation scan")

	// The secondary doc pattern matches nothing, which is an inconsistency.
	require.Len(t, result.Inconsistencies, 1)
	assert.Contains(t, result.Inconsistencies[0], "no secondary ticketing documents")

	assert.Equal(t, 1, svc.History().Len())

	_, err = os.Stat(svc.Config().LatestStatsFile())
	assert.NoError(t, err, "latest stats file should be written")
}

func TestSyncNoChangesOnSecondRun(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	result, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	assert.Empty(t, result.Changes)
	assert.Equal(t, 2, svc.History().Len())
}

func TestSyncValidateOnlyWritesNothing(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Sync(context.Background(), true)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Changes)
	assert.Equal(t, 0, svc.History().Len())

	_, err = os.Stat(svc.Config().LatestStatsFile())
	assert.True(t, os.IsNotExist(err))
}

func TestSyncMissingBacklog(t *testing.T) {
	cfg := config.Default(t.TempDir())
	svc := NewService(zerolog.Nop(), cfg)

	_, err := svc.Sync(context.Background(), false)
	require.Error(t, err)

	// The failure lands in the health report.
	assert.Equal(t, health.StatusError, svc.HealthStatus())
}

func TestSyncUpdatesHealthReport(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	// One inconsistency (missing secondary doc) classifies as warning.
	assert.Equal(t, health.StatusWarning, svc.HealthStatus())

	data, err := os.ReadFile(svc.Config().MonitorStatusFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), ServiceName)
}

func TestCheckNotificationsSendsOnChanges(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.CheckNotifications(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, notify.ResultSent, result)

	// Sending records a new baseline, so the next check is quiet.
	result, err = svc.CheckNotifications(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, notify.ResultNoChanges, result)
}

func TestCheckNotificationsCooldownKeepsBaseline(t *testing.T) {
	svc := newTestService(t)

	// The initial scan sends and stamps the cooldown sentinel.
	result, err := svc.CheckNotifications(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, notify.ResultSent, result)

	// Completing a ticket produces a change against the baseline.
	updated := []byte(`- [x] **[MEM-001]** Memory schema (3 pts)
- [x] **[MEM-002]** Memory writes (5 pts)
- [x] **[LGR-001]** Ledger intake (8 pts)
- [x] **[API-001]** Public endpoints (5 pts)
- [x] **[API-002]** Rate limiting
`)
	require.NoError(t, os.WriteFile(svc.Config().BacklogFile(), updated, 0o644))

	result, err = svc.CheckNotifications(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, notify.ResultCooldown, result)

	// A suppressed notification keeps the old baseline, so a forced check
	// still sees the same changes.
	result, err = svc.CheckNotifications(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, notify.ResultSent, result)
}

func TestCheckNotificationsSurvivesInterveningSync(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default(root)
	cfg.NotificationCooldown = 0
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.BacklogFile()), 0o755))
	require.NoError(t, os.WriteFile(cfg.BacklogFile(), []byte(sampleBacklog), 0o644))
	svc := NewService(zerolog.Nop(), cfg)

	// Establish both the sync history and the notification baseline.
	_, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)
	result, err := svc.CheckNotifications(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, notify.ResultSent, result)

	// Complete every ticket, then run a sync before the notification
	// check fires, mirroring the daemon's tick order.
	updated := []byte(`- [x] **[MEM-001]** Memory schema (3 pts)
- [x] **[MEM-002]** Memory writes (5 pts)
- [x] **[LGR-001]** Ledger intake (8 pts)
- [x] **[API-001]** Public endpoints (5 pts)
- [x] **[API-002]** Rate limiting
`)
	require.NoError(t, os.WriteFile(svc.Config().BacklogFile(), updated, 0o644))
	_, err = svc.Sync(context.Background(), false)
	require.NoError(t, err)

	// The sync recorded the new snapshot in history, but the notifier
	// still compares against its own baseline and must report the jump.
	result, err = svc.CheckNotifications(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, notify.ResultSent, result)

	data, err := os.ReadFile(svc.Config().LatestNotificationFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "completion increased")
}

func TestSummarize(t *testing.T) {
	svc := newTestService(t)

	_, ok := svc.Summarize()
	assert.False(t, ok, "no history yet")

	_, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	summary, ok := svc.Summarize()
	require.True(t, ok)
	assert.Equal(t, 5, summary.Snapshot.TotalTickets)
	assert.Equal(t, 1, summary.HistoryEntries)
	assert.Equal(t, 1, summary.Inconsistencies)
	assert.NotEmpty(t, summary.LastSync)
}

func TestSyncReportContents(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(svc.Config().LogsDir(), reportPrefix+"*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "## Status")

	// Per-section rollups in backlog order.
	assert.Contains(t, report, "## Milestones")
	assert.Contains(t, report, "- Phase 1: 2/3 tickets (66.7%), 8/16 points")
	assert.Contains(t, report, "- Phase 2: 0/2 tickets (0.0%), 0/5 points")

	// Ticket lists grouped by status.
	assert.Contains(t, report, "### Completed (2)")
	assert.Contains(t, report, "- MEM-001 Memory schema (3 pts) (2025-05-01)")
	assert.Contains(t, report, "### In Progress (1)")
	assert.Contains(t, report, "- API-001 Public endpoints (5 pts)")
	assert.Contains(t, report, "### Blocked (1)")
	assert.Contains(t, report, "- API-002 Rate limiting")
}

func TestSyncReportsWrittenAndPruned(t *testing.T) {
	svc := newTestService(t)
	svc.Config().MaxReportFiles = 2

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time { return clock }

	for i := 0; i < 4; i++ {
		clock = base.Add(time.Duration(i) * time.Minute)
		_, err := svc.Sync(context.Background(), false)
		require.NoError(t, err)
	}

	matches, err := filepath.Glob(filepath.Join(svc.Config().LogsDir(), reportPrefix+"*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// The survivors are the two newest.
	assert.Contains(t, matches[0], base.Add(2*time.Minute).Format(reportTimeLayout))
	assert.Contains(t, matches[1], base.Add(3*time.Minute).Format(reportTimeLayout))
}
