package syncd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBacklogWatcherEmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BACKLOG.md")
	require.NoError(t, os.WriteFile(path, []byte("- [ ] **[MEM-001]** Task\n"), 0o644))

	bw, err := NewBacklogWatcher(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bw.Close() })

	require.NoError(t, os.WriteFile(path, []byte("- [x] **[MEM-001]** Task\n"), 0o644))

	select {
	case <-bw.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change event")
	}
}

func TestBacklogWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BACKLOG.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	bw, err := NewBacklogWatcher(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bw.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "OTHER.md"), []byte("y"), 0o644))

	select {
	case <-bw.Events():
		t.Fatal("sibling file writes must not emit events")
	case <-time.After(500 * time.Millisecond):
	}
}
