package syncd

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// BacklogWatcher watches the backlog document for changes using fsnotify.
// The parent directory is watched rather than the file itself so editors
// that replace the file on save are still observed.
type BacklogWatcher struct {
	target  string
	watcher *fsnotify.Watcher
	events  chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	closed   bool
	debounce *time.Timer
	wg       sync.WaitGroup
}

// NewBacklogWatcher starts watching the given backlog file path.
func NewBacklogWatcher(path string) (*BacklogWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	bw := &BacklogWatcher{
		target:  path,
		watcher: watcher,
		events:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	bw.wg.Add(1)
	go bw.run()

	return bw, nil
}

// Events receives one value per debounced change to the backlog file.
func (bw *BacklogWatcher) Events() <-chan struct{} {
	return bw.events
}

// Close stops watching and closes the events channel.
func (bw *BacklogWatcher) Close() error {
	close(bw.done)

	bw.mu.Lock()
	bw.closed = true
	if bw.debounce != nil {
		bw.debounce.Stop()
	}
	bw.mu.Unlock()

	err := bw.watcher.Close()
	bw.wg.Wait()
	close(bw.events)
	return err
}

func (bw *BacklogWatcher) run() {
	defer bw.wg.Done()

	for {
		select {
		case <-bw.done:
			return
		case event, ok := <-bw.watcher.Events:
			if !ok {
				return
			}
			bw.handleEvent(event)
		case _, ok := <-bw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (bw *BacklogWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Base(event.Name) != filepath.Base(bw.target) {
		return
	}

	bw.mu.Lock()
	if bw.debounce != nil {
		bw.debounce.Stop()
	}
	bw.debounce = time.AfterFunc(watchDebounce, bw.notify)
	bw.mu.Unlock()
}

func (bw *BacklogWatcher) notify() {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return
	}

	select {
	case bw.events <- struct{}{}:
	default:
		// A pending event already covers this change.
	}
}
