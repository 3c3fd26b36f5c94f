package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the store's database file for writes made by other
// processes. The store is process-local by design; rather than silently
// risking a second process clobbering collections, the watcher surfaces
// foreign writes so callers can warn the user.
//
// Writes performed through this process's Store are indistinguishable
// from foreign ones at the filesystem level, so callers suspend the
// watcher around their own mutations or treat events as advisory.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan string
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	dbPath  string
}

// NewWatcher creates a Watcher for the given store database path.
// The watcher must be started with Start() before it emits events.
func NewWatcher(dbPath string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}

	return &Watcher{
		watcher: fw,
		events:  make(chan string, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
		dbPath:  abs,
	}, nil
}

// Start begins watching the database file's directory.
// The directory is watched rather than the file itself so that WAL
// checkpoints replacing the file do not drop the watch.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	if err := w.watcher.Add(filepath.Dir(w.dbPath)); err != nil {
		return fmt.Errorf("failed to watch store directory: %w", err)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop stops watching and cleans up. Blocks until the event loop exits.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.wg.Wait()

	close(w.events)
	close(w.errors)

	return nil
}

// Events emits the path of the store file each time it is written.
// Closed when the watcher is stopped.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Errors emits watcher errors. Closed when the watcher is stopped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// IsRunning reports whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isStoreFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			select {
			case w.events <- event.Name:
			case <-w.done:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// isStoreFile matches the database file and its WAL/SHM sidecars.
func (w *Watcher) isStoreFile(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == w.dbPath || strings.HasPrefix(abs, w.dbPath+"-")
}
