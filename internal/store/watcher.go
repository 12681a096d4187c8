package store

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultRehydrateDelay coalesces bursts of history-file writes into a
// single rehydration pass. A bulk send from another process lands as many
// write events in quick succession; the store only needs to reload once.
const DefaultRehydrateDelay = 100 * time.Millisecond

// FileWatcher rehydrates the store when another process appends to the
// history file, so notifications sent by a second notica invocation show
// up in an already-running notification center.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	path    string
	delay   time.Duration

	mu      sync.Mutex
	pending *time.Timer
	running bool
	done    chan struct{}
}

// NewFileWatcher creates a file watcher for the store's history file.
func NewFileWatcher(store *Store, path string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher: watcher,
		store:   store,
		path:    path,
		delay:   DefaultRehydrateDelay,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the history file. Starting twice is a no-op.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	// Watch the directory, not the file: the store's Rewrite replaces the
	// file through a rename, which drops a watch set on the file itself.
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	go fw.watch()
	return nil
}

func (fw *FileWatcher) watch() {
	filename := filepath.Base(fw.path)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fw.scheduleRehydrate()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("history watcher error", "error", err)

		case <-fw.done:
			return
		}
	}
}

// scheduleRehydrate arms the coalescing timer; further writes within the
// delay window push the reload back.
func (fw *FileWatcher) scheduleRehydrate() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return
	}
	if fw.pending != nil {
		fw.pending.Reset(fw.delay)
		return
	}
	fw.pending = time.AfterFunc(fw.delay, fw.rehydrate)
}

func (fw *FileWatcher) rehydrate() {
	fw.mu.Lock()
	fw.pending = nil
	fw.mu.Unlock()

	before := fw.store.Count()
	if err := fw.store.Hydrate(); err != nil {
		slog.Warn("failed to rehydrate store", "file", fw.path, "error", err)
		return
	}
	if added := fw.store.Count() - before; added > 0 {
		slog.Debug("history file changed, rehydrated store",
			"file", fw.path, "added", added)
	}
}

// Stop stops the watcher and drops any pending rehydration.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return nil
	}
	fw.running = false
	if fw.pending != nil {
		fw.pending.Stop()
		fw.pending = nil
	}
	close(fw.done)
	return fw.watcher.Close()
}
