package session

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event describes an externally observed change to the session file.
type Event int

const (
	// EventCleared fires when another process logged out (file removed or
	// token emptied). The local app should drop to the login surface
	// instead of discovering the wipe via a 401 on its next request.
	EventCleared Event = iota
	// EventUpdated fires when credentials changed on disk, e.g. a login
	// from another terminal.
	EventUpdated
)

// Watcher observes the session file for changes made by other process
// instances sharing the same home directory.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	events  chan Event

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewWatcher creates a watcher for the store's backing file. The parent
// directory is watched rather than the file itself so removes and renames
// keep being observed.
func NewWatcher(store *Store, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		store:   store,
		watcher: fw,
		logger:  logger,
		events:  make(chan Event, 4),
		done:    make(chan struct{}),
	}, nil
}

// Events delivers session change notifications. The channel is closed when
// the watcher stops.
func (w *Watcher) Events() <-chan Event { return w.events }

// Start begins watching. Non-blocking; events arrive on Events() until the
// context is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Debug("session watcher started", zap.String("dir", dir))

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)
	defer close(w.done)

	target := filepath.Clean(w.store.Path())
	hadToken := w.store.IsAuthenticated()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			// Re-read the file; a write racing with a remove resolves to
			// whatever is on disk now.
			if err := w.store.Load(); err != nil {
				w.store.mu.Lock()
				w.store.token = ""
				w.store.user = nil
				w.store.mu.Unlock()
			}

			hasToken := w.store.IsAuthenticated()
			switch {
			case hadToken && !hasToken:
				w.logger.Info("session cleared externally")
				w.emit(ctx, EventCleared)
			case hasToken:
				w.logger.Debug("session updated externally")
				w.emit(ctx, EventUpdated)
			}
			hadToken = hasToken
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("session watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) emit(ctx context.Context, e Event) {
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

// Close stops the watcher and waits for the run loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}
