package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes the library directory and reports files disappearing
// while the daemon runs. Removals are logged once per path; rotation
// itself already degrades by skipping the missing video, this is the
// observability channel for it.
type Watcher struct {
	logger *zap.Logger
	root   string

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	reported map[string]bool
}

// NewWatcher creates a watcher for the library's root directory.
func NewWatcher(logger *zap.Logger, lib *Library) *Watcher {
	return &Watcher{
		logger:   logger,
		root:     lib.Root(),
		reported: make(map[string]bool),
	}
}

// Start begins watching. It returns immediately; the watch loop runs
// until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create library watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.run(watchCtx, fsw)

	w.logger.Info("Library watcher started", zap.String("root", w.root))
	return nil
}

// Stop stops the watch loop and waits for it to exit.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.reportRemoval(ev.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Library watcher error", zap.Error(err))
		}
	}
}

// reportRemoval warns about a removed path, once per path.
func (w *Watcher) reportRemoval(path string) {
	w.mu.Lock()
	seen := w.reported[path]
	w.reported[path] = true
	w.mu.Unlock()

	if seen {
		w.logger.Debug("Library path removed again", zap.String("path", path))
		return
	}
	w.logger.Warn("Library path removed while daemon running",
		zap.String("path", path))
}
