/*
refresher.go - Reloads the dataset cache when the CSV exports change

PURPOSE:
  The exports are replaced in place by an upstream job. The refresher
  watches their directories with fsnotify and reloads the cache once the
  files have been quiet for the debounce window, so a half-written file is
  never parsed twice in a row.

DESIGN:
  - Watches directories, not files: editors and copy jobs replace files by
    rename, which drops a watch held on the file itself
  - Events for other files in the same directories are ignored
  - A failed reload keeps the previous tables (see dataset.Cache.Reload)

USAGE:
  r, err := NewRefresher(cache, []string{productsPath, salesPath}, 2*time.Second, logger)
  r.Start(ctx)
  // ... later
  r.Stop()

SEE ALSO:
  - dataset/cache.go: Cache.Reload
  - cmd/server/serve.go: Started when watch.enabled is set
*/
package api

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/warp/retail-dashboard/dataset"
	"go.uber.org/zap"
)

// Reloader is the part of dataset.Cache the refresher needs.
type Reloader interface {
	Reload(ctx context.Context) (*dataset.Tables, error)
}

// Refresher reloads a cache after its source files change.
type Refresher struct {
	Debounce time.Duration

	reloader Reloader
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	files    map[string]bool

	mu      sync.Mutex
	pending time.Time // last relevant event; zero when nothing is pending
	reloads int
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefresher creates a refresher for the given files.
func NewRefresher(reloader Reloader, paths []string, debounce time.Duration, logger *zap.Logger) (*Refresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	r := &Refresher{
		Debounce: debounce,
		reloader: reloader,
		logger:   logger,
		watcher:  w,
		files:    make(map[string]bool),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		r.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return r, nil
}

// Start begins watching. It is non-blocking.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true

	go r.run(ctx)

	r.logger.Info("refresher started", zap.Int("files", len(r.files)), zap.Duration("debounce", r.Debounce))
}

// Stop stops the watcher and waits for the loop to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		r.watcher.Close()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh

	if err := r.watcher.Close(); err != nil {
		r.logger.Warn("refresher: error closing watcher", zap.Error(err))
	}
	r.logger.Info("refresher stopped")
}

// Reloads returns how many reloads have been attempted.
func (r *Refresher) Reloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloads
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.doneCh)

	tick := r.Debounce / 4
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-r.stopCh:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("refresher: watch error", zap.Error(err))

		case <-ticker.C:
			r.reloadIfSettled(ctx)
		}
	}
}

func (r *Refresher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !r.files[abs] {
		return
	}
	r.logger.Debug("refresher: file changed", zap.String("path", abs), zap.String("op", event.Op.String()))

	r.mu.Lock()
	r.pending = time.Now()
	r.mu.Unlock()
}

func (r *Refresher) reloadIfSettled(ctx context.Context) {
	r.mu.Lock()
	if r.pending.IsZero() || time.Since(r.pending) < r.Debounce {
		r.mu.Unlock()
		return
	}
	r.pending = time.Time{}
	r.reloads++
	r.mu.Unlock()

	t, err := r.reloader.Reload(ctx)
	if err != nil {
		r.logger.Error("refresher: reload failed, keeping previous dataset", zap.Error(err))
		return
	}
	r.logger.Info("dataset reloaded",
		zap.Int("products", len(t.Products)),
		zap.Int("sales", len(t.Sales)))
}
