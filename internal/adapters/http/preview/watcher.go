package preview

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
)

// RebuildFunc regenerates the site.
type RebuildFunc func(ctx context.Context) error

// WatcherOption applies a configuration option to the Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithDebounce sets how long the sources must be quiet before a rebuild.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher rebuilds the site after changes under the watched directories.
// Bursts of events collapse into one rebuild and rebuilds never overlap.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dirs     []string
	rebuild  RebuildFunc
	debounce time.Duration
	log      logger.Logger

	mu        sync.Mutex
	pending   bool
	lastEvent time.Time

	buildMu sync.Mutex
	builds  int

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher creates a Watcher over dirs. Directories that do not exist
// are ignored.
func NewWatcher(dirs []string, rebuild RebuildFunc, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}
	w := &Watcher{
		fsw:      fsw,
		dirs:     dirs,
		rebuild:  rebuild,
		debounce: 500 * time.Millisecond,
		log:      logger.Nop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds the directory trees to the watcher and runs the event loop
// in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	watched := 0
	for _, dir := range w.dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			w.log.Warn(ctx, "not watching missing directory", logger.String("dir", dir))
			continue
		}
		n, err := w.addTree(dir)
		if err != nil {
			_ = w.fsw.Close()
			return fmt.Errorf("%w: %s: %w", ErrWatch, dir, err)
		}
		watched += n
	}
	w.log.Info(ctx, "watching for changes", logger.Strings("roots", w.dirs), logger.Int("dirs", watched))
	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.fsw.Close()
}

// Builds returns how many rebuilds have run.
func (w *Watcher) Builds() int {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()
	return w.builds
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 5
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error(ctx, "watcher error", logger.Error(err))
		case <-ticker.C:
			if w.due() {
				w.Rebuild(ctx)
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if _, err := w.addTree(ev.Name); err != nil {
				w.log.Warn(ctx, "cannot watch new directory", logger.String("dir", ev.Name), logger.Error(err))
			}
		}
	}
	w.log.Debug(ctx, "source changed", logger.String("path", ev.Name), logger.String("op", ev.Op.String()))

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// due reports whether a change is pending and the sources have been quiet
// for the debounce period, clearing the pending flag when it is.
func (w *Watcher) due() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.lastEvent) < w.debounce {
		return false
	}
	w.pending = false
	return true
}

// Rebuild runs the rebuild callback. Concurrent calls are serialized.
func (w *Watcher) Rebuild(ctx context.Context) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	start := time.Now()
	w.log.Info(ctx, "rebuilding site")
	if err := w.rebuild(ctx); err != nil {
		metrics.RecordRebuild("failed")
		w.log.Error(ctx, "rebuild failed", logger.Error(err))
	} else {
		metrics.RecordRebuild("ok")
		w.log.Info(ctx, "rebuild finished", logger.Float64("seconds", time.Since(start).Seconds()))
	}
	w.builds++
}
