// Package watch triggers content reloads when YAML files under the content
// directory change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// contentPattern selects the files whose changes matter
const contentPattern = "**/*.{yaml,yml}"

// Triggerer is asked to reload after a burst of changes settles
type Triggerer interface {
	Trigger()
}

// Config configures the watcher
type Config struct {
	// Root is the content directory to watch recursively
	Root string

	// DebounceDelay is how long changes must be quiet before triggering
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Watcher watches the content directory and triggers reloads
type Watcher struct {
	config  Config
	target  Triggerer
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   bool
	lastEvent time.Time
}

// NewWatcher creates a watcher that calls target.Trigger after changes
func NewWatcher(config Config, target Triggerer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 300 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		target:  target,
		watcher: fsw,
		logger:  config.Logger,
	}, nil
}

// Start adds the watches and begins processing events in a goroutine
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("content watcher started",
		"root", w.config.Root,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// addWatchesRecursive adds watches to all directories under root
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case now := <-ticker.C:
			w.flushPending(now)
		}
	}
}

// handleFSEvent records a relevant change and watches new directories
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}

	rel, err := filepath.Rel(w.config.Root, event.Name)
	if err != nil || !matches(rel) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.pendingMu.Unlock()

	w.logger.Debug("content change detected", "path", rel, "op", event.Op.String())
}

// flushPending triggers once changes have been quiet for the debounce delay
func (w *Watcher) flushPending(now time.Time) {
	w.pendingMu.Lock()
	ready := w.pending && now.Sub(w.lastEvent) >= w.config.DebounceDelay
	if ready {
		w.pending = false
	}
	w.pendingMu.Unlock()

	if ready {
		w.logger.Info("content changed, triggering reload")
		w.target.Trigger()
	}
}

// matches reports whether a path relative to the root is a content file
func matches(rel string) bool {
	ok, err := doublestar.Match(contentPattern, filepath.ToSlash(rel))
	return err == nil && ok
}
