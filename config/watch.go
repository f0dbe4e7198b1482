package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jonwraymond/layerconf/observe"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads an engine when its source files change.
type Watcher struct {
	engine   *Engine
	dir      string
	debounce time.Duration
	logger   observe.Logger
	onReload func(error)
	ready    chan struct{}
	readyOne sync.Once
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(l observe.Logger) WatchOption {
	return func(w *Watcher) { w.logger = l }
}

// OnReload registers fn to be called after every reload attempt.
func OnReload(fn func(error)) WatchOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher watches dir, the directory holding engine's source files.
func NewWatcher(engine *Engine, dir string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		engine:   engine,
		dir:      dir,
		debounce: DefaultDebounce,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = engine.logger
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	return w
}

// Ready is closed once the watch is established.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done. Bursts of events within the debounce window
// cause a single Reload. Run may be called again after it returns.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", w.dir, err)
	}
	w.readyOne.Do(func() { close(w.ready) })
	w.logger.Debug(ctx, "watching config sources", observe.String("dir", w.dir))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug(ctx, "config source changed",
				observe.String("source", ev.Name),
				observe.String("op", ev.Op.String()),
			)
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "config watcher error", observe.Err(err))

		case <-timer.C:
			err := w.engine.Reload(ctx)
			if err != nil {
				w.logger.Warn(ctx, "config reload failed", observe.Err(err))
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	ext := filepath.Ext(ev.Name)
	for _, f := range w.engine.formats {
		if f.Ext == ext {
			return true
		}
	}
	return false
}
