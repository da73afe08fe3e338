package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"symtable/internal/core/errors"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDelay = 100 * time.Millisecond

// Watcher re-reads a config file after it changes on disk and hands every
// valid revision to a callback. Saves that leave the content unchanged and
// edits that fail validation are skipped, so the callback only ever sees
// configs that differ from the last one delivered.
type Watcher struct {
	path     string
	delay    time.Duration
	onReload func(*Config)

	mu   sync.Mutex
	last []byte

	timer    *time.Timer
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher watches path. A zero delay uses a short default.
func NewWatcher(path string, delay time.Duration, onReload func(*Config)) (*Watcher, error) {
	if onReload == nil {
		return nil, errors.New(errors.CodeValidationError, "config watcher: nil reload callback")
	}
	if delay <= 0 {
		delay = defaultReloadDelay
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		delay:    delay,
		onReload: onReload,
		stop:     make(chan struct{}),
	}
	if data, err := os.ReadFile(w.path); err == nil {
		w.last = data
	}
	return w, nil
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "config watcher: create fsnotify watcher")
	}
	// Editors often replace the file, so watch its directory.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return errors.AddContext(err, errors.CtxPath, w.path)
	}

	w.wg.Add(1)
	go w.loop(ctx, fsw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()
	defer w.cancelTimer()

	slog.Debug("config watcher started", "path", w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				w.schedule()
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				slog.Warn("config file removed, keeping current settings", "path", w.path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) cancelTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Stop ends the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		slog.Warn("config reload failed", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	unchanged := w.last != nil && bytes.Equal(data, w.last)
	w.mu.Unlock()
	if unchanged {
		return
	}

	cfg, err := Parse(data)
	if err != nil {
		slog.Warn("ignoring invalid config revision", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	w.last = data
	w.mu.Unlock()

	slog.Info("config reloaded", "path", w.path)
	w.onReload(cfg)
}
