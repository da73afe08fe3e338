package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"symtable/internal/core/errors"
	"symtable/internal/shared/observability"
	"symtable/internal/shared/util"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

type Options struct {
	Debounce     time.Duration
	RateLimit    float64 // batches per second; <= 0 is unlimited
	Burst        int
	ExcludeDirs  []string
	ExcludeFiles []string
	Extensions   []string // defaults to .go
}

// Batch is one debounced set of source file changes. A path appears in at
// most one of the two lists, according to its state when the batch is cut.
type Batch struct {
	Changed []string
	Removed []string
}

func (b Batch) Empty() bool {
	return len(b.Changed) == 0 && len(b.Removed) == 0
}

// Watcher turns fsnotify events under a set of roots into batches of
// changed and removed source files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	filter   *filter
	debounce time.Duration
	limiter  *util.Limiter
	onBatch  func(Batch)

	// deliver serializes callbacks.
	deliver sync.Mutex

	mu      sync.Mutex
	removed map[string]bool
	timer   *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts Options, onBatch func(Batch)) (*Watcher, error) {
	if onBatch == nil {
		return nil, errors.New(errors.CodeValidationError, "watcher: nil batch callback")
	}
	f, err := newFilter(opts)
	if err != nil {
		return nil, err
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "watcher: create fsnotify watcher")
	}
	return &Watcher{
		fsw:      fsw,
		filter:   f,
		debounce: debounce,
		limiter:  util.NewLimiter(opts.RateLimit, opts.Burst),
		onBatch:  onBatch,
		removed:  make(map[string]bool),
		done:     make(chan struct{}),
	}, nil
}

// Start registers every directory under paths and handles events until ctx
// is canceled or Stop is called. A file path registers its directory.
func (w *Watcher) Start(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if err := w.register(p); err != nil {
			return errors.AddContext(err, errors.CtxPath, p)
		}
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.loop()
	return nil
}

func (w *Watcher) register(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.fsw.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.filter.skipDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addDir(event.Name)
			return
		}
	}
	if w.filter.skipFile(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.mark(event.Name, true)
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.mark(event.Name, false)
	}
}

// addDir registers a directory created after Start. Files already in it
// are queued, since their create events may predate the registration.
func (w *Watcher) addDir(dir string) {
	if w.filter.skipDir(dir) {
		return
	}
	if err := w.register(dir); err != nil {
		slog.Warn("failed to watch new directory", "path", dir, "error", err)
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && !w.filter.skipFile(path) {
			w.mark(path, false)
		}
		return nil
	})
}

func (w *Watcher) mark(path string, removed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.removed[path] = removed
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.deliver.Lock()
	defer w.deliver.Unlock()

	if err := w.limiter.Wait(w.ctx, 1); err != nil {
		return
	}

	w.mu.Lock()
	pending := w.removed
	w.removed = make(map[string]bool)
	w.mu.Unlock()

	var batch Batch
	for path, removed := range pending {
		// Paths that vanished since their last event count as removed.
		if !removed {
			if _, err := os.Stat(path); err != nil {
				removed = true
			}
		}
		if removed {
			batch.Removed = append(batch.Removed, path)
		} else {
			batch.Changed = append(batch.Changed, path)
		}
	}
	if batch.Empty() {
		return
	}
	sort.Strings(batch.Changed)
	sort.Strings(batch.Removed)
	slog.Debug("source batch", "changed", len(batch.Changed), "removed", len(batch.Removed))
	w.onBatch(batch)
}

// Stop ends event handling and closes the fsnotify watcher. Pending changes
// are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsw.Close()
	if w.ctx != nil {
		<-w.done
	}
	return err
}
