package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"symtable/internal/core/config"
	"symtable/internal/core/watcher"
	"symtable/internal/engine/resolver"
)

// watchSession re-resolves packages as their sources change. A config
// reload swaps in a new resolver and restarts the source watcher so the
// exclude and extension filters follow the new config.
type watchSession struct {
	ctx    context.Context
	opts   scanOptions
	stdout io.Writer

	// mu guards res and src and serializes rescans.
	mu  sync.Mutex
	res *resolver.Resolver
	src *watcher.Watcher
}

func watchAndRescan(ctx context.Context, cfg *config.Config, opts scanOptions, res *resolver.Resolver, stdout io.Writer) error {
	s := &watchSession{ctx: ctx, opts: opts, stdout: stdout, res: res}

	src, err := s.startSource(cfg, res)
	if err != nil {
		return err
	}
	s.src = src
	defer s.stop()

	if _, err := os.Stat(opts.configPath); err == nil {
		cw, err := config.NewWatcher(opts.configPath, cfg.Watch.Debounce, s.reload)
		if err != nil {
			return err
		}
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			defer cw.Stop()
		}
	}

	slog.Info("watching for changes", "paths", opts.paths)
	<-ctx.Done()
	return ctx.Err()
}

func (s *watchSession) startSource(cfg *config.Config, res *resolver.Resolver) (*watcher.Watcher, error) {
	w, err := watcher.New(watcher.Options{
		Debounce:     cfg.Watch.Debounce,
		RateLimit:    cfg.Watch.RateLimit,
		Burst:        cfg.Watch.Burst,
		ExcludeDirs:  cfg.Exclude.Dirs,
		ExcludeFiles: cfg.Exclude.Files,
		Extensions:   res.Extensions(),
	}, s.rescan)
	if err != nil {
		return nil, err
	}
	if err := w.Start(s.ctx, s.opts.paths); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

func (s *watchSession) rescan(batch watcher.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range batch.Removed {
		slog.Info("source removed", "path", path)
	}
	reports, err := s.res.ResolveChanged(s.ctx, batch.Changed, batch.Removed)
	if err != nil {
		slog.Error("rescan failed", "error", err)
		return
	}
	if len(reports) > 0 {
		printReports(s.stdout, reports)
	}
}

// reload applies a new config. On any error the running resolver and
// watcher stay in place.
func (s *watchSession) reload(next *config.Config) {
	res, err := newResolver(next, s.opts, s.stdout)
	if err != nil {
		slog.Warn("keeping previous resolver settings", "error", err)
		return
	}
	src, err := s.startSource(next, res)
	if err != nil {
		slog.Warn("keeping previous watcher settings", "error", err)
		return
	}

	s.mu.Lock()
	old := s.src
	s.res, s.src = res, src
	s.mu.Unlock()

	if old != nil {
		_ = old.Stop()
	}
	slog.Info("scan settings reloaded")
}

func (s *watchSession) stop() {
	s.mu.Lock()
	src := s.src
	s.mu.Unlock()
	if src != nil {
		_ = src.Stop()
	}
}
