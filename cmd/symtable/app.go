package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"symtable/internal/core/config"
	domainerrors "symtable/internal/core/errors"
	"symtable/internal/engine/resolver"
	"symtable/internal/engine/script"
	"symtable/internal/shared/observability"
	"symtable/internal/symtab"
	"symtable/internal/ui/repl"
)

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "symtable v%s\n", versionString)
		return 0
	}

	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	if opts.metricsAddr != "" {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}

	closeLog := setupLogging(cfg, opts, stderr)
	defer closeLog()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	if cfg.Observability.MetricsAddr != "" {
		server := observability.NewServer(cfg.Observability.MetricsAddr)
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	switch opts.command {
	case "run":
		err = runScript(ctx, cfg, opts.args, stdin, stdout)
	case "scan":
		var scanOpts scanOptions
		scanOpts, err = parseScanOptions(opts.args, stderr)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			fmt.Fprintln(stderr, err)
			return 2
		}
		scanOpts.configPath = opts.configPath
		err = runScan(ctx, cfg, scanOpts, stdout)
	case "repl":
		err = runREPL(cfg)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", opts.command)
		return 2
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("command failed", append([]any{"command", opts.command}, domainerrors.LogArgs(err)...)...)
		return 1
	}
	return 0
}

// setupLogging installs the default slog logger. The REPL always logs to a
// file so the terminal UI is not corrupted.
func setupLogging(cfg *config.Config, opts cliOptions, stderr io.Writer) func() {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if opts.verbose {
		level = slog.LevelDebug
	}

	var output io.Writer = stderr
	closeFn := func() {}
	if opts.command == "repl" || cfg.Log.File != "" {
		logPath := config.ResolveLogPath(cfg)
		if f, err := openLogFile(logPath); err != nil {
			fmt.Fprintf(stderr, "warning: %v\n", err)
		} else {
			output = f
			closeFn = func() { _ = f.Close() }
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return closeFn
}

func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log dir for %s: %w", logPath, err)
	}
	if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
		return nil, fmt.Errorf("refusing to write logs to symlink path %s", logPath)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	return f, nil
}

func newSession(cfg *config.Config, out io.Writer) (*script.Session, error) {
	filter, err := symtab.ParseScopeOption(cfg.Dump.Filter)
	if err != nil {
		return nil, err
	}
	return script.NewSession(out,
		script.WithDefaultFilter(filter),
		script.WithStackOptions(symtab.WithObserver(observability.MetricsObserver{})),
	), nil
}

func runScript(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("run takes at most one script path")
	}

	session, err := newSession(cfg, stdout)
	if err != nil {
		return err
	}

	src := stdin
	name := "<stdin>"
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
		name = args[0]
	}

	slog.Debug("running script", "script", name, "session", session.ID)
	return session.Run(ctx, src)
}

func runREPL(cfg *config.Config) error {
	session, err := newSession(cfg, io.Discard)
	if err != nil {
		return err
	}
	slog.Info("starting repl", "session", session.ID)
	return repl.Run(session)
}

func runScan(ctx context.Context, cfg *config.Config, opts scanOptions, stdout io.Writer) error {
	res, err := newResolver(cfg, opts, stdout)
	if err != nil {
		return err
	}

	reports, err := res.ResolvePaths(ctx, opts.paths)
	if err != nil {
		return err
	}
	printReports(stdout, reports)

	if !opts.watch {
		return nil
	}
	return watchAndRescan(ctx, cfg, opts, res, stdout)
}

func newResolver(cfg *config.Config, opts scanOptions, stdout io.Writer) (*resolver.Resolver, error) {
	res, err := resolver.New(resolver.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	if opts.dump {
		res.DumpTo(stdout)
	}
	return res, nil
}

func printReports(w io.Writer, reports []*resolver.Report) {
	var unresolved, shadowed int
	for _, report := range reports {
		for _, f := range report.Findings {
			fmt.Fprintln(w, f.String())
		}
		unresolved += len(report.Unresolved())
		shadowed += len(report.Shadowed())
	}
	fmt.Fprintf(w, "%d files, %d unresolved, %d shadowed\n", len(reports), unresolved, shadowed)
}
