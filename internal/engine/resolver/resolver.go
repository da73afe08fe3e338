package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"symtable/internal/core/config"
	"symtable/internal/core/errors"
	"symtable/internal/engine/parser"
	"symtable/internal/shared/observability"
	"symtable/internal/symtab"

	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Include         []string
	ExcludeDirs     []string
	ExcludeFiles    []string
	ExcludeSymbols  []string
	ReportShadowing bool
	// Observer receives the events of every scope stack the resolver builds.
	Observer symtab.Observer
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Include:         cfg.Scan.Include,
		ExcludeDirs:     cfg.Exclude.Dirs,
		ExcludeFiles:    cfg.Exclude.Files,
		ExcludeSymbols:  cfg.Exclude.Symbols,
		ReportShadowing: cfg.ShadowingEnabled(),
		Observer:        observability.MetricsObserver{},
	}
}

// Resolver checks Go source files for identifiers that do not resolve to any
// enclosing declaration, using a scope stack that mirrors the block
// structure of each file.
type Resolver struct {
	parser          *parser.Parser
	include         []glob.Glob
	excludeDirs     []glob.Glob
	excludeFiles    []glob.Glob
	excludeSymbols  []glob.Glob
	reportShadowing bool
	observer        symtab.Observer
	dump            io.Writer
}

func New(opts Options) (*Resolver, error) {
	loader, err := parser.NewGrammarLoader("go")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load grammar")
	}

	r := &Resolver{
		parser:          parser.NewParser(loader),
		reportShadowing: opts.ReportShadowing,
		observer:        opts.Observer,
	}
	if r.include, err = compileGlobs("include", opts.Include, '/'); err != nil {
		return nil, err
	}
	if r.excludeDirs, err = compileGlobs("exclude dir", opts.ExcludeDirs); err != nil {
		return nil, err
	}
	if r.excludeFiles, err = compileGlobs("exclude file", opts.ExcludeFiles, '/'); err != nil {
		return nil, err
	}
	if r.excludeSymbols, err = compileGlobs("exclude symbol", opts.ExcludeSymbols); err != nil {
		return nil, err
	}
	return r, nil
}

func compileGlobs(what string, patterns []string, separators ...rune) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, separators...)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid %s pattern %q", what, p))
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Extensions lists the file extensions the resolver can parse.
func (r *Resolver) Extensions() []string {
	return r.parser.SupportedExtensions()
}

// DumpTo makes the resolver write a Current dump of every function scope to
// w just before the scope is exited. A nil writer disables dumping.
func (r *Resolver) DumpTo(w io.Writer) {
	r.dump = w
}

func (r *Resolver) symbolExcluded(name string) bool {
	for _, g := range r.excludeSymbols {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ResolveFile parses src as the Go file at path and reports unresolved and
// shadowing identifiers. The file is treated as a package of its own; use
// ResolvePaths to resolve packages spread over several files.
func (r *Resolver) ResolveFile(ctx context.Context, path string, src []byte) (*Report, error) {
	tree, err := r.parser.Parse(path, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return r.resolveTree(ctx, tree, nil)
}

// resolvePackage resolves every file of one package against a package scope
// holding the top-level names of all of them.
func (r *Resolver) resolvePackage(ctx context.Context, pkg []*parser.Tree) ([]*Report, error) {
	reports := make([]*Report, 0, len(pkg))
	for _, tree := range pkg {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, err := r.resolveTree(ctx, tree, pkg)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *Resolver) resolveTree(ctx context.Context, tree *parser.Tree, pkg []*parser.Tree) (*Report, error) {
	path := tree.Path
	_, span := observability.Tracer.Start(ctx, "resolver.ResolveFile",
		trace.WithAttributes(
			attribute.String("path", path),
			attribute.Int("package_files", max(len(pkg), 1)),
		))
	defer span.End()

	start := time.Now()
	var opts []symtab.Option
	if r.observer != nil {
		opts = append(opts, symtab.WithObserver(r.observer))
	}
	w := &walker{
		res:    r,
		tree:   tree,
		pkg:    pkg,
		stack:  symtab.New[string, Binding](opts...),
		report: &Report{Path: path},
	}
	if syntaxErrs := tree.SyntaxErrors(); len(syntaxErrs) > 0 {
		slog.Warn("syntax errors in file, resolving what parsed", "path", path, "count", len(syntaxErrs))
		for _, se := range syntaxErrs {
			w.report.Findings = append(w.report.Findings, Finding{
				Kind:     SyntaxError,
				Name:     se.Missing,
				Location: se.Location,
			})
		}
	}
	if err := w.file(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	w.report.sortFindings()

	observability.ResolveDuration.WithLabelValues(tree.Language).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("findings", len(w.report.Findings)),
		attribute.Int("max_depth", w.report.MaxDepth),
	)
	slog.Debug("resolved file", "path", path, "findings", len(w.report.Findings), "max_depth", w.report.MaxDepth)
	return w.report, nil
}
