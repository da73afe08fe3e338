package watcher

import (
	"path/filepath"
	"strings"

	"symtable/internal/core/errors"

	"github.com/gobwas/glob"
)

// filter decides which directories are registered and which file events
// count as source changes.
type filter struct {
	dirs  []glob.Glob
	files []glob.Glob
	exts  map[string]bool
}

func newFilter(opts Options) (*filter, error) {
	dirs, err := compile(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compile(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".go"}
	}
	f := &filter{dirs: dirs, files: files, exts: make(map[string]bool, len(exts))}
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.exts[ext] = true
	}
	return f, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeValidationError, "watcher: invalid pattern"),
				errors.CtxPath, p)
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *filter) skipDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range f.dirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (f *filter) skipFile(path string) bool {
	base := filepath.Base(path)
	if !f.exts[strings.ToLower(filepath.Ext(base))] {
		return true
	}
	for _, g := range f.files {
		if g.Match(base) {
			return true
		}
	}
	return false
}
