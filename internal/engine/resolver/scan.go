package resolver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"symtable/internal/core/errors"
	"symtable/internal/engine/parser"
	"symtable/internal/shared/util"
)

// Files expands paths into the Go files a scan would resolve. Directories
// are walked recursively, honoring the include and exclude globs; files
// named explicitly are kept as long as the parser supports them.
func (r *Resolver) Files(ctx context.Context, paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if os.IsNotExist(err) {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeNotFound, "scan path does not exist"),
				errors.CtxPath, root)
		}
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, root)
		}
		if !info.IsDir() {
			if r.parser.IsSupportedPath(root) {
				add(filepath.Clean(root))
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path == root {
					return nil
				}
				for _, g := range r.excludeDirs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !r.parser.IsSupportedPath(path) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = util.NormalizePatternPath(rel)
			if !r.included(rel) {
				return nil
			}
			for _, g := range r.excludeFiles {
				if g.Match(base) || g.Match(rel) {
					return nil
				}
			}

			add(path)
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, root)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (r *Resolver) included(rel string) bool {
	if len(r.include) == 0 {
		return true
	}
	for _, g := range r.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ResolvePaths resolves every file selected by Files. Files sharing a
// directory and package clause form one package: each is resolved against
// the top-level names of all of them. Reports are sorted by path. A file that
// fails to read or parse stops the scan.
func (r *Resolver) ResolvePaths(ctx context.Context, paths []string) ([]*Report, error) {
	files, err := r.Files(ctx, paths)
	if err != nil {
		return nil, err
	}
	return r.resolveFiles(ctx, files)
}

type packageKey struct {
	dir  string
	name string
}

func (r *Resolver) resolveFiles(ctx context.Context, files []string) ([]*Report, error) {
	var trees []*parser.Tree
	defer func() {
		for _, t := range trees {
			t.Close()
		}
	}()

	packages := make(map[packageKey][]*parser.Tree)
	var order []packageKey
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, path)
		}
		tree, err := r.parser.Parse(path, src)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)

		key := packageKey{dir: filepath.Dir(path), name: packageClause(tree)}
		if _, ok := packages[key]; !ok {
			order = append(order, key)
		}
		packages[key] = append(packages[key], tree)
	}

	reports := make([]*Report, 0, len(files))
	for _, key := range order {
		pkgReports, err := r.resolvePackage(ctx, packages[key])
		if err != nil {
			return nil, err
		}
		reports = append(reports, pkgReports...)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })
	return reports, nil
}

// ResolveChanged re-resolves the packages touched by a batch of changed and
// removed files: every sibling in their directories that passes the exclude
// filters is resolved again, since a change in one file can resolve or break
// references in the others.
func (r *Resolver) ResolveChanged(ctx context.Context, changed, removed []string) ([]*Report, error) {
	dirs := make(map[string]bool)
	for _, p := range append(append([]string(nil), changed...), removed...) {
		dirs[filepath.Dir(p)] = true
	}

	var files []string
	for _, dir := range util.SortedKeys(dirs) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.AddContext(err, errors.CtxPath, dir)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() || !r.parser.IsSupportedPath(path) || r.fileExcluded(e.Name()) {
				continue
			}
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return r.resolveFiles(ctx, files)
}

func (r *Resolver) fileExcluded(name string) bool {
	for _, g := range r.excludeFiles {
		if g.Match(name) {
			return true
		}
	}
	return false
}
