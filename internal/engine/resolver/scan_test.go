package resolver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"symtable/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolvePaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() { run() }\n")
	writeFile(t, filepath.Join(root, "run.go"), "package main\n\nfunc run() { _ = nope }\n")
	writeFile(t, filepath.Join(root, "run_test.go"), "package main\n\nfunc helper() { _ = alsoNope }\n")
	writeFile(t, filepath.Join(root, "vendor", "dep", "dep.go"), "package dep\n\nvar X = missing\n")
	writeFile(t, filepath.Join(root, "internal", "pkg", "pkg.go"), "package pkg\n\nfunc F() int { return 1 }\n")
	writeFile(t, filepath.Join(root, "README.md"), "# demo\n")

	r := newTestResolver(t, Options{
		Include:      []string{"**.go"},
		ExcludeDirs:  []string{"vendor"},
		ExcludeFiles: []string{"*_test.go"},
	})

	files, err := r.Files(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "internal", "pkg", "pkg.go"),
		filepath.Join(root, "main.go"),
		filepath.Join(root, "run.go"),
	}, files)

	reports, err := r.ResolvePaths(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, filepath.Join(root, "internal", "pkg", "pkg.go"), reports[0].Path)
	assert.Empty(t, reports[0].Findings)
	// run is declared in run.go, a sibling in package main.
	assert.Empty(t, reports[1].Findings)
	require.Len(t, reports[2].Findings, 1)
	assert.Equal(t, "nope", reports[2].Findings[0].Name)
}

func TestFiles_IncludeAndExplicitFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cmd", "tool", "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "lib.go"), "package lib\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "hello\n")

	r := newTestResolver(t, Options{Include: []string{"cmd/**.go"}})

	files, err := r.Files(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "cmd", "tool", "main.go")}, files)

	// Explicit files bypass the include globs but not the language check.
	files, err = r.Files(context.Background(), []string{
		filepath.Join(root, "lib.go"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "lib.go"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "lib.go")}, files)
}

func TestFiles_MissingPath(t *testing.T) {
	r := newTestResolver(t, Options{})

	_, err := r.Files(context.Background(), []string{filepath.Join(t.TempDir(), "absent")})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestResolvePaths_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")

	r := newTestResolver(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolvePaths(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolvePaths_PackageSpansFiles(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "b.go")
	writeFile(t, a, "package demo\n\nfunc helper() int { return limit }\n")
	writeFile(t, b, "package demo\n\nconst limit = 3\n\nfunc use() int { return helper() }\n")
	writeFile(t, filepath.Join(root, "other", "c.go"), "package demo\n\nfunc g() int { return helper() }\n")

	r := newTestResolver(t, Options{ReportShadowing: true})
	reports, err := r.ResolvePaths(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, a, reports[0].Path)
	assert.Empty(t, reports[0].Findings)
	assert.Equal(t, b, reports[1].Path)
	assert.Empty(t, reports[1].Findings)

	// Same package clause in another directory is another package.
	require.Len(t, reports[2].Findings, 1)
	assert.Equal(t, `helper`, reports[2].Findings[0].Name)
	assert.Equal(t, Unresolved, reports[2].Findings[0].Kind)
}

func TestResolvePaths_ExternalTestPackageIsSeparate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib.go"), "package lib\n\nfunc Open() {}\n")
	writeFile(t, filepath.Join(root, "lib_test.go"), "package lib_test\n\nfunc use() { Open() }\n")

	r := newTestResolver(t, Options{})
	reports, err := r.ResolvePaths(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Empty(t, reports[0].Findings)
	require.Len(t, reports[1].Findings, 1)
	assert.Equal(t, "Open", reports[1].Findings[0].Name)
}

func TestResolvePaths_ShadowingSiblingDeclaration(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package demo\n\nvar count int\n")
	b := filepath.Join(root, "b.go")
	writeFile(t, b, "package demo\n\nfunc f() {\n\tcount := 1\n\t_ = count\n}\n")

	r := newTestResolver(t, Options{ReportShadowing: true})
	reports, err := r.ResolvePaths(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Len(t, reports[1].Findings, 1)
	assert.Equal(t, b+`:4:2: "count" shadows declaration at a.go:3`, reports[1].Findings[0].String())
}

func TestResolveChanged_ReresolvesSiblings(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "b.go")
	writeFile(t, a, "package demo\n\nfunc helper() {}\n")
	writeFile(t, b, "package demo\n\nfunc use() { helper() }\n")
	writeFile(t, filepath.Join(root, "gen_skip.go"), "package demo\n\nvar _ = nope\n")

	r := newTestResolver(t, Options{ExcludeFiles: []string{"gen_*.go"}})

	reports, err := r.ResolveChanged(context.Background(), []string{b}, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Empty(t, reports[0].Findings)
	assert.Empty(t, reports[1].Findings)

	require.NoError(t, os.Remove(a))
	reports, err = r.ResolveChanged(context.Background(), nil, []string{a})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, b, reports[0].Path)
	require.Len(t, reports[0].Findings, 1)
	assert.Equal(t, "helper", reports[0].Findings[0].Name)

	reports, err = r.ResolveChanged(context.Background(), nil, []string{filepath.Join(root, "gone", "x.go")})
	require.NoError(t, err)
	assert.Empty(t, reports)
}
