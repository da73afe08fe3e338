package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"symtable/internal/core/errors"
)

func TestNew_RejectsNilCallback(t *testing.T) {
	w, err := New(Options{Debounce: 100 * time.Millisecond}, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(Options{ExcludeDirs: []string{"[a-"}}, func(Batch) {})
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func startWatcher(t *testing.T, opts Options, roots ...string) <-chan Batch {
	t.Helper()
	batches := make(chan Batch, 16)
	w, err := New(opts, func(b Batch) { batches <- b })
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	if err := w.Start(context.Background(), roots); err != nil {
		t.Fatal(err)
	}
	return batches
}

// waitFor reads batches until pick(batch) contains want.
func waitFor(t *testing.T, batches <-chan Batch, pick func(Batch) []string, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-batches:
			if slices.Contains(pick(b), want) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func changed(b Batch) []string { return b.Changed }
func removed(b Batch) []string { return b.Removed }

func TestWatcher_ChangesAndExclusions(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, Options{
		Debounce:     100 * time.Millisecond,
		ExcludeDirs:  []string{"testdata"},
		ExcludeFiles: []string{"*.gen.go"},
	}, root)

	mainFile := filepath.Join(root, "main.go")
	if err := os.WriteFile(mainFile, []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, batches, changed, mainFile)

	for _, name := range []string{"notes.txt", "types.gen.go"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case b := <-batches:
		t.Errorf("excluded files produced a batch: %+v", b)
	case <-time.After(500 * time.Millisecond):
	}

	subdir := filepath.Join(root, "pkg")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(subdir, "nested.go")
	if err := os.WriteFile(nested, []byte("package pkg"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, batches, changed, nested)
}

func TestWatcher_RenameReportsBothSides(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "old.go")
	if err := os.WriteFile(oldPath, []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}
	batches := startWatcher(t, Options{Debounce: 100 * time.Millisecond}, root)

	newPath := filepath.Join(root, "new.go")
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}

	var got Batch
	deadline := time.After(2 * time.Second)
	for !slices.Contains(got.Changed, newPath) || !slices.Contains(got.Removed, oldPath) {
		select {
		case b := <-batches:
			got.Changed = append(got.Changed, b.Changed...)
			got.Removed = append(got.Removed, b.Removed...)
		case <-deadline:
			t.Fatalf("timed out, got %+v", got)
		}
	}
}

func TestWatcher_Remove(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.go")
	if err := os.WriteFile(path, []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}
	batches := startWatcher(t, Options{Debounce: 50 * time.Millisecond}, root)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, batches, removed, path)
}

func TestWatcher_StopAfterCancel(t *testing.T) {
	w, err := New(Options{Debounce: 10 * time.Millisecond}, func(Batch) {})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx, []string{t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := w.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
}

func TestFilter(t *testing.T) {
	f, err := newFilter(Options{
		ExcludeDirs:  []string{"vendor"},
		ExcludeFiles: []string{"*_test.go"},
		Extensions:   []string{"go", " .GO "},
	})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		path string
		skip bool
	}{
		{"main.py", true},
		{"MAIN.GO", false},
		{"stack_test.go", true},
		{"/repo/symtab/stack.go", false},
	}
	for _, tc := range cases {
		if got := f.skipFile(tc.path); got != tc.skip {
			t.Errorf("skipFile(%q) = %v, want %v", tc.path, got, tc.skip)
		}
	}
	if !f.skipDir("/repo/vendor") {
		t.Error("expected vendor to be skipped")
	}
	if f.skipDir("/repo/internal") {
		t.Error("expected internal to be watched")
	}
}

func TestBatchEmpty(t *testing.T) {
	if !(Batch{}).Empty() {
		t.Error("expected zero batch to be empty")
	}
	if (Batch{Removed: []string{"a.go"}}).Empty() {
		t.Error("expected batch with removals to be non-empty")
	}
}
