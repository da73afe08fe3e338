package parser

import (
	"testing"

	"symtable/internal/core/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	return NewParser(loader)
}

func TestParse_GoSource(t *testing.T) {
	p := newTestParser(t)

	src := []byte("package demo\n\nfunc add(a, b int) int {\n\treturn a + b\n}\n")
	tree, err := p.Parse("demo.go", src)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	if tree.Language != "go" {
		t.Errorf("expected go, got %s", tree.Language)
	}
	if tree.Root.Kind() != "source_file" {
		t.Fatalf("expected source_file root, got %s", tree.Root.Kind())
	}

	var fn = tree.Root.NamedChild(1)
	if fn == nil || fn.Kind() != "function_declaration" {
		t.Fatalf("expected function_declaration, got %v", fn)
	}
	name := fn.ChildByFieldName("name")
	if got := Text(tree.Source, name); got != "add" {
		t.Errorf("expected name add, got %q", got)
	}
	loc := NodeLocation(tree.Path, name)
	if loc.Line != 3 || loc.Column != 6 || loc.File != "demo.go" {
		t.Errorf("unexpected location %+v", loc)
	}

	params := fn.ChildByFieldName("parameters")
	decl := params.NamedChild(0)
	names := FieldChildren(decl, "name")
	if len(names) != 2 {
		t.Fatalf("expected 2 parameter names, got %d", len(names))
	}
	if Text(tree.Source, names[0]) != "a" || Text(tree.Source, names[1]) != "b" {
		t.Errorf("unexpected parameter names %q %q", Text(tree.Source, names[0]), Text(tree.Source, names[1]))
	}
}

func TestParse_ShortVarDeclarationToken(t *testing.T) {
	p := newTestParser(t)

	src := []byte("package demo\n\nfunc f(ch chan int) {\n\tfor v := range ch {\n\t\t_ = v\n\t}\n}\n")
	tree, err := p.Parse("range.go", src)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	body := tree.Root.NamedChild(1).ChildByFieldName("body")
	var forStmt = body.NamedChild(0)
	if forStmt.Kind() == "statement_list" {
		forStmt = forStmt.NamedChild(0)
	}
	if forStmt.Kind() != "for_statement" {
		t.Fatalf("expected for_statement, got %s", forStmt.Kind())
	}
	clause := forStmt.NamedChild(0)
	if clause.Kind() != "range_clause" {
		t.Fatalf("expected range_clause, got %s", clause.Kind())
	}
	if !HasChildKind(clause, ":=") {
		t.Error("expected range clause to carry :=")
	}
	if HasChildKind(clause, "=") {
		t.Error("did not expect = token")
	}
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse("main.py", []byte("print(1)"))
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Fatalf("expected NOT_SUPPORTED, got %v", err)
	}
}

func TestLanguageDetection(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		path string
		lang string
	}{
		{"main.go", "go"},
		{"pkg/MAIN.GO", "go"},
		{"stack_test.go", "go"},
		{"README.md", ""},
	}
	for _, tt := range tests {
		if got := p.GetLanguage(tt.path); got != tt.lang {
			t.Errorf("GetLanguage(%q) = %q, want %q", tt.path, got, tt.lang)
		}
	}
	if exts := p.SupportedExtensions(); len(exts) != 1 || exts[0] != ".go" {
		t.Errorf("unexpected extensions %v", exts)
	}
}

func TestNewGrammarLoader_Unknown(t *testing.T) {
	_, err := NewGrammarLoader("cobol")
	if err == nil {
		t.Fatal("expected error for unknown language")
	}
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Fatalf("expected NOT_SUPPORTED, got %v", err)
	}
}

func TestHelpers_NilNode(t *testing.T) {
	if Text(nil, nil) != "" {
		t.Error("expected empty text for nil node")
	}
	if FieldChildren(nil, "name") != nil {
		t.Error("expected nil children for nil node")
	}
	if HasChildKind(nil, ":=") {
		t.Error("expected false for nil node")
	}
}

func TestSyntaxErrors(t *testing.T) {
	p := newTestParser(t)

	clean, err := p.Parse("ok.go", []byte("package demo\n\nvar x = 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer clean.Close()
	if got := clean.SyntaxErrors(); len(got) != 0 {
		t.Fatalf("expected no syntax errors, got %+v", got)
	}

	broken, err := p.Parse("broken.go", []byte("package demo\n\nfunc f() {\n\tx := \n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer broken.Close()
	errs := broken.SyntaxErrors()
	if len(errs) == 0 {
		t.Fatal("expected at least one syntax error")
	}
	for _, e := range errs {
		if e.File != "broken.go" || e.Line < 3 {
			t.Errorf("unexpected syntax error location %+v", e.Location)
		}
	}

	var nilTree *Tree
	if nilTree.SyntaxErrors() != nil {
		t.Error("expected nil tree to have no syntax errors")
	}
}
