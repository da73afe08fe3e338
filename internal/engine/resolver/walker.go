package resolver

import (
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"symtable/internal/engine/parser"
	"symtable/internal/shared/observability"
	"symtable/internal/symtab"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type walker struct {
	res  *Resolver
	tree *parser.Tree
	// pkg holds every file of the package, tree included. Their top-level
	// names share the package scope.
	pkg    []*parser.Tree
	stack  *symtab.ScopeStack[string, Binding]
	report *Report

	// dotImport disables unresolved findings: a dot import brings names
	// into the file scope that are unknown without type information.
	dotImport bool
	err       error
}

func (w *walker) file() error {
	root := w.tree.Root

	w.enter("universe")
	for name, kind := range universe {
		w.insert(name, Binding{Kind: kind})
	}

	w.enter("package")
	pkg := w.pkg
	if len(pkg) == 0 {
		pkg = []*parser.Tree{w.tree}
	}
	for _, t := range pkg {
		w.declarePackage(t)
	}

	w.enter("file")
	for i := uint(0); i < root.NamedChildCount(); i++ {
		if n := root.NamedChild(i); n.Kind() == "import_declaration" {
			w.imports(n)
		}
	}

	for i := uint(0); i < root.NamedChildCount() && w.err == nil; i++ {
		w.topLevel(root.NamedChild(i))
	}

	for w.err == nil && w.stack.NumScopes() > 0 {
		w.exit()
	}
	return w.err
}

// declarePackage binds every top-level name of t up front since package
// scope is independent of declaration order and spans all files of the
// package. Methods do not live in package scope.
func (w *walker) declarePackage(t *parser.Tree) {
	bind := func(id *sitter.Node, kind Kind) {
		name := parser.Text(t.Source, id)
		if id == nil || name == "" || name == "_" {
			return
		}
		b := Binding{Kind: kind, Line: w.line(id)}
		if t != w.tree {
			b.File = filepath.Base(t.Path)
		}
		w.insert(name, b)
	}

	root := t.Root
	for i := uint(0); i < root.NamedChildCount(); i++ {
		n := root.NamedChild(i)
		switch n.Kind() {
		case "function_declaration":
			bind(n.ChildByFieldName("name"), KindFunc)
		case "type_declaration":
			for _, spec := range namedChildren(n) {
				bind(spec.ChildByFieldName("name"), KindType)
			}
		case "var_declaration":
			for _, spec := range varSpecs(n) {
				for _, name := range parser.FieldChildren(spec, "name") {
					bind(name, KindVar)
				}
			}
		case "const_declaration":
			for _, spec := range namedChildren(n) {
				for _, name := range parser.FieldChildren(spec, "name") {
					bind(name, KindConst)
				}
			}
		}
	}
}

// packageClause returns the name in the file's package clause.
func packageClause(t *parser.Tree) string {
	for i := uint(0); i < t.Root.NamedChildCount(); i++ {
		if n := t.Root.NamedChild(i); n.Kind() == "package_clause" {
			return parser.Text(t.Source, n.NamedChild(0))
		}
	}
	return ""
}

func (w *walker) imports(decl *sitter.Node) {
	specs := namedChildren(decl)
	if len(specs) == 1 && specs[0].Kind() == "import_spec_list" {
		specs = namedChildren(specs[0])
	}
	for _, spec := range specs {
		if spec.Kind() != "import_spec" {
			continue
		}
		if alias := spec.ChildByFieldName("name"); alias != nil {
			switch alias.Kind() {
			case "dot":
				w.dotImport = true
			case "package_identifier":
				w.bind(alias, KindImport)
			}
			continue
		}
		pathNode := spec.ChildByFieldName("path")
		importPath, err := strconv.Unquote(w.text(pathNode))
		if err != nil {
			continue
		}
		w.insert(packageName(importPath), Binding{Kind: KindImport, Line: w.line(pathNode)})
	}
}

// packageName guesses the package name of an import path from its last
// element, the way most Go packages are named.
func packageName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 && isMajorVersion(base[i+1:]) {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, "-go")
	base = strings.TrimSuffix(base, ".go")
	return strings.NewReplacer("-", "_", ".", "_").Replace(base)
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

func (w *walker) topLevel(n *sitter.Node) {
	switch n.Kind() {
	case "function_declaration":
		w.function(n, "func "+w.text(n.ChildByFieldName("name")))
	case "method_declaration":
		w.function(n, "method "+w.text(n.ChildByFieldName("name")))
	case "type_declaration":
		for _, spec := range namedChildren(n) {
			w.typeSpec(spec)
		}
	case "var_declaration":
		for _, spec := range varSpecs(n) {
			w.walkFields(spec, "type", "value")
		}
	case "const_declaration":
		for _, spec := range namedChildren(n) {
			w.walkFields(spec, "type", "value")
		}
	}
}

// function covers declarations, methods and literals. Receiver, type
// parameters, parameters and results share one scope with the body.
func (w *walker) function(n *sitter.Node, name string) {
	w.enter(name)

	if recv := n.ChildByFieldName("receiver"); recv != nil {
		for _, decl := range namedChildren(recv) {
			w.receiverTypeParams(decl.ChildByFieldName("type"))
		}
		w.parameters(recv)
	}
	if tparams := n.ChildByFieldName("type_parameters"); tparams != nil {
		w.typeParameters(tparams)
	}
	w.parameters(n.ChildByFieldName("parameters"))
	if result := n.ChildByFieldName("result"); result != nil {
		if result.Kind() == "parameter_list" {
			w.parameters(result)
		} else {
			w.walk(result)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		w.children(body)
	}

	if w.res.dump != nil && w.err == nil {
		if err := w.stack.Dump(w.res.dump, symtab.Current); err != nil {
			w.fail(err)
		}
	}
	w.exit()
}

// receiverTypeParams declares T in `func (l *List[T]) ...`.
func (w *walker) receiverTypeParams(typ *sitter.Node) {
	for typ != nil && typ.Kind() == "pointer_type" {
		typ = typ.NamedChild(0)
	}
	if typ == nil || typ.Kind() != "generic_type" {
		return
	}
	args := typ.ChildByFieldName("type_arguments")
	for _, elem := range namedChildren(args) {
		if id := elem.NamedChild(0); id != nil && elem.NamedChildCount() == 1 && id.Kind() == "type_identifier" {
			w.declare(id, KindTypeParam)
		}
	}
}

func (w *walker) typeParameters(list *sitter.Node) {
	decls := namedChildren(list)
	for _, decl := range decls {
		for _, name := range parser.FieldChildren(decl, "name") {
			w.declare(name, KindTypeParam)
		}
	}
	for _, decl := range decls {
		w.walk(decl.ChildByFieldName("type"))
	}
}

func (w *walker) parameters(list *sitter.Node) {
	for _, decl := range namedChildren(list) {
		switch decl.Kind() {
		case "parameter_declaration", "variadic_parameter_declaration":
			w.walk(decl.ChildByFieldName("type"))
			for _, name := range parser.FieldChildren(decl, "name") {
				w.declare(name, KindParam)
			}
		}
	}
}

func (w *walker) typeSpec(spec *sitter.Node) {
	tparams := spec.ChildByFieldName("type_parameters")
	if tparams == nil {
		w.walk(spec.ChildByFieldName("type"))
		return
	}
	w.enter("type " + w.text(spec.ChildByFieldName("name")))
	w.typeParameters(tparams)
	w.walk(spec.ChildByFieldName("type"))
	w.exit()
}

func (w *walker) walk(n *sitter.Node) {
	if n == nil || w.err != nil {
		return
	}

	switch n.Kind() {
	case "identifier", "type_identifier", "package_identifier":
		w.reference(n)

	case "field_identifier", "label_name", "comment":

	case "selector_expression":
		w.walk(n.ChildByFieldName("operand"))

	case "qualified_type":
		w.walk(n.ChildByFieldName("package"))

	case "composite_literal":
		typ := n.ChildByFieldName("type")
		w.walk(typ)
		w.literalValue(n.ChildByFieldName("body"), typ)

	case "func_literal":
		w.function(n, "func literal")

	case "parameter_declaration", "variadic_parameter_declaration":
		// Parameter names of function types and interface methods bind nothing.
		w.walk(n.ChildByFieldName("type"))

	case "block":
		w.enter("block")
		w.children(n)
		w.exit()

	case "short_var_declaration":
		w.walk(n.ChildByFieldName("right"))
		w.declareShort(n.ChildByFieldName("left"))

	case "var_declaration":
		for _, spec := range varSpecs(n) {
			w.walkFields(spec, "type", "value")
			for _, name := range parser.FieldChildren(spec, "name") {
				w.declare(name, KindVar)
			}
		}

	case "const_declaration":
		for _, spec := range namedChildren(n) {
			w.walkFields(spec, "type", "value")
			for _, name := range parser.FieldChildren(spec, "name") {
				w.declare(name, KindConst)
			}
		}

	case "type_declaration":
		for _, spec := range namedChildren(n) {
			w.declare(spec.ChildByFieldName("name"), KindType)
			w.typeSpec(spec)
		}

	case "if_statement":
		w.enter("if")
		w.walkFields(n, "initializer", "condition", "consequence", "alternative")
		w.exit()

	case "for_statement":
		w.enter("for")
		w.children(n)
		w.exit()

	case "range_clause":
		w.walk(n.ChildByFieldName("right"))
		if parser.HasChildKind(n, ":=") {
			w.declareShort(n.ChildByFieldName("left"))
		} else {
			w.walk(n.ChildByFieldName("left"))
		}

	case "receive_statement":
		w.walk(n.ChildByFieldName("right"))
		if parser.HasChildKind(n, ":=") {
			w.declareShort(n.ChildByFieldName("left"))
		} else {
			w.walk(n.ChildByFieldName("left"))
		}

	case "expression_switch_statement", "select_statement":
		w.enter(strings.TrimSuffix(n.Kind(), "_statement"))
		w.children(n)
		w.exit()

	case "expression_case", "communication_case", "default_case":
		w.enter("case")
		w.children(n)
		w.exit()

	case "type_switch_statement":
		w.typeSwitch(n)

	default:
		w.children(n)
	}
}

// literalValue walks the body of a composite literal of type typ. Keys of
// map, slice and array literals are expressions; under any other type a
// bare identifier key is a struct field name. Elided element types are
// carried into nested literals.
func (w *walker) literalValue(body, typ *sitter.Node) {
	exprKeys, keyType, elemType := literalTypes(typ)
	for _, c := range namedChildren(body) {
		switch c.Kind() {
		case "keyed_element":
			key := c.ChildByFieldName("key")
			if exprKeys || !isFieldName(key) {
				w.literalElement(key, keyType)
			}
			w.literalElement(c.ChildByFieldName("value"), elemType)
		case "literal_element":
			w.literalElement(c, elemType)
		default:
			w.walk(c)
		}
	}
}

func (w *walker) literalElement(el, typ *sitter.Node) {
	if el == nil {
		return
	}
	if inner := el.NamedChild(0); el.NamedChildCount() == 1 && inner.Kind() == "literal_value" {
		w.literalValue(inner, typ)
		return
	}
	w.walk(el)
}

func literalTypes(typ *sitter.Node) (exprKeys bool, key, elem *sitter.Node) {
	if typ == nil {
		return false, nil, nil
	}
	switch typ.Kind() {
	case "map_type":
		return true, typ.ChildByFieldName("key"), typ.ChildByFieldName("value")
	case "slice_type", "array_type", "implicit_length_array_type":
		return true, nil, typ.ChildByFieldName("element")
	}
	return false, nil, nil
}

func isFieldName(key *sitter.Node) bool {
	return key != nil && key.NamedChildCount() == 1 && key.NamedChild(0).Kind() == "identifier"
}

func (w *walker) typeSwitch(n *sitter.Node) {
	w.enter("switch")
	w.walkFields(n, "initializer", "value")

	var aliases []*sitter.Node
	if alias := n.ChildByFieldName("alias"); alias != nil {
		aliases = namedChildren(alias)
	}
	for _, clause := range namedChildren(n) {
		if clause.Kind() != "type_case" && clause.Kind() != "default_case" {
			continue
		}
		w.enter("case")
		for _, t := range parser.FieldChildren(clause, "type") {
			w.walk(t)
		}
		// `switch v := v.(type)` is idiomatic, so the alias never counts as shadowing.
		for _, a := range aliases {
			w.bind(a, KindVar)
		}
		for _, c := range namedChildren(clause) {
			if c.Kind() == "statement_list" {
				w.walk(c)
			}
		}
		w.exit()
	}
	w.exit()
}

func (w *walker) children(n *sitter.Node) {
	for i := uint(0); i < n.NamedChildCount() && w.err == nil; i++ {
		w.walk(n.NamedChild(i))
	}
}

func (w *walker) walkFields(n *sitter.Node, fields ...string) {
	for _, f := range fields {
		for _, c := range parser.FieldChildren(n, f) {
			w.walk(c)
		}
	}
}

func (w *walker) reference(n *sitter.Node) {
	name := w.text(n)
	if name == "" || name == "_" || n.IsMissing() {
		return
	}
	_, found, err := w.stack.Lookup(name, symtab.All)
	if err != nil {
		w.fail(err)
		return
	}
	if found || w.dotImport || w.res.symbolExcluded(name) {
		return
	}
	w.report.Findings = append(w.report.Findings, Finding{
		Kind:     Unresolved,
		Name:     name,
		Location: parser.NodeLocation(w.tree.Path, n),
	})
	observability.UnresolvedTotal.Inc()
}

// declareShort handles the left side of :=, where names already bound in
// the current scope are assigned rather than redeclared.
func (w *walker) declareShort(left *sitter.Node) {
	for _, id := range namedChildren(left) {
		if id.Kind() != "identifier" {
			w.walk(id)
			continue
		}
		if _, found, _ := w.stack.Lookup(w.text(id), symtab.Current); found {
			continue
		}
		w.declare(id, KindVar)
	}
}

// declare binds a local name, reporting it when it hides a declaration from
// an enclosing scope other than the universe.
func (w *walker) declare(id *sitter.Node, kind Kind) {
	name := w.text(id)
	if name == "" || name == "_" {
		return
	}
	if w.res.reportShadowing && !w.res.symbolExcluded(name) {
		w.checkShadow(id, name)
	}
	w.bind(id, kind)
}

func (w *walker) checkShadow(id *sitter.Node, name string) {
	if _, inCurrent, _ := w.stack.Lookup(name, symtab.Current); inCurrent {
		return
	}
	outer, found, err := w.stack.Lookup(name, symtab.All)
	if err != nil {
		w.fail(err)
		return
	}
	if !found || outer.Line == 0 {
		return
	}
	w.report.Findings = append(w.report.Findings, Finding{
		Kind:      Shadowed,
		Name:      name,
		Location:  parser.NodeLocation(w.tree.Path, id),
		OuterFile: outer.File,
		OuterLine: outer.Line,
	})
}

func (w *walker) bind(id *sitter.Node, kind Kind) {
	if id == nil {
		return
	}
	name := w.text(id)
	if name == "_" {
		return
	}
	w.insert(name, Binding{Kind: kind, Line: w.line(id)})
}

func (w *walker) insert(name string, b Binding) {
	if w.err != nil {
		return
	}
	if err := w.stack.Insert(name, b); err != nil {
		w.fail(err)
		return
	}
	if size := w.stack.Size(); size > w.report.Symbols {
		w.report.Symbols = size
	}
}

func (w *walker) enter(name string) {
	w.stack.EnterScope(name)
	if depth := w.stack.NumScopes(); depth > w.report.MaxDepth {
		w.report.MaxDepth = depth
	}
}

func (w *walker) exit() {
	if err := w.stack.ExitScope(); err != nil {
		w.fail(err)
	}
}

func (w *walker) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *walker) text(n *sitter.Node) string {
	return parser.Text(w.tree.Source, n)
}

func (w *walker) line(n *sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c.Kind() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// varSpecs flattens `var x int` and `var ( ... )`.
func varSpecs(decl *sitter.Node) []*sitter.Node {
	var specs []*sitter.Node
	for _, c := range namedChildren(decl) {
		switch c.Kind() {
		case "var_spec":
			specs = append(specs, c)
		case "var_spec_list":
			specs = append(specs, namedChildren(c)...)
		}
	}
	return specs
}
