package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Text returns the source text spanned by node.
func Text(source []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// NodeLocation returns the 1-based position of node within file.
func NodeLocation(file string, node *sitter.Node) Location {
	pos := node.StartPosition()
	return Location{
		File:   file,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

// FieldChildren returns every child of node stored under field. Unlike
// ChildByFieldName it reports repeated fields such as `a, b int`.
func FieldChildren(node *sitter.Node, field string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.FieldNameForChild(uint32(i)) == field {
			out = append(out, node.Child(i))
		}
	}
	return out
}

// HasChildKind reports whether node has a direct child of the given kind,
// named or anonymous (e.g. the ":=" token).
func HasChildKind(node *sitter.Node, kind string) bool {
	if node == nil {
		return false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == kind {
			return true
		}
	}
	return false
}

// SyntaxError marks a region tree-sitter could not parse. Missing holds the
// kind of a token the parser inserted to recover, e.g. "}".
type SyntaxError struct {
	Location
	Missing string
}

// SyntaxErrors lists the ERROR and MISSING nodes of the tree in source
// order. Subtrees without errors are not visited.
func (t *Tree) SyntaxErrors() []SyntaxError {
	if t == nil || t.Root == nil || !t.Root.HasError() {
		return nil
	}
	var out []SyntaxError
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch {
		case n.IsMissing():
			out = append(out, SyntaxError{Location: NodeLocation(t.Path, n), Missing: n.Kind()})
			return
		case n.IsError():
			out = append(out, SyntaxError{Location: NodeLocation(t.Path, n)})
			return
		case !n.HasError():
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			visit(n.Child(i))
		}
	}
	visit(t.Root)
	return out
}
