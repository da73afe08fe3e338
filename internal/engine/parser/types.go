package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Location struct {
	File   string
	Line   int
	Column int
}

// Tree is a parsed source file. Callers must Close it to release the
// underlying tree-sitter tree.
type Tree struct {
	Path     string
	Language string
	Source   []byte
	Root     *sitter.Node

	tree *sitter.Tree
}

func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}
