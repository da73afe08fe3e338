package symtab

import (
	"cmp"
	"maps"

	"symtable/internal/shared/util"
)

// Scope is one lexical nesting level: a diagnostic name and its bindings.
// Names need not be unique across a stack.
type Scope[K cmp.Ordered, V any] struct {
	Name    string
	Symbols map[K]V
}

func newScope[K cmp.Ordered, V any](name string) Scope[K, V] {
	return Scope[K, V]{
		Name:    name,
		Symbols: make(map[K]V),
	}
}

// Len returns the number of bindings in the scope.
func (s Scope[K, V]) Len() int {
	return len(s.Symbols)
}

// Keys returns the scope's keys in ascending order.
func (s Scope[K, V]) Keys() []K {
	return util.SortedKeys(s.Symbols)
}

func (s Scope[K, V]) clone() Scope[K, V] {
	out := Scope[K, V]{Name: s.Name, Symbols: maps.Clone(s.Symbols)}
	if out.Symbols == nil {
		out.Symbols = make(map[K]V)
	}
	return out
}
