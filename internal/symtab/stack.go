package symtab

import (
	"cmp"

	"symtable/internal/core/errors"
)

// ErrEmptyStack matches, via errors.Is, every error returned for an
// operation that needs an open scope while none is open.
var ErrEmptyStack = errors.New(errors.CodeEmptyStack, "symtab: empty stack")

// IsEmptyStack reports whether err is an empty-stack error.
func IsEmptyStack(err error) bool {
	return errors.IsCode(err, errors.CodeEmptyStack)
}

func emptyStack(op string) error {
	return errors.AddContext(errors.New(errors.CodeEmptyStack, "symtab: empty stack"), errors.CtxOperation, op)
}

// ScopeStack is a stack of named scopes used to resolve identifiers with
// shadowing. The first scope entered is the global scope; the most recently
// entered one is the current scope.
//
// The zero value is an empty stack ready to use. A ScopeStack is not safe
// for concurrent use.
type ScopeStack[K cmp.Ordered, V any] struct {
	// scopes[0] is global, scopes[len-1] is current.
	scopes []Scope[K, V]
	// size is the sum of len(Symbols) over scopes, kept incrementally.
	size     int
	observer Observer
}

// New returns an empty stack configured by opts.
func New[K cmp.Ordered, V any](opts ...Option) *ScopeStack[K, V] {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ScopeStack[K, V]{observer: cfg.observer}
}

func (s *ScopeStack[K, V]) obs() Observer {
	if s.observer == nil {
		return nopObserver{}
	}
	return s.observer
}

// Size returns the total number of symbols across all open scopes.
func (s *ScopeStack[K, V]) Size() int {
	return s.size
}

// NumScopes returns the number of open scopes.
func (s *ScopeStack[K, V]) NumScopes() int {
	return len(s.scopes)
}

// EnterScope pushes a new empty scope, which becomes the current scope.
// The first call on an empty stack establishes the global scope.
func (s *ScopeStack[K, V]) EnterScope(name string) {
	s.scopes = append(s.scopes, newScope[K, V](name))
	s.obs().ScopeEntered(name, len(s.scopes))
}

// ExitScope discards the current scope and every binding in it.
func (s *ScopeStack[K, V]) ExitScope() error {
	if len(s.scopes) == 0 {
		return emptyStack("ExitScope")
	}
	top := len(s.scopes) - 1
	popped := s.scopes[top]
	s.size -= len(popped.Symbols)
	s.scopes[top] = Scope[K, V]{}
	s.scopes = s.scopes[:top]
	s.obs().ScopeExited(popped.Name, len(popped.Symbols), len(s.scopes))
	return nil
}

// CurrentScope returns a copy of the current scope. Mutating the copy does
// not affect the stack.
func (s *ScopeStack[K, V]) CurrentScope() (Scope[K, V], error) {
	if len(s.scopes) == 0 {
		return Scope[K, V]{}, emptyStack("CurrentScope")
	}
	return s.scopes[len(s.scopes)-1].clone(), nil
}

// Scopes returns copies of all open scopes, current first and global last.
func (s *ScopeStack[K, V]) Scopes() []Scope[K, V] {
	out := make([]Scope[K, V], 0, len(s.scopes))
	for i := len(s.scopes) - 1; i >= 0; i-- {
		out = append(out, s.scopes[i].clone())
	}
	return out
}

// Insert binds key to value in the current scope. An existing binding for
// key in that scope is replaced and does not change Size.
func (s *ScopeStack[K, V]) Insert(key K, value V) error {
	if len(s.scopes) == 0 {
		return emptyStack("Insert")
	}
	symbols := s.scopes[len(s.scopes)-1].Symbols
	_, replaced := symbols[key]
	symbols[key] = value
	if !replaced {
		s.size++
	}
	s.obs().SymbolInserted(replaced)
	return nil
}

// Lookup resolves key according to opt. With All the search starts at the
// current scope and moves toward the global scope, so inner bindings shadow
// outer ones. A missing key is not an error: found is false and value is the
// zero V. An empty stack is an error for every option.
func (s *ScopeStack[K, V]) Lookup(key K, opt ScopeOption) (value V, found bool, err error) {
	if !opt.valid() {
		return value, false, errors.New(errors.CodeValidationError, "symtab: invalid scope option "+opt.String())
	}
	if len(s.scopes) == 0 {
		return value, false, emptyStack("Lookup")
	}

	switch opt {
	case Current:
		value, found = s.scopes[len(s.scopes)-1].Symbols[key]
	case Global:
		value, found = s.scopes[0].Symbols[key]
	default:
		for i := len(s.scopes) - 1; i >= 0; i-- {
			if value, found = s.scopes[i].Symbols[key]; found {
				break
			}
		}
	}

	s.obs().LookupDone(opt, found)
	return value, found, nil
}
