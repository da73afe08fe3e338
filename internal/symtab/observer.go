package symtab

// Observer receives a callback for every state change and lookup on a stack.
// Implementations must be cheap; they run inline with the operation.
type Observer interface {
	ScopeEntered(name string, depth int)
	ScopeExited(name string, discarded int, depth int)
	SymbolInserted(replaced bool)
	LookupDone(opt ScopeOption, found bool)
}

type nopObserver struct{}

func (nopObserver) ScopeEntered(string, int)     {}
func (nopObserver) ScopeExited(string, int, int) {}
func (nopObserver) SymbolInserted(bool)          {}
func (nopObserver) LookupDone(ScopeOption, bool) {}

type settings struct {
	observer Observer
}

// Option configures a ScopeStack built with New.
type Option func(*settings)

// WithObserver reports stack activity to o. A nil observer is ignored.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}
