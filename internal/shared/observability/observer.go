package observability

import (
	"symtable/internal/symtab"
)

// MetricsObserver feeds scope stack activity into the Prometheus metrics.
type MetricsObserver struct{}

var _ symtab.Observer = MetricsObserver{}

func (MetricsObserver) ScopeEntered(name string, depth int) {
	ScopesEnteredTotal.Inc()
	ScopeDepth.Set(float64(depth))
}

func (MetricsObserver) ScopeExited(name string, discarded int, depth int) {
	ScopesExitedTotal.Inc()
	SymbolsDiscardedTotal.Add(float64(discarded))
	ScopeDepth.Set(float64(depth))
}

func (MetricsObserver) SymbolInserted(replaced bool) {
	if replaced {
		SymbolsInsertedTotal.WithLabelValues("replaced").Inc()
		return
	}
	SymbolsInsertedTotal.WithLabelValues("new").Inc()
}

func (MetricsObserver) LookupDone(opt symtab.ScopeOption, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	LookupsTotal.WithLabelValues(opt.String(), result).Inc()
}
