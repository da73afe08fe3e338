package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScopesEnteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symtable_scopes_entered_total",
		Help: "Total number of scopes pushed onto scope stacks.",
	})

	ScopesExitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symtable_scopes_exited_total",
		Help: "Total number of scopes popped from scope stacks.",
	})

	SymbolsDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symtable_symbols_discarded_total",
		Help: "Total number of bindings discarded by scope exits.",
	})

	SymbolsInsertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symtable_symbols_inserted_total",
		Help: "Total number of inserts, split by new bindings and replacements.",
	}, []string{"result"})

	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symtable_lookups_total",
		Help: "Total number of lookups by scope filter and outcome.",
	}, []string{"filter", "result"})

	ScopeDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "symtable_scope_depth",
		Help: "Scope depth of the most recently changed stack.",
	})

	ResolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "symtable_resolve_seconds",
		Help:    "Time spent parsing and resolving a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	UnresolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symtable_unresolved_identifiers_total",
		Help: "Total number of identifier references that did not resolve.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symtable_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
