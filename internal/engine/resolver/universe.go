package resolver

// universe lists the predeclared identifiers of the Go universe block.
// true, false, nil and iota are separate node kinds in the grammar but are
// kept here so a dump of the universe scope is complete.
var universe = map[string]Kind{
	// types
	"any":        KindType,
	"bool":       KindType,
	"byte":       KindType,
	"comparable": KindType,
	"complex64":  KindType,
	"complex128": KindType,
	"error":      KindType,
	"float32":    KindType,
	"float64":    KindType,
	"int":        KindType,
	"int8":       KindType,
	"int16":      KindType,
	"int32":      KindType,
	"int64":      KindType,
	"rune":       KindType,
	"string":     KindType,
	"uint":       KindType,
	"uint8":      KindType,
	"uint16":     KindType,
	"uint32":     KindType,
	"uint64":     KindType,
	"uintptr":    KindType,

	// constants
	"true":  KindConst,
	"false": KindConst,
	"iota":  KindConst,

	// zero value
	"nil": KindVar,

	// functions
	"append":  KindFunc,
	"cap":     KindFunc,
	"clear":   KindFunc,
	"close":   KindFunc,
	"complex": KindFunc,
	"copy":    KindFunc,
	"delete":  KindFunc,
	"imag":    KindFunc,
	"len":     KindFunc,
	"make":    KindFunc,
	"max":     KindFunc,
	"min":     KindFunc,
	"new":     KindFunc,
	"panic":   KindFunc,
	"print":   KindFunc,
	"println": KindFunc,
	"real":    KindFunc,
	"recover": KindFunc,
}
