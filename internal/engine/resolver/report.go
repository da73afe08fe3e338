package resolver

import (
	"fmt"
	"sort"

	"symtable/internal/engine/parser"
)

type Kind string

const (
	KindType      Kind = "type"
	KindConst     Kind = "const"
	KindVar       Kind = "var"
	KindFunc      Kind = "func"
	KindImport    Kind = "import"
	KindParam     Kind = "param"
	KindTypeParam Kind = "typeparam"
)

// Binding is the value stored for each declared name. Line is 0 for
// predeclared identifiers. File is set for package-level names declared in
// another file of the package.
type Binding struct {
	Kind Kind
	File string
	Line int
}

func (b Binding) String() string {
	switch {
	case b.Line == 0:
		return fmt.Sprintf("%s (builtin)", b.Kind)
	case b.File != "":
		return fmt.Sprintf("%s (%s:%d)", b.Kind, b.File, b.Line)
	}
	return fmt.Sprintf("%s (line %d)", b.Kind, b.Line)
}

type FindingKind int

const (
	Unresolved FindingKind = iota
	Shadowed
	SyntaxError
)

func (k FindingKind) String() string {
	switch k {
	case Unresolved:
		return "unresolved"
	case Shadowed:
		return "shadowed"
	case SyntaxError:
		return "syntax error"
	default:
		return fmt.Sprintf("FindingKind(%d)", int(k))
	}
}

type Finding struct {
	Kind FindingKind
	// Name is the identifier, or the missing token for a syntax error.
	Name     string
	Location parser.Location
	// OuterFile and OuterLine locate the shadowed declaration. OuterFile
	// is empty when it is in the same file.
	OuterFile string
	OuterLine int
}

func (f Finding) String() string {
	pos := fmt.Sprintf("%s:%d:%d", f.Location.File, f.Location.Line, f.Location.Column)
	switch f.Kind {
	case Shadowed:
		if f.OuterFile != "" {
			return fmt.Sprintf("%s: %q shadows declaration at %s:%d", pos, f.Name, f.OuterFile, f.OuterLine)
		}
		return fmt.Sprintf("%s: %q shadows declaration at line %d", pos, f.Name, f.OuterLine)
	case SyntaxError:
		if f.Name != "" {
			return fmt.Sprintf("%s: syntax error: missing %q", pos, f.Name)
		}
		return pos + ": syntax error"
	}
	return fmt.Sprintf("%s: unresolved identifier %q", pos, f.Name)
}

// Report is the outcome of resolving one file.
type Report struct {
	Path     string
	Findings []Finding
	// MaxDepth is the deepest scope nesting reached, universe included.
	MaxDepth int
	// Symbols is the peak number of live bindings.
	Symbols int
}

func (r *Report) Unresolved() []Finding {
	return r.filter(Unresolved)
}

func (r *Report) Shadowed() []Finding {
	return r.filter(Shadowed)
}

func (r *Report) SyntaxErrors() []Finding {
	return r.filter(SyntaxError)
}

func (r *Report) filter(kind FindingKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func (r *Report) sortFindings() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i].Location, r.Findings[j].Location
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
