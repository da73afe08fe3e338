package symtab

import (
	"bufio"
	"fmt"
	"io"

	"symtable/internal/core/errors"
)

const dumpRule = "**************************************************"

// Dump writes a report of the scopes selected by opt to w: a header with the
// filter, NumScopes and Size, then each scope's name followed by its bindings
// in ascending key order. All lists scopes from current to global.
//
// Dumping with Current or Global requires an open scope; All on an empty
// stack writes only the header and footer.
func (s *ScopeStack[K, V]) Dump(w io.Writer, opt ScopeOption) error {
	if !opt.valid() {
		return errors.New(errors.CodeValidationError, "symtab: invalid scope option "+opt.String())
	}

	var selected []*Scope[K, V]
	switch opt {
	case Current:
		if len(s.scopes) == 0 {
			return emptyStack("Dump")
		}
		selected = append(selected, &s.scopes[len(s.scopes)-1])
	case Global:
		if len(s.scopes) == 0 {
			return emptyStack("Dump")
		}
		selected = append(selected, &s.scopes[0])
	default:
		for i := len(s.scopes) - 1; i >= 0; i-- {
			selected = append(selected, &s.scopes[i])
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, dumpRule)
	fmt.Fprintf(bw, "*************** SYMBOL TABLE (%s) ***************\n", opt)
	fmt.Fprintf(bw, "** # of scopes: %d\n", s.NumScopes())
	fmt.Fprintf(bw, "** # of symbols: %d\n", s.Size())
	for _, scope := range selected {
		fmt.Fprintf(bw, "** %s **\n", scope.Name)
		for _, key := range scope.Keys() {
			fmt.Fprintf(bw, "%v: %v\n", key, scope.Symbols[key])
		}
	}
	fmt.Fprintln(bw, dumpRule)

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "symtab: dump write failed")
	}
	return nil
}
