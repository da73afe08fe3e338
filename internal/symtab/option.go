package symtab

import (
	"fmt"
	"strings"

	"symtable/internal/core/errors"
)

// ScopeOption selects which scopes Lookup and Dump consider.
type ScopeOption int

const (
	// All searches from the current scope outward to the global scope.
	All ScopeOption = iota
	// Current restricts the operation to the innermost open scope.
	Current
	// Global restricts the operation to the first scope ever entered.
	Global
)

// String returns the label used in dump headers.
func (o ScopeOption) String() string {
	switch o {
	case All:
		return "ALL"
	case Current:
		return "CUR"
	case Global:
		return "GBL"
	default:
		return fmt.Sprintf("ScopeOption(%d)", int(o))
	}
}

func (o ScopeOption) valid() bool {
	return o == All || o == Current || o == Global
}

// ParseScopeOption accepts all, current/cur and global/gbl in any case.
func ParseScopeOption(s string) (ScopeOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, nil
	case "current", "cur":
		return Current, nil
	case "global", "gbl":
		return Global, nil
	}
	return All, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown scope option %q (want all, cur or gbl)", s))
}
