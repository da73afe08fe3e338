package script

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"symtable/internal/core/errors"
	"symtable/internal/symtab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScript(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out)

	src := `
# shadowing round trip
enter g
insert x 1
enter f
insert x 2
lookup x
lookup x gbl
exit
lookup x all
size
scopes
`
	require.NoError(t, s.Run(context.Background(), strings.NewReader(src)))
	assert.Equal(t, "x = 2\nx = 1\nx = 1\nsize: 1\nscopes: 1\n", out.String())
	assert.NotEmpty(t, s.ID)
}

func TestInsertValueKeepsSpaces(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out)
	require.NoError(t, s.Exec("enter global"))
	require.NoError(t, s.Exec("insert main func() int"))
	require.NoError(t, s.Exec("lookup main cur"))
	assert.Equal(t, "main = func() int\n", out.String())
}

func TestInsertValueKeepsInnerSpacing(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out)
	require.NoError(t, s.Exec("enter global"))
	require.NoError(t, s.Exec("insert  msg   a  b\t c  "))

	v, found, err := s.Stack().Lookup("msg", symtab.Current)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "a  b\t c", v)
}

func TestTail(t *testing.T) {
	cases := []struct {
		line string
		n    int
		want string
	}{
		{"insert k v", 2, "v"},
		{"insert k  x   y", 2, "x   y"},
		{"insert k", 2, ""},
		{"lookup", 0, "lookup"},
		{"a\tb\t\tc", 1, "b\t\tc"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tail(tc.line, tc.n), "tail(%q, %d)", tc.line, tc.n)
	}
}

func TestCurrentCommand(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out)
	require.NoError(t, s.Exec("enter block"))
	require.NoError(t, s.Exec("current"))
	require.NoError(t, s.Exec("insert b 2"))
	require.NoError(t, s.Exec("insert a 1"))
	require.NoError(t, s.Exec("current"))
	assert.Equal(t, "block: (empty)\nblock: a=1, b=2\n", out.String())
}

func TestDumpCommand(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out, WithDefaultFilter(symtab.Current))
	require.NoError(t, s.Exec("enter global"))
	require.NoError(t, s.Exec("insert g 1"))
	require.NoError(t, s.Exec("enter inner"))
	require.NoError(t, s.Exec("insert i 2"))

	require.NoError(t, s.Exec("dump"))
	assert.Contains(t, out.String(), "SYMBOL TABLE (CUR)")
	assert.Contains(t, out.String(), "** inner **\ni: 2\n")
	assert.NotContains(t, out.String(), "** global **")

	out.Reset()
	require.NoError(t, s.Exec("dump all"))
	assert.Contains(t, out.String(), "** inner **\ni: 2\n** global **\ng: 1\n")
}

func TestEmptyStackErrorsSurface(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out)

	for _, line := range []string{"exit", "insert x 1", "lookup x", "current", "dump cur", "dump gbl"} {
		err := s.Exec(line)
		require.Error(t, err, line)
		assert.True(t, symtab.IsEmptyStack(err), line)
	}

	require.NoError(t, s.Exec("dump all"))
	assert.Contains(t, out.String(), "** # of scopes: 0")
}

func TestUsageErrors(t *testing.T) {
	s := NewSession(&strings.Builder{})
	cases := []string{
		"frobnicate",
		"enter",
		"enter a b",
		"insert x",
		"exit now",
		"lookup",
		"lookup x outer",
	}
	for _, line := range cases {
		err := s.Exec(line)
		require.Error(t, err, line)
		assert.True(t, errors.IsCode(err, errors.CodeValidationError), line)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out)

	err := s.Run(context.Background(), strings.NewReader("enter g\nexit\nexit\nenter never\n"))
	require.Error(t, err)
	assert.True(t, symtab.IsEmptyStack(err))

	var de *errors.DomainError
	require.True(t, stderrors.As(err, &de))
	assert.Equal(t, 3, de.Context[errors.CtxLine])
	assert.Equal(t, 0, s.Stack().NumScopes(), "lines after the failure do not run")
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSession(&strings.Builder{})
	err := s.Run(ctx, strings.NewReader("enter g\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Stack().NumScopes())
}

func TestHelpListsCommands(t *testing.T) {
	var out strings.Builder
	s := NewSession(&out)
	require.NoError(t, s.Exec("HELP"))
	assert.Contains(t, out.String(), "enter <name>")
	assert.Contains(t, out.String(), "lookup <key> [all|cur|gbl]")
}
