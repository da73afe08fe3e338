package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeOptionString(t *testing.T) {
	assert.Equal(t, "ALL", All.String())
	assert.Equal(t, "CUR", Current.String())
	assert.Equal(t, "GBL", Global.String())
	assert.Equal(t, "ScopeOption(9)", ScopeOption(9).String())
}

func TestParseScopeOption(t *testing.T) {
	cases := map[string]ScopeOption{
		"":        All,
		"all":     All,
		"ALL":     All,
		"cur":     Current,
		"Current": Current,
		"gbl":     Global,
		" global": Global,
	}
	for in, want := range cases {
		got, err := ParseScopeOption(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseScopeOption("outer")
	assert.Error(t, err)
}
