package valhallac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valhalla-lang/valhallac/lang/marshal"
)

func TestCompileToBytesRoundTrip(t *testing.T) {
	data, r, err := CompileToBytes("arith.vh", "x = 1 + 2\n")
	require.NoError(t, err)
	require.False(t, r.Halted())
	require.NotEmpty(t, data)

	decoded, err := marshal.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, "main", decoded.Name)
	require.Equal(t, "arith.vh", decoded.Filename)
	require.Equal(t, []string{"x"}, decoded.Locals)
}

func TestCompileToBytesReportsLexError(t *testing.T) {
	_, r, err := CompileToBytes("bad.vh", "\"unterminated")
	require.Error(t, err)
	require.True(t, r.Halted())
}

func TestCompileFunctionDefinition(t *testing.T) {
	data, r, err := CompileToBytes("fn.vh", "add : Nat -> Nat -> Nat\nadd x y = x + y\n")
	require.NoError(t, err)
	require.False(t, r.Halted())

	decoded, err := marshal.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, []string{"add"}, decoded.Locals)
	require.NotEmpty(t, decoded.Constants)
}
