package marshal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valhalla-lang/valhallac/lang/compiler"
)

func TestRoundTrip(t *testing.T) {
	inner := compiler.NewLocalBlock("greet_final", "greet.vh")
	inner.OperandType = "String"
	inner.ReturnType = "String"
	inner.DeclareLocal("who")
	ix := inner.PushConst(compiler.StringElement("hello, "))
	inner.PushConstInstr(ix)
	inner.GlobalIndex("who")

	root := compiler.NewLocalBlock("main", "greet.vh")
	natIx := root.PushConst(compiler.NaturalElement(250))
	root.PushConstInstr(natIx)
	intIx := root.PushConst(compiler.IntegerElement(-7))
	root.PushConstInstr(intIx)
	realIx := root.PushConst(compiler.RealElement(3.5))
	root.PushConstInstr(realIx)
	symIx := root.PushConst(compiler.SymbolElement(":ok"))
	root.PushConstInstr(symIx)
	nilIx := root.PushConst(compiler.NilElement())
	root.PushConstInstr(nilIx)
	codeIx := root.PushConst(compiler.CodeElement(inner))
	root.PushConstInstr(codeIx)
	root.DeclareLocal("x")

	data, err := Marshal(root)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, Version[:], data[:3])

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	require.Equal(t, root.Name, decoded.Name)
	require.Equal(t, root.Filename, decoded.Filename)
	require.Equal(t, root.StackDepth, decoded.StackDepth)
	require.Equal(t, root.Locals(), decoded.Locals)
	require.Equal(t, root.Instructions, decoded.Instructions)
	require.Len(t, decoded.Constants, len(root.Constants()))

	for i, want := range root.Constants() {
		got := decoded.Constants[i]
		if want.Kind == compiler.ElemCode {
			require.Equal(t, compiler.ElemCode, got.Kind)
			require.Equal(t, want.Code.Name, got.Code.Name)
			require.Equal(t, want.Code.Instructions, got.Code.Instructions)
			require.Equal(t, want.Code.Globals, got.Code.Globals)
			continue
		}
		require.True(t, want.Equal(got), "constant %d: want %s got %s", i, want, got)
	}
}

func TestRoundTripDeterministic(t *testing.T) {
	b := compiler.NewLocalBlock("main", "a.vh")
	ix := b.PushConst(compiler.NaturalElement(1))
	b.PushConstInstr(ix)
	b.PushConstInstr(ix) // repeated push should collapse to DUP via the emitter's CSE peephole

	first, err := Marshal(b)
	require.NoError(t, err)
	second, err := Marshal(b)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUnsupportedSetElement(t *testing.T) {
	b := compiler.NewLocalBlock("main", "a.vh")
	b.PushConst(compiler.SetElement(&compiler.SetDescriptor{ElementType: "Natural"}))

	_, err := Marshal(b)
	require.Error(t, err)
	var unsupported *UnsupportedElementError
	require.ErrorAs(t, err, &unsupported)
}

func TestNaturalZeroTrimsToEmptyPayload(t *testing.T) {
	b := compiler.NewLocalBlock("main", "a.vh")
	b.PushConst(compiler.NaturalElement(0))

	data, err := Marshal(b)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, decoded.Constants, 1)
	require.Equal(t, compiler.NaturalElement(0), decoded.Constants[0])
}

func TestIntegerSignRoundTrips(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, -128, 128, -129, 1 << 40, -(1 << 40)} {
		b := compiler.NewLocalBlock("main", "a.vh")
		b.PushConst(compiler.IntegerElement(v))

		data, err := Marshal(b)
		require.NoError(t, err)
		decoded, err := Unmarshal(data)
		require.NoError(t, err)
		require.Equal(t, v, decoded.Constants[0].Int)
	}
}

func TestBadVersionRejected(t *testing.T) {
	b := compiler.NewLocalBlock("main", "a.vh")
	data, err := Marshal(b)
	require.NoError(t, err)

	data[1] = 99
	_, err = Unmarshal(data)
	require.Error(t, err)
}
