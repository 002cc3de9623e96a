package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valhalla-lang/valhallac/lang/compiler"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/parser"
	"github.com/valhalla-lang/valhallac/lang/resolver"
	"github.com/valhalla-lang/valhallac/lang/scanner"
)

func compile(t *testing.T, src string) (*compiler.LocalBlock, *issue.Reporter) {
	t.Helper()
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", src, r)
	root := parser.Parse("t.vh", toks, r, 0)
	root = resolver.Run(root, r, resolver.DefaultMode)
	if r.Halted() {
		return nil, r
	}
	return compiler.Compile(root, r), r
}

// TestMultiArgApplicationEmitsEveryOperand guards against dropping an
// outer operand when a curried application spine recurses: `f x y`
// must push both x and y before the two CALL_1s, not just x.
func TestMultiArgApplicationEmitsEveryOperand(t *testing.T) {
	block, r := compile(t, "f : Nat -> Nat -> Nat\nf x y = x\nf 1 2\n")
	require.False(t, r.Halted(), "%v", r.Issues())

	var pushConsts int
	ins := block.Instructions
	for i := 0; i < len(ins); {
		op := compiler.Opcode(ins[i])
		if op == compiler.PUSH_CONST {
			pushConsts++
		}
		if compiler.TakesOperand(op) {
			i += 3
		} else {
			i++
		}
	}
	// Constants pushed: the function's Code element, its name symbol,
	// and the two numeric literals 1 and 2 used as call operands.
	require.GreaterOrEqual(t, pushConsts, 4, "expected both call operands (1 and 2) to be pushed as constants")

	var calls int
	for i := 0; i < len(ins); {
		op := compiler.Opcode(ins[i])
		if op == compiler.CALL_1 {
			calls++
		}
		if compiler.TakesOperand(op) {
			i += 3
		} else {
			i++
		}
	}
	require.Equal(t, 2, calls, "f 1 2 is a two-level curried application, expects two CALL_1 instructions")
}

func TestConstantPoolDedup(t *testing.T) {
	block, r := compile(t, "1 + 1\n")
	require.False(t, r.Halted(), "%v", r.Issues())
	require.Len(t, block.Constants(), 1)
	require.Equal(t, compiler.NaturalElement(2), block.Constants()[0])
}

func TestConstantFoldedArithmeticEmitsSinglePush(t *testing.T) {
	block, r := compile(t, "2 + 3 * 4\n")
	require.False(t, r.Halted(), "%v", r.Issues())
	require.Len(t, block.Constants(), 1)
	require.Equal(t, compiler.NaturalElement(14), block.Constants()[0])
}

func TestRebindRejected(t *testing.T) {
	_, r := compile(t, "a : Nat\na = 1\na = 2\n")
	require.True(t, r.Halted())
	require.Equal(t, issue.CompError, r.Issues()[len(r.Issues())-1].Kind)
}

func TestFunctionCompilesToNestedCodeConstant(t *testing.T) {
	block, r := compile(t, "f : Nat -> Nat -> Nat\nf x y = x + y\n")
	require.False(t, r.Halted(), "%v", r.Issues())
	require.Equal(t, []string{"f"}, block.Locals())

	var outer *compiler.Element
	for i := range block.Constants() {
		if block.Constants()[i].Kind == compiler.ElemCode {
			outer = &block.Constants()[i]
			break
		}
	}
	require.NotNil(t, outer, "expected a Code constant for f")

	var innerFound bool
	for _, c := range outer.Code.Constants() {
		if c.Kind == compiler.ElemCode {
			innerFound = true
			last := c.Code.Instructions[len(c.Code.Instructions)-1]
			require.Equal(t, byte(compiler.YIELD), last)
		}
	}
	require.True(t, innerFound, "expected f's outer block to embed a nested Code block")
}

// TestMatchingAnnotationEmitsNoCheckType guards against CHECK_TYPE being
// emitted unconditionally for every annotated assignment: when the
// declared type and the RHS's resolved type agree, no runtime check is
// needed.
func TestMatchingAnnotationEmitsNoCheckType(t *testing.T) {
	block, r := compile(t, "n : Nat\nn = 1\n")
	require.False(t, r.Halted(), "%v", r.Issues())

	ins := block.Instructions
	for i := 0; i < len(ins); {
		op := compiler.Opcode(ins[i])
		require.NotEqual(t, compiler.CHECK_TYPE, op, "matching annotation and assignment must not emit CHECK_TYPE")
		if compiler.TakesOperand(op) {
			i += 3
		} else {
			i++
		}
	}
}

func TestBalancedCastEmitted(t *testing.T) {
	block, r := compile(t, "n : Nat\nr : Real\nn + r\n")
	require.False(t, r.Halted(), "%v", r.Issues())

	var sawCast bool
	ins := block.Instructions
	for i := 0; i < len(ins); {
		op := compiler.Opcode(ins[i])
		if op == compiler.CAST {
			sawCast = true
			from := ins[i+1]
			to := ins[i+2]
			require.Equal(t, byte(compiler.TagNat), from)
			require.Equal(t, byte(compiler.TagReal), to)
		}
		if compiler.TakesOperand(op) {
			i += 3
		} else {
			i++
		}
	}
	require.True(t, sawCast, "expected the weaker (Nat) operand to be cast to Real")
}
