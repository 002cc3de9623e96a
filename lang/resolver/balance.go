package resolver

import (
	"github.com/valhalla-lang/valhallac/lang/ast"
	"github.com/valhalla-lang/valhallac/lang/numerics"
	"github.com/valhalla-lang/valhallac/lang/types"
)

// castSymbol names the cast target a balanced node's injected cast(·, :T)
// call carries.
func castSymbol(k types.Kind) string {
	switch k {
	case types.Real:
		return ":Real"
	case types.Integer:
		return ":Int"
	default:
		return ":Nat"
	}
}

// createCast wraps value in Call(Call(cast,[value]),[Sym(castSymbol)])
// with ReturnType set to target, exactly as the original type balancer
// builds its injected casts.
func createCast(value ast.Node, target types.StaticType) *ast.Call {
	site := value.Span()
	castIdent := &ast.Ident{Name: "cast", Site: site}
	sym := &ast.Sym{Name: castSymbol(target.Kind)[1:], Site: site}
	inner := &ast.Call{Callee: castIdent, Operands: []ast.Node{value}, Site: site}
	return &ast.Call{Callee: inner, Operands: []ast.Node{sym}, ReturnType: target, Site: site}
}

// yieldOf returns the static type an already-resolved expression node
// carries, i.e. the type the resolver or a prior balance step stamped on
// it.
func yieldOf(n ast.Node) types.StaticType {
	switch t := n.(type) {
	case *ast.Ident:
		return t.StaticType
	case *ast.Call:
		return t.ReturnType
	case *ast.Num:
		return numericYield(t.Value)
	case *ast.Str:
		return types.Leaf(types.String)
	case *ast.Sym:
		return types.Leaf(types.Symbol)
	case *ast.Nil:
		return types.Leaf(types.Nil)
	default:
		return types.Leaf(types.Unknown)
	}
}

// numericYield returns the static Kind a numeric literal's text yields,
// matching numerics.Parse's own rank selection.
func numericYield(literal string) types.StaticType {
	n, err := numerics.Parse(literal)
	if err != nil {
		return types.Leaf(types.Unknown)
	}
	switch n.Rank() {
	case numerics.RankNatural:
		return types.Leaf(types.Natural)
	case numerics.RankInteger:
		return types.Leaf(types.Integer)
	default:
		return types.Leaf(types.Real)
	}
}

// Balance implements the type balancer: given a binary arithmetic call
// whose two already-resolved operands are numeric, it inserts an explicit
// cast on the weaker-ranked side so both sides share one rank before
// emission, and sets call.ReturnType to the resulting (post-cast) rank.
// Subtraction in a context where the left (minuend) could be a smaller
// Natural than the right (subtrahend) widens the result to Integer
// (matching the numerics package's own underflow rule) even when both
// operands already share rank Natural.
func Balance(call *ast.Call) *ast.Call {
	opName := ast.BaseCallee(call).Name
	operands := ast.CollectOperands(call)
	if len(operands) != 2 {
		return call
	}
	left, right := operands[0], operands[1]
	lt, rt := yieldOf(left), yieldOf(right)
	if !lt.IsNumeric() || !rt.IsNumeric() {
		return call
	}

	target := lt
	if rt.NumericRank() > lt.NumericRank() {
		target = rt
	}
	if opName == "-" && lt.Kind == types.Natural && rt.Kind == types.Natural {
		target = types.Leaf(types.Integer)
	}

	newLeft, newRight := left, right
	if lt.Kind != target.Kind {
		newLeft = createCast(left, target)
	}
	if rt.Kind != target.Kind {
		newRight = createCast(right, target)
	}

	rebuilt := rebuildBinary(call, opName, newLeft, newRight)
	rebuilt.ReturnType = target
	return rebuilt
}

// literalArithmeticReturnType mirrors Balance's target-rank selection
// (including the Natural-minus-Natural widening-to-Integer rule) without
// inserting a cast node, for literal/literal operand pairs the Fold pass
// will evaluate directly via numerics.Add/Sub/Mul/Div's own promotion.
func literalArithmeticReturnType(opName string, lt, rt types.StaticType) types.StaticType {
	target := lt
	if rt.NumericRank() > lt.NumericRank() {
		target = rt
	}
	if opName == "-" && lt.Kind == types.Natural && rt.Kind == types.Natural {
		target = types.Leaf(types.Integer)
	}
	return target
}

// rebuildBinary reconstructs the Call(Call(op,[left]),[right]) shape with
// (possibly cast-wrapped) operands, preserving the original call's site.
func rebuildBinary(orig *ast.Call, opName string, left, right ast.Node) *ast.Call {
	site := orig.Site
	opIdent := &ast.Ident{Name: opName, Site: ast.BaseCallee(orig).Site}
	inner := &ast.Call{Callee: opIdent, Operands: []ast.Node{left}, Site: site}
	return &ast.Call{Callee: inner, Operands: []ast.Node{right}, Site: site}
}

// BalanceAssignment coerces a numeric RHS upward to match a numeric LHS
// annotation, per the balancer's assignment-coercion rule. It returns the
// (possibly cast-wrapped) RHS node.
func BalanceAssignment(lhsType types.StaticType, rhs ast.Node) ast.Node {
	rt := yieldOf(rhs)
	if !lhsType.IsNumeric() || !rt.IsNumeric() {
		return rhs
	}
	if rt.Kind == lhsType.Kind {
		return rhs
	}
	if rt.NumericRank() > lhsType.NumericRank() {
		// Narrowing coercions are not inserted implicitly; the resolver
		// reports a type error for those instead.
		return rhs
	}
	return createCast(rhs, lhsType)
}
