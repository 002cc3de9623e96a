package resolver

import (
	"github.com/valhalla-lang/valhallac/lang/ast"
	"github.com/valhalla-lang/valhallac/lang/numerics"
)

var arithmeticOps = map[string]func(a, b numerics.Numeric) numerics.Numeric{
	"+": numerics.Add,
	"-": numerics.Sub,
	"*": numerics.Mul,
	"/": numerics.Div,
}

// Fold implements constant folding: any binary arithmetic call whose two
// operands are both literal Nums is replaced by the evaluated Num.
// Recursion is top-down. Division by a literal zero is deliberately left
// unfolded (the runtime traps it instead); every other literal/literal
// division folds normally.
func Fold(n ast.Node) ast.Node {
	call, ok := n.(*ast.Call)
	if !ok {
		return n
	}

	newCallee := Fold(call.Callee)
	newOperands := make([]ast.Node, len(call.Operands))
	for i, op := range call.Operands {
		newOperands[i] = Fold(op)
	}
	rebuilt := &ast.Call{Callee: newCallee, Operands: newOperands, ReturnType: call.ReturnType, Site: call.Site}

	opName := ast.BaseCallee(rebuilt).Name
	fold, ok := arithmeticOps[opName]
	if !ok {
		return rebuilt
	}
	operands := ast.CollectOperands(rebuilt)
	if len(operands) != 2 {
		return rebuilt
	}
	leftNum, lok := operands[0].(*ast.Num)
	rightNum, rok := operands[1].(*ast.Num)
	if !lok || !rok {
		return rebuilt
	}

	lv, err := numerics.Parse(leftNum.Value)
	if err != nil {
		return rebuilt
	}
	rv, err := numerics.Parse(rightNum.Value)
	if err != nil {
		return rebuilt
	}
	if opName == "/" && rv.IsZero() {
		return rebuilt
	}

	result := fold(lv, rv)
	return &ast.Num{Value: result.String(), Site: rebuilt.Site}
}
