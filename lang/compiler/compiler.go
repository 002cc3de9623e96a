package compiler

import (
	"fmt"

	"github.com/valhalla-lang/valhallac/lang/ast"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/numerics"
	"github.com/valhalla-lang/valhallac/lang/types"
)

// compiler holds the linear-emission state for one source file's
// blocks. Unlike the teacher's CFG-based pcomp/fcomp split (this
// language has no jumps, loops or branches to compile), a single
// compiler walks the already-typed, balanced and folded AST once per
// block and emits straight-line bytecode.
type compiler struct {
	reporter *issue.Reporter
	block    *LocalBlock

	pendingAnnotation map[string]types.StaticType
	line              int
}

// Compile walks root (the output of resolver.Run) and emits a root
// LocalBlock. root must not carry any fatal issue; compiling an AST
// that failed resolution is undefined, matching the teacher's own
// CompileFiles contract.
func Compile(root *ast.Root, r *issue.Reporter) *LocalBlock {
	c := &compiler{
		reporter:          r,
		block:             NewLocalBlock("main", root.Filename),
		pendingAnnotation: make(map[string]types.StaticType),
	}
	for _, branch := range root.Branches {
		if r.Halted() {
			break
		}
		c.emitLine(branch)
		c.emitNode(branch)
	}
	c.block.emit(YIELD)
	return c.block
}

func (c *compiler) errorf(n ast.Node, format string, args ...any) {
	c.reporter.Report(issue.New(issue.CompError, n.Span(), fmt.Sprintf(format, args...)))
}

func (c *compiler) emitLine(n ast.Node) {
	site := n.Span()
	if site.Known() {
		c.block.setLine(site.Location.Line)
	}
}

// emitNode emits code for n. Most node kinds leave exactly one value on
// the operand stack; the two exceptions are annotation (':') and
// assignment ('='), which are statement forms that leave nothing
// behind (their value is consumed by STORE_LOCAL or discarded).
func (c *compiler) emitNode(n ast.Node) {
	switch t := n.(type) {
	case *ast.File:
		return

	case *ast.Num:
		ix := c.block.PushConst(numConstant(t.Value))
		c.block.PushConstInstr(ix)

	case *ast.Str:
		ix := c.block.PushConst(StringElement(t.Value))
		c.block.PushConstInstr(ix)

	case *ast.Sym:
		ix := c.block.PushConst(SymbolElement(t.Name))
		c.block.PushConstInstr(ix)

	case *ast.Nil:
		ix := c.block.PushConst(NilElement())
		c.block.PushConstInstr(ix)

	case *ast.Ident:
		c.emitIdentLoad(t)

	case *ast.Call:
		c.emitCall(t)

	default:
		c.errorf(n, "compiler: unhandled node kind %T", n)
	}
}

func (c *compiler) emitIdentLoad(id *ast.Ident) {
	if ix, ok := c.block.LocalIndex(id.Name); ok {
		c.block.emitArg(PUSH_LOCAL, uint16(ix))
		return
	}
	gix := c.block.GlobalIndex(id.Name)
	c.block.emitArg(PUSH_SUPER, uint16(gix))
}

func (c *compiler) emitCall(call *ast.Call) {
	base := ast.BaseCallee(call)
	operands := ast.CollectOperands(call)

	switch {
	case base.Name == ":" && len(operands) == 2:
		c.emitAnnotation(call, operands[0])

	case base.Name == "=" && len(operands) == 2:
		c.emitAssignment(call, operands[0], operands[1])

	case base.Name == "cast" && len(operands) == 2:
		c.emitCast(operands[0], operands[1])

	case isArithmeticOp(base.Name) && len(operands) == 2:
		c.emitArithmetic(call, base.Name, operands[0], operands[1])

	case base.Name == "__raw_print" && len(operands) == 1:
		c.emitNode(operands[0])
		c.block.emit(RAW_PRINT)

	default:
		c.emitApplication(call)
	}
}

// emitAnnotation records the declared type for name so the next
// assignment to it can decide whether a runtime CHECK_TYPE is needed;
// no code is emitted, per the emitter's annotation rule. The declared
// type is read off call.ReturnType (the resolver's already-evaluated
// Set(T) for this annotation), not recomputed from the raw type-level
// expression node, since an unresolved type identifier like `Nat`
// never carries a StaticType of its own.
func (c *compiler) emitAnnotation(call *ast.Call, lhs ast.Node) {
	ident, ok := lhs.(*ast.Ident)
	if !ok {
		return
	}
	if !call.ReturnType.IsSet() {
		c.pendingAnnotation[ident.Name] = types.Leaf(types.Unknown)
		return
	}
	c.pendingAnnotation[ident.Name] = call.ReturnType.Inner()
}

func (c *compiler) emitAssignment(call *ast.Call, lhs, rhs ast.Node) {
	switch l := lhs.(type) {
	case *ast.Ident:
		c.emitSimpleAssignment(call, l, rhs)
	case *ast.Call:
		c.emitFunctionDefinition(call, l, rhs)
	}
}

func (c *compiler) emitSimpleAssignment(call *ast.Call, ident *ast.Ident, rhs ast.Node) {
	if _, rebinds := c.block.LocalIndex(ident.Name); rebinds {
		c.reporter.Report(issue.New(issue.CompError, call.Span(), fmt.Sprintf("local %q never rebinds", ident.Name)))
		return
	}

	c.emitNode(rhs)

	decl, hasAnnotation := c.pendingAnnotation[ident.Name]
	rhsType := operandType(rhs)
	if hasAnnotation && decl.Kind != types.Unknown && rhsType.Kind != types.Unknown && decl.Kind != rhsType.Kind {
		c.block.emit(DUP)
		symIx := c.block.PushConst(SymbolElement(decl.String()))
		c.block.PushConstInstr(symIx)
		c.block.emit(CHECK_TYPE)
	}

	ix := c.block.DeclareLocal(ident.Name)
	c.block.emitArg(STORE_LOCAL, uint16(ix))
}

// emitFunctionDefinition realises `f a1 a2 ... = body` as n nested
// blocks, the innermost accepting the last formal and emitting
// body;YIELD, each outer block owning one formal and emitting
// MAKE_FUNC;YIELD for its nested block, per §4.5's currying recipe.
func (c *compiler) emitFunctionDefinition(call *ast.Call, lhsSpine *ast.Call, body ast.Node) {
	fnIdent := ast.BaseCallee(lhsSpine)
	formals := ast.CollectOperands(lhsSpine)
	if len(formals) == 0 {
		return
	}

	top := c.buildCurriedChain(fnIdent.Name, formals, body)

	ix := c.block.PushConst(CodeElement(top))
	c.block.PushConstInstr(ix)
	nameIx := c.block.PushConst(SymbolElement(fnIdent.Name))
	c.block.PushConstInstr(nameIx)
	c.block.emit(MAKE_FUNC)

	slot := c.block.DeclareLocal(fnIdent.Name)
	c.block.emitArg(STORE_LOCAL, uint16(slot))
}

// buildCurriedChain compiles formals[0:] = body into the nested
// __f_k/__f_final block chain, returning the outermost block (the one
// accepting formals[0]).
func (c *compiler) buildCurriedChain(fnName string, formals []ast.Node, body ast.Node) *LocalBlock {
	formal, ok := formals[0].(*ast.Ident)
	if !ok {
		return NewLocalBlock(fnName, c.block.Filename)
	}

	isLast := len(formals) == 1
	blockName := "__" + fnName + "_final"
	if !isLast {
		blockName = fmt.Sprintf("__%s_%d", fnName, len(formals))
	}

	inner := &compiler{
		reporter:          c.reporter,
		block:             NewLocalBlock(blockName, c.block.Filename),
		pendingAnnotation: make(map[string]types.StaticType),
	}
	inner.block.OperandType = operandType(formal).String()
	inner.block.DeclareLocal(formal.Name)

	if isLast {
		inner.emitNode(body)
		inner.block.ReturnType = operandType(body).String()
		inner.block.emit(YIELD)
		return inner.block
	}

	nested := inner.buildCurriedChain(fnName, formals[1:], body)
	nestedIx := inner.block.PushConst(CodeElement(nested))
	inner.block.PushConstInstr(nestedIx)
	nameIx := inner.block.PushConst(SymbolElement(blockName))
	inner.block.PushConstInstr(nameIx)
	inner.block.emit(MAKE_FUNC)
	inner.block.ReturnType = "Function"
	inner.block.emit(YIELD)
	return inner.block
}

func (c *compiler) emitCast(value, sym ast.Node) {
	c.emitNode(value)
	from := numTagOf(operandType(value).Kind)
	symNode, ok := sym.(*ast.Sym)
	to := TagNat
	if ok {
		to = numTagFromName(symNode.Name)
	}
	c.block.emitArg(CAST, PackCast(from, to))
}

func numTagFromName(name string) NumTag {
	switch name {
	case "Real":
		return TagReal
	case "Int":
		return TagInt
	default:
		return TagNat
	}
}

func numTagOf(k types.Kind) NumTag {
	switch k {
	case types.Real:
		return TagReal
	case types.Integer:
		return TagInt
	default:
		return TagNat
	}
}

var arithOpcodes = map[string][4]Opcode{
	// index 0=Natural,1=Integer,2=Real,3=Unknown/other
	"+": {N_ADD, I_ADD, R_ADD, U_ADD},
	"-": {N_SUB, I_SUB, R_SUB, U_SUB},
	"*": {N_MUL, I_MUL, R_MUL, U_MUL},
	"/": {N_DIV, I_DIV, R_DIV, U_DIV},
}

func isArithmeticOp(name string) bool {
	switch name {
	case "+", "-", "*", "/":
		return true
	default:
		return false
	}
}

// emitArithmetic emits RHS, then LHS, then the type-specialised opcode
// chosen by the call's resolved (post-balance) return type, exactly in
// that operand order per §4.5.
func (c *compiler) emitArithmetic(call *ast.Call, opName string, lhs, rhs ast.Node) {
	kind := call.ReturnType.Kind
	if kind == types.String && opName == "+" {
		c.emitNode(rhs)
		c.emitNode(lhs)
		c.block.emit(CONCAT)
		return
	}

	c.emitNode(rhs)
	c.emitNode(lhs)

	row, ok := arithOpcodes[opName]
	if !ok {
		c.errorf(call, "compiler: unknown arithmetic operator %q", opName)
		return
	}
	var op Opcode
	switch kind {
	case types.Natural:
		op = row[0]
	case types.Integer:
		op = row[1]
	case types.Real:
		op = row[2]
	default:
		op = row[3]
	}
	c.block.emit(op)
}

// emitApplication emits operand, then callee, then CALL_1, for every
// call shape that is not one of the recognised structural forms. Call
// is always unary, so a multi-argument application like `f x y` is
// `Call(Call(f,[x]),[y])`: emitting this call's own single operand (y)
// and then recursing into its callee (which emits x, f and its own
// CALL_1) naturally chains the curried applications left-to-right.
func (c *compiler) emitApplication(call *ast.Call) {
	if len(call.Operands) != 1 {
		c.errorf(call, "compiler: application call must have exactly one operand")
		return
	}
	c.emitNode(call.Operands[0])
	c.emitNode(call.Callee)
	c.block.emit(CALL_1)
}

// operandType mirrors the resolver's yieldOf for already-resolved
// nodes, local to the compiler so it need not import the unexported
// resolver package.
func operandType(n ast.Node) types.StaticType {
	switch t := n.(type) {
	case *ast.Ident:
		return t.StaticType
	case *ast.Call:
		return t.ReturnType
	case *ast.Num:
		v, err := numerics.Parse(t.Value)
		if err != nil {
			return types.Leaf(types.Unknown)
		}
		switch v.Rank() {
		case numerics.RankNatural:
			return types.Leaf(types.Natural)
		case numerics.RankInteger:
			return types.Leaf(types.Integer)
		default:
			return types.Leaf(types.Real)
		}
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

// numConstant builds the Element a numeric literal's text yields.
func numConstant(literal string) Element {
	v, err := numerics.Parse(literal)
	if err != nil {
		return NilElement()
	}
	switch v.Rank() {
	case numerics.RankNatural:
		return NaturalElement(v.AsNatural())
	case numerics.RankInteger:
		return IntegerElement(v.AsInteger())
	default:
		return RealElement(v.AsReal())
	}
}
