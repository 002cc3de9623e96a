// Package resolver implements the analysis passes: type resolution over
// a scope-stack of symbol tables, implicit-cast type balancing, and
// constant folding. Passes are selected by a Mode bitflag, following the
// teacher's resolver.Mode pattern; the algorithms themselves follow the
// original implementation's type_resolver.rs/type_balancer.rs/
// constant_fold.rs.
package resolver

import (
	"fmt"

	"github.com/valhalla-lang/valhallac/lang/ast"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/token"
	"github.com/valhalla-lang/valhallac/lang/types"
)

// Mode selects which analysis passes Run performs.
type Mode uint

const (
	ResolveTypes Mode = 1 << iota
	BalancePass
	FoldPass
)

// DefaultMode runs every pass, in the spec's default order: type
// resolution (which inlines type balancing for arithmetic nodes it
// visits) followed by a standalone constant-folding sweep.
const DefaultMode = ResolveTypes | BalancePass | FoldPass

type resolver struct {
	chain    *Chain
	reporter *issue.Reporter
	mode     Mode
	filename string
}

// Run resolves, balances and/or folds root's branches in place (per
// mode) and returns root. Resolution stops visiting further branches
// once the reporter has recorded a fatal issue, matching the "resolution
// does not continue past a fatal error" rule.
func Run(root *ast.Root, r *issue.Reporter, mode Mode) *ast.Root {
	res := &resolver{chain: NewChain(), reporter: r, mode: mode, filename: root.Filename}

	for i, branch := range root.Branches {
		if r.Halted() {
			break
		}
		if mode&ResolveTypes != 0 {
			branch = res.resolveBranch(branch)
		}
		if mode&FoldPass != 0 {
			branch = Fold(branch)
		}
		root.Branches[i] = branch
	}
	return root
}

func (r *resolver) errorf(site token.Site, format string, args ...any) {
	r.reporter.Report(issue.New(issue.TypeError, site, fmt.Sprintf(format, args...)))
}

// resolveBranch resolves one top-level (or recursively, nested) node,
// dispatching on its structural form per §4.4.1.
func (r *resolver) resolveBranch(n ast.Node) ast.Node {
	switch t := n.(type) {
	case *ast.File:
		return t

	case *ast.Ident:
		return r.resolveIdent(t)

	case *ast.Call:
		return r.resolveCall(t)

	default:
		return n
	}
}

func (r *resolver) resolveIdent(id *ast.Ident) ast.Node {
	if types.ReservedIdentifiers[id.Name] {
		return id
	}
	sigs, ok := r.chain.Search(id.Name)
	if !ok {
		r.errorf(id.Site, "undeclared identifier %q", id.Name)
		return id
	}
	if len(sigs) != 1 {
		if sigs[0].Kind != types.FunctionOf {
			r.errorf(id.Site, "identifier %q has multiple signatures but is not a function", id.Name)
		}
		id.StaticType = sigs[0]
		return id
	}
	st := sigs[0]
	if st.IsSet() {
		st = st.Inner()
	}
	id.StaticType = st
	return id
}

func (r *resolver) resolveCall(call *ast.Call) ast.Node {
	base := ast.BaseCallee(call)
	operands := ast.CollectOperands(call)

	switch {
	case base.Name == ":" && len(operands) == 2:
		return r.resolveAnnotation(call, operands[0], operands[1])

	case base.Name == "=" && len(operands) == 2:
		return r.resolveAssignment(call, operands[0], operands[1])

	case isArithmetic(base.Name) && len(operands) == 2:
		return r.resolveArithmetic(call, operands[0], operands[1])

	default:
		return r.resolveApplication(call, operands)
	}
}

func isArithmetic(name string) bool {
	switch name {
	case "+", "-", "*", "/", "^":
		return true
	default:
		return false
	}
}

// resolveAnnotation handles `x : T`: T must yield Set(U); x : U is
// declared in the current table. The original call node is preserved so
// it can still appear as a pattern elsewhere (the emitter records the
// same shape independently, in its per-name pending-annotation map).
func (r *resolver) resolveAnnotation(call *ast.Call, lhs, rhs ast.Node) ast.Node {
	ident, ok := lhs.(*ast.Ident)
	if !ok {
		r.errorf(call.Site, "left-hand side of ':' must be an identifier")
		return call
	}
	rt, err := r.evalTypeExpr(rhs)
	if err != nil {
		r.errorf(rhs.Span(), "%s", err)
		return call
	}
	if !rt.IsSet() {
		r.errorf(rhs.Span(), "right-hand side of ':' must yield a Set, got %s", rt)
		return call
	}
	r.chain.Current().Push(Entry{Identifier: ident.Name, Type: rt.Inner(), Defined: false})
	call.ReturnType = rt
	return call
}

// resolveAssignment handles `x = e` (simple identifier LHS) and `f a b
// ... = body` (function-definition LHS, a nested Call spine).
func (r *resolver) resolveAssignment(call *ast.Call, lhs, rhs ast.Node) ast.Node {
	switch l := lhs.(type) {
	case *ast.Ident:
		return r.resolveSimpleAssignment(call, l, rhs)
	case *ast.Call:
		return r.resolveFunctionDefinition(call, l, rhs)
	default:
		r.errorf(call.Site, "invalid assignment left-hand side")
		return call
	}
}

func (r *resolver) resolveSimpleAssignment(call *ast.Call, ident *ast.Ident, rhs ast.Node) ast.Node {
	resolvedRHS := r.resolveBranch(rhs)
	rt := yieldOf(resolvedRHS)

	if decl, ok := r.chain.FindDeclaration(ident.Name); ok {
		if decl.Type.IsNumeric() && rt.IsNumeric() && decl.Type.Kind != rt.Kind {
			if r.mode&BalancePass != 0 && rt.NumericRank() <= decl.Type.NumericRank() {
				resolvedRHS = BalanceAssignment(decl.Type, resolvedRHS)
			} else {
				r.errorf(call.Site, "cannot assign %s to %q declared as %s", rt, ident.Name, decl.Type)
			}
		} else if !decl.Type.IsNumeric() && !decl.Type.Equal(rt) && rt.Kind != types.Unknown {
			r.errorf(call.Site, "cannot assign %s to %q declared as %s", rt, ident.Name, decl.Type)
		}
		r.chain.Current().MarkDefined(ident.Name)
	} else {
		r.chain.Current().Push(Entry{Identifier: ident.Name, Type: rt, Defined: true})
	}

	ident.StaticType = yieldOf(resolvedRHS)
	rebuilt := rebuildAssign(call, ident, resolvedRHS)
	rebuilt.ReturnType = yieldOf(resolvedRHS)
	return rebuilt
}

func rebuildAssign(orig *ast.Call, lhs, rhs ast.Node) *ast.Call {
	eqIdent := &ast.Ident{Name: "=", Site: ast.BaseCallee(orig).Site}
	inner := &ast.Call{Callee: eqIdent, Operands: []ast.Node{lhs}, Site: orig.Site}
	return &ast.Call{Callee: inner, Operands: []ast.Node{rhs}, Site: orig.Site}
}

// resolveFunctionDefinition handles `f a1 a2 ... = body`. f must carry a
// prior annotation f : D1 -> D2 -> ... -> R. A child scope binds each
// formal to its corresponding domain; body must yield the innermost
// codomain.
func (r *resolver) resolveFunctionDefinition(call *ast.Call, lhsSpine *ast.Call, body ast.Node) ast.Node {
	fnIdent := ast.BaseCallee(lhsSpine)
	formals := ast.CollectOperands(lhsSpine)

	decl, ok := r.chain.FindDeclaration(fnIdent.Name)
	if !ok {
		r.errorf(call.Site, "function %q has no prior type annotation", fnIdent.Name)
		return call
	}

	r.chain.Push(fnIdent.Name)
	defer r.chain.Pop()

	cur := decl.Type
	for _, formal := range formals {
		ident, ok := formal.(*ast.Ident)
		if !ok {
			r.errorf(formal.Span(), "function formal arguments must be identifiers")
			return call
		}
		if cur.Kind != types.FunctionOf {
			r.errorf(formal.Span(), "too many formal arguments for %q", fnIdent.Name)
			return call
		}
		r.chain.Current().Push(Entry{Identifier: ident.Name, Type: *cur.Domain, Defined: true})
		ident.StaticType = *cur.Domain
		cur = *cur.Codomain
	}

	resolvedBody := r.resolveBranch(body)
	bodyType := yieldOf(resolvedBody)
	if !bodyType.Equal(cur) && bodyType.Kind != types.Unknown {
		r.errorf(body.Span(), "function %q body yields %s, expected %s", fnIdent.Name, bodyType, cur)
	}

	r.chain.Current().MarkDefined(fnIdent.Name)
	rebuilt := rebuildAssign(call, lhsSpine, resolvedBody)
	rebuilt.ReturnType = cur
	return rebuilt
}

func (r *resolver) resolveArithmetic(call *ast.Call, lhs, rhs ast.Node) ast.Node {
	resolvedLeft := r.resolveBranch(lhs)
	resolvedRight := r.resolveBranch(rhs)
	opName := ast.BaseCallee(call).Name
	rebuilt := rebuildBinary(call, opName, resolvedLeft, resolvedRight)

	lt, rt := yieldOf(resolvedLeft), yieldOf(resolvedRight)
	if lt.Kind == types.String && rt.Kind == types.String && opName == "+" {
		rebuilt.ReturnType = types.Leaf(types.String)
		return rebuilt
	}
	if !lt.IsNumeric() || !rt.IsNumeric() {
		r.errorf(call.Site, "arithmetic operator %q requires numeric operands, got %s and %s", opName, lt, rt)
		return rebuilt
	}

	if _, leftLit := resolvedLeft.(*ast.Num); leftLit {
		if _, rightLit := resolvedRight.(*ast.Num); rightLit {
			// Leave literal/literal arithmetic uncast: the later Fold
			// pass evaluates it directly (numerics.Add/Sub/Mul/Div
			// already rank-promote), and inserting a balancer cast
			// here would hide one operand behind a Call node,
			// breaking Fold's literal/literal pattern match.
			rebuilt.ReturnType = literalArithmeticReturnType(opName, lt, rt)
			return rebuilt
		}
	}

	if r.mode&BalancePass != 0 {
		return Balance(rebuilt)
	}
	if rt.NumericRank() > lt.NumericRank() {
		rebuilt.ReturnType = rt
	} else {
		rebuilt.ReturnType = lt
	}
	return rebuilt
}

// resolveApplication handles any call that is not one of the recognised
// structural forms: resolve callee and operand(s), taking the callee's
// first declared signature Function(D, R) (operand types are not
// consulted when choosing it); operand.yield must equal D; the call's
// return_type becomes R.
func (r *resolver) resolveApplication(call *ast.Call, operands []ast.Node) ast.Node {
	base := ast.BaseCallee(call)
	if types.ReservedIdentifiers[base.Name] || base.Name == "__raw_print" {
		resolved := make([]ast.Node, len(operands))
		for i, op := range operands {
			resolved[i] = r.resolveBranch(op)
		}
		return rebuildApplication(call, base, resolved)
	}

	sigs, ok := r.chain.Search(base.Name)
	if !ok {
		r.errorf(base.Site, "undeclared identifier %q", base.Name)
		return call
	}
	fnType := sigs[0]
	resolvedOperands := make([]ast.Node, len(operands))
	for i, op := range operands {
		resolvedOperands[i] = r.resolveBranch(op)
	}

	cur := fnType
	var lastReturn types.StaticType
	for _, op := range resolvedOperands {
		if cur.Kind != types.FunctionOf {
			r.errorf(call.Site, "%q applied to too many arguments", base.Name)
			break
		}
		domain := *cur.Domain
		argType := yieldOf(op)
		if !domain.Equal(argType) && argType.Kind != types.Unknown {
			r.errorf(op.Span(), "argument to %q has type %s, expected %s", base.Name, argType, domain)
		}
		lastReturn = *cur.Codomain
		cur = lastReturn
	}

	rebuilt := rebuildApplication(call, base, resolvedOperands)
	rebuilt.ReturnType = lastReturn
	return rebuilt
}

func rebuildApplication(orig *ast.Call, base *ast.Ident, operands []ast.Node) *ast.Call {
	var n ast.Node = base
	for _, op := range operands {
		n = &ast.Call{Callee: n, Operands: []ast.Node{op}, Site: orig.Site}
	}
	return n.(*ast.Call)
}

// evalTypeExpr evaluates a type-level expression (the right-hand side of
// an annotation): a reserved type identifier, a "->" chain building
// Function types, or a "Set X" expression wrapping an arbitrary value
// expression's resolved type.
func (r *resolver) evalTypeExpr(n ast.Node) (types.StaticType, error) {
	switch t := n.(type) {
	case *ast.Ident:
		if rt, ok := types.Reserved[t.Name]; ok {
			return rt, nil
		}
		if sigs, ok := r.chain.Search(t.Name); ok && len(sigs) == 1 && sigs[0].IsSet() {
			return sigs[0], nil
		}
		return types.StaticType{}, fmt.Errorf("unknown type identifier %q", t.Name)

	case *ast.Call:
		base := ast.BaseCallee(t)
		operands := ast.CollectOperands(t)

		if base.Name == "->" && len(operands) == 2 {
			domain, err := r.evalTypeExpr(operands[0])
			if err != nil {
				return types.StaticType{}, err
			}
			codomain, err := r.evalTypeExpr(operands[1])
			if err != nil {
				return types.StaticType{}, err
			}
			if !domain.IsSet() || !codomain.IsSet() {
				return types.StaticType{}, fmt.Errorf("'->' operands must both yield Sets")
			}
			return types.Set(types.Function(domain.Inner(), codomain.Inner())), nil
		}

		if base.Name == "Set" && len(operands) == 1 {
			resolved := r.resolveBranch(operands[0])
			return types.Set(yieldOf(resolved)), nil
		}

		return types.StaticType{}, fmt.Errorf("expression is not a valid type expression")

	default:
		return types.StaticType{}, fmt.Errorf("expression is not a valid type expression")
	}
}
