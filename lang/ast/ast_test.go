package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valhalla-lang/valhallac/lang/ast"
	"github.com/valhalla-lang/valhallac/lang/token"
)

func ident(name string) *ast.Ident {
	return &ast.Ident{Name: name, Site: token.Fabricate()}
}

func TestBaseCalleeAndCollectOperands(t *testing.T) {
	a, b := ident("a"), ident("b")
	plus := ident("+")

	// Call(Call(+,[a]),[b]) represents a + b.
	inner := &ast.Call{Callee: plus, Operands: []ast.Node{a}, Site: token.Fabricate()}
	outer := &ast.Call{Callee: inner, Operands: []ast.Node{b}, Site: token.Fabricate()}

	require.Equal(t, plus, ast.BaseCallee(outer))
	require.Equal(t, []ast.Node{a, b}, ast.CollectOperands(outer))
}

func TestWalkVisitsEveryNode(t *testing.T) {
	a, b := ident("a"), ident("b")
	plus := ident("+")
	inner := &ast.Call{Callee: plus, Operands: []ast.Node{a}, Site: token.Fabricate()}
	outer := &ast.Call{Callee: inner, Operands: []ast.Node{b}, Site: token.Fabricate()}

	var seen []string
	outer.Walk(func(n ast.Node) bool {
		seen = append(seen, n.String())
		return true
	})
	require.Equal(t, []string{outer.String(), inner.String(), plus.Name, a.Name, b.Name}, seen)
}
