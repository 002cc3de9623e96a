// Package ast defines the abstract syntax tree produced by the parser:
// Ident, Num, Str, Sym, Call, Block, File and Nil nodes, each carrying a
// site, plus the Root that collects a file's top-level branches.
package ast

import (
	"fmt"

	"github.com/valhalla-lang/valhallac/lang/token"
	"github.com/valhalla-lang/valhallac/lang/types"
)

// Node is implemented by every AST variant. Span returns the node's
// source site; every node carries one (invariant (i) of the data model).
type Node interface {
	fmt.Stringer
	Span() token.Site
	Walk(v Visitor)
	node()
}

// Visitor is called once per node during Walk; returning false stops
// descent into that node's children (but sibling traversal continues).
type Visitor func(n Node) bool

// Ident is a bare identifier reference. StaticType is filled in by the
// resolver; it is the zero StaticType (Kind Unknown) until then.
type Ident struct {
	Name       string
	StaticType types.StaticType
	Site       token.Site
}

// Num is a numeric literal. Value is the literal text as lexed; readers
// that want the parsed numerics.Numeric parse Value themselves.
type Num struct {
	Value string
	Site  token.Site
}

// Str is a double-quoted string literal with escapes already resolved.
type Str struct {
	Value string
	Site  token.Site
}

// Sym is a `:name` symbol literal.
type Sym struct {
	Name string
	Site token.Site
}

// Call is always unary in arity: `Call{Callee: Call{Callee: op, Operands:
// [a]}, Operands: [b]}` represents the binary application `a op b`.
type Call struct {
	Callee     Node
	Operands   []Node
	ReturnType types.StaticType
	Site       token.Site
}

// Block is a sequence of statements sharing one lexical scope.
type Block struct {
	Statements []Node
	Site       token.Site
}

// File is the root of a single source file's AST.
type File struct {
	Filename string
	Site     token.Site
}

// Nil is the literal produced by an empty `()`.
type Nil struct {
	Site token.Site
}

func (n *Ident) node() {}
func (n *Num) node()   {}
func (n *Str) node()   {}
func (n *Sym) node()   {}
func (n *Call) node()  {}
func (n *Block) node() {}
func (n *File) node()  {}
func (n *Nil) node()   {}

func (n *Ident) Span() token.Site { return n.Site }
func (n *Num) Span() token.Site   { return n.Site }
func (n *Str) Span() token.Site   { return n.Site }
func (n *Sym) Span() token.Site   { return n.Site }
func (n *Call) Span() token.Site  { return n.Site }
func (n *Block) Span() token.Site { return n.Site }
func (n *File) Span() token.Site  { return n.Site }
func (n *Nil) Span() token.Site   { return n.Site }

func (n *Ident) String() string { return n.Name }
func (n *Num) String() string   { return n.Value }
func (n *Str) String() string   { return fmt.Sprintf("%q", n.Value) }
func (n *Sym) String() string   { return ":" + n.Name }
func (n *Call) String() string  { return fmt.Sprintf("%s %v", n.Callee, n.Operands) }
func (n *Block) String() string { return fmt.Sprintf("block(%d stmts)", len(n.Statements)) }
func (n *File) String() string  { return fmt.Sprintf("file(%s)", n.Filename) }
func (n *Nil) String() string   { return "()" }

// Root is the parse result for one file: its filename and the ordered
// sequence of top-level nodes parsed from it (the first of which is
// conventionally the File node itself).
type Root struct {
	Filename string
	Branches []Node
}

// BaseCallee walks down a Call's callee spine and returns the leftmost
// Ident reached, i.e. the operator or function name ultimately being
// applied. It panics if the spine does not bottom out in an Ident, which
// would be a parser bug (every Call is constructed with an Ident or
// another Call as its callee).
func BaseCallee(c *Call) *Ident {
	var n Node = c
	for {
		switch t := n.(type) {
		case *Call:
			n = t.Callee
		case *Ident:
			return t
		default:
			panic(fmt.Sprintf("ast: call spine does not bottom out in an Ident: %T", t))
		}
	}
}

// CollectOperands returns a Call's spine operands in source (left-to-
// right, i.e. application) order: for `Call(Call(op,[a]),[b])` it
// returns [a, b].
func CollectOperands(c *Call) []Node {
	var operands [][]Node
	var n Node = c
	for {
		call, ok := n.(*Call)
		if !ok {
			break
		}
		operands = append(operands, call.Operands)
		n = call.Callee
	}
	var out []Node
	for i := len(operands) - 1; i >= 0; i-- {
		out = append(out, operands[i]...)
	}
	return out
}

// Unwrap returns n's single wrapped child if n is a one-node Block used
// purely for grouping, else n itself. The parser does not build Block
// nodes for parenthesised expressions.
func Unwrap(n Node) Node {
	if b, ok := n.(*Block); ok && len(b.Statements) == 1 {
		return b.Statements[0]
	}
	return n
}
