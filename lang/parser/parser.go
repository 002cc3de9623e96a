// Package parser implements the Pratt expression parser: expr(right_prec)
// shifts one token, computes its null denotation, then repeatedly applies
// the left denotation of any lookahead binding tighter than right_prec.
// Structure follows the teacher's parser package (an expect/error helper
// pair, panic/recover-based error resync); the algorithm itself follows
// the original implementation's null_den/left_den split.
package parser

import (
	"fmt"

	"github.com/valhalla-lang/valhallac/lang/ast"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/operators"
	"github.com/valhalla-lang/valhallac/lang/token"
)

// Mode selects optional parser behaviour.
type Mode uint

const (
	// Comments, if set, would retain comment tokens for reproduction; the
	// scanner drops comments unconditionally so this mode currently has
	// no observable effect, kept for parity with the teacher's Mode shape.
	Comments Mode = 1 << iota
)

type parser struct {
	filename string
	toks     []token.Token
	pos      int
	reporter *issue.Reporter
}

// errResync is panicked by expect on a structural parse error and
// recovered at the nearest statement boundary, mirroring the teacher's
// errPanicMode idiom.
type errResync struct{}

// Parse runs the parser over an already-lexed token stream and returns the
// resulting Root. Parse errors are reported to r; Parse always returns a
// best-effort Root even when issues were reported.
func Parse(filename string, toks []token.Token, r *issue.Reporter, mode Mode) *ast.Root {
	p := &parser{filename: filename, toks: toks, reporter: r}
	root := &ast.Root{Filename: filename}
	root.Branches = append(root.Branches, &ast.File{Filename: filename, Site: p.cur().Site})

	for !p.atEnd() {
		p.skipTerm()
		if p.atEnd() {
			break
		}
		branch := p.parseStatement()
		if branch != nil {
			root.Branches = append(root.Branches, branch)
		}
	}
	return root
}

func (p *parser) atEnd() bool {
	return p.cur().Class == token.EOF
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Class: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 || t.Class != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) skipTerm() {
	for p.cur().Class == token.Term {
		p.advance()
	}
}

func (p *parser) errorf(site token.Site, format string, args ...any) {
	p.reporter.Report(issue.New(issue.ParseError, site, fmt.Sprintf(format, args...)))
}

func (p *parser) expect(class token.Class) token.Token {
	if p.cur().Class != class {
		p.errorf(p.cur().Site, "expected %s, found %s %q", class, p.cur().Class, p.cur().Literal)
		panic(errResync{})
	}
	return p.advance()
}

// parseStatement parses one top-level statement, recovering to the next
// Term boundary if a structural error panics.
func (p *parser) parseStatement() (n ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errResync); !ok {
				panic(r)
			}
			for !p.atEnd() && p.cur().Class != token.Term {
				p.advance()
			}
			n = nil
		}
	}()

	expr := p.expr(0)
	p.skipTerm()
	return expr
}

// expr implements the Pratt climbing loop: shift one token, compute its
// null denotation, then while the lookahead's precedence exceeds
// rightPrec, apply its left denotation.
func (p *parser) expr(rightPrec int) ast.Node {
	left := p.nullDenotation()

	for {
		look := p.cur()
		if look.Class == token.Term || look.Class == token.EOF ||
			look.Class == token.RParen || look.Class == token.RBrack ||
			look.Class == token.RBrace || look.Class == token.RVec {
			break
		}

		name, arity := p.lookaheadOperator(look)
		prec := operators.Precedence(name, arity)
		if prec <= rightPrec {
			break
		}

		if op, ok := operators.Lookup(name, 2); ok && look.Class != token.LParen {
			left = p.leftDenotation(left, op)
			continue
		}

		// Juxtaposition: the lookahead is not a recognised infix operator
		// at this position — treat it as an applied operand.
		left = p.juxtapose(left)
	}

	return left
}

// lookaheadOperator returns the operator name and arity the lookahead
// token would be parsed at, for precedence comparison purposes only.
// Word operators (`mod`, `and`, `or`, `is`, `isn't`, `if`, `unless`, ...)
// lex as Ident, not Op — the table, not the token class, decides whether
// a lookahead is an operator, matching the original implementation's
// lexeme-based precedence lookup.
func (p *parser) lookaheadOperator(look token.Token) (string, int) {
	if look.Class == token.Op || look.Class == token.Ident {
		return look.Literal, 2
	}
	return "", 2
}

// nullDenotation computes the value of the current token standing alone
// (as a prefix position), then advances past it.
func (p *parser) nullDenotation() ast.Node {
	tok := p.cur()

	switch tok.Class {
	case token.Ident:
		p.advance()
		// Word-form prefix operators (`not`) lex as Ident; check the table
		// before falling back to a plain identifier reference, mirroring
		// the token.Op prefix-operator case below.
		if unary, ok := operators.Lookup(tok.Literal, 1); ok {
			opIdent := &ast.Ident{Name: tok.Literal, Site: tok.Site}
			operandSite := p.cur().Site
			operand := p.expr(unary.Precedence - sideAdjust(unary.Side))
			return &ast.Call{Callee: opIdent, Operands: []ast.Node{operand}, Site: tok.Site.Compose(operandSite).Compose(operand.Span())}
		}
		return &ast.Ident{Name: tok.Literal, Site: tok.Site}

	case token.Num:
		p.advance()
		return &ast.Num{Value: tok.Literal, Site: tok.Site}

	case token.Str:
		p.advance()
		return &ast.Str{Value: tok.Literal, Site: tok.Site}

	case token.Sym:
		p.advance()
		return &ast.Sym{Name: tok.Literal, Site: tok.Site}

	case token.LParen:
		p.advance()
		p.skipTerm()
		if p.cur().Class == token.RParen {
			closeSite := p.cur().Site
			p.advance()
			return &ast.Nil{Site: tok.Site.Compose(closeSite)}
		}
		inner := p.expr(0)
		p.skipTerm()
		close := p.expect(token.RParen)
		return wrapParenSite(inner, tok.Site.Compose(close.Site))

	case token.Op:
		// Prefix or postfix unary operator with no left operand: emit a
		// partial application per spec's null-denotation rule.
		p.advance()
		opIdent := &ast.Ident{Name: tok.Literal, Site: tok.Site}
		if unary, ok := operators.Lookup(tok.Literal, 1); ok {
			operandSite := p.cur().Site
			operand := p.expr(unary.Precedence - sideAdjust(unary.Side))
			return &ast.Call{Callee: opIdent, Operands: []ast.Node{operand}, Site: tok.Site.Compose(operandSite).Compose(operand.Span())}
		}
		// Postfix-style partial application: Call(Call(flip,[op]),[arg]).
		flip := &ast.Ident{Name: "flip", Site: tok.Site}
		arg := p.expr(0)
		inner := &ast.Call{Callee: flip, Operands: []ast.Node{opIdent}, Site: tok.Site}
		return &ast.Call{Callee: inner, Operands: []ast.Node{arg}, Site: tok.Site.Compose(arg.Span())}

	default:
		p.errorf(tok.Site, "unexpected token %s %q in expression", tok.Class, tok.Literal)
		panic(errResync{})
	}
}

// wrapParenSite keeps inner's node but widens its recorded site to cover
// the enclosing parentheses, so `(a)`'s site spans the parens.
func wrapParenSite(n ast.Node, site token.Site) ast.Node {
	switch t := n.(type) {
	case *ast.Ident:
		c := *t
		c.Site = site
		return &c
	case *ast.Num:
		c := *t
		c.Site = site
		return &c
	case *ast.Str:
		c := *t
		c.Site = site
		return &c
	case *ast.Sym:
		c := *t
		c.Site = site
		return &c
	case *ast.Call:
		c := *t
		c.Site = site
		return &c
	case *ast.Nil:
		c := *t
		c.Site = site
		return &c
	default:
		return n
	}
}

func sideAdjust(s operators.Side) int {
	if s == operators.Right {
		return 1
	}
	return 0
}

// leftDenotation consumes a known binary operator and parses its
// right-hand operand at the precedence required by its associativity,
// producing Call(Call(op, [left]), [right]).
func (p *parser) leftDenotation(left ast.Node, op operators.Operator) ast.Node {
	opTok := p.advance()
	opIdent := &ast.Ident{Name: op.Name, Site: opTok.Site}

	rightPrec := op.Precedence
	if op.Side == operators.Right {
		rightPrec--
	}
	p.skipTerm() // a binary operator at end of line continues on the next
	right := p.expr(rightPrec)

	inner := &ast.Call{Callee: opIdent, Operands: []ast.Node{left}, Site: left.Span().Compose(opTok.Site)}
	return &ast.Call{Callee: inner, Operands: []ast.Node{right}, Site: left.Span().Compose(right.Span())}
}

// juxtapose absorbs the current expression position as an operand of an
// implicit function application. If left is already an Ident or a Call
// with no operands yet, the operand is pushed directly onto that same
// Call rather than wrapping another layer, avoiding spurious nested
// calls for `f x y`.
func (p *parser) juxtapose(left ast.Node) ast.Node {
	operand := p.expr(operators.JuxtapositionPrecedence)

	if id, ok := left.(*ast.Ident); ok {
		return &ast.Call{Callee: id, Operands: []ast.Node{operand}, Site: id.Site.Compose(operand.Span())}
	}
	if call, ok := left.(*ast.Call); ok && len(call.Operands) == 0 {
		call.Operands = append(call.Operands, operand)
		call.Site = call.Site.Compose(operand.Span())
		return call
	}
	return &ast.Call{Callee: left, Operands: []ast.Node{operand}, Site: left.Span().Compose(operand.Span())}
}
