package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/scanner"
	"github.com/valhalla-lang/valhallac/lang/token"
)

func classes(toks []token.Token) []token.Class {
	out := make([]token.Class, len(toks))
	for i, t := range toks {
		out[i] = t.Class
	}
	return out
}

func TestLexTotality(t *testing.T) {
	for _, src := range []string{"", "a + b", "\n\n\n", "# not a comment char\n", "\"unterminated"} {
		r := issue.NewReporter()
		toks := scanner.Lex("t.vh", src, r)
		require.NotEmpty(t, toks)
		last := toks[len(toks)-1]
		require.Equal(t, token.EOF, last.Class)
		require.Equal(t, len(src), last.Site.Location.ByteOffset)
	}
}

func TestLexBasicExpression(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", "a + b", r)
	require.Equal(t, []token.Class{token.Ident, token.Op, token.Ident, token.EOF}, classes(toks))
	require.Equal(t, "a", toks[0].Literal)
	require.Equal(t, "+", toks[1].Literal)
	require.Equal(t, "b", toks[2].Literal)
}

func TestLexNumbers(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", "0xfa 0o721 0b0101 2.672e3 -6", r)
	var lits []string
	for _, tok := range toks {
		if tok.Class == token.Num {
			lits = append(lits, tok.Literal)
		}
	}
	require.Equal(t, []string{"0xfa", "0o721", "0b0101", "2.672e3", "-6"}, lits)
}

func TestLexStringEscapes(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", `"a\nb\x41"`, r)
	require.Equal(t, token.Str, toks[0].Class)
	require.Equal(t, "a\nbA", toks[0].Literal)
}

func TestLexVectorBrackets(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", "[| 1, 2 |]", r)
	require.Equal(t, token.LVec, toks[0].Class)
	require.Equal(t, token.RVec, toks[len(toks)-2].Class)
}

func TestLexTerminators(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", "a;b\nc", r)
	require.Equal(t, []token.Class{
		token.Ident, token.Term, token.Ident, token.Term, token.Ident, token.EOF,
	}, classes(toks))
}

func TestLexSymbol(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", ":Nat", r)
	require.Equal(t, token.Sym, toks[0].Class)
	require.Equal(t, "Nat", toks[0].Literal)
}

func TestLexBareColonIsOperator(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", "x : Nat", r)
	require.Equal(t, []token.Class{token.Ident, token.Op, token.Ident, token.EOF}, classes(toks))
}

func TestLexSymCloseParenWarns(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", ":)", r)
	require.Equal(t, token.Sym, toks[0].Class)
	require.NotEmpty(t, r.Issues())
	require.Equal(t, issue.LexWarn, r.Issues()[0].Kind)
}

func TestLexLineComments(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", "a #!not this\nb -- nor this\nc", r)
	require.Equal(t, []token.Class{
		token.Ident, token.Term, token.Ident, token.Term, token.Ident, token.EOF,
	}, classes(toks))
}

func TestLexNewlinesIgnoredInsideParens(t *testing.T) {
	r := issue.NewReporter()
	toks := scanner.Lex("t.vh", "(a\nb)", r)
	// No Term token should appear between a and b while inside parens.
	for _, tok := range toks {
		require.NotEqual(t, token.Term, tok.Class)
	}
}
