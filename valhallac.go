// Package valhallac is the compiler front/middle-end facade: lex, parse,
// resolve and compile a .vh source file down to a marshalled bytecode
// image. It exists so cmd/valhallac (and any other embedder) drives one
// entry point instead of wiring the five lang/ packages itself, following
// the teacher's own root package (github.com/mna/nenuphar), which plays
// the same role over its lexer/parser/resolver/compiler packages.
package valhallac

import (
	"github.com/valhalla-lang/valhallac/lang/ast"
	"github.com/valhalla-lang/valhallac/lang/compiler"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/marshal"
	"github.com/valhalla-lang/valhallac/lang/parser"
	"github.com/valhalla-lang/valhallac/lang/resolver"
	"github.com/valhalla-lang/valhallac/lang/scanner"
)

// ParseSource lexes and parses src (named filename for diagnostics) into
// an unresolved Root. Callers that only need the AST — tooling, a
// formatter, a linter — can stop here without paying for resolution or
// compilation.
func ParseSource(filename, src string, r *issue.Reporter) *ast.Root {
	toks := scanner.Lex(filename, src, r)
	return parser.Parse(filename, toks, r, 0)
}

// Resolve runs the static resolver's full default pass set (type
// resolution, cast balancing, constant folding) over root in place,
// returning it for chaining.
func Resolve(root *ast.Root, r *issue.Reporter) *ast.Root {
	return resolver.Run(root, r, resolver.DefaultMode)
}

// Compile lexes, parses and resolves src, then emits a root LocalBlock.
// It returns nil if parsing or resolution reported a fatal issue; a fatal
// issue reported during emission still yields the block, so callers
// should check r.Halted() (or the returned error from Marshal) before
// trusting the result.
func Compile(filename, src string, r *issue.Reporter) *compiler.LocalBlock {
	root := ParseSource(filename, src, r)
	if r.Halted() {
		return nil
	}
	root = Resolve(root, r)
	if r.Halted() {
		return nil
	}
	return compiler.Compile(root, r)
}

// Marshal encodes block as a bytecode image, per lang/marshal's wire
// format.
func Marshal(block *compiler.LocalBlock) ([]byte, error) {
	return marshal.Marshal(block)
}

// CompileToBytes runs the full pipeline — lex, parse, resolve, compile,
// marshal — returning the wire image, or an error (including a fatal
// Reporter halt) if any stage failed.
func CompileToBytes(filename, src string) ([]byte, *issue.Reporter, error) {
	r := issue.NewReporter()
	block := Compile(filename, src, r)
	if r.Halted() {
		return nil, r, r.Err()
	}
	data, err := marshal.Marshal(block)
	if err != nil {
		return nil, r, err
	}
	return data, r, nil
}
