// Package scanner implements lex, converting UTF-8 source text into a
// finite token sequence. Structure follows the teacher's rune-at-a-time
// Scanner (Init/peek/advance/error), recognition order follows the
// original lexer: line comments, vector brackets, bare colon-as-operator,
// single-character punctuation, quoted strings, then number/operator/
// identifier/symbol in priority order.
package scanner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/token"
)

// identExtra is the set of non-letter runes allowed in an identifier, in
// addition to letters, digits (non-leading) and these.
const identExtra = "?!'-_"

// Scanner turns one file's source text into tokens.
type Scanner struct {
	filename string
	src      string
	reporter *issue.Reporter

	offset     int // byte offset of ch
	rdOffset   int // byte offset after ch
	ch         rune
	line, col  int
	parenDepth int // > 0 suppresses Term tokens for bare newlines
}

// New constructs a Scanner over src, reporting lex issues to r.
func New(filename, src string, r *issue.Reporter) *Scanner {
	s := &Scanner{filename: filename, src: src, reporter: r, line: 1, col: 0}
	s.advance()
	return s
}

const eof = -1

func (s *Scanner) advance() {
	if s.rdOffset >= len(s.src) {
		s.offset = len(s.src)
		s.ch = eof
		return
	}
	s.offset = s.rdOffset
	r, w := utf8.DecodeRuneInString(s.src[s.rdOffset:])
	if r == utf8.RuneError && w <= 1 {
		r = rune(s.src[s.rdOffset])
		w = 1
	}
	s.rdOffset += w
	if s.ch == '\n' {
		s.line++
		s.col = 0
	}
	s.col += runeWidth(r)
	s.ch = r
}

// runeWidth approximates Unicode display width: wide East-Asian runes
// count as 2 columns, everything else (including combining marks, which
// count as 0 in a fuller implementation) counts as 1 — callers needing
// exact terminal-cell widths should consult a dedicated width table; this
// approximation matches what the column field is used for here, relative
// ordering of tokens within a line.
func runeWidth(r rune) int {
	if r < 0x1100 {
		return 1
	}
	switch {
	case r >= 0x1100 && r <= 0x115F, // Hangul Jamo
		r >= 0x2E80 && r <= 0xA4CF, // CJK ... Yi
		r >= 0xAC00 && r <= 0xD7A3, // Hangul syllables
		r >= 0xF900 && r <= 0xFAFF, // CJK compatibility ideographs
		r >= 0xFF00 && r <= 0xFF60, // fullwidth forms
		r >= 0x20000 && r <= 0x3FFFD:
		return 2
	default:
		return 1
	}
}

func (s *Scanner) peek() rune {
	if s.rdOffset >= len(s.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.rdOffset:])
	return r
}

func (s *Scanner) site(startOffset, startLine, startCol int) token.Site {
	return token.Site{
		File: s.filename,
		Location: token.Location{
			Line:       startLine,
			Column:     startCol,
			LastColumn: s.col,
			Lines:      s.line - startLine,
			Columns:    s.col - startCol,
			Span:       s.offset - startOffset,
			ByteOffset: startOffset,
		},
	}
}

func (s *Scanner) errorf(site token.Site, kind issue.Kind, format string, args ...any) {
	s.reporter.Report(issue.New(kind, site, fmt.Sprintf(format, args...)))
}

// Lex runs the full scan and returns every token, always ending with
// exactly one EOF token whose byte offset equals len(src) — the lexer
// totality property.
func Lex(filename, src string, r *issue.Reporter) []token.Token {
	s := New(filename, src, r)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Class == token.EOF {
			return toks
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || strings.ContainsRune(identExtra, r)
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(identExtra, r)
}

func isOpRune(r rune) bool {
	return strings.ContainsRune(`,+.*|\/&%$^~<¬=@>-`, r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Scan returns the next token, skipping comments and whitespace other
// than the newlines that produce Term tokens.
func (s *Scanner) Scan() token.Token {
	for {
		s.skipBlankExceptNewline()

		startOffset, startLine, startCol := s.offset, s.line, s.col

		switch {
		case s.ch == eof:
			return token.Token{Class: token.EOF, Site: s.site(startOffset, startLine, startCol)}

		case s.ch == '#' && s.peek() == '!':
			s.skipLineComment()
			continue
		case s.ch == '-' && s.peek() == '-':
			s.skipLineComment()
			continue

		case s.ch == '[' && s.peek() == '|':
			s.advance()
			s.advance()
			return token.Token{Class: token.LVec, Literal: "[|", Site: s.site(startOffset, startLine, startCol)}
		case s.ch == '|' && s.peek() == ']':
			s.advance()
			s.advance()
			return token.Token{Class: token.RVec, Literal: "|]", Site: s.site(startOffset, startLine, startCol)}

		case s.ch == ':' && isSpace(s.peek()):
			s.advance()
			return token.Token{Class: token.Op, Literal: ":", Site: s.site(startOffset, startLine, startCol)}

		case s.ch == '\n' || s.ch == ';':
			term := s.ch == ';'
			isNL := s.ch == '\n'
			s.advance()
			if isNL && s.parenDepth > 0 {
				continue
			}
			lit := "\n"
			if term {
				lit = ";"
			}
			return token.Token{Class: token.Term, Literal: lit, Site: s.site(startOffset, startLine, startCol)}

		case s.ch == '(':
			s.advance()
			s.parenDepth++
			return token.Token{Class: token.LParen, Literal: "(", Site: s.site(startOffset, startLine, startCol)}
		case s.ch == ')':
			s.advance()
			if s.parenDepth > 0 {
				s.parenDepth--
			}
			return token.Token{Class: token.RParen, Literal: ")", Site: s.site(startOffset, startLine, startCol)}
		case s.ch == '[':
			s.advance()
			return token.Token{Class: token.LBrack, Literal: "[", Site: s.site(startOffset, startLine, startCol)}
		case s.ch == ']':
			s.advance()
			return token.Token{Class: token.RBrack, Literal: "]", Site: s.site(startOffset, startLine, startCol)}
		case s.ch == '{':
			s.advance()
			return token.Token{Class: token.LBrace, Literal: "{", Site: s.site(startOffset, startLine, startCol)}
		case s.ch == '}':
			s.advance()
			return token.Token{Class: token.RBrace, Literal: "}", Site: s.site(startOffset, startLine, startCol)}

		case s.ch == '"':
			return s.scanString(startOffset, startLine, startCol)

		case isDigit(s.ch) || (s.ch == '-' && isDigit(s.peek())):
			if lit, ok := s.tryNumber(); ok {
				return token.Token{Class: token.Num, Literal: lit, Site: s.site(startOffset, startLine, startCol)}
			}
			fallthrough

		case isOpRune(s.ch):
			lit := s.scanWhile(isOpRune)
			return token.Token{Class: token.Op, Literal: lit, Site: s.site(startOffset, startLine, startCol)}

		case s.ch == ':' && s.peek() == ':':
			lit := s.scanWhile(func(r rune) bool { return r == ':' })
			return token.Token{Class: token.Op, Literal: lit, Site: s.site(startOffset, startLine, startCol)}

		case isIdentStart(s.ch):
			lit := s.scanWhile(isIdentCont)
			return token.Token{Class: token.Ident, Literal: lit, Site: s.site(startOffset, startLine, startCol)}

		case s.ch == ':':
			s.advance()
			lit := s.scanWhile(func(r rune) bool { return !isSpace(r) && r != eof })
			if lit == ")" {
				s.errorf(s.site(startOffset, startLine, startCol), issue.LexWarn,
					`":)" lexes as a symbol; did you mean ":\")\""?`)
			}
			return token.Token{Class: token.Sym, Literal: lit, Site: s.site(startOffset, startLine, startCol)}

		default:
			// Unrecognised byte: advance silently, per spec.
			s.advance()
			continue
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

func (s *Scanner) skipBlankExceptNewline() {
	for s.ch == ' ' || s.ch == '\t' || s.ch == '\r' {
		s.advance()
	}
}

func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch != eof {
		s.advance()
	}
}

func (s *Scanner) scanWhile(pred func(rune) bool) string {
	start := s.offset
	for pred(s.ch) {
		s.advance()
	}
	return s.src[start:s.offset]
}
