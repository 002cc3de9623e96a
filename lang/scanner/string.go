package scanner

import (
	"strings"

	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/token"
)

// scanString scans a double-quoted string literal with C-style escapes
// (\n \r \t \b \0 \\ \" and \xHH hex-byte escapes), returning a Str token
// whose Literal is already unescaped.
func (s *Scanner) scanString(startOffset, startLine, startCol int) token.Token {
	s.advance() // opening quote

	var b strings.Builder
	for s.ch != '"' && s.ch != eof {
		if s.ch != '\\' {
			b.WriteRune(s.ch)
			s.advance()
			continue
		}

		s.advance() // consume backslash
		switch s.ch {
		case 'n':
			b.WriteByte('\n')
			s.advance()
		case 'r':
			b.WriteByte('\r')
			s.advance()
		case 't':
			b.WriteByte('\t')
			s.advance()
		case 'b':
			b.WriteByte('\x08')
			s.advance()
		case '0':
			b.WriteByte(0)
			s.advance()
		case '\\':
			b.WriteByte('\\')
			s.advance()
		case '"':
			b.WriteByte('"')
			s.advance()
		case 'x':
			s.advance()
			hi, ok1 := hexVal(s.ch)
			s.advance()
			lo, ok2 := hexVal(s.ch)
			s.advance()
			if ok1 && ok2 {
				b.WriteByte(byte(hi<<4 | lo))
			} else {
				s.errorf(s.site(startOffset, startLine, startCol), issue.LexWarn, "invalid \\x escape in string literal")
			}
		default:
			s.errorf(s.site(startOffset, startLine, startCol), issue.LexWarn, "unknown escape \\%c", s.ch)
			b.WriteRune(s.ch)
			s.advance()
		}
	}

	if s.ch == '"' {
		s.advance()
	} else {
		s.errorf(s.site(startOffset, startLine, startCol), issue.LexError, "unterminated string literal")
	}

	return token.Token{Class: token.Str, Literal: b.String(), Site: s.site(startOffset, startLine, startCol)}
}

func hexVal(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10, true
	default:
		return 0, false
	}
}
