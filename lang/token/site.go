// Package token defines the lexical token classes and source-location
// records shared by every later compiler stage.
package token

import "fmt"

// Location is the position data a Site carries when it is not a REPL or
// synthetic site: 1-based line/column of the first character, the last
// column touched, the number of lines and columns the site spans, the
// total span in bytes, and the UTF-8 byte offset of the first character.
//
// Every field is meaningful only when the Site that owns it is not a
// zero-value/unknown site. Site.Known looks only at the Site's File and
// REPL fields, not at its Location.
type Location struct {
	Line       int
	Column     int
	LastColumn int
	Lines      int
	Columns    int
	Span       int
	ByteOffset int
}

// LastLine returns the line number of the last character in the location's
// span.
func (l Location) LastLine() int {
	return l.Line + l.Lines
}

// eos (end of span) reports whether this location describes a single point
// rather than a range.
func (l Location) eos() bool {
	return l.Span == 0
}

// Site is a resolvable source coordinate: a file path (absent for REPL
// input), a Location, and flags distinguishing REPL and synthetic
// ("fake") sites from real file positions.
type Site struct {
	File     string
	REPL     bool
	Location Location
	Fake     bool
}

// Unknown is the zero Site: carries no file, no location, and is neither a
// REPL nor a fake site. It is used where a Site is structurally required
// but no real position is known (e.g. universally-bound identifiers).
var Unknown = Site{}

// Fabricate returns a synthetic site not traceable to any source text.
// The type balancer does not use it: its casts reuse the cast operand's
// site.
func Fabricate() Site {
	return Site{Fake: true}
}

// SingleLine builds a Site for a token or node that begins and ends on one
// line.
func SingleLine(file string, line, col, lastCol, byteOffset int) Site {
	return Site{
		File: file,
		Location: Location{
			Line:       line,
			Column:     col,
			LastColumn: lastCol,
			Lines:      0,
			Columns:    lastCol - col,
			Span:       lastCol - col,
			ByteOffset: byteOffset,
		},
	}
}

// Known reports whether s carries a resolvable file position.
func (s Site) Known() bool {
	return s.File != "" || s.REPL
}

// Compose returns the smallest Site spanning both s and other, which must
// name the same file (or both be REPL sites). The earlier of the two sites
// supplies the start; the later supplies the end.
func (s Site) Compose(other Site) Site {
	if !s.Known() {
		return other
	}
	if !other.Known() {
		return s
	}

	start, end := s, other
	if end.Location.Line < start.Location.Line ||
		(end.Location.Line == start.Location.Line && end.Location.Column < start.Location.Column) {
		start, end = end, start
	}

	lines := end.Location.LastLine() - start.Location.Line
	var lastCol int
	if lines == 0 {
		lastCol = end.Location.LastColumn
	} else {
		lastCol = end.Location.LastColumn
	}

	return Site{
		File: start.File,
		REPL: start.REPL,
		Location: Location{
			Line:       start.Location.Line,
			Column:     start.Location.Column,
			LastColumn: lastCol,
			Lines:      lines,
			Columns:    lastCol - start.Location.Column,
			Span:       end.Location.ByteOffset + end.Location.Span - start.Location.ByteOffset,
			ByteOffset: start.Location.ByteOffset,
		},
	}
}

// String renders a site as "file:line:col", the form used in diagnostics.
func (s Site) String() string {
	if s.Fake {
		return "<generated>"
	}
	if !s.Known() {
		return "<unknown>"
	}
	file := s.File
	if s.REPL {
		file = "<repl>"
	}
	return fmt.Sprintf("%s:%d:%d", file, s.Location.Line, s.Location.Column)
}
