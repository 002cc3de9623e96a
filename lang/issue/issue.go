// Package issue implements the compiler's diagnostic model: a small Kind
// taxonomy, site-tagged messages with an optional note, and a Reporter
// that accumulates issues and tracks whether a fatal one has been seen.
//
// Terminal colouring and process termination are deliberately not this
// package's concern (they belong to the out-of-scope CLI); Reporter
// reports facts, the caller decides what to do with them.
package issue

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"sort"
	"strings"

	"github.com/valhalla-lang/valhallac/lang/token"
)

// Kind classifies an Issue by pipeline stage and severity.
type Kind int8

const (
	LexError Kind = iota
	LexWarn
	ParseError
	ParseWarn
	TypeError
	TypeWarn
	CompError
	CompWarn
)

var kindNames = [...]string{
	LexError:   "lex error",
	LexWarn:    "lex warning",
	ParseError: "parse error",
	ParseWarn:  "parse warning",
	TypeError:  "type error",
	TypeWarn:   "type warning",
	CompError:  "compile error",
	CompWarn:   "compile warning",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether issues of this kind halt compilation by default
// (the *Error kinds); *Warn kinds are always non-fatal.
func (k Kind) Fatal() bool {
	switch k {
	case LexError, ParseError, TypeError, CompError:
		return true
	default:
		return false
	}
}

// Issue is a single diagnostic: its kind, the site it is anchored to, an
// unindented message, an optional clarifying note, and whether it halts
// the pipeline.
type Issue struct {
	Kind      Kind
	Site      token.Site
	Message   string
	Note      string
	IsFatal   bool
}

// New constructs a non-fatal Issue of the given kind unless the kind's
// default is fatal.
func New(kind Kind, site token.Site, message string) Issue {
	return Issue{Kind: kind, Site: site, Message: message, IsFatal: kind.Fatal()}
}

// Fatalf is a convenience constructor for a formatted, forced-fatal Issue.
func Fatalf(kind Kind, site token.Site, format string, args ...any) Issue {
	i := New(kind, site, fmt.Sprintf(format, args...))
	i.IsFatal = true
	return i
}

// WithNote returns a copy of i carrying the given clarifying note.
func (i Issue) WithNote(note string) Issue {
	i.Note = note
	return i
}

func (i Issue) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", i.Site, i.Kind, i.Message)
	if i.Note != "" {
		fmt.Fprintf(&b, "\n\tnote: %s", i.Note)
	}
	return b.String()
}

// Reporter accumulates issues across a single compilation. It carries the
// "last fatal issue" as an explicit, owned field rather than a mutable
// package-level static, so independent compilations run in parallel never
// share state.
type Reporter struct {
	issues []Issue
	halt   *Issue
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report records an issue. If it is the first fatal issue seen, it
// becomes the Reporter's halt issue.
func (r *Reporter) Report(i Issue) {
	r.issues = append(r.issues, i)
	if i.IsFatal && r.halt == nil {
		cp := i
		r.halt = &cp
	}
}

// Halted reports whether a fatal issue has been reported.
func (r *Reporter) Halted() bool {
	return r.halt != nil
}

// HaltMessage returns the message of the first fatal issue reported, or
// "" if none has been.
func (r *Reporter) HaltMessage() string {
	if r.halt == nil {
		return ""
	}
	return r.halt.Error()
}

// Issues returns all issues reported so far, in report order.
func (r *Reporter) Issues() []Issue {
	return r.issues
}

// Sorted returns a copy of Issues() ordered by site (file, then line,
// then column), the order a human reads diagnostics in.
func (r *Reporter) Sorted() []Issue {
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Site, out[j].Site
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		return a.Location.Column < b.Location.Column
	})
	return out
}

// Err returns a scanner.ErrorList (the teacher's diagnostics aggregate
// type, reused verbatim) holding one position-plus-message entry per
// reported issue in site order, or nil if none were reported. The
// entries carry the issue text only; the issue.Issue values themselves
// are not reachable through the returned error.
func (r *Reporter) Err() error {
	if len(r.issues) == 0 {
		return nil
	}
	var list scanner.ErrorList
	for _, i := range r.Sorted() {
		pos := gotoken.Position{
			Filename: i.Site.File,
			Line:     i.Site.Location.Line,
			Column:   i.Site.Location.Column,
			Offset:   i.Site.Location.ByteOffset,
		}
		msg := i.Kind.String() + ": " + i.Message
		if i.Note != "" {
			msg += " (" + i.Note + ")"
		}
		list.Add(pos, msg)
	}
	return list.Err()
}
