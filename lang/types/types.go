// Package types implements the language's static type sum: the set of
// kinds a resolved expression's yield can take, plus the reserved
// identifiers that denote the built-in sets.
package types

import "fmt"

// Kind tags a StaticType's variant.
type Kind int8

const (
	Unknown Kind = iota
	Natural
	Integer
	Real
	String
	Symbol
	Nil
	SetOf
	FunctionOf
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Natural:
		return "Natural"
	case Integer:
		return "Integer"
	case Real:
		return "Real"
	case String:
		return "String"
	case Symbol:
		return "Symbol"
	case Nil:
		return "Nil"
	case SetOf:
		return "Set"
	case FunctionOf:
		return "Function"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// StaticType is the sum Natural | Integer | Real | String | Symbol |
// Set(T) | Function(T_in, T_out) | Nil | Unknown. Set and Function carry
// child types; all other kinds are leaves.
type StaticType struct {
	Kind Kind
	// Elem is the inner type for Kind == SetOf: a variable's static type
	// is always the inner of its declared Set, so most of the resolver
	// deals in Elem rather than a SetOf StaticType directly.
	Elem *StaticType
	// Domain and Codomain are populated for Kind == FunctionOf.
	Domain   *StaticType
	Codomain *StaticType
}

// Leaf constructs a non-parametric StaticType (Natural, Integer, Real,
// String, Symbol, Nil or Unknown).
func Leaf(k Kind) StaticType {
	return StaticType{Kind: k}
}

// Set constructs Set(inner).
func Set(inner StaticType) StaticType {
	return StaticType{Kind: SetOf, Elem: &inner}
}

// Function constructs Function(domain, codomain).
func Function(domain, codomain StaticType) StaticType {
	return StaticType{Kind: FunctionOf, Domain: &domain, Codomain: &codomain}
}

// IsSet reports whether t is Set(_).
func (t StaticType) IsSet() bool { return t.Kind == SetOf }

// Inner returns the element type of a Set(T), panicking if t is not a
// Set — callers must check IsSet first; this mirrors the "unwrap a Set
// once" operation the resolver performs on every annotation.
func (t StaticType) Inner() StaticType {
	if t.Kind != SetOf {
		panic(fmt.Sprintf("types: Inner() called on non-Set type %s", t))
	}
	return *t.Elem
}

// IsNumeric reports whether t is Natural, Integer or Real.
func (t StaticType) IsNumeric() bool {
	switch t.Kind {
	case Natural, Integer, Real:
		return true
	default:
		return false
	}
}

// NumericRank orders the numeric leaf kinds for cast-strength comparisons;
// non-numeric kinds rank -1.
func (t StaticType) NumericRank() int {
	switch t.Kind {
	case Natural:
		return 0
	case Integer:
		return 1
	case Real:
		return 2
	default:
		return -1
	}
}

// Equal reports structural equality between two static types.
func (t StaticType) Equal(o StaticType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case SetOf:
		return t.Elem.Equal(*o.Elem)
	case FunctionOf:
		return t.Domain.Equal(*o.Domain) && t.Codomain.Equal(*o.Codomain)
	default:
		return true
	}
}

func (t StaticType) String() string {
	switch t.Kind {
	case SetOf:
		return fmt.Sprintf("Set(%s)", t.Elem)
	case FunctionOf:
		return fmt.Sprintf("Function(%s, %s)", t.Domain, t.Codomain)
	default:
		return t.Kind.String()
	}
}

// Reserved maps the language's reserved type identifiers to the Set(·)
// they denote. Any, Anything and Empty are distinguished from Unknown:
// Any/Anything yield Set(Unknown) (a set whose element type is
// unconstrained) while Empty yields Set(Nil) (the set containing only the
// nil element) — neither is the resolver's "type not yet known" sentinel.
var Reserved = map[string]StaticType{
	"Nat":      Set(Leaf(Natural)),
	"Int":      Set(Leaf(Integer)),
	"Real":     Set(Leaf(Real)),
	"Str":      Set(Leaf(String)),
	"String":   Set(Leaf(String)),
	"Sym":      Set(Leaf(Symbol)),
	"Symbol":   Set(Leaf(Symbol)),
	"Empty":    Set(Leaf(Nil)),
	"Any":      Set(Leaf(Unknown)),
	"Anything": Set(Leaf(Unknown)),
}

// ReservedIdentifiers are the internal operators the resolver ignores
// (they carry internal, not user-annotatable, types).
var ReservedIdentifiers = map[string]bool{
	"=":           true,
	":":           true,
	"->":          true,
	"__raw_print": true,
	"+":           true,
	"-":           true,
	"*":           true,
	"/":           true,
	"^":           true,
}
