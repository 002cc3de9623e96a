package compiler

import (
	"fmt"
	"hash/maphash"
)

// ElementKind tags an Element's variant.
type ElementKind int8

const (
	ElemNatural ElementKind = iota
	ElemInteger
	ElemReal
	ElemString
	ElemSymbol
	ElemCode
	ElemSet
	ElemNil
)

var symbolSeed = maphash.MakeSeed()

// Element is one constant-pool entry: Natural(u) | Integer(i) | Real(f)
// | String(s) | Symbol(hash,s) | Code(*LocalBlock) | Set(*SetDescriptor)
// | Nil. Two symbols are equal iff their hashes match; Code and Set
// entries compare by pointer identity; every other variant compares
// structurally, matching the pool's dedup contract.
type Element struct {
	Kind ElementKind

	Nat uint64
	Int int64
	Flt float64
	Str string

	SymHash uint64

	Code *LocalBlock
	Set  *SetDescriptor
}

// SetDescriptor is a placeholder for a marshalled Set constant; building
// one out of compile-time-known elements is left unimplemented (no
// surface construct in this subset produces a literal Set), so Marshal
// reports a descriptive error rather than guessing an encoding.
type SetDescriptor struct {
	ElementType string
}

func NaturalElement(u uint64) Element { return Element{Kind: ElemNatural, Nat: u} }
func IntegerElement(i int64) Element  { return Element{Kind: ElemInteger, Int: i} }
func RealElement(f float64) Element   { return Element{Kind: ElemReal, Flt: f} }
func StringElement(s string) Element  { return Element{Kind: ElemString, Str: s} }
func CodeElement(b *LocalBlock) Element {
	return Element{Kind: ElemCode, Code: b}
}
func NilElement() Element { return Element{Kind: ElemNil} }

// SetElement wraps a SetDescriptor as a constant-pool entry. No surface
// construct in this subset produces a literal Set value at compile time,
// so nothing in the compiler package currently calls this; it exists so
// the marshaller (which must recognise and reject Set elements per Open
// Question iii) and tests have a way to construct one.
func SetElement(d *SetDescriptor) Element { return Element{Kind: ElemSet, Set: d} }

// SymbolElement hashes s with a process-fixed seed so that equal symbol
// text always hashes equal within a single compilation, per the data
// model's "two symbols are equal iff their hashes match" rule.
func SymbolElement(s string) Element {
	return Element{Kind: ElemSymbol, Str: s, SymHash: maphash.String(symbolSeed, s)}
}

// Equal reports structural equality for constant-pool deduplication.
func (e Element) Equal(o Element) bool {
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case ElemNatural:
		return e.Nat == o.Nat
	case ElemInteger:
		return e.Int == o.Int
	case ElemReal:
		return e.Flt == o.Flt
	case ElemString:
		return e.Str == o.Str
	case ElemSymbol:
		return e.SymHash == o.SymHash
	case ElemCode:
		return e.Code == o.Code
	case ElemSet:
		return e.Set == o.Set
	case ElemNil:
		return true
	default:
		return false
	}
}

func (e Element) String() string {
	switch e.Kind {
	case ElemNatural:
		return fmt.Sprintf("Natural(%d)", e.Nat)
	case ElemInteger:
		return fmt.Sprintf("Integer(%d)", e.Int)
	case ElemReal:
		return fmt.Sprintf("Real(%g)", e.Flt)
	case ElemString:
		return fmt.Sprintf("String(%q)", e.Str)
	case ElemSymbol:
		return fmt.Sprintf("Symbol(%q)", e.Str)
	case ElemCode:
		return fmt.Sprintf("Code(%s)", e.Code.Name)
	case ElemSet:
		return "Set(...)"
	case ElemNil:
		return "Nil"
	default:
		return "?"
	}
}
