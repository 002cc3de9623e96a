// Package operators holds the language's fixed operator-precedence table:
// immutable data consulted by the parser's null/left denotation logic.
package operators

// Side is an operator's associativity.
type Side int8

const (
	Left Side = iota
	Right
	Neither
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "neither"
	}
}

// Operator is one entry of the precedence table: a name, precedence,
// associativity and arity (1 for prefix/postfix unary, 2 for binary).
type Operator struct {
	Name       string
	Precedence int
	Side       Side
	Arity      int
}

// JuxtapositionPrecedence is the precedence implicit function application
// (writing two expressions side by side) binds at.
const JuxtapositionPrecedence = 190

// DefaultPrecedence is used by the parser for any operator-looking token
// that has no table entry: it is absorbed as a call operand by
// juxtaposition.
const DefaultPrecedence = JuxtapositionPrecedence

var table = []Operator{
	{"::", 210, Left, 2},
	{"<>", 200, Right, 2},
	{"not", 180, Right, 1},
	{"-", 170, Right, 1}, // unary minus; the binary "-" entry below shadows arity 2
	{"^", 160, Right, 2},
	{"*", 150, Left, 2},
	{"/", 150, Left, 2},
	{"mod", 150, Left, 2},
	{"&", 140, Left, 2},
	{"|", 130, Left, 2},
	{"+", 120, Left, 2},
	{"-", 120, Left, 2},
	{"\\", 120, Left, 2},
	{"->", 110, Right, 2},
	{">>", 100, Right, 2},
	{"<<", 100, Left, 2},
	{"==", 90, Neither, 2},
	{"is", 90, Neither, 2},
	{"/=", 90, Neither, 2},
	{"isn't", 90, Neither, 2},
	{"<", 90, Neither, 2},
	{"<=", 90, Neither, 2},
	{">", 90, Neither, 2},
	{">=", 90, Neither, 2},
	{"<-", 80, Neither, 2},
	{"&&", 70, Right, 2},
	{"and", 70, Right, 2},
	{"||", 60, Right, 2},
	{"or", 60, Right, 2},
	{"..", 50, Neither, 2},
	{":", 40, Right, 2},
	{"|>", 40, Neither, 2},
	{"=", 30, Right, 2},
	{"if", 20, Neither, 2},
	{"unless", 20, Neither, 2},
	{",", 10, Right, 2},
	{"=>", 1, Neither, 2},
}

type key struct {
	name  string
	arity int
}

var byNameArity = func() map[key]Operator {
	m := make(map[key]Operator, len(table))
	for _, op := range table {
		m[key{op.Name, op.Arity}] = op
	}
	return m
}()

// Lookup returns the table entry for (name, arity) and whether it exists.
// An unknown (name, arity) pair is not an error — the parser falls back to
// DefaultPrecedence and treats the token as a juxtaposed call operand.
func Lookup(name string, arity int) (Operator, bool) {
	op, ok := byNameArity[key{name, arity}]
	return op, ok
}

// Precedence returns the operator's precedence, or DefaultPrecedence if
// unknown at the given arity.
func Precedence(name string, arity int) int {
	if op, ok := Lookup(name, arity); ok {
		return op.Precedence
	}
	return DefaultPrecedence
}
