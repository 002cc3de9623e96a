package ast

// Walk implementations call v(n) first; if it returns false, descent into
// n's children stops.

func (n *Ident) Walk(v Visitor) {
	v(n)
}

func (n *Num) Walk(v Visitor) {
	v(n)
}

func (n *Str) Walk(v Visitor) {
	v(n)
}

func (n *Sym) Walk(v Visitor) {
	v(n)
}

func (n *Call) Walk(v Visitor) {
	if !v(n) {
		return
	}
	n.Callee.Walk(v)
	for _, op := range n.Operands {
		op.Walk(v)
	}
}

func (n *Block) Walk(v Visitor) {
	if !v(n) {
		return
	}
	for _, s := range n.Statements {
		s.Walk(v)
	}
}

func (n *File) Walk(v Visitor) {
	v(n)
}

func (n *Nil) Walk(v Visitor) {
	v(n)
}

// WalkRoot walks every top-level branch of r.
func WalkRoot(r *Root, v Visitor) {
	for _, b := range r.Branches {
		b.Walk(v)
	}
}
