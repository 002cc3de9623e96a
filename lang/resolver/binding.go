package resolver

import "github.com/valhalla-lang/valhallac/lang/types"

// Entry is one symbol-table row: an identifier may appear more than once
// (function overloads), so a table is an ordered list, not a map.
type Entry struct {
	Identifier string
	Type       types.StaticType
	Defined    bool
}

// Table is one lexical scope's ordered list of entries.
type Table struct {
	Name    string
	Entries []Entry
}

// Push appends a new entry, allowing a duplicate identifier (an
// overload) to coexist with prior entries for the same name.
func (t *Table) Push(e Entry) {
	t.Entries = append(t.Entries, e)
}

// Signatures returns every type declared for identifier in this table,
// in declaration order (empty if undeclared here).
func (t *Table) Signatures(identifier string) []types.StaticType {
	var out []types.StaticType
	for _, e := range t.Entries {
		if e.Identifier == identifier {
			out = append(out, e.Type)
		}
	}
	return out
}

// Find returns the most recently pushed entry for identifier, and
// whether it exists, without regard to overloads — used by assignment
// resolution, which cares about "the" current declaration.
func (t *Table) Find(identifier string) (Entry, bool) {
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Identifier == identifier {
			return t.Entries[i], true
		}
	}
	return Entry{}, false
}

// MarkDefined flips the Defined flag of identifier's most recent entry.
func (t *Table) MarkDefined(identifier string) {
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Identifier == identifier {
			t.Entries[i].Defined = true
			return
		}
	}
}

// Chain is a scope stack searched innermost-first.
type Chain struct {
	tables []*Table
}

// NewChain returns a Chain with a single "GLOBAL" table.
func NewChain() *Chain {
	return &Chain{tables: []*Table{{Name: "GLOBAL"}}}
}

// Push starts a new, innermost scope (a function body).
func (c *Chain) Push(name string) {
	c.tables = append(c.tables, &Table{Name: name})
}

// Pop discards the innermost scope.
func (c *Chain) Pop() {
	c.tables = c.tables[:len(c.tables)-1]
}

// Current returns the innermost table.
func (c *Chain) Current() *Table {
	return c.tables[len(c.tables)-1]
}

// Search looks up identifier innermost-first and returns every signature
// found in the first table that declares it at all (an inner scope's
// declaration shadows an outer one entirely, rather than merging
// signature sets across scopes).
func (c *Chain) Search(identifier string) ([]types.StaticType, bool) {
	for i := len(c.tables) - 1; i >= 0; i-- {
		if sigs := c.tables[i].Signatures(identifier); len(sigs) > 0 {
			return sigs, true
		}
	}
	return nil, false
}

// FindDeclaration returns the current (innermost-first) declaration of
// identifier usable by assignment resolution.
func (c *Chain) FindDeclaration(identifier string) (Entry, bool) {
	for i := len(c.tables) - 1; i >= 0; i-- {
		if e, ok := c.tables[i].Find(identifier); ok {
			return e, true
		}
	}
	return Entry{}, false
}
