// Package query implements the named-variable parsing convenience spec §9
// allows but the core engine never sees: templates written with ?name-style
// variables get interned to dense holmes.VarID integers before they reach
// holmes.FactTemplate.
package query

import "github.com/maurer/holmes/holmes"

// Interner maps ?name-style variable names to dense VarIDs, scoped to a
// single query — ids are not meaningful across calls to NewInterner.
type Interner struct {
	ids   map[string]holmes.VarID
	order []string
}

// NewInterner constructs an empty Interner.
func NewInterner() *Interner {
	return &Interner{ids: map[string]holmes.VarID{}}
}

// Intern returns the VarID for name, assigning the next dense id the first
// time name is seen and returning the same id on every later call within
// this Interner's scope — the property a join relies on to unify same-named
// variables across premises.
func (in *Interner) Intern(name string) holmes.VarID {
	if id, ok := in.ids[name]; ok {
		return id
	}
	id := holmes.VarID(len(in.order))
	in.ids[name] = id
	in.order = append(in.order, name)
	return id
}

// Names returns the interned names in assignment order, i.e. indexable by
// VarID.
func (in *Interner) Names() []string {
	out := make([]string, len(in.order))
	copy(out, in.order)
	return out
}
