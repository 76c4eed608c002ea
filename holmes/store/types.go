// Package store implements the typed fact store (spec §4.1): the
// deduplicating insert, the schema-checked type registry, and the
// conjunctive-query evaluator shared by both the in-memory and the
// Badger-backed persistent backend.
package store

import (
	"github.com/maurer/holmes/holmes"
)

// DirtySet is the set of predicate names that gained at least one new
// fact in a given SetFacts call.
type DirtySet map[string]bool

func NewDirtySet() DirtySet { return make(DirtySet) }

func (d DirtySet) Add(name string) { d[name] = true }

// Union merges o into d in place and returns d.
func (d DirtySet) Union(o DirtySet) DirtySet {
	for n := range o {
		d[n] = true
	}
	return d
}

// Intersects reports whether d and o share any predicate name.
func (d DirtySet) Intersects(o DirtySet) bool {
	for n := range d {
		if o[n] {
			return true
		}
	}
	return false
}

func (d DirtySet) Names() []string {
	out := make([]string, 0, len(d))
	for n := range d {
		out = append(out, n)
	}
	return out
}

// Store is the capability set a fact database backend must implement
// (spec §9 "Dynamic dispatch"). Both Mem and Badger satisfy it.
type Store interface {
	// AddType registers name with the given argument types, per spec
	// §4.1 addType.
	AddType(name string, argTypes []holmes.HType) bool

	// SetFacts inserts facts atomically: if any fact in the batch is
	// ill-typed, the whole batch is rejected and no fact is inserted.
	// Returns the set of predicates that gained at least one new fact.
	SetFacts(facts []holmes.Fact) (DirtySet, error)

	// GetFacts evaluates the conjunctive query described by premises
	// and returns the distinct satisfying Contexts.
	GetFacts(premises []holmes.FactTemplate) ([]holmes.Context, error)

	// Dump returns every fact currently stored for name, in ascending
	// Fact order. Supplemental convenience (SPEC_FULL §10), not part of
	// the core spec's operation set.
	Dump(name string) []holmes.Fact

	// Close releases backend resources. Mem's Close is a no-op; Badger's
	// closes the underlying database handle.
	Close() error
}

// ErrIllTyped is returned by SetFacts when any fact in the batch is
// unregistered or fails to type-check against its registered signature.
type ErrIllTyped struct {
	Fact holmes.Fact
}

func (e *ErrIllTyped) Error() string {
	return "store: ill-typed fact " + e.Fact.String()
}
