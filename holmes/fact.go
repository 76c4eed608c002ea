package holmes

import (
	"fmt"
	"sort"
	"strings"
)

// Fact is a named, positionally typed tuple of Values.
type Fact struct {
	Name string
	Args []Value
}

// NewFact builds a Fact, copying args so the store can own its payload
// independent of whatever slice the caller passed in (spec §9: the store
// takes ownership of each inserted Value by copying it).
func NewFact(name string, args ...Value) Fact {
	cp := make([]Value, len(args))
	copy(cp, args)
	return Fact{Name: name, Args: cp}
}

// WellTyped reports whether f matches the registered signature for its
// predicate name, recursively for List positions.
func (f Fact) WellTyped(sig []HType) bool {
	if len(f.Args) != len(sig) {
		return false
	}
	for i, v := range f.Args {
		if !TypeCheck(v, sig[i]) {
			return false
		}
	}
	return true
}

// CompareFacts implements the total order from spec §3: first by
// factName, then element-wise by Value order on args.
func CompareFacts(a, b Fact) int {
	if a.Name != b.Name {
		if a.Name < b.Name {
			return -1
		}
		return 1
	}
	for i := 0; i < len(a.Args) && i < len(b.Args); i++ {
		if c := Compare(a.Args[i], b.Args[i]); c != 0 {
			return c
		}
	}
	return compareUint64(uint64(len(a.Args)), uint64(len(b.Args)))
}

// EqualFacts is the equivalence induced by CompareFacts.
func EqualFacts(a, b Fact) bool { return CompareFacts(a, b) == 0 }

func (f Fact) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
}

// VarID is a dense, small integer identifying a variable within a single
// query's scope. The ordinal is only meaningful for matching the same
// variable across multiple template positions or premises.
type VarID int

// TemplateValKind distinguishes the four position kinds a FactTemplate can
// hold at a given argument slot.
type TemplateValKind uint8

const (
	KindExact TemplateValKind = iota
	KindBound
	KindForall
	KindUnbound
)

// TemplateVal is one position of a FactTemplate.
type TemplateVal struct {
	Kind  TemplateValKind
	Exact Value // valid iff Kind == KindExact
	Var   VarID // valid iff Kind == KindBound || Kind == KindForall
}

func Exact(v Value) TemplateVal      { return TemplateVal{Kind: KindExact, Exact: v} }
func Bound(id VarID) TemplateVal     { return TemplateVal{Kind: KindBound, Var: id} }
func Forall(id VarID) TemplateVal    { return TemplateVal{Kind: KindForall, Var: id} }
func UnboundVal() TemplateVal        { return TemplateVal{Kind: KindUnbound} }

// FactTemplate is a pattern over a single predicate: a premise in a
// conjunctive query, or one of the premises an Analyzer watches.
type FactTemplate struct {
	Name string
	Args []TemplateVal
}

func NewTemplate(name string, args ...TemplateVal) FactTemplate {
	cp := make([]TemplateVal, len(args))
	copy(cp, args)
	return FactTemplate{Name: name, Args: cp}
}

// Vars returns the distinct variable ids referenced by this template, in
// ascending order, split into the Bound set and the Forall set (a var id
// never appears in both within a single well-formed template).
func (t FactTemplate) Vars() (bound, forall []VarID) {
	boundSet := map[VarID]bool{}
	forallSet := map[VarID]bool{}
	for _, a := range t.Args {
		switch a.Kind {
		case KindBound:
			boundSet[a.Var] = true
		case KindForall:
			forallSet[a.Var] = true
		}
	}
	bound = sortedKeys(boundSet)
	forall = sortedKeys(forallSet)
	return
}

func sortedKeys(m map[VarID]bool) []VarID {
	out := make([]VarID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// VarsOf returns the distinct variable ids referenced across a sequence of
// premises (the union of each premise's Bound and Forall vars), in
// ascending order. This is the K of spec §3's "K-variable query".
func VarsOf(premises []FactTemplate) []VarID {
	set := map[VarID]bool{}
	for _, p := range premises {
		b, f := p.Vars()
		for _, v := range b {
			set[v] = true
		}
		for _, v := range f {
			set[v] = true
		}
	}
	return sortedKeys(set)
}

// Context is an ordered sequence of Values indexed by VarID, produced as a
// query result. Forall-bound positions hold a TagList Value.
type Context []Value

// Get returns the value bound to id. Callers must only call this for ids
// actually present in the Context (i.e. within the query's variable
// scope); out-of-range ids panic rather than silently returning a zero
// Value, since that would be indistinguishable from a real binding.
func (c Context) Get(id VarID) Value {
	return c[id]
}

// CompareContexts orders Contexts lexicographically by Value order, per
// spec §3.
func CompareContexts(a, b Context) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareUint64(uint64(len(a)), uint64(len(b)))
}

func EqualContexts(a, b Context) bool { return CompareContexts(a, b) == 0 }

// SortContexts orders a slice of Contexts ascending, giving the
// deterministic order spec §4.1 requires whenever an engine exposes
// results as a sequence rather than a set.
func SortContexts(cs []Context) {
	sort.Slice(cs, func(i, j int) bool { return CompareContexts(cs[i], cs[j]) < 0 })
}

// ContextKey renders a Context as a canonical map key, for use by the
// seen-binding cache and by dedup/group-by logic over sets of Contexts.
func ContextKey(ctx Context) string {
	buf := make([]byte, 0, 8*len(ctx))
	for _, v := range ctx {
		buf = append(buf, CanonicalKey(v)...)
		buf = append(buf, 0xfe)
	}
	return string(buf)
}
