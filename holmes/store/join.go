package store

import (
	"sort"

	"github.com/maurer/holmes/holmes"
)

// factSource is the minimal read surface the shared join evaluator needs
// from a backend: per-predicate fact iteration. An unknown predicate name
// returns (nil, false) — the caller treats that as "zero matches", per
// spec §4.1's edge-case policy, not as an error.
type factSource interface {
	factsFor(name string) ([]holmes.Fact, bool)
}

// evaluateJoin is the shared conjunctive-query evaluator behind GetFacts,
// used by both Mem and Badger. It mirrors the teacher's separation
// between raw storage access and the matcher/executor layer that
// interprets patterns against it (datalog/executor/indexed_memory_matcher.go),
// simplified from arbitrary Datalog join planning down to the single
// evaluation strategy the spec calls for: naive backtracking across
// premises, followed by an optional forall grouping pass.
func evaluateJoin(src factSource, premises []holmes.FactTemplate) []holmes.Context {
	if len(premises) == 0 {
		return []holmes.Context{holmes.Context{}}
	}

	k := varSpaceSize(premises)
	_, forallVars := distinctVarSets(premises)

	raw := make([]map[holmes.VarID]holmes.Value, 0)
	search(src, premises, 0, map[holmes.VarID]holmes.Value{}, &raw)

	if len(forallVars) == 0 {
		return dedupeContexts(rowsToContexts(raw, k))
	}
	return groupByForall(raw, k, forallVars)
}

// varSpaceSize returns max(varId)+1 across every premise, i.e. the
// Context length for this query (spec §3: "Context length equals the
// number of distinct variable ids used in the originating template").
func varSpaceSize(premises []holmes.FactTemplate) int {
	max := -1
	for _, p := range premises {
		for _, a := range p.Args {
			if a.Kind == holmes.KindBound || a.Kind == holmes.KindForall {
				if int(a.Var) > max {
					max = int(a.Var)
				}
			}
		}
	}
	return max + 1
}

func distinctVarSets(premises []holmes.FactTemplate) (bound, forall map[holmes.VarID]bool) {
	bound = map[holmes.VarID]bool{}
	forall = map[holmes.VarID]bool{}
	for _, p := range premises {
		b, f := p.Vars()
		for _, v := range b {
			bound[v] = true
		}
		for _, v := range f {
			forall[v] = true
		}
	}
	return
}

// search performs the backtracking join: at premise index idx, it tries
// every fact of that premise's predicate, extends binding if the fact
// matches, and recurses. A completed binding (idx == len(premises)) is
// appended to *out.
func search(
	src factSource,
	premises []holmes.FactTemplate,
	idx int,
	binding map[holmes.VarID]holmes.Value,
	out *[]map[holmes.VarID]holmes.Value,
) {
	if idx == len(premises) {
		cp := make(map[holmes.VarID]holmes.Value, len(binding))
		for k, v := range binding {
			cp[k] = v
		}
		*out = append(*out, cp)
		return
	}

	premise := premises[idx]
	facts, ok := src.factsFor(premise.Name)
	if !ok {
		return // unknown predicate: zero matches for the whole query
	}

	for _, f := range facts {
		if len(f.Args) != len(premise.Args) {
			continue
		}
		next, ok := matchOne(premise, f, binding)
		if !ok {
			continue
		}
		search(src, premises, idx+1, next, out)
	}
}

// matchOne attempts to match a single fact against a single premise given
// the binding accumulated so far, returning the extended binding (a copy;
// binding itself is never mutated so sibling branches of the search stay
// independent).
func matchOne(premise holmes.FactTemplate, f holmes.Fact, binding map[holmes.VarID]holmes.Value) (map[holmes.VarID]holmes.Value, bool) {
	next := make(map[holmes.VarID]holmes.Value, len(binding)+len(premise.Args))
	for k, v := range binding {
		next[k] = v
	}

	for i, a := range premise.Args {
		fv := f.Args[i]
		switch a.Kind {
		case holmes.KindExact:
			if !holmes.Equal(a.Exact, fv) {
				return nil, false
			}
		case holmes.KindUnbound:
			// matches anything
		case holmes.KindBound:
			if existing, bound := next[a.Var]; bound {
				if !holmes.Equal(existing, fv) {
					return nil, false
				}
			} else {
				next[a.Var] = fv
			}
		case holmes.KindForall:
			// Each row binds its own scalar value for a forall
			// variable; grouping happens after the full search,
			// not during unification, so forall positions never
			// constrain other premises.
			next[a.Var] = fv
		}
	}
	return next, true
}

func rowsToContexts(rows []map[holmes.VarID]holmes.Value, k int) []holmes.Context {
	out := make([]holmes.Context, 0, len(rows))
	for _, row := range rows {
		ctx := make(holmes.Context, k)
		for id, v := range row {
			ctx[id] = v
		}
		out = append(out, ctx)
	}
	return out
}

func dedupeContexts(ctxs []holmes.Context) []holmes.Context {
	holmes.SortContexts(ctxs)
	out := ctxs[:0:0]
	for i, c := range ctxs {
		if i == 0 || holmes.CompareContexts(ctxs[i-1], c) != 0 {
			out = append(out, c)
		}
	}
	return out
}

// groupByForall implements spec §4.1's forall aggregation: project onto
// the non-forall bound columns, group, and collect each forall column's
// values (ascending by Value order) per group — the same shape as the
// teacher's aggregation grouping in datalog/executor/aggregation.go,
// specialized from arbitrary aggregate functions down to plain
// array_agg-into-a-list.
func groupByForall(rows []map[holmes.VarID]holmes.Value, k int, forallVars map[holmes.VarID]bool) []holmes.Context {
	type group struct {
		boundVals map[holmes.VarID]holmes.Value
		collected map[holmes.VarID][]holmes.Value
	}
	groups := map[string]*group{}
	order := make([]string, 0)

	for _, row := range rows {
		boundVals := map[holmes.VarID]holmes.Value{}
		for id, v := range row {
			if !forallVars[id] {
				boundVals[id] = v
			}
		}
		key := groupKey(boundVals)
		g, ok := groups[key]
		if !ok {
			g = &group{boundVals: boundVals, collected: map[holmes.VarID][]holmes.Value{}}
			groups[key] = g
			order = append(order, key)
		}
		for id := range forallVars {
			if v, present := row[id]; present {
				g.collected[id] = append(g.collected[id], v)
			}
		}
	}

	out := make([]holmes.Context, 0, len(order))
	for _, key := range order {
		g := groups[key]
		ctx := make(holmes.Context, k)
		for id, v := range g.boundVals {
			ctx[id] = v
		}
		for id := range forallVars {
			vals := g.collected[id]
			sort.Slice(vals, func(i, j int) bool { return holmes.Less(vals[i], vals[j]) })
			ctx[id] = holmes.NewList(vals)
		}
		out = append(out, ctx)
	}
	return dedupeContexts(out)
}

// groupKey builds a canonical, order-independent map key from a set of
// (VarID, Value) bindings by sorting on VarID and concatenating each
// value's self-describing byte encoding.
func groupKey(vals map[holmes.VarID]holmes.Value) string {
	ids := make([]holmes.VarID, 0, len(vals))
	for id := range vals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf := make([]byte, 0, 16*len(ids))
	for _, id := range ids {
		buf = append(buf, byte(id>>24), byte(id>>16), byte(id>>8), byte(id))
		buf = append(buf, holmes.CanonicalKey(vals[id])...)
	}
	return string(buf)
}
