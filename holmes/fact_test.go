package holmes

import "testing"

func TestWellTyped(t *testing.T) {
	sig := []HType{StringType(), AddrType()}
	good := NewFact("p", NewString("a"), NewAddr(1))
	if !good.WellTyped(sig) {
		t.Error("expected fact to be well-typed")
	}
	bad := NewFact("p", NewAddr(1), NewString("a"))
	if bad.WellTyped(sig) {
		t.Error("expected fact with swapped types to fail")
	}
	shortArity := NewFact("p", NewString("a"))
	if shortArity.WellTyped(sig) {
		t.Error("expected arity mismatch to fail")
	}
}

func TestTemplateVars(t *testing.T) {
	tmpl := NewTemplate("p",
		Bound(0),
		Forall(1),
		Exact(NewString("x")),
		UnboundVal(),
		Bound(0), // repeated var id, must not duplicate in Vars()
	)
	bound, forall := tmpl.Vars()
	if len(bound) != 1 || bound[0] != 0 {
		t.Errorf("bound vars = %v, want [0]", bound)
	}
	if len(forall) != 1 || forall[0] != 1 {
		t.Errorf("forall vars = %v, want [1]", forall)
	}
}

func TestVarsOfUnionsAcrossPremises(t *testing.T) {
	p1 := NewTemplate("p", Bound(0), Bound(1))
	p2 := NewTemplate("q", Bound(1), Forall(2))
	got := VarsOf([]FactTemplate{p1, p2})
	want := []VarID{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("VarsOf = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("VarsOf[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCompareFactsOrdersByNameFirst(t *testing.T) {
	a := NewFact("a", NewAddr(100))
	b := NewFact("b", NewAddr(0))
	if CompareFacts(a, b) >= 0 {
		t.Error("fact with lexicographically smaller name must sort first regardless of args")
	}
}

func TestContextKeyStableUnderEqualValues(t *testing.T) {
	c1 := Context{NewString("x"), NewAddr(1)}
	c2 := Context{NewString("x"), NewAddr(1)}
	c3 := Context{NewString("x"), NewAddr(2)}

	if ContextKey(c1) != ContextKey(c2) {
		t.Error("equal contexts must produce the same key")
	}
	if ContextKey(c1) == ContextKey(c3) {
		t.Error("unequal contexts must not collide")
	}
}

func TestSortContextsDeterministic(t *testing.T) {
	cs := []Context{
		{NewString("b")},
		{NewString("a")},
		{NewString("c")},
	}
	SortContexts(cs)
	if cs[0][0].String() != "a" || cs[1][0].String() != "b" || cs[2][0].String() != "c" {
		t.Errorf("SortContexts did not produce ascending order: %v", cs)
	}
}
