package store

import (
	"testing"

	"github.com/maurer/holmes/holmes"
)

func TestSetFactsRejectsUnregisteredPredicate(t *testing.T) {
	m := NewMem()
	_, err := m.SetFacts([]holmes.Fact{holmes.NewFact("unknown", holmes.NewString("x"))})
	if err == nil {
		t.Fatal("expected error for unregistered predicate")
	}
	if _, ok := err.(*ErrIllTyped); !ok {
		t.Errorf("expected ErrIllTyped, got %T", err)
	}
}

func TestSetFactsBatchIsAtomic(t *testing.T) {
	m := NewMem()
	m.AddType("p", []holmes.HType{holmes.AddrType()})

	good := holmes.NewFact("p", holmes.NewAddr(1))
	bad := holmes.NewFact("p", holmes.NewString("not an addr"))
	_, err := m.SetFacts([]holmes.Fact{good, bad})
	if err == nil {
		t.Fatal("expected batch to be rejected")
	}
	if got := m.Dump("p"); len(got) != 0 {
		t.Errorf("partial batch must not be inserted, got %v", got)
	}
}

func TestSetFactsDeduplicates(t *testing.T) {
	m := NewMem()
	m.AddType("p", []holmes.HType{holmes.AddrType()})

	f := holmes.NewFact("p", holmes.NewAddr(1))
	dirty1, err := m.SetFacts([]holmes.Fact{f})
	if err != nil || len(dirty1) != 1 {
		t.Fatalf("first insert: dirty=%v err=%v", dirty1, err)
	}
	dirty2, err := m.SetFacts([]holmes.Fact{f})
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if len(dirty2) != 0 {
		t.Errorf("re-inserting an identical fact must not mark it dirty, got %v", dirty2)
	}
	if got := m.Dump("p"); len(got) != 1 {
		t.Errorf("duplicate fact must not be stored twice, got %v", got)
	}
}

// TestSinglePremiseMatch is scenario S1: a single bound-variable premise
// returns one Context per matching fact.
func TestSinglePremiseMatch(t *testing.T) {
	m := NewMem()
	m.AddType("person", []holmes.HType{holmes.StringType()})
	m.SetFacts([]holmes.Fact{
		holmes.NewFact("person", holmes.NewString("alice")),
		holmes.NewFact("person", holmes.NewString("bob")),
	})

	ctxs, err := m.GetFacts([]holmes.FactTemplate{
		holmes.NewTemplate("person", holmes.Bound(0)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ctxs) != 2 {
		t.Fatalf("expected 2 contexts, got %d: %v", len(ctxs), ctxs)
	}
}

// TestJoinOnSharedVariable is scenario S2: two premises sharing a bound
// variable only match rows that agree on it.
func TestJoinOnSharedVariable(t *testing.T) {
	m := NewMem()
	m.AddType("parent", []holmes.HType{holmes.StringType(), holmes.StringType()})
	m.AddType("grandparent_of", []holmes.HType{holmes.StringType()})
	m.SetFacts([]holmes.Fact{
		holmes.NewFact("parent", holmes.NewString("alice"), holmes.NewString("bob")),
		holmes.NewFact("parent", holmes.NewString("bob"), holmes.NewString("carol")),
		holmes.NewFact("parent", holmes.NewString("dave"), holmes.NewString("erin")),
	})

	ctxs, err := m.GetFacts([]holmes.FactTemplate{
		holmes.NewTemplate("parent", holmes.Bound(0), holmes.Bound(1)),
		holmes.NewTemplate("parent", holmes.Bound(1), holmes.Bound(2)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ctxs) != 1 {
		t.Fatalf("expected exactly one grandparent chain, got %d: %v", len(ctxs), ctxs)
	}
	if ctxs[0].Get(0).String() != "alice" || ctxs[0].Get(2).String() != "carol" {
		t.Errorf("unexpected join result: %v", ctxs[0])
	}
}

// TestExactAndUnboundPositions exercises KindExact filtering and KindUnbound
// wildcarding within a single premise. Neither position binds a variable,
// so a premise that matches yields a single zero-length Context and one
// that matches nothing yields none.
func TestExactAndUnboundPositions(t *testing.T) {
	m := NewMem()
	m.AddType("edge", []holmes.HType{holmes.StringType(), holmes.StringType()})
	m.SetFacts([]holmes.Fact{
		holmes.NewFact("edge", holmes.NewString("a"), holmes.NewString("x")),
		holmes.NewFact("edge", holmes.NewString("a"), holmes.NewString("y")),
		holmes.NewFact("edge", holmes.NewString("b"), holmes.NewString("z")),
	})

	ctxs, err := m.GetFacts([]holmes.FactTemplate{
		holmes.NewTemplate("edge", holmes.Exact(holmes.NewString("a")), holmes.UnboundVal()),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ctxs) != 1 || len(ctxs[0]) != 0 {
		t.Fatalf("expected one zero-length Context for edge(a, _), got %v", ctxs)
	}

	none, err := m.GetFacts([]holmes.FactTemplate{
		holmes.NewTemplate("edge", holmes.Exact(holmes.NewString("c")), holmes.UnboundVal()),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no match for edge(c, _), got %v", none)
	}
}

// TestForallAggregation is scenario S3: a forall position collects every
// matching value into a sorted list, grouped by the remaining bound
// columns.
func TestForallAggregation(t *testing.T) {
	m := NewMem()
	m.AddType("parent", []holmes.HType{holmes.StringType(), holmes.StringType()})
	m.SetFacts([]holmes.Fact{
		holmes.NewFact("parent", holmes.NewString("alice"), holmes.NewString("carol")),
		holmes.NewFact("parent", holmes.NewString("alice"), holmes.NewString("bob")),
		holmes.NewFact("parent", holmes.NewString("dave"), holmes.NewString("erin")),
	})

	ctxs, err := m.GetFacts([]holmes.FactTemplate{
		holmes.NewTemplate("parent", holmes.Bound(0), holmes.Forall(1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ctxs) != 2 {
		t.Fatalf("expected one group per distinct parent, got %d: %v", len(ctxs), ctxs)
	}
	for _, c := range ctxs {
		if c.Get(0).String() == "alice" {
			children := c.Get(1).List()
			if len(children) != 2 || children[0].String() != "bob" || children[1].String() != "carol" {
				t.Errorf("expected sorted [bob carol] for alice, got %v", children)
			}
		}
	}
}

func TestGetFactsUnknownPredicateIsEmptyNotError(t *testing.T) {
	m := NewMem()
	ctxs, err := m.GetFacts([]holmes.FactTemplate{
		holmes.NewTemplate("never_registered", holmes.Bound(0)),
	})
	if err != nil {
		t.Fatalf("unknown predicate must not be an error, got %v", err)
	}
	if len(ctxs) != 0 {
		t.Errorf("expected zero matches, got %v", ctxs)
	}
}

func TestZeroPremiseQueryReturnsSingleEmptyContext(t *testing.T) {
	m := NewMem()
	ctxs, err := m.GetFacts(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctxs) != 1 || len(ctxs[0]) != 0 {
		t.Errorf("expected one zero-length context, got %v", ctxs)
	}
}
