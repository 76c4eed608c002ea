package query

import (
	"testing"

	"github.com/maurer/holmes/holmes"
)

func TestParseTemplateInternsSharedVars(t *testing.T) {
	in := NewInterner()
	t1, err := ParseTemplate("parent", []string{"?x", "?y"}, in)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := ParseTemplate("parent", []string{"?y", "?z"}, in)
	if err != nil {
		t.Fatal(err)
	}

	bound1, _ := t1.Vars()
	bound2, _ := t2.Vars()
	if len(bound1) != 2 || len(bound2) != 2 {
		t.Fatalf("expected 2 bound vars each, got %v %v", bound1, bound2)
	}
	// ?y must have interned to the same VarID in both templates.
	if t1.Args[1].Var != t2.Args[0].Var {
		t.Errorf("?y interned inconsistently: %d vs %d", t1.Args[1].Var, t2.Args[0].Var)
	}
	if in.Names()[t1.Args[1].Var] != "y" {
		t.Errorf("Names()[%d] = %q, want y", t1.Args[1].Var, in.Names()[t1.Args[1].Var])
	}
}

func TestParseTemplateKinds(t *testing.T) {
	in := NewInterner()
	tmpl, err := ParseTemplate("p", []string{"_", "?x", "?*g", "#42", "literal"}, in)
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Args[0].Kind != holmes.KindUnbound {
		t.Error("expected _ to parse as Unbound")
	}
	if tmpl.Args[1].Kind != holmes.KindBound {
		t.Error("expected ?x to parse as Bound")
	}
	if tmpl.Args[2].Kind != holmes.KindForall {
		t.Error("expected ?*g to parse as Forall")
	}
	if tmpl.Args[3].Kind != holmes.KindExact || tmpl.Args[3].Exact.Addr() != 42 {
		t.Error("expected #42 to parse as Exact(addr 42)")
	}
	if tmpl.Args[4].Kind != holmes.KindExact || tmpl.Args[4].Exact.String() != "literal" {
		t.Error("expected bare token to parse as Exact(string)")
	}
}

func TestParseFactParsesPlainLiterals(t *testing.T) {
	fact, err := ParseFact("p", []string{"#1", "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if fact.Args[0].Addr() != 1 || fact.Args[1].String() != "alice" {
		t.Errorf("unexpected fact args: %v", fact.Args)
	}
}
