package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maurer/holmes/holmes"
)

// ParseTemplate builds a holmes.FactTemplate from the CLI's token syntax
// for premise positions, interning any ?name
// variables it sees through in:
//
//	_          -> Unbound
//	?name      -> Bound, shared across positions and premises using in
//	?*name     -> Forall, same sharing rule
//	#<number>  -> Exact(addr)
//	anything   -> Exact(string)
//
// This is parsing-boundary sugar only — the FactTemplate it returns is
// exactly what holmes.NewTemplate would build by hand.
func ParseTemplate(name string, tokens []string, in *Interner) (holmes.FactTemplate, error) {
	args := make([]holmes.TemplateVal, len(tokens))
	for i, tok := range tokens {
		v, err := parseArg(tok, in)
		if err != nil {
			return holmes.FactTemplate{}, fmt.Errorf("query: template %s position %d: %w", name, i, err)
		}
		args[i] = v
	}
	return holmes.NewTemplate(name, args...), nil
}

func parseArg(tok string, in *Interner) (holmes.TemplateVal, error) {
	switch {
	case tok == "_":
		return holmes.UnboundVal(), nil
	case strings.HasPrefix(tok, "?*"):
		return holmes.Forall(in.Intern(tok[2:])), nil
	case strings.HasPrefix(tok, "?"):
		return holmes.Bound(in.Intern(tok[1:])), nil
	case strings.HasPrefix(tok, "#"):
		n, err := strconv.ParseUint(tok[1:], 10, 64)
		if err != nil {
			return holmes.TemplateVal{}, fmt.Errorf("bad addr literal %q: %w", tok, err)
		}
		return holmes.Exact(holmes.NewAddr(n)), nil
	default:
		return holmes.Exact(holmes.NewString(tok)), nil
	}
}

// ParseFact builds a concrete holmes.Fact from tokens using the same
// literal syntax ParseTemplate uses for Exact positions — ? and ?* and _
// are not meaningful here since a Fact has no variables.
func ParseFact(name string, tokens []string) (holmes.Fact, error) {
	args := make([]holmes.Value, len(tokens))
	for i, tok := range tokens {
		v, err := parseLiteral(tok)
		if err != nil {
			return holmes.Fact{}, fmt.Errorf("query: fact %s position %d: %w", name, i, err)
		}
		args[i] = v
	}
	return holmes.NewFact(name, args...), nil
}

func parseLiteral(tok string) (holmes.Value, error) {
	if strings.HasPrefix(tok, "#") {
		n, err := strconv.ParseUint(tok[1:], 10, 64)
		if err != nil {
			return holmes.Value{}, fmt.Errorf("bad addr literal %q: %w", tok, err)
		}
		return holmes.NewAddr(n), nil
	}
	return holmes.NewString(tok), nil
}
