// Package config loads the YAML seed files spec §9's "an implementation
// may still accept names at the parsing boundary" convenience implies a
// complete repo needs: predicate registrations and initial facts, applied
// to a freshly constructed Engine before it starts serving.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/engine"
	"github.com/maurer/holmes/holmes/query"
)

// TypeDecl is one schema registration entry.
type TypeDecl struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// FactDecl is one literal fact entry, in query.ParseFact's token syntax.
type FactDecl struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// Seed is a parsed seed file: zero or more type declarations followed by
// zero or more facts to insert, applied in that order.
type Seed struct {
	Types []TypeDecl `yaml:"types"`
	Facts []FactDecl `yaml:"facts"`
}

// Load parses a seed file from raw YAML bytes.
func Load(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse seed: %w", err)
	}
	return &s, nil
}

// LoadFile reads and parses a seed file from disk.
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read seed %s: %w", path, err)
	}
	return Load(data)
}

// Apply registers every type declaration and then inserts every fact,
// against e, in file order. A type that fails to register (invalid name or
// conflicting re-registration) aborts the load — spec §6's registerType
// failure semantics apply here exactly as they would over the wire.
func (s *Seed) Apply(ctx context.Context, e *engine.Engine) error {
	for _, t := range s.Types {
		argTypes, err := ParseHTypes(t.Args)
		if err != nil {
			return fmt.Errorf("config: type %s: %w", t.Name, err)
		}
		if ok := e.RegisterType(t.Name, argTypes); !ok {
			return fmt.Errorf("config: type %s: registration rejected (invalid name or conflicting signature)", t.Name)
		}
	}

	facts := make([]holmes.Fact, 0, len(s.Facts))
	for _, f := range s.Facts {
		fact, err := query.ParseFact(f.Name, f.Args)
		if err != nil {
			return fmt.Errorf("config: fact %s: %w", f.Name, err)
		}
		facts = append(facts, fact)
	}
	if len(facts) == 0 {
		return nil
	}
	return e.Set(ctx, facts)
}

// ParseHTypes parses each of a type declaration's argument-type names,
// shared by seed-file loading and the CLI's register-type command.
func ParseHTypes(names []string) ([]holmes.HType, error) {
	out := make([]holmes.HType, len(names))
	for i, n := range names {
		t, err := ParseHType(n)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// ParseHType parses "string", "addr", "blob", "json", or "list<elem>"
// (recursively for nested lists), matching holmes.HType.String's rendering.
func ParseHType(s string) (holmes.HType, error) {
	switch {
	case s == "string":
		return holmes.StringType(), nil
	case s == "addr":
		return holmes.AddrType(), nil
	case s == "blob":
		return holmes.BlobType(), nil
	case s == "json":
		return holmes.JSONType(), nil
	case strings.HasPrefix(s, "list<") && strings.HasSuffix(s, ">"):
		elem, err := ParseHType(s[len("list<") : len(s)-1])
		if err != nil {
			return holmes.HType{}, err
		}
		return holmes.ListType(elem), nil
	default:
		return holmes.HType{}, fmt.Errorf("unknown type %q", s)
	}
}
