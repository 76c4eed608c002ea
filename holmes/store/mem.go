package store

import (
	"sort"
	"sync"

	"github.com/maurer/holmes/holmes"
)

// Mem is an in-memory, index-accelerated Store. It is grounded on the
// teacher's datalog/executor/indexed_memory_matcher.go: a hash index per
// predicate keeps per-name fact lookups O(1) instead of scanning the
// whole store, the same trade the teacher makes per-entity/attribute/value
// for its EAV datoms.
type Mem struct {
	mu     sync.RWMutex
	schema *holmes.Schema
	preds  map[string]*predFacts
}

// predFacts holds one predicate's deduplicated fact set plus a stable
// ascending-order slice for deterministic iteration.
type predFacts struct {
	byKey map[string]holmes.Fact // canonical-encoding → Fact, for O(1) dedup
	facts []holmes.Fact          // kept sorted by CompareFacts
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{
		schema: holmes.NewSchema(),
		preds:  make(map[string]*predFacts),
	}
}

func (m *Mem) AddType(name string, argTypes []holmes.HType) bool {
	return m.schema.AddType(name, argTypes)
}

func (m *Mem) SetFacts(facts []holmes.Fact) (DirtySet, error) {
	// Validate the whole batch before mutating anything: setFacts is
	// atomic with respect to type-check failure (spec §4.1, §9).
	for _, f := range facts {
		sig, ok := m.schema.Lookup(f.Name)
		if !ok || !f.WellTyped(sig) {
			return nil, &ErrIllTyped{Fact: f}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dirty := NewDirtySet()
	for _, f := range facts {
		pf, ok := m.preds[f.Name]
		if !ok {
			pf = &predFacts{byKey: make(map[string]holmes.Fact)}
			m.preds[f.Name] = pf
		}
		key := factKey(f)
		if _, present := pf.byKey[key]; present {
			continue
		}
		pf.byKey[key] = f
		pf.facts = insertSorted(pf.facts, f)
		dirty.Add(f.Name)
	}
	return dirty, nil
}

func (m *Mem) GetFacts(premises []holmes.FactTemplate) ([]holmes.Context, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return evaluateJoin(m, premises), nil
}

func (m *Mem) factsFor(name string) ([]holmes.Fact, bool) {
	pf, ok := m.preds[name]
	if !ok {
		return nil, false
	}
	return pf.facts, true
}

func (m *Mem) Dump(name string) []holmes.Fact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pf, ok := m.preds[name]
	if !ok {
		return nil
	}
	out := make([]holmes.Fact, len(pf.facts))
	copy(out, pf.facts)
	return out
}

func (m *Mem) Close() error { return nil }

func factKey(f holmes.Fact) string {
	return f.Name + "\x00" + groupKey(indexByPosition(f.Args))
}

func indexByPosition(args []holmes.Value) map[holmes.VarID]holmes.Value {
	m := make(map[holmes.VarID]holmes.Value, len(args))
	for i, v := range args {
		m[holmes.VarID(i)] = v
	}
	return m
}

func insertSorted(facts []holmes.Fact, f holmes.Fact) []holmes.Fact {
	i := sort.Search(len(facts), func(i int) bool {
		return holmes.CompareFacts(facts[i], f) >= 0
	})
	facts = append(facts, holmes.Fact{})
	copy(facts[i+1:], facts[i:])
	facts[i] = f
	return facts
}
