// Package analyzer implements component D: a registered premise pattern
// plus a remote producer of derived facts, its seen-binding cache, and
// the relevance-gated Run procedure the fixpoint driver calls once per
// generation.
package analyzer

import (
	"context"
	"fmt"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/internal/workpool"
	"github.com/maurer/holmes/holmes/store"
)

// Analysis is the remote capability an analyzer dispatches bindings to
// (spec §6's Analysis capability: a single analyze method). Clients
// implement this however they expose their analyzer — in-process for
// tests, or over holmes/rpc for a real remote analyzer.
type Analysis interface {
	Analyze(ctx context.Context, binding holmes.Context) ([]holmes.Fact, error)
}

// AnalysisFunc adapts a plain function to Analysis, for tests and
// in-process analyzers that don't need a network hop.
type AnalysisFunc func(ctx context.Context, binding holmes.Context) ([]holmes.Fact, error)

func (f AnalysisFunc) Analyze(ctx context.Context, binding holmes.Context) ([]holmes.Fact, error) {
	return f(ctx, binding)
}

// Analyzer is component D: name, premise list, the remote analyze
// capability, the derived dependent-predicate set, and the seen-binding
// cache.
type Analyzer struct {
	Name      string
	Premises  []holmes.FactTemplate
	Cap       Analysis
	dependent store.DirtySet

	cache   *seenCache
	workers int // 0 = runtime.NumCPU(); overridable for tests
}

// New constructs an Analyzer. dependent is the union of every premise's
// predicate name (spec §4.2: "the derived predicate-name set (dependent =
// union of premise predicate names)").
func New(name string, premises []holmes.FactTemplate, cap Analysis) *Analyzer {
	dep := store.NewDirtySet()
	for _, p := range premises {
		dep.Add(p.Name)
	}
	return &Analyzer{
		Name:      name,
		Premises:  premises,
		Cap:       cap,
		dependent: dep,
		cache:     newSeenCache(),
	}
}

// Dependent returns the set of predicate names this analyzer's premises
// reference.
func (a *Analyzer) Dependent() store.DirtySet { return a.dependent }

// Run implements spec §4.2's six-step procedure. dirty is the
// generation's dirty-set; an empty dirty-set means "run unconditionally"
// (used for the catch-up pass when an analyzer is first registered).
func (a *Analyzer) Run(ctx context.Context, s store.Store, dirty store.DirtySet) (store.DirtySet, error) {
	// Step 1: relevance gate.
	if len(dirty) > 0 && !dirty.Intersects(a.dependent) {
		return store.NewDirtySet(), nil
	}

	// Step 2: enumerate bindings.
	bindings, err := s.GetFacts(a.Premises)
	if err != nil {
		return nil, fmt.Errorf("analyzer %s: enumerate bindings: %w", a.Name, err)
	}

	// Step 3: filter by cache, marking survivors seen immediately
	// (step 4's "optimistic" mark happens in the same pass as the
	// filter, since markIfNew is itself the cache-insertion point).
	var fresh []holmes.Context
	for _, b := range bindings {
		if a.cache.markIfNew(b) {
			fresh = append(fresh, b)
		}
	}
	if len(fresh) == 0 {
		return store.NewDirtySet(), nil
	}

	// Step 4: dispatch concurrently.
	type result struct {
		facts []holmes.Fact
		err   error
	}
	results, errs := workpool.Map(a.workers, fresh, func(b holmes.Context) (result, error) {
		facts, err := a.Cap.Analyze(ctx, b)
		return result{facts: facts}, err
	})
	if err := workpool.FirstError(errs); err != nil {
		return nil, fmt.Errorf("analyzer %s: remote analyze failed: %w", a.Name, err)
	}

	// Step 5: ingest.
	var derived []holmes.Fact
	for _, r := range results {
		derived = append(derived, r.facts...)
	}
	if len(derived) == 0 {
		return store.NewDirtySet(), nil
	}
	produced, err := s.SetFacts(derived)
	if err != nil {
		return nil, fmt.Errorf("analyzer %s: ingest derived facts: %w", a.Name, err)
	}

	// Step 6: return.
	return produced, nil
}
