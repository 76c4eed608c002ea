// Package engine implements component E: the fixpoint driver (the spec's
// HolmesImpl). It owns the analyzer list and the fact store, dispatches
// the four public operations, and runs the saturation loop described in
// spec §4.3.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/analyzer"
	"github.com/maurer/holmes/holmes/internal/workpool"
	"github.com/maurer/holmes/holmes/store"
	"github.com/maurer/holmes/holmes/trace"
)

// Engine is the spec's HolmesImpl: it owns the fact store and the
// analyzer registry. It does not hold a single engine-wide lock across
// any operation: the store (Mem/Badger) and the schema registry already
// serialize their own state internally, so each public method's atomic
// section is just the call into the store. mu here guards only the
// analyzer registry slice, which RegisterAnalyzer appends to and
// runAll reads a snapshot of once per generation — a short, suspension-
// point-free critical section. This is what gives spec §5's "between
// suspension points, code runs atomically, and concurrent calls
// interleave at suspension-point granularity": a remote analyze call or
// backend I/O inside one client's fixpoint never blocks another
// client's registerType, set, or derive.
type Engine struct {
	mu        sync.Mutex
	store     store.Store
	analyzers []*analyzer.Analyzer
	tracer    trace.Tracer
}

// New constructs an Engine over an already-open Store. Callers choose the
// backend (store.NewMem() or store.NewBadger(path)) before wiring it in.
func New(s store.Store) *Engine {
	return &Engine{store: s, tracer: trace.Discard{}}
}

// WithTracer attaches a diagnostics tracer (holmes/trace) for fixpoint
// generation logging; the default is a no-op tracer.
func (e *Engine) WithTracer(t trace.Tracer) *Engine {
	e.tracer = t
	return e
}

// RegisterType is the registerType RPC (spec §6): delegates to the
// schema registry via the store, returning validity. The store serializes
// this itself; no engine-level lock is needed.
func (e *Engine) RegisterType(name string, argTypes []holmes.HType) bool {
	return e.store.AddType(name, argTypes)
}

// Set is the set RPC (spec §6, §4.3): insert facts, then saturate. It does
// not return until the triggered fixpoint has fully quiesced, per spec
// §5's ordering guarantee, but it does not hold any engine-wide lock
// while doing so — a sibling client's registerType, set, or derive can
// run concurrently with this fixpoint's analyzer dispatch.
func (e *Engine) Set(ctx context.Context, facts []holmes.Fact) error {
	dirty, err := e.store.SetFacts(facts)
	if err != nil {
		return fmt.Errorf("engine: set: %w", err)
	}
	if len(dirty) == 0 {
		return nil
	}
	return e.runAll(ctx, dirty)
}

// Derive is the derive RPC (spec §6, §4.3): a one-shot conjunctive query
// that never triggers analyzer dispatch.
func (e *Engine) Derive(premises []holmes.FactTemplate) ([]holmes.Context, error) {
	ctxs, err := e.store.GetFacts(premises)
	if err != nil {
		return nil, fmt.Errorf("engine: derive: %w", err)
	}
	holmes.SortContexts(ctxs)
	return ctxs, nil
}

// RegisterAnalyzer is the Go-API half of the analyzer RPC (spec §6): it
// constructs a new Analyzer, appends it to the registry, and immediately
// runs it once against an empty dirty-set to catch up on pre-existing
// facts, saturating if that catch-up pass produces anything. It returns
// once that first saturation completes.
//
// The spec fixes that the *wire* analyzer call never sends a reply after
// this point — the analyzer is a long-lived subscription with no
// completion notification — but that is a property of the RPC transport
// (holmes/rpc never writes a response frame for a successful
// registration; only a failed one gets an error reply), not of this
// Go method: blocking the calling goroutine forever to mimic "hangs" at
// the library layer would only leak a goroutine per analyzer for no
// benefit, since Go callers can already choose not to wait by calling
// this from their own goroutine. See DESIGN.md.
func (e *Engine) RegisterAnalyzer(ctx context.Context, name string, premises []holmes.FactTemplate, cap analyzer.Analysis) error {
	a := analyzer.New(name, premises, cap)

	e.mu.Lock()
	e.analyzers = append(e.analyzers, a)
	e.mu.Unlock()

	produced, err := a.Run(ctx, e.store, store.NewDirtySet())
	if err != nil {
		return fmt.Errorf("engine: analyzer %s: initial run: %w", name, err)
	}
	if len(produced) == 0 {
		return nil
	}
	return e.runAll(ctx, produced)
}

// snapshotAnalyzers copies the current analyzer registry under mu, so a
// generation's dispatch can run against a stable list even if another
// goroutine's RegisterAnalyzer appends to it mid-fixpoint.
func (e *Engine) snapshotAnalyzers() []*analyzer.Analyzer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*analyzer.Analyzer, len(e.analyzers))
	copy(out, e.analyzers)
	return out
}

// runAll is spec §4.3's runAll, expressed as a loop over generations
// (spec §9 design note: "implementations without tail calls should
// express it as a loop over generations inside a single task"), rather
// than recursion, to keep the goroutine stack bounded regardless of how
// many generations the fixpoint takes to quiesce. It takes no engine
// lock across a generation's dispatch: each analyzer's Run call is a
// suspension point (a remote analyze call, or backend I/O), and other
// clients' operations must be free to interleave with it.
func (e *Engine) runAll(ctx context.Context, dirty store.DirtySet) error {
	generation := 0
	for len(dirty) > 0 {
		analyzers := e.snapshotAnalyzers()
		e.tracer.Generation(generation, dirty.Names())

		type outcome struct {
			produced store.DirtySet
			skipped  bool
		}
		results, errs := workpool.Map(0, analyzers, func(a *analyzer.Analyzer) (outcome, error) {
			before := dirty.Intersects(a.Dependent())
			produced, err := a.Run(ctx, e.store, dirty)
			return outcome{produced: produced, skipped: !before}, err
		})
		if err := workpool.FirstError(errs); err != nil {
			return fmt.Errorf("engine: generation %d: %w", generation, err)
		}

		next := store.NewDirtySet()
		for i, o := range results {
			e.tracer.AnalyzerRan(analyzers[i].Name, o.skipped, len(o.produced))
			next.Union(o.produced)
		}
		dirty = next
		generation++
	}
	return nil
}
