package analyzer

import (
	"sync"

	"github.com/maurer/holmes/holmes"
)

// seenCache is the per-analyzer seen-binding cache (spec §3, §4.2):
// a set of Contexts already dispatched to analyze, keyed under the Value
// total order. Grounded on the teacher's sync.Map-based interning in
// datalog/intern.go, adapted from "intern a value once" to "record a
// Context as seen at most once."
type seenCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newSeenCache() *seenCache {
	return &seenCache{seen: make(map[string]bool)}
}

// markIfNew reports whether ctx had not previously been marked, and marks
// it as seen in the same step — the mark is optimistic (spec §4.2 step 4:
// "Immediately mark the Context as seen, optimistically, so a concurrent
// overlapping run will not re-dispatch it").
func (c *seenCache) markIfNew(ctx holmes.Context) bool {
	key := holmes.ContextKey(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[key] {
		return false
	}
	c.seen[key] = true
	return true
}
