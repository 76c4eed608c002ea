package analyzer

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/store"
)

func seedParent(t *testing.T, s store.Store) {
	t.Helper()
	require.True(t, s.AddType("parent", []holmes.HType{holmes.StringType(), holmes.StringType()}))
	require.True(t, s.AddType("grandparent", []holmes.HType{holmes.StringType(), holmes.StringType()}))
}

func TestRunSkipsWhenIrrelevant(t *testing.T) {
	s := store.NewMem()
	seedParent(t, s)

	var calls int32
	a := New("gp", []holmes.FactTemplate{
		holmes.NewTemplate("parent", holmes.Bound(0), holmes.Bound(1)),
	}, AnalysisFunc(func(ctx context.Context, b holmes.Context) ([]holmes.Fact, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}))

	dirty := store.NewDirtySet()
	dirty.Add("unrelated")
	produced, err := a.Run(context.Background(), s, dirty)
	require.NoError(t, err)
	assert.Empty(t, produced)
	assert.Zero(t, calls, "relevance gate should skip dispatch entirely")
}

func TestRunDispatchesOncePerFreshBinding(t *testing.T) {
	s := store.NewMem()
	seedParent(t, s)
	s.SetFacts([]holmes.Fact{
		holmes.NewFact("parent", holmes.NewString("alice"), holmes.NewString("bob")),
		holmes.NewFact("parent", holmes.NewString("bob"), holmes.NewString("carol")),
	})

	var calls int32
	a := New("gp", []holmes.FactTemplate{
		holmes.NewTemplate("parent", holmes.Bound(0), holmes.Bound(1)),
	}, AnalysisFunc(func(ctx context.Context, b holmes.Context) ([]holmes.Fact, error) {
		atomic.AddInt32(&calls, 1)
		return []holmes.Fact{
			holmes.NewFact("grandparent", b.Get(0), b.Get(1)),
		}, nil
	}))

	dirty := store.NewDirtySet()
	dirty.Add("parent")
	produced, err := a.Run(context.Background(), s, dirty)
	require.NoError(t, err)
	assert.True(t, produced["grandparent"])
	assert.EqualValues(t, 2, calls)

	// Running again with the same dirty-set must not re-dispatch bindings
	// already seen — the at-most-once-dispatch guarantee.
	produced2, err := a.Run(context.Background(), s, dirty)
	require.NoError(t, err)
	assert.Empty(t, produced2)
	assert.EqualValues(t, 2, calls, "seen bindings must not be re-dispatched")
}

func TestRunPropagatesRemoteAnalyzeError(t *testing.T) {
	s := store.NewMem()
	seedParent(t, s)
	s.SetFacts([]holmes.Fact{
		holmes.NewFact("parent", holmes.NewString("alice"), holmes.NewString("bob")),
	})

	a := New("gp", []holmes.FactTemplate{
		holmes.NewTemplate("parent", holmes.Bound(0), holmes.Bound(1)),
	}, AnalysisFunc(func(ctx context.Context, b holmes.Context) ([]holmes.Fact, error) {
		return nil, assertError{}
	}))

	_, err := a.Run(context.Background(), s, store.NewDirtySet())
	assert.Error(t, err)
}

type assertError struct{}

func (assertError) Error() string { return "simulated analyze failure" }

func TestRunUnconditionalOnEmptyDirtySet(t *testing.T) {
	s := store.NewMem()
	seedParent(t, s)
	s.SetFacts([]holmes.Fact{
		holmes.NewFact("parent", holmes.NewString("alice"), holmes.NewString("bob")),
	})

	a := New("gp", []holmes.FactTemplate{
		holmes.NewTemplate("parent", holmes.Bound(0), holmes.Bound(1)),
	}, AnalysisFunc(func(ctx context.Context, b holmes.Context) ([]holmes.Fact, error) {
		return []holmes.Fact{holmes.NewFact("grandparent", b.Get(0), b.Get(1))}, nil
	}))

	// Empty dirty-set means "run unconditionally" (the catch-up pass).
	produced, err := a.Run(context.Background(), s, store.NewDirtySet())
	require.NoError(t, err)
	assert.True(t, produced["grandparent"])
}
