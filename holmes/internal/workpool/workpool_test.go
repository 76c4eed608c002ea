package workpool

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestMapOrderPreserving(t *testing.T) {
	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}

	results, errs := Map(4, inputs, func(n int) (int, error) {
		return n * 2, nil
	})

	if FirstError(errs) != nil {
		t.Fatalf("unexpected error: %v", FirstError(errs))
	}
	if len(results) != 100 {
		t.Fatalf("expected 100 results, got %d", len(results))
	}
	for i, r := range results {
		if r != i*2 {
			t.Errorf("result %d: got %d, want %d", i, r, i*2)
		}
	}
}

func TestMapCollectsAllErrorsRatherThanFailingFast(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5}

	results, errs := Map(4, inputs, func(n int) (int, error) {
		if n%2 == 0 {
			return 0, fmt.Errorf("even: %d", n)
		}
		return n, nil
	})

	if len(results) != 5 || len(errs) != 5 {
		t.Fatalf("expected 5 results and 5 errors slots, got %d/%d", len(results), len(errs))
	}
	if errs[1] == nil || errs[3] == nil {
		t.Error("expected errors at the even indices")
	}
	if errs[0] != nil || errs[2] != nil || errs[4] != nil {
		t.Error("expected no errors at the odd indices")
	}
	if results[0] != 1 || results[2] != 3 || results[4] != 5 {
		t.Error("successful results must still be populated alongside failures")
	}
}

func TestFirstErrorReturnsEarliestNonNil(t *testing.T) {
	errs := []error{nil, nil, fmt.Errorf("first"), fmt.Errorf("second")}
	got := FirstError(errs)
	if got == nil || got.Error() != "first" {
		t.Errorf("FirstError = %v, want \"first\"", got)
	}
	if FirstError(nil) != nil {
		t.Error("FirstError of an empty slice should be nil")
	}
}

func TestMapEmptyInput(t *testing.T) {
	results, errs := Map(4, []int{}, func(n int) (int, error) { return n, nil })
	if results != nil || errs != nil {
		t.Errorf("expected nil/nil for empty input, got %v/%v", results, errs)
	}
}

func TestMapZeroWorkersUsesDefault(t *testing.T) {
	var maxConcurrent, current int32
	inputs := make([]int, 20)

	Map(0, inputs, func(n int) (int, error) {
		c := atomic.AddInt32(&current, 1)
		for {
			m := atomic.LoadInt32(&maxConcurrent)
			if c <= m || atomic.CompareAndSwapInt32(&maxConcurrent, m, c) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return n, nil
	})

	if atomic.LoadInt32(&maxConcurrent) < 2 {
		t.Error("expected some concurrent execution with the default worker count")
	}
}
