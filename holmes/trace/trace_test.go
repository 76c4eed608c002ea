package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestDiscardIsANoOp(t *testing.T) {
	var tr Tracer = Discard{}
	tr.Generation(0, []string{"p"})
	tr.AnalyzerRan("a", false, 3)
	// No panic, nothing to assert — Discard's entire contract is silence.
}

func TestConsoleGenerationReportsDirtyNames(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Generation(2, []string{"parent", "ancestor"})

	out := buf.String()
	if !strings.Contains(out, "generation 2") {
		t.Errorf("expected generation number in output, got %q", out)
	}
	if !strings.Contains(out, "parent") || !strings.Contains(out, "ancestor") {
		t.Errorf("expected dirty predicate names in output, got %q", out)
	}
}

func TestConsoleAnalyzerRanVariants(t *testing.T) {
	cases := []struct {
		name              string
		skipped           bool
		predicatesChanged int
		want              string
	}{
		{"a", true, 0, "relevance gate"},
		{"b", false, 0, "no new facts"},
		{"c", false, 3, "3 predicate(s) changed"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		c := NewConsole(&buf)
		c.AnalyzerRan(tc.name, tc.skipped, tc.predicatesChanged)
		if !strings.Contains(buf.String(), tc.want) {
			t.Errorf("AnalyzerRan(%q, %v, %d) = %q, want substring %q", tc.name, tc.skipped, tc.predicatesChanged, buf.String(), tc.want)
		}
	}
}

func TestConsoleDoesNotColorizeNonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	if c.useColor {
		t.Error("a bytes.Buffer is not a terminal; useColor must be false")
	}
}
