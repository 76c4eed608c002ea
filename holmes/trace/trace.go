// Package trace adapts the teacher's datalog/annotations package — a
// colorized, tabular event log of query-plan phases — into a fixpoint
// progress log: which generation is running, which analyzers ran versus
// were skipped by the relevance gate, and how much each one produced.
package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Tracer receives fixpoint-loop progress events. The engine calls these
// from its fixpoint loop without holding any engine lock; a slow
// implementation delays that loop.
type Tracer interface {
	Generation(n int, dirty []string)
	AnalyzerRan(name string, skipped bool, predicatesChanged int)
}

// Discard drops every event; it is the Engine's default tracer.
type Discard struct{}

func (Discard) Generation(int, []string)      {}
func (Discard) AnalyzerRan(string, bool, int) {}

// Console renders each event as a colorized line, grounded on the
// teacher's datalog/annotations/output.go OutputFormatter.
type Console struct {
	w        io.Writer
	useColor bool
}

// NewConsole builds a Console tracer writing to w (os.Stdout if nil),
// auto-detecting color support the way the teacher's OutputFormatter
// does.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f)
	}
	return &Console{w: w, useColor: useColor}
}

func (c *Console) colorize(s string, attr color.Attribute) string {
	if !c.useColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

func (c *Console) Generation(n int, dirty []string) {
	fmt.Fprintf(c.w, "%s generation %d: dirty=%v\n", c.colorize("===", color.FgYellow), n, dirty)
}

func (c *Console) AnalyzerRan(name string, skipped bool, predicatesChanged int) {
	if skipped {
		fmt.Fprintf(c.w, "  %s %s (relevance gate)\n", c.colorize("skip", color.FgHiBlack), name)
		return
	}
	mark := c.colorize("ran ", color.FgGreen)
	if predicatesChanged == 0 {
		fmt.Fprintf(c.w, "  %s %s (no new facts)\n", mark, name)
		return
	}
	fmt.Fprintf(c.w, "  %s %s (%d predicate(s) changed)\n", mark, name, predicatesChanged)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
