package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/maurer/holmes/holmes"
)

// formatContexts renders derive results as a markdown table, the same
// shape the teacher's TableFormatter produces for a query Relation.
func formatContexts(w io.Writer, vars []string, ctxs []holmes.Context) {
	if len(ctxs) == 0 {
		fmt.Fprintf(w, "_no results_\n")
		return
	}

	alignment := make([]tw.Align, len(vars))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(vars)
	for _, c := range ctxs {
		row := make([]string, len(vars))
		for i := range vars {
			row[i] = formatValue(c.Get(holmes.VarID(i)))
		}
		table.Append(row)
	}
	table.Render()
	fmt.Fprintf(w, "\n%d row(s)\n", len(ctxs))
}

func formatValue(v holmes.Value) string {
	switch v.Tag() {
	case holmes.TagString:
		return v.String()
	case holmes.TagAddr:
		return fmt.Sprintf("#%d", v.Addr())
	case holmes.TagBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.Blob()))
	case holmes.TagJSON:
		return v.JSON()
	case holmes.TagList:
		elems := v.List()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
