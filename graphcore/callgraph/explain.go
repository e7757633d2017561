package callgraph

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/relation"
)

// Explain renders the graph as a markdown table, one row per node:
// outputs, the rule invoked, its inputs, cardinality, and any surviving
// relations — the parts of an "outgoings = fn(incomings) [many] [rel]"
// line, laid out as table columns.
func (g *CallGraph) Explain() string {
	if len(g.Nodes) == 0 {
		return "_empty call graph_"
	}

	sb := &strings.Builder{}
	alignment := []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft}
	table := tablewriter.NewTable(sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"outputs", "rule", "inputs", "cardinality", "relations"})

	for _, n := range g.Nodes {
		table.Append([]string{
			joinPaths(n.OutgoingPaths),
			n.Name(),
			joinPaths(n.IncomingPaths),
			n.Rule.Cardinality.String(),
			joinRelations(n.Relations),
		})
	}
	table.Render()
	return sb.String()
}

func joinPaths(paths []gcpath.Path) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func joinRelations(rels []relation.Relation) string {
	var parts []string
	for _, r := range rels {
		if r.IsZero() {
			continue
		}
		parts = append(parts, r.String())
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
