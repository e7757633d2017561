// Package optimizer rewrites a CallGraph into an equivalent, cheaper one:
// Fuse merges adjacent fusible nodes (e.g. two SQL queries joined by a
// shared path) into one, and PushDownRelations folds a relation directly
// into a fusible node's own filtering instead of leaving it for the
// result-set executor to apply row by row.
package optimizer

import (
	"fmt"
	"sort"

	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gclog"
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/relation"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// maxFusePasses bounds the fixed-point loop, mirroring the teacher's
// bounded-retry idiom: a real fixed point is expected well before this,
// so hitting it means two fusible rules keep re-matching without ever
// settling and the caller needs to know rather than spin forever.
const maxFusePasses = 100

// NativeFunction is implemented by any rule.Rule.Native value so the
// optimizer can rebuild the invocable Function after mutating the
// underlying native value.
type NativeFunction interface {
	Function() rule.Function
}

// Fusible is implemented by a rule's Native value when it can be merged
// with an adjacent fusible rule sharing an edge — e.g. sqlfn.SQLQuery,
// whose Merge combines two queries' tables, selects and WHERE clauses
// into one.
type Fusible interface {
	NativeFunction
	Merge(child Fusible) (Fusible, error)
}

// Constrainable is implemented by a rule's Native value when a relation
// on one of its outputs can be folded directly into the function itself
// (e.g. a SQL WHERE clause) rather than left for row-by-row filtering.
type Constrainable interface {
	NativeFunction
	// PushDown attempts to fold the relation (op, value) for the idx'th
	// output into the function, returning the updated value and whether
	// it accepted the relation.
	PushDown(idx int, op relation.Op, value interface{}) (Constrainable, bool)
}

// LoopError reports that Fuse did not reach a fixed point within the
// bounded pass count.
type LoopError struct {
	Passes int
	Graph  *callgraph.CallGraph
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("optimizer: did not converge after %d passes", e.Passes)
}

// Fuse repeatedly merges parent/child node pairs that share an edge and
// both carry a Fusible Native value, until no merge applies or the
// bounded pass count is exceeded. Grounded on
// optimize_reduce_like_parent_child.py: parent is an edge's setter (the
// node that produces the shared path), child is one of that edge's
// getters (a node that consumes the shared path as one of its own
// inputs); the merged node keeps the parent's inputs and concatenates
// both rules' outputs.
func Fuse(cg *callgraph.CallGraph, collector ...gclog.Collector) error {
	return FuseWithLimit(cg, maxFusePasses, collector...)
}

// FuseWithLimit is Fuse with the fixed-point bound overridden, for a
// caller (graphcore.Options.MaxOptimiserPasses) that wants a tighter or
// looser loop guard than the package default.
func FuseWithLimit(cg *callgraph.CallGraph, maxPasses int, collector ...gclog.Collector) error {
	c := gclog.Pick(collector...)
	for pass := 1; ; pass++ {
		if pass > maxPasses {
			return &LoopError{Passes: maxPasses, Graph: cg}
		}
		if !fusePass(cg, c) {
			return nil
		}
	}
}

func fusePass(cg *callgraph.CallGraph, collector gclog.Collector) bool {
	changed := false
	for _, path := range edgePaths(cg) {
		edge, ok := cg.Edges[path]
		if !ok {
			continue
		}
		parent := edge.Setter
		if parent == nil {
			continue
		}
		parentFusible, ok := parent.Rule.Native.(Fusible)
		if !ok {
			continue
		}

		children := make([]*callgraph.Node, 0, len(edge.Getters))
		for _, child := range edge.Getters {
			if _, ok := child.Rule.Native.(Fusible); ok {
				children = append(children, child)
			}
		}

		for _, child := range children {
			childFusible, ok := child.Rule.Native.(Fusible)
			if !ok {
				continue
			}
			merged, err := parentFusible.Merge(childFusible)
			if err != nil {
				continue
			}
			parentName, childName := parent.Name(), child.Name()
			parent = fuseNodes(cg, parent, child, merged)
			parentFusible = merged
			changed = true

			if collector != nil {
				collector.Collect(gclog.Event{
					Name: gclog.OptimizerFusionApplied,
					Data: map[string]interface{}{
						"path":   path,
						"parent": parentName,
						"child":  childName,
					},
				})
			}
		}
	}
	return changed
}

func fuseNodes(cg *callgraph.CallGraph, parent, child *callgraph.Node, merged Fusible) *callgraph.Node {
	incoming := append([]gcpath.Path{}, parent.IncomingPaths...)
	outgoing := append(append([]gcpath.Path{}, parent.OutgoingPaths...), child.OutgoingPaths...)
	relations := append(append([]relation.Relation{}, parent.Relations...), child.Relations...)

	// A merge always has >= 2 outputs (parent's plus child's), and a join
	// generally returns multiple rows, so the fused rule's cardinality is
	// Many regardless of either parent's own cardinality — spec §4.3.
	newRule := &rule.Rule{
		Inputs:      incoming,
		Outputs:     outgoing,
		Cardinality: rule.Many,
		Function:    merged.Function(),
		Native:      merged,
	}
	newRule.SetName(fmt.Sprintf("%s+%s", parent.Rule.Name(), child.Rule.Name()))

	cg.RemoveNode(parent)
	cg.RemoveNode(child)
	return cg.AddNode(incoming, outgoing, newRule, relations)
}

func edgePaths(cg *callgraph.CallGraph) []string {
	paths := make([]string, 0, len(cg.Edges))
	for p := range cg.Edges {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
