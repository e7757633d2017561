// Package planner converts an optimized CallGraph into a sequential
// execution order: every node's dependencies come before it, and among
// several nodes that become ready at once, a relation-carrying node is
// scheduled ahead of a plain one so its filter can prune the result set
// before later, more expensive computation runs.
package planner

import (
	"fmt"

	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gclog"
	"github.com/wbrown/graphcore/graphcore/optimizer"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// CycleError reports that a pass over the remaining nodes found none
// ready to schedule — either a cycle in the call graph, or a node whose
// input is never produced by anything and was never caught earlier.
type CycleError struct {
	Remaining []*callgraph.Node
	Graph     *callgraph.CallGraph
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("planner: %d node(s) never became ready", len(e.Remaining))
}

// UnsupportedNodeError reports a node whose rule combines Cardinality
// Many with more than one output without those outputs being aligned
// columns of one row set — rejected at plan time rather than producing
// an ill-defined explosion at execution time, matching result_set.py's
// own refusal of the same combination. A node produced by optimizer
// fusion (Native implements optimizer.Fusible) is exempt: its outputs
// are columns of the same join row, not independently-generated
// sequences, so result_set.py:_apply_rule's many-tuple handling (and
// resultset's manyTuples) explodes it unambiguously.
type UnsupportedNodeError struct {
	Node *callgraph.Node
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("planner: node %q combines many-cardinality with multiple outputs, which is unsupported", e.Node.Name())
}

// Plan returns cg's nodes in a valid execution order. Grounded on
// query_planner.py's CallGraphIterator: a node is ready once every
// setter of one of its incoming paths has already been planned (or it
// has none — a caller-supplied ground value). Within a single pass over
// the still-unplanned nodes, every newly-ready node carrying a relation
// is scheduled immediately — grounding it can itself make a later node
// in the same pass ready — while at most one ready node with no relation
// at all is taken, deferring the rest to the next pass so a relation
// elsewhere gets first crack at shrinking the result set.
func Plan(cg *callgraph.CallGraph, collector ...gclog.Collector) ([]*callgraph.Node, error) {
	c := gclog.Pick(collector...)
	for _, n := range cg.Nodes {
		if n.Rule.Cardinality != rule.Many || len(n.Rule.Outputs) <= 1 {
			continue
		}
		if _, fused := n.Rule.Native.(optimizer.Fusible); fused {
			continue
		}
		return nil, &UnsupportedNodeError{Node: n}
	}

	remaining := append([]*callgraph.Node{}, cg.Nodes...)
	grounded := make(map[*callgraph.Node]bool, len(remaining))
	order := make([]*callgraph.Node, 0, len(remaining))

	for len(remaining) > 0 {
		snapshot := append([]*callgraph.Node{}, remaining...)
		var candidate *callgraph.Node
		scheduled := make(map[*callgraph.Node]bool)

		for _, n := range snapshot {
			if !isGrounded(cg, grounded, n) {
				continue
			}
			if hasRelation(n) {
				order = append(order, n)
				grounded[n] = true
				scheduled[n] = true
				if c != nil {
					c.Collect(gclog.Event{
						Name: gclog.PlannerNodeScheduled,
						Data: map[string]interface{}{"node": n.Name(), "relation": true},
					})
				}
				continue
			}
			if candidate == nil {
				candidate = n
			}
		}

		if candidate != nil {
			order = append(order, candidate)
			grounded[candidate] = true
			scheduled[candidate] = true
			if c != nil {
				c.Collect(gclog.Event{
					Name: gclog.PlannerNodeScheduled,
					Data: map[string]interface{}{"node": candidate.Name(), "relation": false},
				})
			}
		}

		if len(scheduled) == 0 {
			return nil, &CycleError{Remaining: remaining, Graph: cg}
		}

		remaining = removeScheduled(remaining, scheduled)
	}

	return order, nil
}

func isGrounded(cg *callgraph.CallGraph, grounded map[*callgraph.Node]bool, n *callgraph.Node) bool {
	if grounded[n] {
		return true
	}
	deps := incomingNodes(cg, n)
	if len(deps) == 0 {
		return true
	}
	for _, d := range deps {
		if !grounded[d] {
			return false
		}
	}
	return true
}

func incomingNodes(cg *callgraph.CallGraph, n *callgraph.Node) []*callgraph.Node {
	var deps []*callgraph.Node
	for _, p := range n.IncomingPaths {
		edge, ok := cg.Edges[p.String()]
		if !ok || edge.Setter == nil {
			continue
		}
		deps = append(deps, edge.Setter)
	}
	return deps
}

func hasRelation(n *callgraph.Node) bool {
	for _, r := range n.Relations {
		if !r.IsZero() {
			return true
		}
	}
	return false
}

func removeScheduled(nodes []*callgraph.Node, scheduled map[*callgraph.Node]bool) []*callgraph.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if !scheduled[n] {
			out = append(out, n)
		}
	}
	return out
}
