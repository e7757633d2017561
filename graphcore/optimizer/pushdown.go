package optimizer

import (
	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gclog"
	"github.com/wbrown/graphcore/graphcore/relation"
)

// PushDownRelations moves relations on Constrainable nodes out of the
// call graph and into the function's own filtering, e.g. a SQLQuery's
// WHERE clause. Grounded on optimize_constrain_sql_queries.py: only a
// single (op, value) pair per output can be pushed down — a relation
// carrying more than one conjoined comparison (see relation.Relation.
// Single) is left on the node for the result-set executor to apply
// after all.
func PushDownRelations(cg *callgraph.CallGraph, collector ...gclog.Collector) {
	c := gclog.Pick(collector...)
	for _, n := range cg.Nodes {
		native, ok := n.Rule.Native.(Constrainable)
		if !ok {
			continue
		}

		changed := false
		for idx := range n.Relations {
			rel := n.Relations[idx]
			if rel.IsZero() {
				continue
			}
			op, value, ok := rel.Single()
			if !ok {
				continue
			}

			updated, accepted := native.PushDown(idx, op, value)
			if !accepted {
				continue
			}
			native = updated
			n.Relations[idx] = relation.Relation{}
			changed = true

			if c != nil {
				c.Collect(gclog.Event{
					Name: gclog.OptimizerPushDownApplied,
					Data: map[string]interface{}{
						"node": n.Name(),
						"idx":  idx,
						"op":   string(op),
					},
				})
			}
		}

		if changed {
			n.Rule.Native = native
			n.Rule.Function = native.Function()
		}
	}
}
