// Package search implements backward chaining: turning a declarative
// Query into a CallGraph by repeatedly looking up a rule for the next
// unbound clause, wiring its inputs as new temp clauses, and recursing
// until every requested output is grounded.
package search

import (
	"fmt"

	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gclog"
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/gcquery"
	"github.com/wbrown/graphcore/graphcore/relation"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// Error wraps a rule lookup failure with the partial call graph and the
// nodes that were depending on the path that could not be resolved, for
// diagnostics. Cause is either rule.ErrPathNotFound or a
// *rule.BaseTypeNotFoundError; callers use errors.As to tell them apart.
type Error struct {
	Path           gcpath.Path
	Cause          error
	DependentNodes []*callgraph.Node
	Graph          *callgraph.CallGraph
}

func (e *Error) Error() string {
	return fmt.Sprintf("search: %s: %v", e.Path, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Search performs backward chaining over q against registry, returning
// the resulting call graph. collector, if non-nil, receives one event
// per clause grounded and one on failure (see gclog).
func Search(q *gcquery.Query, registry *rule.Registry, collector ...gclog.Collector) (*callgraph.CallGraph, error) {
	c := gclog.Pick(collector...)
	cg := callgraph.New()
	grounded := make(map[string]bool)
	visited := make(map[string]bool)

	for {
		progressed, err := groundNextClause(cg, q, registry, grounded, visited, c)
		if err != nil {
			if c != nil {
				c.Collect(gclog.Event{Name: gclog.SearchFailed, Data: map[string]interface{}{"error": err.Error()}})
			}
			return nil, err
		}
		if progressed {
			continue
		}

		if !convertUnusedClauses(q, grounded, visited) {
			break
		}
	}

	return cg, nil
}

// groundNextClause scans the query for the first clause whose RHS is not
// Ground and whose path is not yet grounded, applies a rule backwards for
// it, and reports whether it found one to process.
func groundNextClause(cg *callgraph.CallGraph, q *gcquery.Query, registry *rule.Registry, grounded, visited map[string]bool, collector gclog.Collector) (bool, error) {
	for i := range q.Clauses {
		c := q.Clauses[i]
		if c.Kind == gcquery.Ground {
			continue
		}
		if grounded[c.LHS.String()] {
			continue
		}

		if err := applyRuleBackwards(cg, q, registry, c, grounded, visited, collector); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func applyRuleBackwards(cg *callgraph.CallGraph, q *gcquery.Query, registry *rule.Registry, outputClause gcquery.Clause, grounded, visited map[string]bool, collector gclog.Collector) error {
	prefix, rl, err := registry.Lookup(outputClause.LHS)
	if err != nil {
		return &Error{
			Path:           outputClause.LHS,
			Cause:          err,
			DependentNodes: cg.NodesDependingOnPath(outputClause.LHS),
			Graph:          cg,
		}
	}

	incoming := make([]gcpath.Path, len(rl.Inputs))
	for i, in := range rl.Inputs {
		// A rule's declared input path only has a leading placeholder
		// segment to strip when it is being grafted under a real prefix
		// (the nested case: the placeholder stands for whatever type
		// lives at that prefix). At the root, prefix is empty and the
		// rule's own output already equals the absolute path verbatim,
		// so its inputs are already absolute too.
		absolute := in
		if prefix.Len() > 0 {
			absolute = prefix.Concat(in.Tail())
		}
		incoming[i] = absolute

		if err := q.Append(gcquery.Clause{LHS: absolute, Kind: gcquery.TempMarker}); err != nil {
			return err
		}
		visited[absolute.String()] = true
	}

	relations := []relation.Relation{outputClause.Relation}
	cg.AddNode(incoming, []gcpath.Path{outputClause.LHS}, rl, relations)

	if outputClause.Kind == gcquery.OutMarker {
		cg.MarkOutput(outputClause.LHS)
	}
	grounded[outputClause.LHS.String()] = true

	if collector != nil {
		collector.Collect(gclog.Event{
			Name: gclog.SearchClauseGrounded,
			Data: map[string]interface{}{
				"path": outputClause.LHS.String(),
				"rule": rl.Name(),
			},
		})
	}
	return nil
}

// convertUnusedClauses finds ground clauses that no rule consumed as an
// input and that were not themselves grounded by a rule (typically a
// stray ground fact like "user.age: 30" on a path nothing else
// references), and rewrites each into an equality constraint so the next
// pass of groundNextClause can attempt to ground it as a filter. Reports
// whether it converted anything.
func convertUnusedClauses(q *gcquery.Query, grounded, visited map[string]bool) bool {
	converted := false
	for i := range q.Clauses {
		c := &q.Clauses[i]
		if c.Kind != gcquery.Ground {
			continue
		}
		key := c.LHS.String()
		if grounded[key] || visited[key] {
			continue
		}
		c.ConvertToConstraint()
		converted = true
	}
	return converted
}
