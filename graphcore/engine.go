// Package graphcore is the façade: given a rule.Registry describing how
// to produce values, Engine.Query answers a declarative path query by
// searching backwards for a call graph (search), optimising it
// (optimizer), scheduling it (planner), and executing the plan over a
// hierarchical result set (resultset) — exactly the four-stage pipeline
// spec.md describes, wired into one entry point.
package graphcore

import (
	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/gcquery"
	"github.com/wbrown/graphcore/graphcore/optimizer"
	"github.com/wbrown/graphcore/graphcore/planner"
	"github.com/wbrown/graphcore/graphcore/resultset"
	"github.com/wbrown/graphcore/graphcore/rule"
	"github.com/wbrown/graphcore/graphcore/search"
)

// Engine answers queries against a fixed rule.Registry.
type Engine struct {
	registry *rule.Registry
	opts     Options
}

// New builds an Engine over registry using opts.
func New(registry *rule.Registry, opts Options) *Engine {
	return &Engine{registry: registry, opts: opts.withDefaults()}
}

// Query runs q end to end and returns one map per surviving result
// record, each keyed by the dotted output paths the query requested
// (shaped to the query's own nesting — see resultset.ShapePath). limit,
// if non-nil, truncates the top-level record list.
func (e *Engine) Query(q map[string]interface{}, limit *int) ([]map[string]interface{}, error) {
	rs, cg, err := e.run(q)
	if err != nil {
		return nil, err
	}

	if limit != nil {
		rs.Limit(*limit)
	}

	outputs := cg.OutputPaths()
	shaped := make([]gcpath.Path, len(outputs))
	for i, p := range outputs {
		shaped[i] = e.shapedPath(p, rs.QueryShape)
	}
	return rs.ExtractJSON(shaped), nil
}

// Explain runs search and optimisation over q (without executing the
// plan) and renders the resulting call graph as a table, for debugging
// "why did this query do that" questions.
func (e *Engine) Explain(q map[string]interface{}) (string, error) {
	parsed, err := gcquery.New(q)
	if err != nil {
		return "", wrapQueryError(err)
	}

	cg, err := search.Search(parsed, e.registry, e.opts.Collector)
	if err != nil {
		return "", wrapSearchError(err, e.registry)
	}
	if err := optimizer.FuseWithLimit(cg, e.opts.MaxOptimiserPasses, e.opts.Collector); err != nil {
		return "", wrapOptimiserError(err)
	}
	optimizer.PushDownRelations(cg, e.opts.Collector)

	return cg.Explain(), nil
}

// run performs search, optimisation, planning, and plan execution,
// returning the final result set and the call graph it was planned
// from (callers need the graph's OutputPaths to know what to extract).
func (e *Engine) run(q map[string]interface{}) (*resultset.ResultSet, *callgraph.CallGraph, error) {
	parsed, err := gcquery.New(q)
	if err != nil {
		return nil, nil, wrapQueryError(err)
	}

	cg, err := search.Search(parsed, e.registry, e.opts.Collector)
	if err != nil {
		return nil, nil, wrapSearchError(err, e.registry)
	}

	if err := optimizer.FuseWithLimit(cg, e.opts.MaxOptimiserPasses, e.opts.Collector); err != nil {
		return nil, nil, wrapOptimiserError(err)
	}
	optimizer.PushDownRelations(cg, e.opts.Collector)

	order, err := planner.Plan(cg, e.opts.Collector)
	if err != nil {
		return nil, nil, wrapPlannerError(err)
	}

	rs := e.seedResultSet(parsed)

	for _, node := range order {
		rs, err = e.applyNode(rs, node)
		if err != nil {
			return nil, nil, wrapApplyError(err)
		}
	}

	return rs, cg, nil
}

// applyNode shapes a planned node's incoming/outgoing paths to the
// result set's nesting, applies its rule, and folds in any relation
// that survived optimisation unfused (component 4.5, steps 1-3).
func (e *Engine) applyNode(rs *resultset.ResultSet, node *callgraph.Node) (*resultset.ResultSet, error) {
	shapedIn := make([]gcpath.Path, len(node.IncomingPaths))
	for i, p := range node.IncomingPaths {
		shapedIn[i] = e.shapedPath(p, rs.QueryShape)
	}
	shapedOut := make([]gcpath.Path, len(node.OutgoingPaths))
	for i, p := range node.OutgoingPaths {
		shapedOut[i] = e.shapedPath(p, rs.QueryShape)
	}

	updated, err := rs.WithMapper(e.opts.Mapper).ApplyRule(node.Rule.Function, shapedIn, shapedOut, node.Rule.Cardinality)
	if err != nil {
		return nil, err
	}

	for i, rel := range node.Relations {
		if rel.IsZero() {
			continue
		}
		updated.Filter(shapedOut[i], rel)
	}

	return updated, nil
}

// shapedPath reconstructs path as the gcpath.Path a ResultSet's nested
// structure actually expects: one "segment" per real nesting hop
// (resultset.ShapePath), rather than one per dot. A boundary spanning
// several dotted components (e.g. "user.books", declared together by a
// one-element-list sub-query) collapses to a single hop here; a plain
// dotted path absent from the shape stays whole.
func (e *Engine) shapedPath(path gcpath.Path, shape interface{}) gcpath.Path {
	frags := resultset.ShapePath(path, shape)
	parts := make([]string, len(frags))
	for i, f := range frags {
		parts[i] = f.String()
	}
	return gcpath.FromParts(parts)
}

// seedResultSet builds the root result set from q's ground clauses,
// shaped to q's own nesting, and tags it with q.Shape so every later
// ShapePath call and ExtractJSON use the same skeleton.
func (e *Engine) seedResultSet(q *gcquery.Query) *resultset.ResultSet {
	root := resultset.NewResult()
	rs := resultset.NewResultSet([]*resultset.Result{root}).WithMapper(e.opts.Mapper)
	rs.QueryShape = q.Shape

	for _, c := range q.Clauses {
		if c.Kind != gcquery.Ground {
			continue
		}
		shaped := e.shapedPath(c.LHS, q.Shape)
		setGround(root, shaped.Parts(), c.Value)
	}
	return rs
}

// setGround writes value at the nesting path named by parts, creating a
// single-row nested ResultSet at each intermediate part that doesn't
// already exist — the same one-row-default shape ApplyRule's own
// descent uses when it first reaches an unpopulated sub-path.
func setGround(r *resultset.Result, parts []string, value interface{}) {
	if len(parts) <= 1 {
		if len(parts) == 1 {
			r.Set(parts[0], value)
		}
		return
	}

	head := parts[0]
	var sub *resultset.ResultSet
	if existing, ok := r.Get(head); ok {
		if existingSet, ok := existing.(*resultset.ResultSet); ok {
			sub = existingSet
		}
	}
	if sub == nil {
		sub = resultset.NewResultSet([]*resultset.Result{resultset.NewResult()})
		r.Set(head, sub)
	}
	for _, row := range sub.Results {
		setGround(row, parts[1:], value)
	}
}
