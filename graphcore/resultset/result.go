// Package resultset holds the tree-shaped state a query executes over:
// Result is one row, keyed by path segment, whose values are either
// scalars or nested *ResultSet values for one-to-many relationships;
// ResultSet is an ordered list of Results plus the query shape used to
// split a dotted path at the right nesting boundary. ApplyRule walks a
// planned call graph's rules down through this tree, exploding rows on
// Cardinality.Many outputs and filtering them out entirely when a rule
// reports ErrNoResult.
//
// Grounded on result_set.py's Result/ResultSet/apply_rule, not
// query_plan.py's flat QueryPlan.forward() — see DESIGN.md for why the
// two diverge in the retrieved source and which one this package
// follows.
package resultset

import (
	"github.com/wbrown/graphcore/graphcore/gcpath"
)

// Result is one row of a result tree.
type Result struct {
	values map[string]interface{}
}

// NewResult builds an empty row.
func NewResult() *Result {
	return &Result{values: map[string]interface{}{}}
}

// ResultFromJSON seeds a row from a plain map, e.g. the ground clauses a
// query starts with.
func ResultFromJSON(m map[string]interface{}) *Result {
	r := NewResult()
	for k, v := range m {
		r.values[k] = v
	}
	return r
}

// Get returns the value stored at the single segment key, which is
// either a scalar or a *ResultSet.
func (r *Result) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set stores a value at the single segment key.
func (r *Result) Set(key string, v interface{}) {
	r.values[key] = v
}

// DeepCopy copies this row and recursively copies any nested ResultSet
// values, so exploding a Cardinality.Many output never lets two rows
// share a mutable sub-result.
func (r *Result) DeepCopy() *Result {
	cp := NewResult()
	for k, v := range r.values {
		if rs, ok := v.(*ResultSet); ok {
			v = rs.DeepCopy()
		}
		cp.values[k] = v
	}
	return cp
}

// ToJSON renders this row as a plain nested map, recursively expanding
// any nested ResultSet values.
func (r *Result) ToJSON() map[string]interface{} {
	out := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		if rs, ok := v.(*ResultSet); ok {
			out[k] = rs.ToJSON()
		} else {
			out[k] = v
		}
	}
	return out
}

// ExtractJSON renders only the given paths, which must already be
// shaped to this row's nesting (see ShapePath). Paths sharing
// a first segment descend into the same nested ResultSet together.
func (r *Result) ExtractJSON(paths []gcpath.Path) map[string]interface{} {
	var order []string
	groups := map[string][]gcpath.Path{}
	for _, p := range paths {
		head := p.At(0)
		if _, ok := groups[head]; !ok {
			order = append(order, head)
		}
		groups[head] = append(groups[head], p.Tail())
	}

	out := make(map[string]interface{}, len(order))
	for _, head := range order {
		v, _ := r.Get(head)
		if rs, ok := v.(*ResultSet); ok {
			out[head] = rs.ExtractJSON(groups[head])
		} else {
			out[head] = v
		}
	}
	return out
}
