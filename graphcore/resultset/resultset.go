package resultset

import (
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/relation"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// ResultSet holds the state of a query as it executes: an ordered list
// of Results, tagged with the query's shape so a dotted path can later
// be split at the same nesting boundaries the data itself has.
type ResultSet struct {
	Results []*Result
	// QueryShape mirrors result_set.py's query_shape: a nested structure
	// of map[string]interface{} (a nesting boundary) and single-element
	// []interface{} (marking the wrapped value as itself a ResultSet),
	// built from gcquery.Query.Shape. nil is treated as an empty map.
	QueryShape interface{}

	mapper Mapper
}

// NewResultSet builds a ResultSet over the given rows using SyncMapper.
// Use WithMapper to install a parallel one.
func NewResultSet(results []*Result) *ResultSet {
	return &ResultSet{Results: results, mapper: SyncMapper}
}

// WithMapper returns rs with its row-fan-out mapper replaced; used by
// graphcore.Options to install a WorkerPoolMapper.
func (rs *ResultSet) WithMapper(m Mapper) *ResultSet {
	rs.mapper = m
	return rs
}

func (rs *ResultSet) mapperOrDefault() Mapper {
	if rs.mapper != nil {
		return rs.mapper
	}
	return SyncMapper
}

// ToJSON renders every row as a plain nested map.
func (rs *ResultSet) ToJSON() []map[string]interface{} {
	out := make([]map[string]interface{}, len(rs.Results))
	for i, r := range rs.Results {
		out[i] = r.ToJSON()
	}
	return out
}

// ExtractJSON renders only the given already-shaped paths for every row.
func (rs *ResultSet) ExtractJSON(paths []gcpath.Path) []map[string]interface{} {
	out := make([]map[string]interface{}, len(rs.Results))
	for i, r := range rs.Results {
		out[i] = r.ExtractJSON(paths)
	}
	return out
}

// ShapePaths shapes every path in paths against rs.QueryShape.
func (rs *ResultSet) ShapePaths(paths []gcpath.Path) [][]gcpath.Path {
	out := make([][]gcpath.Path, len(paths))
	for i, p := range paths {
		out[i] = ShapePath(p, rs.QueryShape)
	}
	return out
}

// Filter keeps only the rows for which relation holds against the value
// at path, recursing into a nested ResultSet when path spans more than
// one segment. path should already be shaped (see ShapePath) when it
// may cross a nesting boundary.
func (rs *ResultSet) Filter(path gcpath.Path, rel relation.Relation) {
	if path.Len() <= 1 {
		kept := rs.Results[:0]
		for _, r := range rs.Results {
			v, _ := r.Get(path.At(0))
			if rel.Call(v) {
				kept = append(kept, r)
			}
		}
		rs.Results = kept
		return
	}

	for _, r := range rs.Results {
		v, ok := r.Get(path.At(0))
		if !ok {
			continue
		}
		if sub, ok := v.(*ResultSet); ok {
			sub.Filter(path.Tail(), rel)
		}
	}
}

// Limit truncates rs to at most n rows. It does not limit nested
// sub-results, matching result_set.py's own naive limit.
func (rs *ResultSet) Limit(n int) {
	if n < len(rs.Results) {
		rs.Results = rs.Results[:n]
	}
}

// DeepCopy copies rs and every row recursively.
func (rs *ResultSet) DeepCopy() *ResultSet {
	cp := make([]*Result, len(rs.Results))
	for i, r := range rs.Results {
		cp[i] = r.DeepCopy()
	}
	return &ResultSet{Results: cp, QueryShape: rs.QueryShape, mapper: rs.mapper}
}

// ApplyRule invokes fn over every surviving row for which inputs are
// bound, producing outputs per cardinality. Grounded on
// result_set.py's ResultSet.apply_rule: when outputs live more than one
// segment deep, every row recurses into its own nested ResultSet
// sequentially (the fan-out mapper is only used at the level that
// actually invokes fn); when they're at this level, rows are fanned out
// through rs's installed Mapper, which may run them concurrently.
func (rs *ResultSet) ApplyRule(fn rule.Function, inputs, outputs []gcpath.Path, cardinality rule.Cardinality) (*ResultSet, error) {
	bound := make([]boundInput, len(inputs))
	for i, in := range inputs {
		bound[i] = boundInput{full: in, remaining: in}
	}
	return rs.applyRule(fn, bound, outputs, cardinality, map[string]interface{}{})
}

func (rs *ResultSet) applyRule(fn rule.Function, inputs []boundInput, outputs []gcpath.Path, cardinality rule.Cardinality, baseScope map[string]interface{}) (*ResultSet, error) {
	mapper := rs.mapperOrDefault()
	if outputs[0].Len() != 1 {
		// Recursing deeper into nested ResultSets isn't the work the
		// injected Mapper exists to parallelise; only the level that
		// actually calls fn fans out through it.
		mapper = SyncMapper
	}

	wrapped := func(r *Result) (Group, error) {
		scope := copyScope(baseScope)
		sub, err := r.applyRule(fn, inputs, outputs, cardinality, scope)
		if err != nil {
			return nil, err
		}
		return sub.Results, nil
	}

	groups, err := mapper(wrapped, rs.Results)
	if err != nil {
		return nil, err
	}

	var merged []*Result
	for _, g := range groups {
		merged = append(merged, g...)
	}
	return &ResultSet{Results: merged, QueryShape: rs.QueryShape, mapper: rs.mapper}, nil
}

func copyScope(scope map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(scope))
	for k, v := range scope {
		cp[k] = v
	}
	return cp
}
