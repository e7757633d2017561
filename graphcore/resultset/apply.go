package resultset

import (
	"errors"
	"fmt"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// ErrNoResult is returned by a rule.Function to signal that this row has
// no value for its outputs given the current inputs; the row is dropped
// from the ResultSet as if a filter had rejected it. Grounded on
// result_set.py's NoResult exception.
var ErrNoResult = errors.New("resultset: rule produced no result for this row")

// RuleApplicationError wraps any other error a rule.Function returns,
// carrying the short-named scope it was invoked with for diagnostics.
// Grounded on result_set.py's RuleApplicationException.
type RuleApplicationError struct {
	Scope rule.Args
	Err   error
}

func (e *RuleApplicationError) Error() string {
	return fmt.Sprintf("resultset: rule application failed with scope %v: %v", e.Scope, e.Err)
}

func (e *RuleApplicationError) Unwrap() error {
	return e.Err
}

// boundInput pairs an input path's original, never-stripped form (used
// as the scope key once a value is collected) with the suffix still to
// be consumed as ApplyRule recurses one segment per nesting level.
// Keeping both around — rather than collapsing to the bare final
// segment as result_set.py's apply_rule does — is what lets
// inputMapping actually disambiguate same-named inputs arriving from
// different branches; see DESIGN.md.
type boundInput struct {
	full      gcpath.Path
	remaining gcpath.Path
}

// ApplyRule is the entry point for invoking fn against this single row.
func (r *Result) ApplyRule(fn rule.Function, inputs, outputs []gcpath.Path, cardinality rule.Cardinality) (*ResultSet, error) {
	bound := make([]boundInput, len(inputs))
	for i, in := range inputs {
		bound[i] = boundInput{full: in, remaining: in}
	}
	return r.applyRule(fn, bound, outputs, cardinality, map[string]interface{}{})
}

func (r *Result) applyRule(fn rule.Function, inputs []boundInput, outputs []gcpath.Path, cardinality rule.Cardinality, scope map[string]interface{}) (*ResultSet, error) {
	for _, in := range inputs {
		if in.remaining.Len() == 1 {
			v, ok := r.Get(in.remaining.At(0))
			if !ok {
				return nil, fmt.Errorf("resultset: row has no value for input %q", in.full)
			}
			scope[in.full.String()] = v
		}
	}

	if outputs[0].Len() == 1 {
		return r.invoke(fn, outputs, cardinality, scope)
	}

	// Outputs live deeper than this level: recurse down one segment,
	// carrying only the inputs that haven't yet bottomed out.
	var deeper []boundInput
	for _, in := range inputs {
		if in.remaining.Len() > 1 {
			deeper = append(deeper, in)
		}
	}

	lineage := make([]gcpath.Path, 0, len(deeper)+len(outputs))
	for _, in := range deeper {
		lineage = append(lineage, in.remaining)
	}
	lineage = append(lineage, outputs...)
	subPath, err := nextSubPath(lineage)
	if err != nil {
		return nil, err
	}

	newInputs := make([]boundInput, len(deeper))
	for i, in := range deeper {
		newInputs[i] = boundInput{full: in.full, remaining: in.remaining.Tail()}
	}
	newOutputs := make([]gcpath.Path, len(outputs))
	for i, o := range outputs {
		newOutputs[i] = o.Tail()
	}

	sub := NewResultSet([]*Result{NewResult()})
	if existing, ok := r.Get(subPath); ok {
		if existingSet, ok := existing.(*ResultSet); ok {
			sub = existingSet
		}
	}

	updated, err := sub.applyRule(fn, newInputs, newOutputs, cardinality, scope)
	if err != nil {
		return nil, err
	}
	r.Set(subPath, updated)

	// Boxed in a ResultSet of one so the return type matches the
	// Cardinality.Many case: the caller never has to special-case depth.
	return NewResultSet([]*Result{r}), nil
}

// invoke calls fn directly — this is the level result_set.py's
// Result._apply_rule operates at.
func (r *Result) invoke(fn rule.Function, outputs []gcpath.Path, cardinality rule.Cardinality, scope map[string]interface{}) (*ResultSet, error) {
	args := shortenScope(scope)
	ret, err := fn(args)
	if errors.Is(err, ErrNoResult) {
		return NewResultSet(nil), nil
	}
	if err != nil {
		return nil, &RuleApplicationError{Scope: args, Err: err}
	}

	switch cardinality {
	case rule.One:
		values, err := oneValues(ret, len(outputs))
		if err != nil {
			return nil, err
		}
		for i, o := range outputs {
			r.Set(o.At(0), values[i])
		}
		return NewResultSet([]*Result{r}), nil

	case rule.Many:
		tuples, err := manyTuples(ret, len(outputs))
		if err != nil {
			return nil, err
		}
		rows := make([]*Result, 0, len(tuples))
		for _, values := range tuples {
			row := r.DeepCopy()
			for i, o := range outputs {
				row.Set(o.At(0), values[i])
			}
			rows = append(rows, row)
		}
		return NewResultSet(rows), nil

	default:
		return nil, fmt.Errorf("resultset: unknown cardinality %v", cardinality)
	}
}

func oneValues(ret interface{}, n int) ([]interface{}, error) {
	var values []interface{}
	if n == 1 {
		values = []interface{}{ret}
	} else {
		vs, ok := ret.([]interface{})
		if !ok {
			return nil, fmt.Errorf("resultset: rule with %d outputs must return []interface{}, got %T", n, ret)
		}
		values = vs
	}
	if len(values) != n {
		return nil, fmt.Errorf("resultset: rule returned %d values for %d outputs", len(values), n)
	}
	return values, nil
}

func manyTuples(ret interface{}, n int) ([][]interface{}, error) {
	if n == 1 {
		vs, ok := ret.([]interface{})
		if !ok {
			return nil, fmt.Errorf("resultset: many-cardinality rule with 1 output must return []interface{}, got %T", ret)
		}
		tuples := make([][]interface{}, len(vs))
		for i, v := range vs {
			tuples[i] = []interface{}{v}
		}
		return tuples, nil
	}

	ts, ok := ret.([][]interface{})
	if !ok {
		return nil, fmt.Errorf("resultset: many-cardinality rule with %d outputs must return [][]interface{}, got %T", n, ret)
	}
	for _, t := range ts {
		if len(t) != n {
			return nil, fmt.Errorf("resultset: rule returned a %d-tuple for %d outputs", len(t), n)
		}
	}
	return ts, nil
}

// nextSubPath finds the single common leading segment across paths,
// grounded on result_set.py's next_sub_path: it refuses to handle
// inputs/outputs straddling more than one branch of the result tree.
func nextSubPath(paths []gcpath.Path) (string, error) {
	seen := map[string]bool{}
	for _, p := range paths {
		if p.Len() == 0 {
			continue
		}
		seen[p.At(0)] = true
	}
	if len(seen) > 1 {
		return "", fmt.Errorf("resultset: inputs/outputs span multiple branches at one nesting level: %v", paths)
	}
	for k := range seen {
		return k, nil
	}
	return "", fmt.Errorf("resultset: no sub-path found among %v", paths)
}
