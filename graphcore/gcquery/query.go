package gcquery

import (
	"github.com/wbrown/graphcore/graphcore/gcpath"
)

// Query is an ordered, path-indexed collection of Clauses built from the
// caller's raw nested query mapping.
type Query struct {
	Clauses []Clause
	// Shape is the raw nested structure the query was built from (maps
	// and single-element []interface{} lists), used downstream to shape
	// the initial result set and to split paths at result-set boundaries
	// (component 4.5, step 1).
	Shape interface{}

	index map[string]int
}

// New parses a raw query mapping into a Query. A value that is a
// one-element list containing a mapping denotes a nested sub-query whose
// keys are implicitly prefixed by the enclosing key plus ".".
func New(raw map[string]interface{}) (*Query, error) {
	q := &Query{index: make(map[string]int)}
	if err := q.extend(raw, ""); err != nil {
		return nil, err
	}
	q.Shape = raw
	return q, nil
}

func (q *Query) extend(raw map[string]interface{}, prefix string) error {
	for k, v := range raw {
		if list, ok := v.([]interface{}); ok && len(list) == 1 {
			if sub, ok := list[0].(map[string]interface{}); ok {
				if err := q.extend(sub, prefix+k+"."); err != nil {
					return err
				}
				continue
			}
		}
		clause, err := ParseClause(prefix+k, v)
		if err != nil {
			return err
		}
		if err := q.Append(clause); err != nil {
			return err
		}
	}
	return nil
}

// Append adds a clause, merging it into an existing clause at the same
// path if one is already present.
func (q *Query) Append(clause Clause) error {
	key := clause.LHS.String()
	if idx, ok := q.index[key]; ok {
		existing := q.Clauses[idx]
		if err := existing.Merge(clause); err != nil {
			return err
		}
		q.Clauses[idx] = existing
		return nil
	}
	q.index[key] = len(q.Clauses)
	q.Clauses = append(q.Clauses, clause)
	return nil
}

// Find returns the clause at path, if any.
func (q *Query) Find(path gcpath.Path) (Clause, bool) {
	idx, ok := q.index[path.String()]
	if !ok {
		return Clause{}, false
	}
	return q.Clauses[idx], true
}

// Len reports the number of clauses.
func (q *Query) Len() int {
	return len(q.Clauses)
}

// Subquery extracts every clause whose path starts with root, stripping
// root from each resulting path, into a new Query. graphcore.Engine does
// not call it; the engine seeds nested bindings from the query shape.
func (q *Query) Subquery(root gcpath.Path) (*Query, error) {
	nq := &Query{index: make(map[string]int)}
	for _, c := range q.Clauses {
		if !c.LHS.HasPrefix(root) {
			continue
		}
		nc := c.Copy()
		nc.LHS = c.LHS.SubpathFrom(root)
		if err := nq.Append(nc); err != nil {
			return nil, err
		}
	}
	return nq, nil
}
