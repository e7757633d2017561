// Package rule holds the declared production rules and type schema a query
// search walks backwards over: (inputs, output, cardinality, function)
// tuples keyed by output path, plus the base_type.property -> other_type
// remappings that let a query path like "user.books.name" resolve against
// a rule declared for "book.name".
package rule

import (
	"fmt"
	"strings"

	"github.com/wbrown/graphcore/graphcore/gcpath"
)

// Cardinality describes how many result tuples a rule invocation produces.
type Cardinality int

const (
	// One means the function returns a single tuple of values, one per
	// output path.
	One Cardinality = iota
	// Many means the function returns a sequence of tuples; each becomes
	// its own exploded record in the result set.
	Many
)

func (c Cardinality) String() string {
	if c == Many {
		return "many"
	}
	return "one"
}

// ParseCardinality accepts the loose forms a caller might supply —
// "one"/"many" strings or a Cardinality already — matching the
// permissive `Cardinality.cast` constructor of the source this engine
// is modeled on.
func ParseCardinality(v interface{}) (Cardinality, error) {
	switch c := v.(type) {
	case Cardinality:
		return c, nil
	case string:
		switch strings.ToLower(c) {
		case "one":
			return One, nil
		case "many":
			return Many, nil
		}
	}
	return One, fmt.Errorf("rule: invalid cardinality %v", v)
}

// Args is the short-name -> value scope a rule Function is invoked with.
// Short names are derived deterministically from input paths by the
// resultset package (last segment, widened leftward on collisions); rule
// authors never see the full path, only the short name.
type Args map[string]interface{}

// Function is a registered rule's callable. Its return shape depends on
// the rule's cardinality and output count:
//
//   - One output, cardinality One:    a single value.
//   - Many outputs, cardinality One:  a []interface{} of len(outputs).
//   - One output, cardinality Many:   a []interface{} of produced values.
//   - Many outputs, cardinality Many: a [][]interface{} of tuples, each
//     of len(outputs). The planner rejects this combination before any
//     function is invoked unless the rule's Native value implements
//     optimizer.Fusible, i.e. a fused join (see planner.Plan).
//
// A function may return resultset.ErrNoResult to drop the current record,
// or any other error to fail the query with a wrapped RuleApplicationError.
type Function func(args Args) (interface{}, error)

// Rule is a declared producer: a function invoked with Inputs bound,
// producing Outputs with the given Cardinality.
type Rule struct {
	Inputs      []gcpath.Path
	Outputs     []gcpath.Path
	Cardinality Cardinality
	Function    Function

	// Native optionally holds the concrete value Function was built
	// from — e.g. an *sqlfn.SQLQuery — so the optimizer can type-assert
	// it against optimizer.Fusible/optimizer.Constrainable to fuse
	// adjacent nodes or fold a relation into a WHERE clause. Rules with
	// no such native representation leave this nil, which simply makes
	// them opaque to both optimizer passes.
	Native interface{}

	// name is a human-readable label used by CallGraph.Explain, gclog
	// events and error messages; it is never used to resolve or invoke
	// the rule.
	name string
}

// Name renders a human-readable label for this rule, used in Explain
// output. Rules produced by fusion carry a composed name.
func (r *Rule) Name() string {
	if r.name != "" {
		return r.name
	}
	parts := make([]string, len(r.Outputs))
	for i, o := range r.Outputs {
		parts[i] = o.String()
	}
	return fmt.Sprintf("rule(%s)", strings.Join(parts, ","))
}

// SetName overrides the display name, used by optimizer.Fuse to compose a
// readable name for a merged node.
func (r *Rule) SetName(name string) {
	r.name = name
}

// PropertyType declares that BaseType.Property has entity type OtherType,
// e.g. PropertyType{"user", "books", "book"} lets a query path
// "user.books.name" resolve against a rule declared for "book.name".
type PropertyType struct {
	BaseType  string
	Property  string
	OtherType string
}

// Schema is a collection of PropertyType declarations used to rewrite a
// path's leftmost type prefix to its ultimate type.
type Schema struct {
	types []PropertyType
}

// NewSchema builds an empty schema.
func NewSchema() *Schema {
	return &Schema{}
}

// PropertyType registers one base_type.property -> other_type mapping.
func (s *Schema) PropertyType(baseType, property, otherType string) {
	s.types = append(s.types, PropertyType{BaseType: baseType, Property: property, OtherType: otherType})
}

func (s *Schema) lookup(baseType, property string) (string, bool) {
	for _, pt := range s.types {
		if pt.BaseType == baseType && pt.Property == property {
			return pt.OtherType, true
		}
	}
	return "", false
}

// ResolveType rewrites path's final segment to its ultimate type by
// walking the declared property types from the first segment onward.
// path must have at least one segment.
func (s *Schema) ResolveType(path gcpath.Path) string {
	return s.resolveTypeAt(path, path.Len()-1)
}

func (s *Schema) resolveTypeAt(path gcpath.Path, idx int) string {
	if idx == 0 {
		return path.At(0)
	}
	baseType := s.resolveTypeAt(path, idx-1)
	if otherType, ok := s.lookup(baseType, path.At(idx)); ok {
		return otherType
	}
	return path.At(idx)
}
