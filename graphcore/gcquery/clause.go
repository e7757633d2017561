// Package gcquery parses the caller's declarative query — a mapping of
// dotted-path keys (optionally suffixed with an output marker or a
// relational operator) to ground values — into an ordered list of
// Clauses that query search can walk backwards over.
package gcquery

import (
	"fmt"
	"strings"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/relation"
)

// RHSKind is the closed set of right-hand-side variants a clause can hold.
type RHSKind int

const (
	// Ground means the clause carries a concrete caller-supplied value.
	Ground RHSKind = iota
	// OutMarker means the caller wants this path in the result output;
	// no value is attached yet.
	OutMarker
	// TempMarker means the engine introduced this clause (as a rule
	// input) or needs a value here but will not emit it unless also
	// later upgraded to OutMarker.
	TempMarker
)

func (k RHSKind) String() string {
	switch k {
	case Ground:
		return "ground"
	case OutMarker:
		return "out"
	case TempMarker:
		return "temp"
	default:
		return "unknown"
	}
}

// twoCharOps lists the two-character relational suffixes, checked before
// the one-character ones so that "<=" isn't mistaken for "<".
var twoCharOps = map[string]relation.Op{
	"==": relation.OpEq,
	"!=": relation.OpNe,
	"<=": relation.OpLe,
	">=": relation.OpGe,
	"|=": relation.OpIn,
}

var oneCharOps = map[string]relation.Op{
	"<": relation.OpLt,
	">": relation.OpGt,
}

// Clause is one entry of a query: a path, an RHS kind, the ground value
// (meaningful only when Kind == Ground), and an optional relation.
type Clause struct {
	LHS      gcpath.Path
	Kind     RHSKind
	Value    interface{}
	Relation relation.Relation
}

// ParseClause decodes one raw query key/value pair into a Clause,
// following the suffix precedence in component 3/6: a trailing "?" first,
// then two-character relational suffixes, then the one-character "<"/">",
// and otherwise a plain ground path.
func ParseClause(key string, value interface{}) (Clause, error) {
	if key == "" {
		return Clause{}, fmt.Errorf("gcquery: empty clause key")
	}

	if strings.HasSuffix(key, "?") {
		return Clause{
			LHS:  gcpath.New(key[:len(key)-1]),
			Kind: OutMarker,
		}, nil
	}

	if len(key) > 2 {
		if op, ok := twoCharOps[key[len(key)-2:]]; ok {
			return Clause{
				LHS:      gcpath.New(key[:len(key)-2]),
				Kind:     TempMarker,
				Relation: relation.New(op, value),
			}, nil
		}
	}

	if len(key) > 1 {
		if op, ok := oneCharOps[key[len(key)-1:]]; ok {
			return Clause{
				LHS:      gcpath.New(key[:len(key)-1]),
				Kind:     TempMarker,
				Relation: relation.New(op, value),
			}, nil
		}
	}

	return Clause{
		LHS:   gcpath.New(key),
		Kind:  Ground,
		Value: value,
	}, nil
}

// Copy returns an independent copy of the clause (relations are
// immutable value types, so a shallow copy suffices).
func (c Clause) Copy() Clause {
	return c
}

// Merge combines other into c, mutating c's relation (conjoining it with
// other's, if any) and upgrading a TempMarker RHS to other's stronger
// variant. Merging two Ground clauses with different values is a
// MergeConflict.
func (c *Clause) Merge(other Clause) error {
	if !other.Relation.IsZero() {
		if c.Relation.IsZero() {
			c.Relation = other.Relation
		} else {
			c.Relation = c.Relation.Merge(other.Relation)
		}
	}

	switch {
	case c.Kind == TempMarker:
		c.Kind = other.Kind
		if other.Kind == Ground {
			c.Value = other.Value
		}
	case other.Kind == TempMarker:
		// other brings nothing new besides its (already merged) relation.
	case c.Kind == Ground && other.Kind == Ground:
		if !valueEqual(c.Value, other.Value) {
			return &MergeConflictError{Path: c.LHS, First: c.Value, Second: other.Value}
		}
	default:
		c.Kind = other.Kind
		if other.Kind == Ground {
			c.Value = other.Value
		}
	}
	return nil
}

// ConvertToConstraint rewrites a Ground clause into an equality
// constraint: its value becomes an OpEq relation and its RHS becomes a
// TempMarker, matching the unused-clause reconversion pass in §4.2.
func (c *Clause) ConvertToConstraint() {
	c.Relation = relation.New(relation.OpEq, c.Value)
	c.Kind = TempMarker
	c.Value = nil
}

func (c Clause) String() string {
	return fmt.Sprintf("%s(%s)", c.LHS, c.Kind)
}

// MergeConflictError reports two ground clauses at the same path
// disagreeing on their value.
type MergeConflictError struct {
	Path   gcpath.Path
	First  interface{}
	Second interface{}
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("gcquery: conflicting ground values at %s: %v != %v", e.Path, e.First, e.Second)
}

func valueEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
