// Package relation implements the small filter predicates a clause can
// attach to a path: comparisons and membership tests that get evaluated
// against a bound value, or pushed down into a fusible function's own
// filtering when the optimizer can prove it's safe to do so.
package relation

import (
	"fmt"
	"reflect"
)

// Op names one of the comparison operators a clause suffix can request.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpGt Op = ">"
	OpLe Op = "<="
	OpGe Op = ">="
	// OpIn tests that the bound value is contained in relation.Value,
	// i.e. "value |= collection".
	OpIn Op = "|="
)

// Predicate compares a candidate value x against the relation's value y.
type Predicate func(x, y interface{}) bool

// operators maps each Op to the comparison it performs. Comparisons between
// mismatched numeric types (int vs float64) are normalized to float64 first.
var operators = map[Op]Predicate{
	OpEq: func(x, y interface{}) bool { return equal(x, y) },
	OpNe: func(x, y interface{}) bool { return !equal(x, y) },
	OpLt: func(x, y interface{}) bool { return compare(x, y) < 0 },
	OpGt: func(x, y interface{}) bool { return compare(x, y) > 0 },
	OpLe: func(x, y interface{}) bool { return compare(x, y) <= 0 },
	OpGe: func(x, y interface{}) bool { return compare(x, y) >= 0 },
	OpIn: func(x, y interface{}) bool { return contains(y, x) },
}

// Relation is one or more operator/value pairs that must all hold against
// the same candidate value. A single Relation built via New carries one
// pair; Merge combines two relations on the same path into a conjunction.
type Relation struct {
	ops    []Op
	values []interface{}
}

// New builds a relation with a single operator/value pair.
func New(op Op, value interface{}) Relation {
	if _, ok := operators[op]; !ok {
		panic(fmt.Sprintf("relation: unknown operator %q", op))
	}
	return Relation{ops: []Op{op}, values: []interface{}{value}}
}

// IsZero reports whether the relation carries no constraints.
func (r Relation) IsZero() bool {
	return len(r.ops) == 0
}

// Call evaluates every operator/value pair against x, requiring all to hold.
func (r Relation) Call(x interface{}) bool {
	for i, op := range r.ops {
		if !operators[op](x, r.values[i]) {
			return false
		}
	}
	return true
}

// Merge combines this relation and other into a single conjunction,
// e.g. ">10" merged with "<20" constrains a value to the open (10, 20)
// range. Merge does not mutate either operand.
func (r Relation) Merge(other Relation) Relation {
	out := Relation{
		ops:    make([]Op, 0, len(r.ops)+len(other.ops)),
		values: make([]interface{}, 0, len(r.values)+len(other.values)),
	}
	out.ops = append(out.ops, r.ops...)
	out.ops = append(out.ops, other.ops...)
	out.values = append(out.values, r.values...)
	out.values = append(out.values, other.values...)
	return out
}

// Single reports whether the relation carries exactly one operator/value
// pair, and returns it. Callers that push a relation down into a fusible
// function's own where-clause (see the optimizer package) only handle
// the single-pair case; a merged multi-pair relation is left in place.
func (r Relation) Single() (op Op, value interface{}, ok bool) {
	if len(r.ops) != 1 {
		return "", nil, false
	}
	return r.ops[0], r.values[0], true
}

// Equal reports whether two relations carry the same operator/value pairs
// in the same order.
func (r Relation) Equal(other Relation) bool {
	if len(r.ops) != len(other.ops) {
		return false
	}
	for i := range r.ops {
		if r.ops[i] != other.ops[i] || !equal(r.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

func (r Relation) String() string {
	if r.IsZero() {
		return "<no relation>"
	}
	s := ""
	for i, op := range r.ops {
		if i > 0 {
			s += " and "
		}
		s += fmt.Sprintf("%s %v", op, r.values[i])
	}
	return s
}

func equal(x, y interface{}) bool {
	if fx, fy, ok := asFloats(x, y); ok {
		return fx == fy
	}
	return reflect.DeepEqual(x, y)
}

func compare(x, y interface{}) int {
	if fx, fy, ok := asFloats(x, y); ok {
		switch {
		case fx < fy:
			return -1
		case fx > fy:
			return 1
		default:
			return 0
		}
	}
	sx, sy := fmt.Sprintf("%v", x), fmt.Sprintf("%v", y)
	switch {
	case sx < sy:
		return -1
	case sx > sy:
		return 1
	default:
		return 0
	}
}

func asFloats(x, y interface{}) (float64, float64, bool) {
	fx, ok1 := toFloat(x)
	fy, ok2 := toFloat(y)
	return fx, fy, ok1 && ok2
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// contains reports whether item is contained in collection, which may be
// a slice/array of any element type, or a string (substring test).
func contains(collection, item interface{}) bool {
	if s, ok := collection.(string); ok {
		if sub, ok := item.(string); ok {
			return indexOf(s, sub) >= 0
		}
	}
	rv := reflect.ValueOf(collection)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if equal(rv.Index(i).Interface(), item) {
				return true
			}
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
