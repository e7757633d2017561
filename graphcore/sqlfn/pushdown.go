package sqlfn

import (
	"github.com/wbrown/graphcore/graphcore/optimizer"
	"github.com/wbrown/graphcore/graphcore/relation"
)

// operatorSuffixes lists every relation.Op that is rendered as a trailing
// WHERE-key suffix rather than implied (relation.OpEq binds the bare
// column name). Longest first so a suffix search never matches a prefix
// of a longer one (">=" before ">").
var operatorSuffixes = []relation.Op{
	relation.OpGe, relation.OpLe, relation.OpNe,
	relation.OpGt, relation.OpLt, relation.OpIn,
}

// whereKey renders the WHERE-clause key for a select column constrained
// by op, exactly as optimize_constrain_sql_queries.py's constrain_sql_
// queries names it: the bare column for "==", column+operator otherwise.
func whereKey(selectCol string, op relation.Op) string {
	if op == relation.OpEq {
		return selectCol
	}
	return selectCol + string(op)
}

// splitOperator reverses whereKey: it separates a WHERE key into its
// column and trailing operator, treating no recognised suffix as "==".
func splitOperator(key string) (col string, op relation.Op) {
	for _, o := range operatorSuffixes {
		suffix := string(o)
		if len(key) > len(suffix) && key[len(key)-len(suffix):] == suffix {
			return key[:len(key)-len(suffix)], o
		}
	}
	return key, relation.OpEq
}

// PushDown folds a single pushed-down relation directly into Where,
// implementing optimizer.Constrainable. idx indexes Selects/OutputPaths.
// Grounded on optimize_constrain_sql_queries.py's constrain_sql_queries.
func (q *SQLQuery) PushDown(idx int, op relation.Op, value interface{}) (optimizer.Constrainable, bool) {
	if idx < 0 || idx >= len(q.Selects) {
		return q, false
	}
	cp := q.Copy()
	cp.Where[whereKey(q.Selects[idx], op)] = value
	return cp, true
}
