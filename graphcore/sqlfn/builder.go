package sqlfn

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// SquirrelBuilder renders SELECT statements with Masterminds/squirrel,
// the query builder carried into the pack via mvp-joe-project-cortex's
// dependency tree (see SPEC_FULL.md §9). It uses the default "?"
// placeholder format, matching mattn/go-sqlite3's driver expectations.
type SquirrelBuilder struct{}

// NewSquirrelBuilder returns a ready-to-use SquirrelBuilder; it carries
// no state of its own.
func NewSquirrelBuilder() SquirrelBuilder {
	return SquirrelBuilder{}
}

// BuildSelect implements Builder. where keys carrying a recognised
// trailing comparison operator (see splitOperator) render as that
// comparison; a ColumnRef value renders as a bare column-to-column
// equality instead of a bound parameter.
func (SquirrelBuilder) BuildSelect(tables []string, selects []string, where map[string]interface{}, limit *int) (string, []interface{}, error) {
	if len(tables) == 0 {
		return "", nil, fmt.Errorf("sqlfn: select has no tables")
	}

	qb := sq.Select(selects...).From(tables[0])
	for _, t := range tables[1:] {
		qb = qb.Join(t)
	}

	for key, value := range where {
		col, op := splitOperator(key)

		if ref, ok := value.(ColumnRef); ok {
			qb = qb.Where(fmt.Sprintf("%s = %s", col, string(ref)))
			continue
		}

		switch op {
		case "==":
			qb = qb.Where(sq.Eq{col: value})
		case "!=":
			qb = qb.Where(sq.NotEq{col: value})
		case ">":
			qb = qb.Where(sq.Gt{col: value})
		case "<":
			qb = qb.Where(sq.Lt{col: value})
		case ">=":
			qb = qb.Where(sq.GtOrEq{col: value})
		case "<=":
			qb = qb.Where(sq.LtOrEq{col: value})
		case "|=":
			// squirrel renders sq.Eq with a slice value as "col IN (...)".
			qb = qb.Where(sq.Eq{col: value})
		default:
			return "", nil, fmt.Errorf("sqlfn: unsupported where operator %q on %q", op, key)
		}
	}

	if limit != nil {
		qb = qb.Limit(uint64(*limit))
	}

	return qb.ToSql()
}
