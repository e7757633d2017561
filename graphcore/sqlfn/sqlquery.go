// Package sqlfn implements the one concrete "fusible" rule.Function kind
// spec.md's SQL sub-interface calls for: a rule.Rule.Native value that
// knows how to render itself as a SQL query, merge with an adjacent SQL
// query that produces one of its own inputs, and fold a pushed-down
// relation directly into its own WHERE clause. Grounded on
// original_source/graphcore/sql_query.py.
package sqlfn

import (
	"context"
	"fmt"
	"strings"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/resultset"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// ColumnRef marks a WHERE value as a raw column reference — e.g. the join
// condition MergeParentChild builds between a parent's select and a
// child's where clause — rather than a literal parameter to bind.
// Grounded on sql_query_dict.mysql_col.
type ColumnRef string

// Driver executes a built SQL statement and returns its rows as loosely
// typed tuples, one []interface{} per row, in column order. Satisfied by
// SQLDriver (database/sql) or any test double.
type Driver interface {
	Query(ctx context.Context, sqlText string, args []interface{}) ([][]interface{}, error)
}

// Builder renders a SELECT statement from its parts. where may carry
// ColumnRef values (rendered as a bare column-to-column comparison) or
// literal values (rendered as a bound parameter); a key may carry a
// trailing comparison operator (e.g. "book.year>") exactly as
// optimize_constrain_sql_queries.py names pushed-down keys. Satisfied by
// SquirrelBuilder.
type Builder interface {
	BuildSelect(tables []string, selects []string, where map[string]interface{}, limit *int) (string, []interface{}, error)
}

// SQLQuery is a rule.Rule's Native value for a rule backed by a single
// SQL SELECT: its Inputs bind into WHERE clauses via InputMapping, and its
// Outputs come back one per Selects column, in order. Grounded on
// sql_query.py's SQLQuery class; tables/selects/where/limit/one_column/
// first are carried over unchanged, input_mapping is resolved ahead of
// time via resultset.InputMapping rather than recomputed per call.
type SQLQuery struct {
	Tables  []string
	Selects []string
	Where   map[string]interface{}
	Limit   *int

	// OneColumn shapes each row down to its single column instead of a
	// tuple; First returns only the first row, or resultset.ErrNoResult
	// if there are none. Both default false. Carried from sql_query.py's
	// one_column/first unchanged (see SPEC_FULL.md §10).
	OneColumn bool
	First     bool

	// InputMapping maps a rule.Args short argument name to the WHERE key
	// it binds.
	InputMapping map[string]string
	// InputPaths maps the same short argument name back to the full
	// gcpath.Path it was declared against, so MergeParentChild can find
	// the connecting edge between a parent's outputs and a child's
	// inputs without consulting the call graph.
	InputPaths map[string]gcpath.Path
	// OutputPaths is parallel to Selects: OutputPaths[i] is the path
	// Selects[i] produces.
	OutputPaths []gcpath.Path

	Driver  Driver
	Builder Builder
}

// NewSQLQuery builds a SQLQuery rule.Rule.Native value. inputs and
// whereKeys are parallel: inputs[i] is the declared path a caller binds,
// whereKeys[i] is the WHERE-clause key (optionally carrying a trailing
// comparison operator) that input's value is bound to. outputs and
// selects are parallel in the same way, one gcpath.Path per SELECTed
// column.
func NewSQLQuery(inputs []gcpath.Path, whereKeys []string, outputs []gcpath.Path, tables, selects []string, where map[string]interface{}, driver Driver, builder Builder) *SQLQuery {
	if where == nil {
		where = map[string]interface{}{}
	}
	argNames := resultset.InputMapping(inputs)

	inputMapping := make(map[string]string, len(inputs))
	inputPaths := make(map[string]gcpath.Path, len(inputs))
	for i, p := range inputs {
		name := argNames[p.String()]
		inputMapping[name] = whereKeys[i]
		inputPaths[name] = p
	}

	return &SQLQuery{
		Tables:       append([]string{}, tables...),
		Selects:      append([]string{}, selects...),
		Where:        where,
		InputMapping: inputMapping,
		InputPaths:   inputPaths,
		OutputPaths:  append([]gcpath.Path{}, outputs...),
		Driver:       driver,
		Builder:      builder,
	}
}

// Function builds the rule.Function this SQLQuery invokes: bind every
// mapped input into a copy of Where, render and run the SELECT, and
// shape the returned rows per OneColumn/First. Grounded on
// sql_query.py's SQLQuery.__call__.
func (q *SQLQuery) Function() rule.Function {
	return func(args rule.Args) (interface{}, error) {
		where := make(map[string]interface{}, len(q.Where)+len(q.InputMapping))
		for k, v := range q.Where {
			where[k] = v
		}
		for argName, whereKey := range q.InputMapping {
			v, ok := args[argName]
			if !ok {
				return nil, fmt.Errorf("sqlfn: missing bound input %q", argName)
			}
			where[whereKey] = v
		}

		sqlText, params, err := q.Builder.BuildSelect(q.Tables, q.Selects, where, q.Limit)
		if err != nil {
			return nil, fmt.Errorf("sqlfn: building select: %w", err)
		}

		rows, err := q.Driver.Query(context.Background(), sqlText, params)
		if err != nil {
			return nil, fmt.Errorf("sqlfn: %s: %w", sqlText, err)
		}

		return q.shapeRows(rows)
	}
}

// shapeRows reduces raw driver rows to the return shape rule.Function
// documents for the (OneColumn, First) combination in effect, mirroring
// sql_query.py's handling of the same two flags.
func (q *SQLQuery) shapeRows(rows [][]interface{}) (interface{}, error) {
	if q.First {
		if len(rows) == 0 {
			return nil, resultset.ErrNoResult
		}
		if q.OneColumn {
			return rows[0][0], nil
		}
		return append([]interface{}{}, rows[0]...), nil
	}

	if q.OneColumn {
		values := make([]interface{}, len(rows))
		for i, row := range rows {
			values[i] = row[0]
		}
		return values, nil
	}

	tuples := make([][]interface{}, len(rows))
	for i, row := range rows {
		tuples[i] = append([]interface{}{}, row...)
	}
	return tuples, nil
}

// Copy returns a deep copy, so fusion and push-down never mutate a node
// still reachable from another part of the call graph.
func (q *SQLQuery) Copy() *SQLQuery {
	cp := &SQLQuery{
		Tables:       append([]string{}, q.Tables...),
		Selects:      append([]string{}, q.Selects...),
		Where:        make(map[string]interface{}, len(q.Where)),
		OneColumn:    q.OneColumn,
		First:        q.First,
		InputMapping: make(map[string]string, len(q.InputMapping)),
		InputPaths:   make(map[string]gcpath.Path, len(q.InputPaths)),
		OutputPaths:  append([]gcpath.Path{}, q.OutputPaths...),
		Driver:       q.Driver,
		Builder:      q.Builder,
	}
	if q.Limit != nil {
		limit := *q.Limit
		cp.Limit = &limit
	}
	for k, v := range q.Where {
		cp.Where[k] = v
	}
	for k, v := range q.InputMapping {
		cp.InputMapping[k] = v
	}
	for k, v := range q.InputPaths {
		cp.InputPaths[k] = v
	}
	return cp
}

// assertFlattenable requires every table/select/where reference to be a
// qualified table.column name, the precondition both MergeParentChild and
// PushDown rely on to build new where keys safely. Grounded on
// sql_query.py's SQLQuery._assert_flattenable.
func (q *SQLQuery) assertFlattenable() error {
	for _, t := range q.Tables {
		if strings.ContainsAny(t, " .") {
			return fmt.Errorf("sqlfn: table name %q is not a bare table name", t)
		}
	}
	for _, s := range q.Selects {
		if !strings.Contains(s, ".") {
			return fmt.Errorf("sqlfn: select %q is not of the form table.column", s)
		}
	}
	for k := range q.Where {
		col, _ := splitOperator(k)
		if !strings.Contains(col, ".") {
			return fmt.Errorf("sqlfn: where key %q is not of the form table.column", k)
		}
	}
	return nil
}

// cleanup drops any WHERE entry whose key and ColumnRef value are
// identical, a self-join condition that fusion can produce but that
// constrains nothing. Grounded on sql_query.py's SQLQuery.cleanup.
func (q *SQLQuery) cleanup() {
	for k, v := range q.Where {
		if ref, ok := v.(ColumnRef); ok && string(ref) == k {
			delete(q.Where, k)
		}
	}
}

func indexOfPath(paths []gcpath.Path, p gcpath.Path) int {
	for i, other := range paths {
		if other.Equal(p) {
			return i
		}
	}
	return -1
}
