package graphcore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore"
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/rule"
	"github.com/wbrown/graphcore/graphcore/sqlfn"
)

func pathsOf(s ...string) []gcpath.Path {
	out := make([]gcpath.Path, len(s))
	for i, p := range s {
		out[i] = gcpath.New(p)
	}
	return out
}

// fakeSQLDriver returns canned joined rows regardless of the rendered
// SQL text, isolating the fusion path from a real database.
type fakeSQLDriver struct {
	rows [][]interface{}
}

func (d *fakeSQLDriver) Query(_ context.Context, _ string, _ []interface{}) ([][]interface{}, error) {
	return d.rows, nil
}

// fakeSQLBuilder renders nothing meaningful; fusion's WHERE-clause
// bookkeeping is exercised by sqlfn's own tests, not here.
type fakeSQLBuilder struct{}

func (fakeSQLBuilder) BuildSelect(_, _ []string, _ map[string]interface{}, _ *int) (string, []interface{}, error) {
	return "SELECT", nil, nil
}

// TestQueryFusesAdjacentSQLRulesIntoManyCardinalityNode exercises search
// -> fusion -> planning -> execution end to end over two sqlfn.SQLQuery
// rules that share the "user.books.id" edge: search.Search finds both,
// optimizer.Fuse merges them into one node (spec §4.3 Pass A), and that
// merged node — Many cardinality, two outputs — must actually be
// schedulable and executable (spec §4.3/§4.5), not just constructible.
func TestQueryFusesAdjacentSQLRulesIntoManyCardinalityNode(t *testing.T) {
	driver := &fakeSQLDriver{rows: [][]interface{}{{1, "book-1"}, {2, "book-2"}}}
	builder := fakeSQLBuilder{}

	parent := sqlfn.NewSQLQuery(
		pathsOf("user.id"), []string{"books.user_id"},
		pathsOf("user.books.id"), []string{"books"}, []string{"books.id"},
		nil, driver, builder,
	)
	child := sqlfn.NewSQLQuery(
		pathsOf("user.books.id"), []string{"books.id"},
		pathsOf("user.books.name"), []string{"books"}, []string{"books.name"},
		nil, driver, builder,
	)

	r := rule.NewRegistry()
	parentRule, err := r.Register([]string{"user.id"}, "user.books.id", rule.Many, parent.Function())
	require.NoError(t, err)
	parentRule.Native = parent

	childRule, err := r.Register([]string{"user.books.id"}, "user.books.name", rule.One, child.Function())
	require.NoError(t, err)
	childRule.Native = child

	e := graphcore.New(r, graphcore.DefaultOptions())
	rows, err := e.Query(map[string]interface{}{
		"user.id":          1,
		"user.books.name?": nil,
	}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var names []interface{}
	for _, row := range rows {
		names = append(names, row["user.books.name"])
	}
	assert.ElementsMatch(t, []interface{}{"book-1", "book-2"}, names)
}
