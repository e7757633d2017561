package gcquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore/relation"
)

func TestParseClauseGround(t *testing.T) {
	c, err := ParseClause("user.id", 1)
	require.NoError(t, err)
	assert.Equal(t, "user.id", c.LHS.String())
	assert.Equal(t, Ground, c.Kind)
	assert.Equal(t, 1, c.Value)
	assert.True(t, c.Relation.IsZero())
}

func TestParseClauseOutMarker(t *testing.T) {
	c, err := ParseClause("user.name?", nil)
	require.NoError(t, err)
	assert.Equal(t, "user.name", c.LHS.String())
	assert.Equal(t, OutMarker, c.Kind)
}

func TestParseClauseRelationalSuffixes(t *testing.T) {
	cases := []struct {
		key string
		op  relation.Op
	}{
		{"books.id>", relation.OpGt},
		{"books.id<", relation.OpLt},
		{"books.id>=", relation.OpGe},
		{"books.id<=", relation.OpLe},
		{"books.id==", relation.OpEq},
		{"books.id!=", relation.OpNe},
		{"books.id|=", relation.OpIn},
	}
	for _, tc := range cases {
		c, err := ParseClause(tc.key, 5)
		require.NoError(t, err, tc.key)
		assert.Equal(t, "books.id", c.LHS.String(), tc.key)
		assert.Equal(t, TempMarker, c.Kind, tc.key)
		op, val, ok := c.Relation.Single()
		require.True(t, ok, tc.key)
		assert.Equal(t, tc.op, op, tc.key)
		assert.Equal(t, 5, val, tc.key)
	}
}

func TestMergeConjoinsRelations(t *testing.T) {
	a, _ := ParseClause("books.id>", 1)
	b, _ := ParseClause("books.id<", 3)
	require.NoError(t, a.Merge(b))
	assert.True(t, a.Relation.Call(2))
	assert.False(t, a.Relation.Call(5))
}

func TestMergeUpgradesTempToOut(t *testing.T) {
	a, _ := ParseClause("books.id>", 1)
	b, _ := ParseClause("books.id?", nil)
	require.NoError(t, a.Merge(b))
	assert.Equal(t, OutMarker, a.Kind)
	assert.False(t, a.Relation.IsZero())
}

func TestMergeConflictingGroundValues(t *testing.T) {
	a, _ := ParseClause("user.id", 1)
	b, _ := ParseClause("user.id", 2)
	err := a.Merge(b)
	require.Error(t, err)
	var conflict *MergeConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestConvertToConstraint(t *testing.T) {
	c, _ := ParseClause("user.age", 30)
	c.ConvertToConstraint()
	assert.Equal(t, TempMarker, c.Kind)
	assert.True(t, c.Relation.Call(30))
	assert.False(t, c.Relation.Call(31))
}
