package gcquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore/gcpath"
)

func TestNewFlatQuery(t *testing.T) {
	q, err := New(map[string]interface{}{
		"user.id":     1,
		"user.name?":  nil,
		"user.age>=":  18,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Len())

	c, ok := q.Find(gcpath.New("user.id"))
	require.True(t, ok)
	assert.Equal(t, Ground, c.Kind)
}

func TestNewNestedSubquery(t *testing.T) {
	q, err := New(map[string]interface{}{
		"user.id": 1,
		"user.books": []interface{}{
			map[string]interface{}{
				"id?":   nil,
				"name?": nil,
			},
		},
	})
	require.NoError(t, err)

	_, ok := q.Find(gcpath.New("user.books.id"))
	require.True(t, ok)
	_, ok = q.Find(gcpath.New("user.books.name"))
	require.True(t, ok)
	// The wrapper key itself never becomes a clause.
	_, ok = q.Find(gcpath.New("user.books"))
	assert.False(t, ok)
}

func TestSubqueryStripsRoot(t *testing.T) {
	q, err := New(map[string]interface{}{
		"user.id":        1,
		"user.books.id?": nil,
	})
	require.NoError(t, err)

	sub, err := q.Subquery(gcpath.New("user.books"))
	require.NoError(t, err)
	require.Equal(t, 1, sub.Len())

	_, ok := sub.Find(gcpath.New("id"))
	assert.True(t, ok)
}

func TestAppendMergesAtSamePath(t *testing.T) {
	q := &Query{index: make(map[string]int)}
	c1, _ := ParseClause("books.id>", 1)
	c2, _ := ParseClause("books.id<", 10)
	require.NoError(t, q.Append(c1))
	require.NoError(t, q.Append(c2))
	assert.Equal(t, 1, q.Len())
}
