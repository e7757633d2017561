package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperators(t *testing.T) {
	assert.True(t, New(OpEq, 5).Call(5))
	assert.False(t, New(OpEq, 5).Call(6))
	assert.True(t, New(OpNe, 5).Call(6))
	assert.True(t, New(OpLt, 10).Call(5))
	assert.True(t, New(OpGt, 5).Call(10))
	assert.True(t, New(OpLe, 10).Call(10))
	assert.True(t, New(OpGe, 10).Call(10))
}

func TestOpInMembership(t *testing.T) {
	r := New(OpIn, []interface{}{"a", "b", "c"})
	assert.True(t, r.Call("b"))
	assert.False(t, r.Call("z"))
}

func TestMergeIsConjunction(t *testing.T) {
	r := New(OpGt, 10).Merge(New(OpLt, 20))
	assert.True(t, r.Call(15))
	assert.False(t, r.Call(25))
	assert.False(t, r.Call(5))
}

func TestSingle(t *testing.T) {
	op, val, ok := New(OpEq, 42).Single()
	assert.True(t, ok)
	assert.Equal(t, OpEq, op)
	assert.Equal(t, 42, val)

	_, _, ok = New(OpGt, 1).Merge(New(OpLt, 2)).Single()
	assert.False(t, ok)
}
