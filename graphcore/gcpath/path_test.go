package gcpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitsOnDot(t *testing.T) {
	p := New("order.customer.name")
	require.Equal(t, 3, p.Len())
	assert.Equal(t, "order.customer.name", p.String())
	assert.Equal(t, "name", p.Property())
}

func TestRelativeTakesLastTwoSegments(t *testing.T) {
	assert.Equal(t, "customer.name", New("order.customer.name").Relative().String())
	assert.Equal(t, "order", New("order").Relative().String())
	assert.Equal(t, "a.b", New("a.b").Relative().String())
}

func TestSubpathsShortestSuffixFirst(t *testing.T) {
	subs := New("a.b.c.d").Subpaths()
	require.Len(t, subs, 3)

	assert.Equal(t, "a.b", subs[0].Prefix.String())
	assert.Equal(t, "c.d", subs[0].Suffix.String())

	assert.Equal(t, "a", subs[1].Prefix.String())
	assert.Equal(t, "b.c.d", subs[1].Suffix.String())

	assert.Equal(t, "", subs[2].Prefix.String())
	assert.Equal(t, "a.b.c.d", subs[2].Suffix.String())
}

func TestSubpathsBelowTwoSegmentsIsEmpty(t *testing.T) {
	assert.Empty(t, New("a").Subpaths())
	assert.Empty(t, New("").Subpaths())
}

func TestSubpathFromStripsRoot(t *testing.T) {
	p := New("order.customer.name")
	assert.Equal(t, "customer.name", p.SubpathFrom(New("order")).String())
	assert.Equal(t, "order.customer.name", p.SubpathFrom(New("")).String())
}

func TestHasPrefix(t *testing.T) {
	p := New("order.customer.name")
	assert.True(t, p.HasPrefix(New("order.customer")))
	assert.False(t, p.HasPrefix(New("order.shipping")))
}

func TestEqualAndLess(t *testing.T) {
	a := New("a.b")
	b := New("a.b")
	c := New("a.c")
	assert.True(t, a.Equal(b))
	assert.True(t, a.Less(c))
}

func TestAppendAndConcat(t *testing.T) {
	base := New("order")
	assert.Equal(t, "order.customer", base.Append("customer").String())
	assert.Equal(t, "order.customer.name", base.Concat(New("customer.name")).String())
}
