package rule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore/gcpath"
)

func nameRule() Function {
	return func(args Args) (interface{}, error) {
		if args["id"] == float64(1) || args["id"] == 1 {
			return "John Smith", nil
		}
		return nil, nil
	}
}

func TestLookupDirectMatch(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register([]string{"user.id"}, "user.name", One, nameRule())
	require.NoError(t, err)

	prefix, rl, err := r.Lookup(gcpath.New("user.name"))
	require.NoError(t, err)
	assert.True(t, prefix.IsZero())
	assert.Equal(t, "user.name", rl.Outputs[0].String())
}

func TestLookupThroughSchema(t *testing.T) {
	r := NewRegistry()
	r.PropertyType("user", "books", "book")
	_, err := r.Register([]string{"book.id"}, "book.name", One, nameRule())
	require.NoError(t, err)

	prefix, rl, err := r.Lookup(gcpath.New("user.books.name"))
	require.NoError(t, err)
	assert.Equal(t, "user.books", prefix.String())
	assert.Equal(t, "book.name", rl.Outputs[0].String())
}

func TestLookupPrefersLongestSuffix(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register([]string{"id"}, "user.books.name", One, nameRule())
	require.NoError(t, err)
	_, err = r.Register([]string{"x"}, "books.name", One, nameRule())
	require.NoError(t, err)

	prefix, rl, err := r.Lookup(gcpath.New("user.books.name"))
	require.NoError(t, err)
	assert.True(t, prefix.IsZero())
	assert.Equal(t, "user.books.name", rl.Outputs[0].String())
}

func TestLookupRequiresInputAwayFromRoot(t *testing.T) {
	r := NewRegistry()
	// zero-input rule registered for a non-root output path; should never
	// be selected once the candidate prefix is non-empty, even though the
	// schema-adjusted suffix matches.
	_, err := r.Register(nil, "books.name", One, nameRule())
	require.NoError(t, err)

	_, _, err = r.Lookup(gcpath.New("user.books.name"))
	require.Error(t, err)
}

func TestLookupNotFoundDistinguishesBaseType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register([]string{"id"}, "user.name", One, nameRule())
	require.NoError(t, err)

	_, _, err = r.Lookup(gcpath.New("widget.color"))
	require.Error(t, err)
	var baseErr *BaseTypeNotFoundError
	assert.ErrorAs(t, err, &baseErr)
}

func TestDirectMap(t *testing.T) {
	r := NewRegistry()
	rl, err := r.DirectMap("order.customer_id", "order.customer.id")
	require.NoError(t, err)
	v, err := rl.Function(Args{"customer_id": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestLookupNotFoundUnderKnownIntermediatePrefix(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register([]string{"id"}, "user.books.id", Many, nameRule())
	require.NoError(t, err)

	// "user.books" is a declared intermediate prefix (via user.books.id),
	// so a miss on a different leaf under it is a plain not-found, not a
	// BaseTypeNotFoundError.
	_, _, err = r.Lookup(gcpath.New("user.books.title"))
	require.Error(t, err)
	var baseErr *BaseTypeNotFoundError
	assert.False(t, errors.As(err, &baseErr))
	assert.True(t, errors.Is(err, ErrPathNotFound))
}

func TestSearchOutputsAndBaseTypes(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Register([]string{"id"}, "user.name", One, nameRule())
	_, _ = r.Register([]string{"id"}, "book.name", One, nameRule())

	assert.ElementsMatch(t, []string{"user", "book"}, r.BaseTypes())
	assert.Equal(t, []string{"book.name", "user.name"}, r.SearchOutputs("name"))
}
