package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/gcquery"
	"github.com/wbrown/graphcore/graphcore/rule"
)

func constRule(registry *rule.Registry, input, output string, cardinality rule.Cardinality, fn rule.Function) {
	inputs := []string{}
	if input != "" {
		inputs = []string{input}
	}
	if _, err := registry.Register(inputs, output, cardinality, fn); err != nil {
		panic(err)
	}
}

func TestSearchSingleHop(t *testing.T) {
	registry := rule.NewRegistry()
	constRule(registry, "user.id", "user.name", rule.One, func(a rule.Args) (interface{}, error) {
		return "John Smith", nil
	})

	q, err := gcquery.New(map[string]interface{}{
		"user.id":    1,
		"user.name?": nil,
	})
	require.NoError(t, err)

	cg, err := Search(q, registry)
	require.NoError(t, err)
	require.Len(t, cg.Nodes, 1)

	n := cg.Nodes[0]
	assert.Equal(t, "user.name", n.OutgoingPaths[0].String())
	assert.Equal(t, "user.id", n.IncomingPaths[0].String())
	assert.True(t, cg.Edge(gcpath.New("user.name")).Out)
}

func TestSearchComposedRules(t *testing.T) {
	registry := rule.NewRegistry()
	constRule(registry, "user.id", "user.name", rule.One, func(a rule.Args) (interface{}, error) {
		return "John Smith", nil
	})
	constRule(registry, "user.name", "user.abbreviation", rule.One, func(a rule.Args) (interface{}, error) {
		return "JS", nil
	})

	q, err := gcquery.New(map[string]interface{}{
		"user.id":            1,
		"user.abbreviation?": nil,
	})
	require.NoError(t, err)

	cg, err := Search(q, registry)
	require.NoError(t, err)
	require.Len(t, cg.Nodes, 2)
}

func TestSearchManyCardinality(t *testing.T) {
	registry := rule.NewRegistry()
	constRule(registry, "user.id", "user.books.id", rule.Many, func(a rule.Args) (interface{}, error) {
		return []interface{}{1, 2, 3}, nil
	})

	q, err := gcquery.New(map[string]interface{}{
		"user.id":        1,
		"user.books.id?": nil,
	})
	require.NoError(t, err)

	cg, err := Search(q, registry)
	require.NoError(t, err)
	require.Len(t, cg.Nodes, 1)
	assert.Equal(t, rule.Many, cg.Nodes[0].Rule.Cardinality)
}

func TestSearchUnusedGroundBecomesConstraintAndSucceeds(t *testing.T) {
	registry := rule.NewRegistry()
	constRule(registry, "user.id", "user.name", rule.One, func(a rule.Args) (interface{}, error) {
		return "John Smith", nil
	})
	constRule(registry, "user.id", "user.age", rule.One, func(a rule.Args) (interface{}, error) {
		return 30, nil
	})

	q, err := gcquery.New(map[string]interface{}{
		"user.age":   30,
		"user.id":    1,
		"user.name?": nil,
	})
	require.NoError(t, err)

	cg, err := Search(q, registry)
	require.NoError(t, err)
	require.Len(t, cg.Nodes, 2)

	ageClause, ok := q.Find(gcpath.New("user.age"))
	require.True(t, ok)
	assert.Equal(t, gcquery.TempMarker, ageClause.Kind)
	assert.False(t, ageClause.Relation.IsZero())
}

func TestSearchUnusedGroundWithNoProducerFails(t *testing.T) {
	registry := rule.NewRegistry()
	constRule(registry, "user.id", "user.name", rule.One, func(a rule.Args) (interface{}, error) {
		return "John Smith", nil
	})

	q, err := gcquery.New(map[string]interface{}{
		"user.age":   30,
		"user.id":    1,
		"user.name?": nil,
	})
	require.NoError(t, err)

	_, err = Search(q, registry)
	require.Error(t, err)
	var searchErr *Error
	require.True(t, errors.As(err, &searchErr))
}
