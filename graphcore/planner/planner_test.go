package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/optimizer"
	"github.com/wbrown/graphcore/graphcore/relation"
	"github.com/wbrown/graphcore/graphcore/rule"
)

func noopFn(rule.Args) (interface{}, error) { return nil, nil }

// fakeFused is a minimal stand-in for a rule.Rule.Native value produced
// by optimizer.Fuse: it satisfies optimizer.Fusible so a Many-cardinality,
// multi-output node carrying it is recognized as a join, not an
// independently-generated many-sequence.
type fakeFused struct{}

func (fakeFused) Function() rule.Function                       { return noopFn }
func (fakeFused) Merge(optimizer.Fusible) (optimizer.Fusible, error) { return fakeFused{}, nil }

func paths(s ...string) []gcpath.Path {
	out := make([]gcpath.Path, len(s))
	for i, p := range s {
		out[i] = gcpath.New(p)
	}
	return out
}

func indexOf(order []*callgraph.Node, n *callgraph.Node) int {
	for i, o := range order {
		if o == n {
			return i
		}
	}
	return -1
}

func TestPlanOrdersDependenciesBeforeDependents(t *testing.T) {
	cg := callgraph.New()
	rl1 := &rule.Rule{Inputs: paths("user.id"), Outputs: paths("user.name"), Cardinality: rule.One, Function: noopFn}
	rl2 := &rule.Rule{Inputs: paths("user.name"), Outputs: paths("user.abbreviation"), Cardinality: rule.One, Function: noopFn}

	n2 := cg.AddNode(paths("user.name"), paths("user.abbreviation"), rl2, nil)
	n1 := cg.AddNode(paths("user.id"), paths("user.name"), rl1, nil)

	order, err := Plan(cg)
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Less(t, indexOf(order, n1), indexOf(order, n2))
}

func TestPlanSchedulesRelationCarryingNodeSameDependencyDepth(t *testing.T) {
	cg := callgraph.New()
	rlName := &rule.Rule{Inputs: paths("user.id"), Outputs: paths("user.name"), Cardinality: rule.One, Function: noopFn}
	rlAge := &rule.Rule{Inputs: paths("user.id"), Outputs: paths("user.age"), Cardinality: rule.One, Function: noopFn}

	nName := cg.AddNode(paths("user.id"), paths("user.name"), rlName, nil)
	nAge := cg.AddNode(paths("user.id"), paths("user.age"), rlAge, []relation.Relation{relation.New(relation.OpGt, 21)})

	order, err := Plan(cg)
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Less(t, indexOf(order, nAge), indexOf(order, nName))
}

func TestPlanRejectsManyCardinalityWithMultipleOutputs(t *testing.T) {
	cg := callgraph.New()
	rl := &rule.Rule{
		Inputs:      paths("user.id"),
		Outputs:     paths("user.a", "user.b"),
		Cardinality: rule.Many,
		Function:    noopFn,
	}
	cg.AddNode(paths("user.id"), paths("user.a", "user.b"), rl, nil)

	_, err := Plan(cg)
	require.Error(t, err)
	var unsupported *UnsupportedNodeError
	require.True(t, errors.As(err, &unsupported))
}

func TestPlanAcceptsFusedManyCardinalityWithMultipleOutputs(t *testing.T) {
	cg := callgraph.New()
	rl := &rule.Rule{
		Inputs:      paths("user.id"),
		Outputs:     paths("user.books.id", "user.books.name"),
		Cardinality: rule.Many,
		Function:    noopFn,
		Native:      fakeFused{},
	}
	cg.AddNode(paths("user.id"), paths("user.books.id", "user.books.name"), rl, nil)

	order, err := Plan(cg)
	require.NoError(t, err)
	require.Len(t, order, 1)
}

func TestPlanDetectsCycle(t *testing.T) {
	cg := callgraph.New()
	rlA := &rule.Rule{Inputs: paths("b"), Outputs: paths("a"), Cardinality: rule.One, Function: noopFn}
	rlB := &rule.Rule{Inputs: paths("a"), Outputs: paths("b"), Cardinality: rule.One, Function: noopFn}

	cg.AddNode(paths("b"), paths("a"), rlA, nil)
	cg.AddNode(paths("a"), paths("b"), rlB, nil)

	_, err := Plan(cg)
	require.Error(t, err)
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Len(t, cycle.Remaining, 2)
}
