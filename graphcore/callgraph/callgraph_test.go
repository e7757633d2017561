package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/relation"
	"github.com/wbrown/graphcore/graphcore/rule"
)

func testRule(output string, inputs ...string) *rule.Rule {
	inPaths := make([]gcpath.Path, len(inputs))
	for i, in := range inputs {
		inPaths[i] = gcpath.New(in)
	}
	return &rule.Rule{
		Inputs:      inPaths,
		Outputs:     []gcpath.Path{gcpath.New(output)},
		Cardinality: rule.One,
		Function:    func(rule.Args) (interface{}, error) { return nil, nil },
	}
}

func TestAddNodeWiresEdges(t *testing.T) {
	g := New()
	rl := testRule("user.name", "user.id")
	n := g.AddNode([]gcpath.Path{gcpath.New("user.id")}, []gcpath.Path{gcpath.New("user.name")}, rl, nil)

	require.Len(t, g.Nodes, 1)
	assert.Same(t, n, g.Edge(gcpath.New("user.name")).Setter)
	assert.Contains(t, g.Edge(gcpath.New("user.id")).Getters, n)
}

func TestRemoveNodeUnwiresEdges(t *testing.T) {
	g := New()
	rl := testRule("user.name", "user.id")
	n := g.AddNode([]gcpath.Path{gcpath.New("user.id")}, []gcpath.Path{gcpath.New("user.name")}, rl, nil)
	g.RemoveNode(n)

	assert.Nil(t, g.Edge(gcpath.New("user.name")).Setter)
	assert.Empty(t, g.Edge(gcpath.New("user.id")).Getters)
	assert.Empty(t, g.Nodes)
}

func TestMarkOutputAndOutputPaths(t *testing.T) {
	g := New()
	rl := testRule("user.name", "user.id")
	g.AddNode([]gcpath.Path{gcpath.New("user.id")}, []gcpath.Path{gcpath.New("user.name")}, rl, nil)
	g.MarkOutput(gcpath.New("user.name"))

	paths := g.OutputPaths()
	require.Len(t, paths, 1)
	assert.Equal(t, "user.name", paths[0].String())
}

func TestNodesDependingOnPath(t *testing.T) {
	g := New()
	rl := testRule("user.name", "user.id")
	n := g.AddNode([]gcpath.Path{gcpath.New("user.id")}, []gcpath.Path{gcpath.New("user.name")}, rl, nil)

	deps := g.NodesDependingOnPath(gcpath.New("user.id"))
	require.Len(t, deps, 1)
	assert.Same(t, n, deps[0])
}

func TestExplainRendersRows(t *testing.T) {
	g := New()
	rl := testRule("user.name", "user.id")
	g.AddNode([]gcpath.Path{gcpath.New("user.id")}, []gcpath.Path{gcpath.New("user.name")},
		rl, []relation.Relation{relation.New(relation.OpGt, 5)})

	out := g.Explain()
	assert.Contains(t, out, "user.name")
	assert.Contains(t, out, "user.id")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "> 5")
}

func TestExplainEmptyGraph(t *testing.T) {
	g := New()
	assert.Contains(t, g.Explain(), "empty")
}
