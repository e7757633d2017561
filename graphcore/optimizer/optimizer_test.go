package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/relation"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// fakeQuery is a minimal stand-in for sqlfn.SQLQuery: it implements
// Fusible and Constrainable without pulling in database/sql or squirrel,
// so the optimizer's graph rewriting can be tested in isolation.
type fakeQuery struct {
	name  string
	where map[int]interface{}
}

func (f *fakeQuery) Function() rule.Function {
	return func(rule.Args) (interface{}, error) { return f.name, nil }
}

func (f *fakeQuery) Merge(child Fusible) (Fusible, error) {
	c := child.(*fakeQuery)
	where := map[int]interface{}{}
	for k, v := range f.where {
		where[k] = v
	}
	for k, v := range c.where {
		where[k] = v
	}
	return &fakeQuery{name: f.name + "+" + c.name, where: where}, nil
}

func (f *fakeQuery) PushDown(idx int, op relation.Op, value interface{}) (Constrainable, bool) {
	where := map[int]interface{}{}
	for k, v := range f.where {
		where[k] = v
	}
	where[idx] = value
	return &fakeQuery{name: f.name, where: where}, true
}

func sqlRule(name string, inputs []string, outputs []string) *rule.Rule {
	inPaths := make([]gcpath.Path, len(inputs))
	for i, s := range inputs {
		inPaths[i] = gcpath.New(s)
	}
	outPaths := make([]gcpath.Path, len(outputs))
	for i, s := range outputs {
		outPaths[i] = gcpath.New(s)
	}
	q := &fakeQuery{name: name, where: map[int]interface{}{}}
	return &rule.Rule{
		Inputs:      inPaths,
		Outputs:     outPaths,
		Cardinality: rule.One,
		Function:    q.Function(),
		Native:      q,
	}
}

func TestFuseMergesParentAndChild(t *testing.T) {
	cg := callgraph.New()
	parent := sqlRule("parent", []string{"user.id"}, []string{"user.books.id"})
	child := sqlRule("child", []string{"user.books.id"}, []string{"user.books.name"})

	cg.AddNode(pathsOf("user.id"), pathsOf("user.books.id"), parent, nil)
	cg.AddNode(pathsOf("user.books.id"), pathsOf("user.books.name"), child, nil)

	require.NoError(t, Fuse(cg))
	require.Len(t, cg.Nodes, 1)

	fused := cg.Nodes[0]
	assert.Equal(t, "user.id", fused.IncomingPaths[0].String())
	require.Len(t, fused.OutgoingPaths, 2)
	assert.Equal(t, "parent+child", fused.Rule.Native.(*fakeQuery).name)
	assert.Equal(t, rule.Many, fused.Rule.Cardinality)
}

func TestFuseLeavesNonFusibleNodesAlone(t *testing.T) {
	cg := callgraph.New()
	rl := &rule.Rule{
		Inputs:      pathsOf("user.id"),
		Outputs:     pathsOf("user.name"),
		Cardinality: rule.One,
		Function:    func(rule.Args) (interface{}, error) { return "x", nil },
	}
	cg.AddNode(pathsOf("user.id"), pathsOf("user.name"), rl, nil)

	require.NoError(t, Fuse(cg))
	assert.Len(t, cg.Nodes, 1)
}

func TestPushDownRelationsFoldsSinglePair(t *testing.T) {
	cg := callgraph.New()
	rl := sqlRule("q", []string{"user.id"}, []string{"user.age"})
	n := cg.AddNode(pathsOf("user.id"), pathsOf("user.age"),
		rl, []relation.Relation{relation.New(relation.OpGt, 21)})

	PushDownRelations(cg)

	assert.True(t, n.Relations[0].IsZero())
	assert.Equal(t, 21, n.Rule.Native.(*fakeQuery).where[0])
}

func TestPushDownRelationsLeavesConjunctionInPlace(t *testing.T) {
	cg := callgraph.New()
	rl := sqlRule("q", []string{"user.id"}, []string{"user.age"})
	merged := relation.New(relation.OpGt, 21).Merge(relation.New(relation.OpLt, 65))
	n := cg.AddNode(pathsOf("user.id"), pathsOf("user.age"), rl, []relation.Relation{merged})

	PushDownRelations(cg)

	assert.False(t, n.Relations[0].IsZero())
	assert.Empty(t, n.Rule.Native.(*fakeQuery).where)
}

func pathsOf(s ...string) []gcpath.Path {
	out := make([]gcpath.Path, len(s))
	for i, p := range s {
		out[i] = gcpath.New(p)
	}
	return out
}
