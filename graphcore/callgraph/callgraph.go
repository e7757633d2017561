// Package callgraph holds the directed graph of rule invocations query
// search builds by chaining backwards from requested outputs to known
// inputs: nodes are rule invocations, edges are paths, and an edge's
// setter/getters record which node produces and which nodes consume a
// given path.
package callgraph

import (
	"sort"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/relation"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// Node is one rule invocation: a set of incoming paths bound from already
// -grounded edges, a set of outgoing paths this invocation produces, the
// rule being invoked, and one relation slot per outgoing path (usually
// zero-valued).
type Node struct {
	IncomingPaths []gcpath.Path
	OutgoingPaths []gcpath.Path
	Rule          *rule.Rule
	Relations     []relation.Relation

	id int
}

// Name renders the node's rule for diagnostics and Explain output.
func (n *Node) Name() string {
	return n.Rule.Name()
}

// Edge is the producer/consumer record for one path: Setter is the node
// that writes it (nil if it's a caller-supplied ground value), Getters
// are every node that reads it as an input, and Out marks that the
// caller requested this path in the result.
type Edge struct {
	Path    gcpath.Path
	Getters []*Node
	Setter  *Node
	Out     bool
}

func (e *Edge) addGetter(n *Node) {
	for _, g := range e.Getters {
		if g == n {
			return
		}
	}
	e.Getters = append(e.Getters, n)
}

func (e *Edge) removeGetter(n *Node) {
	out := e.Getters[:0]
	for _, g := range e.Getters {
		if g != n {
			out = append(out, g)
		}
	}
	e.Getters = out
}

// CallGraph is the mutable set of nodes and path-indexed edges built
// during query search and rewritten during optimisation.
type CallGraph struct {
	Nodes []*Node
	Edges map[string]*Edge

	nextID int
}

// New builds an empty call graph.
func New() *CallGraph {
	return &CallGraph{Edges: make(map[string]*Edge)}
}

// Edge returns the edge for path, creating an empty one if it doesn't
// exist yet.
func (g *CallGraph) Edge(path gcpath.Path) *Edge {
	key := path.String()
	e, ok := g.Edges[key]
	if !ok {
		e = &Edge{Path: path}
		g.Edges[key] = e
	}
	return e
}

// AddNode wires a new Node into the graph: for each outgoing path, this
// node becomes that edge's setter (at most one setter per edge is an
// invariant callers must maintain — search never requests a second
// producer for an already-grounded path); for each incoming path, this
// node is added to that edge's getters. relations, if non-nil, must be
// parallel to outgoing; a nil relations is treated as all-zero.
func (g *CallGraph) AddNode(incoming, outgoing []gcpath.Path, rl *rule.Rule, relations []relation.Relation) *Node {
	if relations == nil {
		relations = make([]relation.Relation, len(outgoing))
	}
	n := &Node{
		IncomingPaths: sortedCopy(incoming),
		OutgoingPaths: append([]gcpath.Path(nil), outgoing...),
		Rule:          rl,
		Relations:     relations,
		id:            g.nextID,
	}
	g.nextID++
	g.Nodes = append(g.Nodes, n)

	for _, p := range n.OutgoingPaths {
		g.Edge(p).Setter = n
	}
	for _, p := range n.IncomingPaths {
		g.Edge(p).addGetter(n)
	}
	return n
}

// RemoveNode unwires n from every edge it touches and drops it from the
// node list. Used by the optimiser when replacing parent+child with a
// fused node.
func (g *CallGraph) RemoveNode(n *Node) {
	for _, p := range n.OutgoingPaths {
		e := g.Edge(p)
		if e.Setter == n {
			e.Setter = nil
		}
	}
	for _, p := range n.IncomingPaths {
		g.Edge(p).removeGetter(n)
	}
	out := g.Nodes[:0]
	for _, node := range g.Nodes {
		if node != n {
			out = append(out, node)
		}
	}
	g.Nodes = out
}

// MarkOutput flags path's edge as requested in the result output.
func (g *CallGraph) MarkOutput(path gcpath.Path) {
	g.Edge(path).Out = true
}

// OutputPaths returns every path whose edge is marked as a requested
// output, in a deterministic order.
func (g *CallGraph) OutputPaths() []gcpath.Path {
	var out []gcpath.Path
	for _, e := range g.Edges {
		if e.Out {
			out = append(out, e.Path)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// NodesDependingOnPath returns every node that reads path as an input,
// used to annotate a PathNotFound error with the nodes stranded by the
// missing producer.
func (g *CallGraph) NodesDependingOnPath(path gcpath.Path) []*Node {
	e, ok := g.Edges[path.String()]
	if !ok {
		return nil
	}
	return e.Getters
}

func sortedCopy(paths []gcpath.Path) []gcpath.Path {
	out := make([]gcpath.Path, len(paths))
	copy(out, paths)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
