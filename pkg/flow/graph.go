// Package flow defines the execution-flow graph produced by the simulator.
// Nodes live in an arena owned by the Graph and refer to each other by
// NodeID, so loop back-edges and shared merge points never form ownership
// cycles.
package flow

import (
	"fmt"

	"github.com/l3aro/pyflow/pkg/pyast"
)

// Kind represents the syntactic event a flow node stands for.
type Kind string

const (
	KindEntry     Kind = "ENTRY"      // Program start
	KindFunction  Kind = "FUNCTION"   // Activation of a user-defined function
	KindCall      Kind = "CALL"       // Unresolved or built-in callable (leaf)
	KindCondition Kind = "CONDITION"  // Start of an if/else fork
	KindMerge     Kind = "MERGE"      // Where the two branches rejoin
	KindLoopStart Kind = "LOOP_START" // Loop header, target of the back edge
	KindLoopEnd   Kind = "LOOP_END"   // Loop exit
	KindEnd       Kind = "END"        // Program exit
)

// Kinds lists every node kind in a stable order.
var Kinds = []Kind{
	KindEntry, KindFunction, KindCall, KindCondition,
	KindMerge, KindLoopStart, KindLoopEnd, KindEnd,
}

// NodeID identifies a node within its Graph.
type NodeID int

// None is the absent NodeID.
const None NodeID = -1

// Node is a vertex of the flow graph.
type Node struct {
	ID     NodeID
	Kind   Kind
	Label  string
	Syntax pyast.Node // originating syntax, for diagnostics only

	// MergePoint is the merge node a conditional fork rejoins at, or None.
	MergePoint NodeID

	children []NodeID
	parents  []NodeID
}

// Key returns the identifier used for rendering and de-duplication.
func (n *Node) Key() string {
	return fmt.Sprintf("n%d", n.ID)
}

// Children returns the node's successors in insertion order.
func (n *Node) Children() []NodeID {
	return n.children
}

// Parents returns the node's predecessors in insertion order.
func (n *Node) Parents() []NodeID {
	return n.parents
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %s", n.Kind, n.Label)
}

// Graph owns every node of one simulation run.
type Graph struct {
	nodes []*Node
	edges int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// NewNode appends a node to the arena and returns its ID.
func (g *Graph) NewNode(kind Kind, label string, syntax pyast.Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		ID:         id,
		Kind:       kind,
		Label:      label,
		Syntax:     syntax,
		MergePoint: None,
	})
	return id
}

// Node returns the node with the given ID, or nil if it does not exist.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct parent→child edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// AddEdge records parent→child. Adding an existing edge is a no-op.
// It reports whether a new edge was created.
func (g *Graph) AddEdge(parent, child NodeID) bool {
	p, c := g.Node(parent), g.Node(child)
	if p == nil || c == nil {
		return false
	}
	if contains(p.children, child) {
		return false
	}
	p.children = append(p.children, child)
	if !contains(c.parents, parent) {
		c.parents = append(c.parents, parent)
	}
	g.edges++
	return true
}

// HasEdge reports whether parent→child exists.
func (g *Graph) HasEdge(parent, child NodeID) bool {
	p := g.Node(parent)
	return p != nil && contains(p.children, child)
}

// Walk visits every node reachable from start depth-first, children in
// insertion order, each node exactly once even when the graph has cycles.
// Returning false from fn skips that node's children.
func (g *Graph) Walk(start NodeID, fn func(*Node) bool) {
	visited := make(map[NodeID]bool)
	var visit func(id NodeID)
	visit = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		n := g.Node(id)
		if n == nil || !fn(n) {
			return
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(start)
}

// Reachable reports whether to can be reached from from by following children.
func (g *Graph) Reachable(from, to NodeID) bool {
	found := false
	g.Walk(from, func(n *Node) bool {
		if n.ID == to {
			found = true
		}
		return !found
	})
	return found
}

// CountKind returns how many nodes have the given kind.
func (g *Graph) CountKind(kind Kind) int {
	count := 0
	for _, n := range g.nodes {
		if n.Kind == kind {
			count++
		}
	}
	return count
}

func contains(ids []NodeID, id NodeID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
