package flow

// NodeRecord is the serializable form of a Node. Syntax back-references are
// dropped; the source position survives as Line.
type NodeRecord struct {
	ID         NodeID `json:"id" msgpack:"id"`
	Kind       Kind   `json:"kind" msgpack:"kind"`
	Label      string `json:"label" msgpack:"label"`
	Line       int    `json:"line,omitempty" msgpack:"line,omitempty"`
	MergePoint NodeID `json:"merge_point" msgpack:"merge_point"`
}

// EdgeRecord is one parent→child relationship.
type EdgeRecord struct {
	From NodeID `json:"from" msgpack:"from"`
	To   NodeID `json:"to" msgpack:"to"`
}

// GraphSnapshot is a plain-data copy of a Graph, used for caching and
// JSON export.
type GraphSnapshot struct {
	Nodes []NodeRecord `json:"nodes" msgpack:"nodes"`
	Edges []EdgeRecord `json:"edges" msgpack:"edges"`
}

// Snapshot copies the graph into plain data. Edges are listed per parent in
// child insertion order so Restore reproduces every node's child order.
func (g *Graph) Snapshot() GraphSnapshot {
	snap := GraphSnapshot{
		Nodes: make([]NodeRecord, 0, len(g.nodes)),
		Edges: make([]EdgeRecord, 0, g.edges),
	}
	for _, n := range g.nodes {
		rec := NodeRecord{ID: n.ID, Kind: n.Kind, Label: n.Label, MergePoint: n.MergePoint}
		if n.Syntax != nil {
			rec.Line = n.Syntax.Position().Line
		}
		snap.Nodes = append(snap.Nodes, rec)
		for _, child := range n.children {
			snap.Edges = append(snap.Edges, EdgeRecord{From: n.ID, To: child})
		}
	}
	return snap
}

// Restore rebuilds a Graph from a snapshot. Node IDs are preserved.
func (s GraphSnapshot) Restore() *Graph {
	g := NewGraph()
	for _, rec := range s.Nodes {
		id := g.NewNode(rec.Kind, rec.Label, nil)
		g.nodes[id].MergePoint = rec.MergePoint
	}
	for _, e := range s.Edges {
		g.AddEdge(e.From, e.To)
	}
	return g
}
