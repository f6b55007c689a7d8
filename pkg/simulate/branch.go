package simulate

import (
	"github.com/l3aro/pyflow/pkg/flow"
	"github.com/l3aro/pyflow/pkg/pyast"
)

const mergeLabel = "Merge"

// simulateIf forks at a CONDITION node, walks both sides from it and joins
// them at a MERGE node. An elif is the nested If of the else side.
func (s *state) simulateIf(st *pyast.If) {
	s.walkExpr(st.Test)
	cond := s.emit(flow.KindCondition, s.label("if ", st.Test), st)

	restore := s.enterBranch(branchContext{stmt: st})
	s.walkBody(st.Body)
	restore()
	trueEnd := s.current

	s.current = cond
	restore = s.enterBranch(branchContext{stmt: st, orelse: true})
	s.walkBody(st.Orelse)
	restore()
	falseEnd := s.current

	merge := s.mergeFor(st, trueEnd)
	for _, end := range []flow.NodeID{trueEnd, falseEnd} {
		if end != flow.None && end != merge {
			s.graph.AddEdge(end, merge)
		}
	}

	s.graph.Node(cond).MergePoint = merge
	if n := s.graph.Node(trueEnd); n != nil && n.MergePoint == flow.None {
		n.MergePoint = merge
	}
	s.current = merge
}

// mergeFor returns the merge node of st within the current activation.
// Expanding the same function again converges on the node created the
// first time, as does a true side that ends on a node already joined at
// st's merge.
func (s *state) mergeFor(st *pyast.If, trueEnd flow.NodeID) flow.NodeID {
	key := mergeKey{activation: s.activation, stmt: st}
	if merge, ok := s.merges[key]; ok {
		s.logger.Debug("reusing merge point", "function", s.activation.name, "line", st.Position().Line)
		return merge
	}
	if end := s.graph.Node(trueEnd); end != nil && end.MergePoint != flow.None {
		if s.mergeOwners[end.MergePoint] == st {
			s.merges[key] = end.MergePoint
			return end.MergePoint
		}
	}
	merge := s.graph.NewNode(flow.KindMerge, mergeLabel, st)
	s.merges[key] = merge
	s.mergeOwners[merge] = st
	return merge
}
