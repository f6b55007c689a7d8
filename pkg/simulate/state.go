package simulate

import (
	"github.com/l3aro/pyflow/internal/log"
	"github.com/l3aro/pyflow/pkg/defs"
	"github.com/l3aro/pyflow/pkg/flow"
	"github.com/l3aro/pyflow/pkg/pyast"
)

// branchContext identifies the innermost conditional fork a call happens
// under: the if statement being walked and which of its sides. The zero
// value is the top level, outside any fork.
type branchContext struct {
	stmt   *pyast.If
	orelse bool
}

// signature identifies one function activation: the function and the
// branch it was entered from.
type signature struct {
	name string
	ctx  branchContext
}

// mergeKey identifies a conditional within one function activation.
type mergeKey struct {
	activation signature
	stmt       *pyast.If
}

// state is owned by a single run and discarded afterwards.
type state struct {
	defs   *defs.Table
	graph  *flow.Graph
	width  int
	logger log.Logger

	current     flow.NodeID
	ctx         branchContext
	activation  signature
	inFlight    map[string]bool // functions on the expansion stack
	merges      map[mergeKey]flow.NodeID
	mergeOwners map[flow.NodeID]*pyast.If // merge node -> the if it joins
	visits      []LogEntry
}

func newState(table *defs.Table, opts Options) *state {
	return &state{
		defs:        table,
		graph:       flow.NewGraph(),
		width:       opts.LabelWidth,
		logger:      opts.Logger,
		current:     flow.None,
		inFlight:    make(map[string]bool),
		merges:      make(map[mergeKey]flow.NodeID),
		mergeOwners: make(map[flow.NodeID]*pyast.If),
	}
}

// emit creates a node as the successor of the current node and makes it
// current.
func (s *state) emit(kind flow.Kind, label string, syntax pyast.Node) flow.NodeID {
	id := s.graph.NewNode(kind, label, syntax)
	if s.current != flow.None {
		s.graph.AddEdge(s.current, id)
	}
	s.current = id
	return id
}

func (s *state) record(name string, kind LogKind) {
	s.visits = append(s.visits, LogEntry{Name: name, Kind: kind})
}

func (s *state) label(prefix string, n pyast.Node) string {
	return pyast.Trim(prefix+pyast.Render(n), s.width)
}

// enterBranch switches to ctx and returns a func restoring the previous one.
func (s *state) enterBranch(ctx branchContext) func() {
	prev := s.ctx
	s.ctx = ctx
	return func() { s.ctx = prev }
}
