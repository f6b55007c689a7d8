package simulate

import (
	"github.com/l3aro/pyflow/pkg/flow"
	"github.com/l3aro/pyflow/pkg/pyast"
)

func (s *state) simulateFor(st *pyast.For) {
	header := "for " + pyast.Render(st.Target) + " in " + pyast.Render(st.Iter)
	s.simulateLoop(pyast.Trim(header, s.width), st, st.Iter, st.Body, st.Orelse)
}

func (s *state) simulateWhile(st *pyast.While) {
	s.simulateLoop(s.label("while ", st.Test), st, st.Test, st.Body, st.Orelse)
}

// simulateLoop walks the body once and closes it with a back edge to the
// header. The loop exit hangs off the header so it is reached whether or
// not the body runs.
func (s *state) simulateLoop(label string, st pyast.Stmt, header pyast.Expr, body, orelse []pyast.Stmt) {
	start := s.emit(flow.KindLoopStart, label, st)
	s.record(StartLoop, LogLoop)

	s.walkExpr(header)
	s.walkBody(body)

	s.graph.AddEdge(s.current, start)
	s.record(EndLoop, LogLoop)

	s.current = start
	s.emit(flow.KindLoopEnd, EndLoop, st)
	s.walkBody(orelse)
}
