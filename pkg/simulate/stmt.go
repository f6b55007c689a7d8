package simulate

import "github.com/l3aro/pyflow/pkg/pyast"

func (s *state) walkBody(body []pyast.Stmt) {
	for _, stmt := range body {
		s.walkStmt(stmt)
	}
}

// walkStmt simulates one statement. Control never leaves a body early:
// return, break and continue do not cut the walk short.
func (s *state) walkStmt(stmt pyast.Stmt) {
	switch st := stmt.(type) {
	case *pyast.ExprStmt:
		s.walkExpr(st.Value)
	case *pyast.Assign:
		// targets are stored to, not evaluated for calls
		s.walkExpr(st.Value)
	case *pyast.Return:
		s.walkExpr(st.Value)
	case *pyast.If:
		s.simulateIf(st)
	case *pyast.For:
		s.simulateFor(st)
	case *pyast.While:
		s.simulateWhile(st)
	case *pyast.With:
		s.walkExprs(st.Items)
		s.walkBody(st.Body)
	case *pyast.Try:
		s.walkBody(st.Body)
		for _, h := range st.Handlers {
			s.walkBody(h.Body)
		}
		s.walkBody(st.Orelse)
		s.walkBody(st.Finally)
	case *pyast.Simple:
		// raise, assert, del and friends still evaluate their operands
		s.walkExprs(st.Exprs)
	case *pyast.FunctionDef, *pyast.ClassDef:
		// definitions are collected up front and only run when called
	}
}
