package simulate

import (
	"github.com/l3aro/pyflow/pkg/flow"
	"github.com/l3aro/pyflow/pkg/pyast"
)

const lambdaName = "lambda"

func (s *state) walkExprs(exprs []pyast.Expr) {
	for _, e := range exprs {
		s.walkExpr(e)
	}
}

// walkExpr visits e in evaluation order, simulating every call it contains
// and logging attribute accesses and lambdas.
func (s *state) walkExpr(e pyast.Expr) {
	switch x := e.(type) {
	case nil:
	case *pyast.Name, *pyast.Constant:
	case *pyast.Call:
		s.walkCall(x)
	case *pyast.Attribute:
		s.walkAttribute(x)
	case *pyast.Lambda:
		s.record(lambdaName, LogLambda)
		s.walkExpr(x.Body)
	case *pyast.Comprehension:
		for _, gen := range x.Generators {
			s.walkExpr(gen.Iter)
			s.walkExprs(gen.Ifs)
		}
		s.walkExpr(x.Elt)
		s.walkExpr(x.Value)
	case *pyast.IfExp:
		s.walkExpr(x.Test)
		s.walkExpr(x.Body)
		s.walkExpr(x.Orelse)
	case *pyast.BinOp:
		s.walkExpr(x.Left)
		s.walkExpr(x.Right)
	case *pyast.Compare:
		s.walkExprs(x.Operands)
	case *pyast.UnaryOp:
		s.walkExpr(x.Operand)
	case *pyast.JoinedStr:
		s.walkExprs(x.Values)
	case *pyast.Collection:
		s.walkExprs(x.Elts)
	case *pyast.Dict:
		for i, v := range x.Values {
			if i < len(x.Keys) {
				s.walkExpr(x.Keys[i])
			}
			s.walkExpr(v)
		}
	case *pyast.Subscript:
		s.walkExpr(x.Value)
		s.walkExprs(x.Index)
	case *pyast.Starred:
		s.walkExpr(x.Value)
	case *pyast.Await:
		s.walkExpr(x.Value)
	case *pyast.Yield:
		s.walkExpr(x.Value)
	case *pyast.NamedExpr:
		s.walkExpr(x.Value)
	case *pyast.Unknown:
		s.walkExprs(x.Children)
	}
}

// walkCall evaluates arguments left to right, keywords after positionals,
// and then the callee.
func (s *state) walkCall(c *pyast.Call) {
	s.walkExprs(c.Args)
	for _, kw := range c.Keywords {
		s.walkExpr(kw.Value)
	}

	if isSuperCall(c) {
		return
	}

	switch fn := c.Func.(type) {
	case *pyast.Name:
		s.resolve(fn.ID, c)
	case *pyast.Attribute:
		s.walkAttribute(fn)
		s.emit(flow.KindCall, s.label("", fn), c)
	default:
		s.walkExpr(c.Func)
		s.emit(flow.KindCall, s.label("", c.Func), c)
	}
}

func (s *state) walkAttribute(a *pyast.Attribute) {
	s.walkExpr(a.Value)
	s.record(a.Attr, LogAttribute)
}
