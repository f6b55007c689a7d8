package pyast

// Walk traverses the tree starting from node in depth-first source order,
// calling fn for each node. If fn returns false, Walk does not descend into
// that node's children.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Module:
		walkStmts(n.Body, fn)

	case *FunctionDef:
		walkStmts(n.Body, fn)

	case *ClassDef:
		walkExprs(n.Bases, fn)
		walkStmts(n.Body, fn)

	case *ExprStmt:
		walkExpr(n.Value, fn)

	case *Assign:
		walkExprs(n.Targets, fn)
		walkExpr(n.Value, fn)

	case *Return:
		walkExpr(n.Value, fn)

	case *If:
		walkExpr(n.Test, fn)
		walkStmts(n.Body, fn)
		walkStmts(n.Orelse, fn)

	case *For:
		walkExpr(n.Target, fn)
		walkExpr(n.Iter, fn)
		walkStmts(n.Body, fn)
		walkStmts(n.Orelse, fn)

	case *While:
		walkExpr(n.Test, fn)
		walkStmts(n.Body, fn)
		walkStmts(n.Orelse, fn)

	case *With:
		walkExprs(n.Items, fn)
		walkStmts(n.Body, fn)

	case *Try:
		walkStmts(n.Body, fn)
		for _, h := range n.Handlers {
			walkExpr(h.Type, fn)
			walkStmts(h.Body, fn)
		}
		walkStmts(n.Orelse, fn)
		walkStmts(n.Finally, fn)

	case *Simple:
		walkExprs(n.Exprs, fn)

	case *Attribute:
		walkExpr(n.Value, fn)

	case *Call:
		walkExpr(n.Func, fn)
		walkExprs(n.Args, fn)
		for _, kw := range n.Keywords {
			walkExpr(kw.Value, fn)
		}

	case *Lambda:
		walkExpr(n.Body, fn)

	case *Comprehension:
		for _, g := range n.Generators {
			walkExpr(g.Target, fn)
			walkExpr(g.Iter, fn)
			walkExprs(g.Ifs, fn)
		}
		walkExpr(n.Elt, fn)
		walkExpr(n.Value, fn)

	case *IfExp:
		walkExpr(n.Test, fn)
		walkExpr(n.Body, fn)
		walkExpr(n.Orelse, fn)

	case *BinOp:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)

	case *Compare:
		walkExprs(n.Operands, fn)

	case *UnaryOp:
		walkExpr(n.Operand, fn)

	case *JoinedStr:
		walkExprs(n.Values, fn)

	case *Collection:
		walkExprs(n.Elts, fn)

	case *Dict:
		for i := range n.Values {
			walkExpr(n.Keys[i], fn)
			walkExpr(n.Values[i], fn)
		}

	case *Subscript:
		walkExpr(n.Value, fn)
		walkExprs(n.Index, fn)

	case *Starred:
		walkExpr(n.Value, fn)

	case *Await:
		walkExpr(n.Value, fn)

	case *Yield:
		walkExpr(n.Value, fn)

	case *NamedExpr:
		walkExpr(n.Target, fn)
		walkExpr(n.Value, fn)

	case *Unknown:
		walkExprs(n.Children, fn)

	case *Name, *Constant:
		// leaves
	}
}

func walkStmts(stmts []Stmt, fn func(Node) bool) {
	for _, s := range stmts {
		Walk(s, fn)
	}
}

func walkExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		walkExpr(e, fn)
	}
}

// walkExpr guards against typed-nil interface values for optional fields.
func walkExpr(e Expr, fn func(Node) bool) {
	if e == nil {
		return
	}
	Walk(e, fn)
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var kids []Node
	Walk(node, func(n Node) bool {
		if n == node {
			return true
		}
		kids = append(kids, n)
		return false
	})
	return kids
}

// WalkBreadthFirst visits node and its descendants level by level, each
// level in source order. Returning false from fn skips that node's
// children.
func WalkBreadthFirst(node Node, fn func(Node) bool) {
	if node == nil {
		return
	}
	queue := []Node{node}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if fn(n) {
			queue = append(queue, Children(n)...)
		}
	}
}
