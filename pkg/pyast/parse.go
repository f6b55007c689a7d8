package pyast

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError reports the first error node tree-sitter recovered from.
type SyntaxError struct {
	Path string
	Pos  Pos
	Near string
}

func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d:%d: invalid syntax near %q", e.Path, e.Pos.Line, e.Pos.Col, e.Near)
	}
	return fmt.Sprintf("line %d:%d: invalid syntax near %q", e.Pos.Line, e.Pos.Col, e.Near)
}

// ParseFile reads and parses a Python file.
func ParseFile(path string) (*Module, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	mod, err := Parse(content)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Path = path
		}
		return nil, err
	}
	return mod, nil
}

// Parse parses Python source into a Module. Source that tree-sitter can
// only recover from with error nodes yields a *SyntaxError.
func Parse(src []byte) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, src)
	}

	l := &lowerer{src: src}
	return &Module{base: l.base(root), Body: l.block(root)}, nil
}

func syntaxError(root *sitter.Node, src []byte) *SyntaxError {
	n := firstError(root)
	if n == nil {
		n = root
	}
	near := n.Content(src)
	if len(near) > 20 {
		near = near[:20]
	}
	return &SyntaxError{
		Pos:  Pos{Line: int(n.StartPoint().Row) + 1, Col: int(n.StartPoint().Column) + 1},
		Near: near,
	}
}

// firstError finds the first ERROR or MISSING node in source order.
func firstError(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

// lowerer converts tree-sitter nodes into pyast variants.
type lowerer struct {
	src []byte
}

func (l *lowerer) base(n *sitter.Node) base {
	return base{
		At:  Pos{Line: int(n.StartPoint().Row) + 1, Col: int(n.StartPoint().Column) + 1},
		Src: n.Content(l.src),
	}
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// startsWith reports whether the first child of n is the anonymous token kw.
func startsWith(n *sitter.Node, kw string) bool {
	if n == nil || n.ChildCount() == 0 {
		return false
	}
	first := n.Child(0)
	return first != nil && first.Type() == kw
}

// block lowers every statement child of a module or block node.
func (l *lowerer) block(n *sitter.Node) []Stmt {
	var stmts []Stmt
	for _, child := range namedChildren(n) {
		if s := l.stmt(child); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (l *lowerer) stmt(n *sitter.Node) Stmt {
	switch n.Type() {
	case "function_definition":
		return &FunctionDef{
			base:   l.base(n),
			Name:   l.text(n.ChildByFieldName("name")),
			Params: l.text(n.ChildByFieldName("parameters")),
			Body:   l.block(n.ChildByFieldName("body")),
			Async:  startsWith(n, "async"),
		}

	case "class_definition":
		cls := &ClassDef{
			base: l.base(n),
			Name: l.text(n.ChildByFieldName("name")),
			Body: l.block(n.ChildByFieldName("body")),
		}
		for _, arg := range namedChildren(n.ChildByFieldName("superclasses")) {
			switch arg.Type() {
			case "keyword_argument", "dictionary_splat":
				// metaclass= and friends are not bases
			default:
				cls.Bases = append(cls.Bases, l.expr(arg))
			}
		}
		return cls

	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil {
			return l.stmt(def)
		}
		return nil

	case "expression_statement":
		children := namedChildren(n)
		if len(children) == 1 {
			switch children[0].Type() {
			case "assignment", "augmented_assignment":
				return l.assignment(n, children[0])
			}
			return &ExprStmt{base: l.base(n), Value: l.expr(children[0])}
		}
		return &ExprStmt{base: l.base(n), Value: l.tuple(n, children)}

	case "return_statement":
		ret := &Return{base: l.base(n)}
		if children := namedChildren(n); len(children) > 0 {
			ret.Value = l.expr(children[0])
		}
		return ret

	case "if_statement":
		var alts []*sitter.Node
		for _, child := range namedChildren(n) {
			if child.Type() == "elif_clause" || child.Type() == "else_clause" {
				alts = append(alts, child)
			}
		}
		return &If{
			base:   l.base(n),
			Test:   l.expr(n.ChildByFieldName("condition")),
			Body:   l.block(n.ChildByFieldName("consequence")),
			Orelse: l.elseChain(alts),
		}

	case "for_statement":
		return &For{
			base:   l.base(n),
			Target: l.expr(n.ChildByFieldName("left")),
			Iter:   l.expr(n.ChildByFieldName("right")),
			Body:   l.block(n.ChildByFieldName("body")),
			Orelse: l.elseBody(n.ChildByFieldName("alternative")),
			Async:  startsWith(n, "async"),
		}

	case "while_statement":
		return &While{
			base:   l.base(n),
			Test:   l.expr(n.ChildByFieldName("condition")),
			Body:   l.block(n.ChildByFieldName("body")),
			Orelse: l.elseBody(n.ChildByFieldName("alternative")),
		}

	case "with_statement":
		w := &With{base: l.base(n), Body: l.block(n.ChildByFieldName("body"))}
		for _, child := range namedChildren(n) {
			if child.Type() != "with_clause" {
				continue
			}
			for _, item := range namedChildren(child) {
				value := item.ChildByFieldName("value")
				if value == nil {
					value = item
				}
				w.Items = append(w.Items, l.expr(value))
			}
		}
		return w

	case "try_statement":
		return l.try(n)

	case "comment":
		return nil

	case "import_statement", "import_from_statement", "future_import_statement",
		"global_statement", "nonlocal_statement", "pass_statement",
		"break_statement", "continue_statement":
		return &Simple{base: l.base(n), Kind: n.Type()}

	default:
		s := &Simple{base: l.base(n), Kind: n.Type()}
		for _, child := range namedChildren(n) {
			s.Exprs = append(s.Exprs, l.expr(child))
		}
		return s
	}
}

// elseChain lowers elif/else clauses into Python's nested-If shape.
func (l *lowerer) elseChain(alts []*sitter.Node) []Stmt {
	if len(alts) == 0 {
		return nil
	}
	alt := alts[0]
	if alt.Type() == "else_clause" {
		return l.block(alt.ChildByFieldName("body"))
	}
	return []Stmt{&If{
		base:   l.base(alt),
		Test:   l.expr(alt.ChildByFieldName("condition")),
		Body:   l.block(alt.ChildByFieldName("consequence")),
		Orelse: l.elseChain(alts[1:]),
	}}
}

func (l *lowerer) elseBody(n *sitter.Node) []Stmt {
	if n == nil {
		return nil
	}
	return l.block(n.ChildByFieldName("body"))
}

func (l *lowerer) try(n *sitter.Node) *Try {
	t := &Try{base: l.base(n), Body: l.block(n.ChildByFieldName("body"))}
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "except_clause", "except_group_clause":
			var h Handler
			for _, part := range namedChildren(child) {
				if part.Type() == "block" {
					h.Body = l.block(part)
				} else if h.Type == nil {
					if part.Type() == "as_pattern" && part.NamedChildCount() > 0 {
						part = part.NamedChild(0)
					}
					h.Type = l.expr(part)
				}
			}
			t.Handlers = append(t.Handlers, h)
		case "else_clause":
			t.Orelse = l.block(child.ChildByFieldName("body"))
		case "finally_clause":
			for _, part := range namedChildren(child) {
				if part.Type() == "block" {
					t.Finally = l.block(part)
				}
			}
		}
	}
	return t
}

// assignment flattens chained assignment (a = b = f()) into one Assign.
func (l *lowerer) assignment(stmt, n *sitter.Node) *Assign {
	a := &Assign{base: l.base(stmt)}
	for cur := n; cur != nil; {
		if left := cur.ChildByFieldName("left"); left != nil {
			a.Targets = append(a.Targets, l.expr(left))
		}
		if cur.Type() == "augmented_assignment" {
			a.Op = l.text(cur.ChildByFieldName("operator"))
		}
		right := cur.ChildByFieldName("right")
		if right == nil {
			return a
		}
		switch right.Type() {
		case "assignment", "augmented_assignment":
			cur = right
		default:
			a.Value = l.expr(right)
			return a
		}
	}
	return a
}

func (l *lowerer) tuple(n *sitter.Node, children []*sitter.Node) Expr {
	c := &Collection{base: l.base(n), Kind: TupleLit}
	for _, child := range children {
		c.Elts = append(c.Elts, l.expr(child))
	}
	return c
}

func (l *lowerer) exprs(nodes []*sitter.Node) []Expr {
	var out []Expr
	for _, n := range nodes {
		if e := l.expr(n); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// expr lowers an expression node. A nil node yields a nil Expr.
func (l *lowerer) expr(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "identifier":
		return &Name{base: l.base(n), ID: l.text(n)}

	case "integer", "float", "true", "false", "none", "ellipsis":
		return &Constant{base: l.base(n)}

	case "attribute":
		return &Attribute{
			base:  l.base(n),
			Value: l.expr(n.ChildByFieldName("object")),
			Attr:  l.text(n.ChildByFieldName("attribute")),
		}

	case "call":
		return l.call(n)

	case "lambda":
		return &Lambda{
			base:   l.base(n),
			Params: l.text(n.ChildByFieldName("parameters")),
			Body:   l.expr(n.ChildByFieldName("body")),
		}

	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		return l.comprehension(n)

	case "conditional_expression":
		children := namedChildren(n)
		ifexp := &IfExp{base: l.base(n)}
		if len(children) == 3 {
			ifexp.Body = l.expr(children[0])
			ifexp.Test = l.expr(children[1])
			ifexp.Orelse = l.expr(children[2])
		}
		return ifexp

	case "binary_operator", "boolean_operator":
		return &BinOp{
			base:  l.base(n),
			Left:  l.expr(n.ChildByFieldName("left")),
			Op:    l.text(n.ChildByFieldName("operator")),
			Right: l.expr(n.ChildByFieldName("right")),
		}

	case "comparison_operator":
		return &Compare{base: l.base(n), Operands: l.exprs(namedChildren(n))}

	case "not_operator":
		return &UnaryOp{base: l.base(n), Op: "not", Operand: l.expr(n.ChildByFieldName("argument"))}

	case "unary_operator":
		return &UnaryOp{
			base:    l.base(n),
			Op:      l.text(n.ChildByFieldName("operator")),
			Operand: l.expr(n.ChildByFieldName("argument")),
		}

	case "string", "concatenated_string":
		var values []Expr
		l.collectInterpolations(n, &values)
		if len(values) == 0 {
			return &Constant{base: l.base(n)}
		}
		return &JoinedStr{base: l.base(n), Values: values}

	case "list", "list_pattern":
		return &Collection{base: l.base(n), Kind: ListLit, Elts: l.exprs(namedChildren(n))}

	case "tuple", "expression_list", "pattern_list", "tuple_pattern":
		return &Collection{base: l.base(n), Kind: TupleLit, Elts: l.exprs(namedChildren(n))}

	case "set":
		return &Collection{base: l.base(n), Kind: SetLit, Elts: l.exprs(namedChildren(n))}

	case "dictionary":
		d := &Dict{base: l.base(n)}
		for _, child := range namedChildren(n) {
			switch child.Type() {
			case "pair":
				d.Keys = append(d.Keys, l.expr(child.ChildByFieldName("key")))
				d.Values = append(d.Values, l.expr(child.ChildByFieldName("value")))
			case "dictionary_splat":
				d.Keys = append(d.Keys, nil)
				d.Values = append(d.Values, l.firstNamed(child))
			}
		}
		return d

	case "subscript":
		children := namedChildren(n)
		sub := &Subscript{base: l.base(n), Value: l.expr(n.ChildByFieldName("value"))}
		if len(children) > 1 {
			sub.Index = l.exprs(children[1:])
		}
		return sub

	case "parenthesized_expression", "as_pattern":
		return l.firstNamed(n)

	case "await":
		return &Await{base: l.base(n), Value: l.firstNamed(n)}

	case "yield":
		return &Yield{base: l.base(n), Value: l.firstNamed(n)}

	case "named_expression":
		return &NamedExpr{
			base:   l.base(n),
			Target: l.expr(n.ChildByFieldName("name")),
			Value:  l.expr(n.ChildByFieldName("value")),
		}

	case "list_splat", "dictionary_splat", "list_splat_pattern", "dictionary_splat_pattern":
		return &Starred{base: l.base(n), Value: l.firstNamed(n)}

	default:
		return &Unknown{base: l.base(n), Kind: n.Type(), Children: l.exprs(namedChildren(n))}
	}
}

func (l *lowerer) firstNamed(n *sitter.Node) Expr {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return l.expr(children[0])
}

func (l *lowerer) call(n *sitter.Node) *Call {
	c := &Call{base: l.base(n), Func: l.expr(n.ChildByFieldName("function"))}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return c
	}
	if args.Type() == "generator_expression" {
		c.Args = append(c.Args, l.expr(args))
		return c
	}

	for _, arg := range namedChildren(args) {
		switch arg.Type() {
		case "keyword_argument":
			c.Keywords = append(c.Keywords, Keyword{
				Name:  l.text(arg.ChildByFieldName("name")),
				Value: l.expr(arg.ChildByFieldName("value")),
			})
		case "dictionary_splat":
			c.Keywords = append(c.Keywords, Keyword{Value: l.firstNamed(arg)})
		default:
			if e := l.expr(arg); e != nil {
				c.Args = append(c.Args, e)
			}
		}
	}
	return c
}

func (l *lowerer) comprehension(n *sitter.Node) *Comprehension {
	comp := &Comprehension{base: l.base(n)}
	switch n.Type() {
	case "list_comprehension":
		comp.Kind = ListComp
	case "set_comprehension":
		comp.Kind = SetComp
	case "dictionary_comprehension":
		comp.Kind = DictComp
	default:
		comp.Kind = GeneratorExpr
	}

	body := n.ChildByFieldName("body")
	if body != nil && body.Type() == "pair" {
		comp.Elt = l.expr(body.ChildByFieldName("key"))
		comp.Value = l.expr(body.ChildByFieldName("value"))
	} else {
		comp.Elt = l.expr(body)
	}

	for _, clause := range namedChildren(n) {
		switch clause.Type() {
		case "for_in_clause":
			comp.Generators = append(comp.Generators, Generator{
				Target: l.expr(clause.ChildByFieldName("left")),
				Iter:   l.expr(clause.ChildByFieldName("right")),
				Async:  startsWith(clause, "async"),
			})
		case "if_clause":
			if len(comp.Generators) == 0 {
				continue
			}
			last := &comp.Generators[len(comp.Generators)-1]
			last.Ifs = append(last.Ifs, l.firstNamed(clause))
		}
	}
	return comp
}

// collectInterpolations gathers the expressions inside f-string braces,
// descending through concatenated strings.
func (l *lowerer) collectInterpolations(n *sitter.Node, out *[]Expr) {
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "interpolation":
			inner := child.ChildByFieldName("expression")
			if inner == nil && child.NamedChildCount() > 0 {
				inner = child.NamedChild(0)
			}
			if e := l.expr(inner); e != nil {
				*out = append(*out, e)
			}
		case "string":
			l.collectInterpolations(child, out)
		}
	}
}
