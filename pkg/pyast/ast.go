// Package pyast defines the syntax tree consumed by the flow simulator.
//
// The tree is a closed set of statement and expression variants lowered from
// the tree-sitter Python grammar. Consumers dispatch with type switches over
// Stmt and Expr; kinds the simulator does not model are lowered to Simple
// (statements) or Unknown (expressions) so that nothing is silently dropped.
package pyast

// Pos is a 1-based source position.
type Pos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Node is implemented by every syntax node.
type Node interface {
	Position() Pos
	Source() string
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// base carries the position and original source text of a node.
type base struct {
	At  Pos
	Src string
}

// Position returns where the node starts.
func (b base) Position() Pos { return b.At }

// Source returns the node's source text.
func (b base) Source() string { return b.Src }

// Module is a parsed source file.
type Module struct {
	base
	Body []Stmt
}

// ---- statements ----

// FunctionDef is a def (or async def) statement.
type FunctionDef struct {
	base
	Name   string
	Params string
	Body   []Stmt
	Async  bool
}

// ClassDef is a class statement. Bases holds the positional superclass
// expressions in declaration order; keyword arguments such as metaclass=
// are not bases.
type ClassDef struct {
	base
	Name  string
	Bases []Expr
	Body  []Stmt
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	base
	Value Expr
}

// Assign covers plain, chained, annotated and augmented assignment.
// Op is empty for plain assignment and holds the operator ("+=") otherwise.
// Value is nil for a bare annotation.
type Assign struct {
	base
	Targets []Expr
	Op      string
	Value   Expr
}

// Return is a return statement; Value is nil for a bare return.
type Return struct {
	base
	Value Expr
}

// If is an if statement. An elif chain is lowered to a single nested If in
// Orelse, mirroring Python's own ast.
type If struct {
	base
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// For is a for (or async for) loop.
type For struct {
	base
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
	Async  bool
}

// While is a while loop.
type While struct {
	base
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// With is a with statement. Items are the context expressions.
type With struct {
	base
	Items []Expr
	Body  []Stmt
}

// Handler is one except clause.
type Handler struct {
	Type Expr
	Body []Stmt
}

// Try is a try statement.
type Try struct {
	base
	Body     []Stmt
	Handlers []Handler
	Orelse   []Stmt
	Finally  []Stmt
}

// Simple is any statement that evaluates nothing the simulator models:
// pass, break, continue, import, global, raise, assert, delete and the like.
// Kind is the grammar's node type.
type Simple struct {
	base
	Kind  string
	Exprs []Expr
}

func (*FunctionDef) stmtNode() {}
func (*ClassDef) stmtNode()    {}
func (*ExprStmt) stmtNode()    {}
func (*Assign) stmtNode()      {}
func (*Return) stmtNode()      {}
func (*If) stmtNode()          {}
func (*For) stmtNode()         {}
func (*While) stmtNode()       {}
func (*With) stmtNode()        {}
func (*Try) stmtNode()         {}
func (*Simple) stmtNode()      {}

// ---- expressions ----

// Name is a plain identifier.
type Name struct {
	base
	ID string
}

// Constant is a literal without sub-expressions (numbers, plain strings,
// True/False/None, ellipsis).
type Constant struct {
	base
}

// Attribute is value.attr.
type Attribute struct {
	base
	Value Expr
	Attr  string
}

// Keyword is a keyword argument; Name is empty for **kwargs splats.
type Keyword struct {
	Name  string
	Value Expr
}

// Call is a call expression.
type Call struct {
	base
	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

// Lambda is an anonymous function.
type Lambda struct {
	base
	Params string
	Body   Expr
}

// ComprehensionKind distinguishes the four comprehension forms.
type ComprehensionKind string

const (
	ListComp      ComprehensionKind = "list"
	SetComp       ComprehensionKind = "set"
	DictComp      ComprehensionKind = "dict"
	GeneratorExpr ComprehensionKind = "generator"
)

// Generator is one "for target in iter if cond..." clause.
type Generator struct {
	Target Expr
	Iter   Expr
	Ifs    []Expr
	Async  bool
}

// Comprehension covers list/set/dict comprehensions and generator
// expressions. For dict comprehensions Elt is the key and Value the value.
type Comprehension struct {
	base
	Kind       ComprehensionKind
	Elt        Expr
	Value      Expr
	Generators []Generator
}

// IfExp is the ternary "body if test else orelse".
type IfExp struct {
	base
	Test   Expr
	Body   Expr
	Orelse Expr
}

// BinOp covers arithmetic, bitwise and boolean (and/or) operators.
type BinOp struct {
	base
	Left  Expr
	Op    string
	Right Expr
}

// Compare is a (possibly chained) comparison.
type Compare struct {
	base
	Operands []Expr
}

// UnaryOp covers -x, +x, ~x and not x.
type UnaryOp struct {
	base
	Op      string
	Operand Expr
}

// JoinedStr is a string with interpolations (f-strings); Values are the
// interpolated expressions in source order.
type JoinedStr struct {
	base
	Values []Expr
}

// CollectionKind distinguishes list, tuple and set displays.
type CollectionKind string

const (
	ListLit  CollectionKind = "list"
	TupleLit CollectionKind = "tuple"
	SetLit   CollectionKind = "set"
)

// Collection is a list, tuple or set display.
type Collection struct {
	base
	Kind CollectionKind
	Elts []Expr
}

// Dict is a dictionary display. A nil key marks a **splat entry.
type Dict struct {
	base
	Keys   []Expr
	Values []Expr
}

// Subscript is value[index...].
type Subscript struct {
	base
	Value Expr
	Index []Expr
}

// Starred is *value or **value outside a call's keyword list.
type Starred struct {
	base
	Value Expr
}

// Await is await value.
type Await struct {
	base
	Value Expr
}

// Yield is yield / yield from; Value may be nil.
type Yield struct {
	base
	Value Expr
}

// NamedExpr is the walrus operator.
type NamedExpr struct {
	base
	Target Expr
	Value  Expr
}

// Unknown is any grammar construct without a dedicated variant. Its named
// children are kept so walkers can still reach nested calls.
type Unknown struct {
	base
	Kind     string
	Children []Expr
}

func (*Name) exprNode()          {}
func (*Constant) exprNode()      {}
func (*Attribute) exprNode()     {}
func (*Call) exprNode()          {}
func (*Lambda) exprNode()        {}
func (*Comprehension) exprNode() {}
func (*IfExp) exprNode()         {}
func (*BinOp) exprNode()         {}
func (*Compare) exprNode()       {}
func (*UnaryOp) exprNode()       {}
func (*JoinedStr) exprNode()     {}
func (*Collection) exprNode()    {}
func (*Dict) exprNode()          {}
func (*Subscript) exprNode()     {}
func (*Starred) exprNode()       {}
func (*Await) exprNode()         {}
func (*Yield) exprNode()         {}
func (*NamedExpr) exprNode()     {}
func (*Unknown) exprNode()       {}
