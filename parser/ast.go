package parser

// Position tracks a source location within a program.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

// NodeID identifies a node within one parse result. IDs are assigned in
// pre-order starting at 1 and stay stable for the lifetime of the tree, so a
// renderer can key per-node state on them.
type NodeID int

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
	ID() NodeID
}

// Stmt represents a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression.
type Expr interface {
	Node
	exprNode()
}

// Block is a braced sequence of statements. The parser never produces a nil
// Block for a block that was present in the source.
type Block []Stmt

type meta struct {
	id   NodeID
	Posn Position
}

func (m *meta) Pos() Position { return m.Posn }
func (m *meta) ID() NodeID    { return m.id }

// NumberLit is a numeric literal.
type NumberLit struct {
	meta
	Value float64
}

func (*NumberLit) exprNode() {}

// StringLit is a double-quoted string literal.
type StringLit struct {
	meta
	Value string
}

func (*StringLit) exprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	meta
	Value bool
}

func (*BoolLit) exprNode() {}

// VariableExpr refers to a variable or procedure name.
type VariableExpr struct {
	meta
	Name string
}

func (*VariableExpr) exprNode() {}

// BinaryExpr represents infix operator application.
type BinaryExpr struct {
	meta
	Op          Operator
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// NotExpr is logical negation.
type NotExpr struct {
	meta
	Expr Expr
}

func (*NotExpr) exprNode() {}

// NegateExpr is arithmetic negation.
type NegateExpr struct {
	meta
	Expr Expr
}

func (*NegateExpr) exprNode() {}

// ListExpr is a list literal [a, b, ...].
type ListExpr struct {
	meta
	Elements []Expr
}

func (*ListExpr) exprNode() {}

// SubscriptExpr indexes a list with a 1-based index.
type SubscriptExpr struct {
	meta
	List  Expr
	Index Expr
}

func (*SubscriptExpr) exprNode() {}

// CallExpr invokes a procedure with arguments.
type CallExpr struct {
	meta
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// AssignStmt stores a value through an assignable target.
type AssignStmt struct {
	meta
	Target Expr // *VariableExpr or *SubscriptExpr, see IsAssignable
	Value  Expr
}

func (*AssignStmt) stmtNode() {}

// IfStmt conditionally executes a block.
type IfStmt struct {
	meta
	Cond Expr
	Then Block
	Else Block // nil when there is no ELSE branch
}

func (*IfStmt) stmtNode() {}

// HasElse reports whether the statement is an IF/ELSE.
func (s *IfStmt) HasElse() bool { return s.Else != nil }

// RepeatTimesStmt runs its body a fixed number of times.
type RepeatTimesStmt struct {
	meta
	Count Expr
	Body  Block
}

func (*RepeatTimesStmt) stmtNode() {}

// RepeatUntilStmt runs its body until the condition holds.
type RepeatUntilStmt struct {
	meta
	Cond Expr
	Body Block
}

func (*RepeatUntilStmt) stmtNode() {}

// ForEachStmt binds Var to each element of a list in turn.
type ForEachStmt struct {
	meta
	Var  *VariableExpr
	List Expr
	Body Block
}

func (*ForEachStmt) stmtNode() {}

// ProcedureStmt declares a user-defined procedure.
type ProcedureStmt struct {
	meta
	Name   string
	Params []string
	Body   Block
}

func (*ProcedureStmt) stmtNode() {}

// ReturnStmt exits the current procedure, optionally with a value.
type ReturnStmt struct {
	meta
	Value Expr // nil for a void return
}

func (*ReturnStmt) stmtNode() {}

// BreakpointStmt switches the interpreter into single-step mode.
type BreakpointStmt struct {
	meta
}

func (*BreakpointStmt) stmtNode() {}

// ExprStmt evaluates an expression for side-effects.
type ExprStmt struct {
	meta
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// IsAssignable reports whether expr may appear on the left of "<-": a variable,
// or a subscript whose list is itself assignable.
func IsAssignable(expr Expr) bool {
	switch e := expr.(type) {
	case *VariableExpr:
		return true
	case *SubscriptExpr:
		return IsAssignable(e.List)
	default:
		return false
	}
}

// Walk visits node and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	walkBlock := func(b Block) {
		for _, s := range b {
			Walk(s, fn)
		}
	}
	switch n := node.(type) {
	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *NotExpr:
		Walk(n.Expr, fn)
	case *NegateExpr:
		Walk(n.Expr, fn)
	case *ListExpr:
		for _, el := range n.Elements {
			Walk(el, fn)
		}
	case *SubscriptExpr:
		Walk(n.List, fn)
		Walk(n.Index, fn)
	case *CallExpr:
		Walk(n.Callee, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case *AssignStmt:
		Walk(n.Target, fn)
		Walk(n.Value, fn)
	case *IfStmt:
		Walk(n.Cond, fn)
		walkBlock(n.Then)
		walkBlock(n.Else)
	case *RepeatTimesStmt:
		Walk(n.Count, fn)
		walkBlock(n.Body)
	case *RepeatUntilStmt:
		Walk(n.Cond, fn)
		walkBlock(n.Body)
	case *ForEachStmt:
		Walk(n.Var, fn)
		Walk(n.List, fn)
		walkBlock(n.Body)
	case *ProcedureStmt:
		walkBlock(n.Body)
	case *ReturnStmt:
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *ExprStmt:
		Walk(n.Expr, fn)
	}
}

// numberNodes assigns pre-order IDs starting at first to every node in the
// forest and returns the next unused ID.
func numberNodes(nodes []Node, first NodeID) NodeID {
	next := first
	for _, root := range nodes {
		Walk(root, func(n Node) bool {
			setID(n, next)
			next++
			return true
		})
	}
	return next
}

// Renumber reassigns IDs to a parsed program starting at first and returns
// the next unused ID. A REPL uses it so that procedures kept from earlier
// inputs never share IDs with later ones.
func Renumber(stmts []Stmt, first NodeID) NodeID {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return numberNodes(nodes, first)
}

func setID(n Node, id NodeID) {
	if m, ok := n.(interface{ setID(NodeID) }); ok {
		m.setID(id)
	}
}

func (m *meta) setID(id NodeID) { m.id = id }
