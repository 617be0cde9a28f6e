package parser

import (
	"strconv"
	"strings"
)

// Format renders a node as a compact S-expression, e.g. "(+ (* a 2) b)".
// Statements render with their keyword at the head and blocks as
// "(block ...)". The form is stable and meant for tests and diagnostics.
func Format(node Node) string {
	var b strings.Builder
	writeSExpr(&b, node)
	return b.String()
}

// FormatProgram renders each top-level statement on its own line.
func FormatProgram(stmts []Stmt) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = Format(s)
	}
	return strings.Join(lines, "\n")
}

func writeSExpr(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *NumberLit:
		b.WriteString(FormatNumber(n.Value))
	case *StringLit:
		b.WriteString(strconv.Quote(n.Value))
	case *BoolLit:
		b.WriteString(strconv.FormatBool(n.Value))
	case *VariableExpr:
		b.WriteString(n.Name)
	case *BinaryExpr:
		writeForm(b, string(n.Op), n.Left, n.Right)
	case *NotExpr:
		writeForm(b, "NOT", n.Expr)
	case *NegateExpr:
		writeForm(b, "-", n.Expr)
	case *ListExpr:
		writeForm(b, "list", n.Elements...)
	case *SubscriptExpr:
		writeForm(b, "index", n.List, n.Index)
	case *CallExpr:
		writeForm(b, "call", append([]Expr{n.Callee}, n.Args...)...)
	case *AssignStmt:
		writeForm(b, "<-", n.Target, n.Value)
	case *IfStmt:
		b.WriteString("(IF ")
		writeSExpr(b, n.Cond)
		b.WriteByte(' ')
		writeBlock(b, n.Then)
		if n.HasElse() {
			b.WriteByte(' ')
			writeBlock(b, n.Else)
		}
		b.WriteByte(')')
	case *RepeatTimesStmt:
		b.WriteString("(REPEAT ")
		writeSExpr(b, n.Count)
		b.WriteByte(' ')
		writeBlock(b, n.Body)
		b.WriteByte(')')
	case *RepeatUntilStmt:
		b.WriteString("(REPEAT-UNTIL ")
		writeSExpr(b, n.Cond)
		b.WriteByte(' ')
		writeBlock(b, n.Body)
		b.WriteByte(')')
	case *ForEachStmt:
		b.WriteString("(FOR-EACH ")
		writeSExpr(b, n.Var)
		b.WriteByte(' ')
		writeSExpr(b, n.List)
		b.WriteByte(' ')
		writeBlock(b, n.Body)
		b.WriteByte(')')
	case *ProcedureStmt:
		b.WriteString("(PROCEDURE ")
		b.WriteString(n.Name)
		b.WriteString(" (")
		b.WriteString(strings.Join(n.Params, " "))
		b.WriteString(") ")
		writeBlock(b, n.Body)
		b.WriteByte(')')
	case *ReturnStmt:
		if n.Value == nil {
			b.WriteString("(RETURN)")
			return
		}
		writeForm(b, "RETURN", n.Value)
	case *BreakpointStmt:
		b.WriteString("(BREAKPOINT)")
	case *ExprStmt:
		writeSExpr(b, n.Expr)
	default:
		b.WriteString("<?>")
	}
}

func writeForm[T Node](b *strings.Builder, head string, args ...T) {
	b.WriteByte('(')
	b.WriteString(head)
	for _, arg := range args {
		b.WriteByte(' ')
		writeSExpr(b, arg)
	}
	b.WriteByte(')')
}

func writeBlock(b *strings.Builder, block Block) {
	writeForm(b, "block", []Stmt(block)...)
}

// FormatNumber renders a number the way programs display it: integers
// without a fractional part, others in shortest round-trip form.
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := f
	if abs < 0 {
		abs = -abs
	}
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
