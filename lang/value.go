package lang

import (
	"context"
	"strconv"
	"strings"

	"github.com/sergev/pseudo/parser"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeVoid ValueType = iota
	TypeNumber
	TypeString
	TypeBool
	TypeList
	TypeProcedure
)

var typeNames = map[ValueType]string{
	TypeVoid:      "void",
	TypeNumber:    "number",
	TypeString:    "string",
	TypeBool:      "boolean",
	TypeList:      "list",
	TypeProcedure: "procedure",
}

func (t ValueType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// List is a mutable list shared by every value that refers to it.
type List struct {
	Items []Value
}

// Primitive represents a built-in Go function exposed to programs. call is the
// invoking node, so argument errors can be attributed to call.Args[i].
type Primitive func(ctx context.Context, in *Interpreter, call *parser.CallExpr, args []Value) (Value, error)

// Builtin is a named primitive.
type Builtin struct {
	Name string
	Fn   Primitive
}

// Procedure is either a builtin or a user-defined procedure declaration.
type Procedure struct {
	Builtin *Builtin
	Decl    *parser.ProcedureStmt
}

// Name returns the name the procedure was declared with.
func (p *Procedure) Name() string {
	if p.Builtin != nil {
		return p.Builtin.Name
	}
	return p.Decl.Name
}

// Void is the result of statements and procedures that produce nothing.
var Void = Value{Type: TypeVoid}

// NumberValue constructs a number Value.
func NumberValue(f float64) Value {
	return Value{Type: TypeNumber, payload: f}
}

// StringValue constructs a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// ListValue constructs a fresh list holding vals.
func ListValue(vals ...Value) Value {
	items := make([]Value, len(vals))
	copy(items, vals)
	return Value{Type: TypeList, payload: &List{Items: items}}
}

// BuiltinValue wraps a primitive under name.
func BuiltinValue(name string, fn Primitive) Value {
	return Value{
		Type:    TypeProcedure,
		payload: &Procedure{Builtin: &Builtin{Name: name, Fn: fn}},
	}
}

// ProcedureValue wraps a user-defined procedure declaration.
func ProcedureValue(decl *parser.ProcedureStmt) Value {
	return Value{
		Type:    TypeProcedure,
		payload: &Procedure{Decl: decl},
	}
}

func (v Value) Num() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) List() *List {
	if l, ok := v.payload.(*List); ok {
		return l
	}
	return nil
}

func (v Value) Procedure() *Procedure {
	if p, ok := v.payload.(*Procedure); ok {
		return p
	}
	return nil
}

// Copy returns a deep copy of v. Lists are duplicated recursively so the copy
// is unaffected by later in-place mutation; procedures are shared. A list
// that contains itself is copied into the same shape of cycle.
func (v Value) Copy() Value {
	return v.copyWith(make(map[*List]*List))
}

// copyWith copies v, reusing the duplicates recorded in seen so that shared
// and cyclic lists keep their structure.
func (v Value) copyWith(seen map[*List]*List) Value {
	l := v.List()
	if v.Type != TypeList || l == nil {
		return v
	}
	if dup, ok := seen[l]; ok {
		return Value{Type: TypeList, payload: dup}
	}
	dup := &List{Items: make([]Value, len(l.Items))}
	seen[l] = dup
	for i, item := range l.Items {
		dup.Items[i] = item.copyWith(seen)
	}
	return Value{Type: TypeList, payload: dup}
}

type listPair struct {
	a, b *List
}

// Equal reports deep structural equality. Builtins are equal when they have
// the same name, user procedures when they come from the same declaration.
// Cyclic lists compare equal when no difference is reachable.
func Equal(a, b Value) bool {
	return equal(a, b, make(map[listPair]bool))
}

func equal(a, b Value, visiting map[listPair]bool) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeVoid:
		return true
	case TypeNumber:
		return a.Num() == b.Num()
	case TypeString:
		return a.Str() == b.Str()
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeList:
		la, lb := a.List(), b.List()
		if la == lb {
			return true
		}
		if la == nil || lb == nil || len(la.Items) != len(lb.Items) {
			return false
		}
		pair := listPair{la, lb}
		if visiting[pair] {
			return true
		}
		visiting[pair] = true
		for i := range la.Items {
			if !equal(la.Items[i], lb.Items[i], visiting) {
				return false
			}
		}
		return true
	case TypeProcedure:
		pa, pb := a.Procedure(), b.Procedure()
		if pa == nil || pb == nil {
			return pa == pb
		}
		if pa.Builtin != nil && pb.Builtin != nil {
			return pa.Builtin.Name == pb.Builtin.Name
		}
		return pa.Decl != nil && pa.Decl == pb.Decl
	}
	return false
}

func (v Value) String() string {
	return v.format(make(map[*List]bool))
}

// format renders v. A list already being rendered further up prints as
// "[...]".
func (v Value) format(open map[*List]bool) string {
	switch v.Type {
	case TypeVoid:
		return "[void]"
	case TypeNumber:
		return parser.FormatNumber(v.Num())
	case TypeString:
		return strconv.Quote(v.Str())
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeList:
		return listToString(v, open)
	case TypeProcedure:
		return "[procedure]"
	default:
		return "<unknown>"
	}
}

func listToString(v Value, open map[*List]bool) string {
	l := v.List()
	if l != nil && open[l] {
		return "[...]"
	}
	var b strings.Builder
	b.WriteByte('[')
	if l != nil {
		open[l] = true
		for i, item := range l.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.format(open))
		}
		delete(open, l)
	}
	b.WriteByte(']')
	return b.String()
}
