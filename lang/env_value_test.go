package lang

import (
	"testing"

	"github.com/sergev/pseudo/parser"
)

func TestEnvAssignmentRules(t *testing.T) {
	env := NewEnv()
	env.Set("g", NumberValue(1))
	if _, ok := env.Globals()["g"]; !ok {
		t.Fatalf("expected assignment outside a frame to create a global")
	}

	prev := env.enter(map[string]Value{"p": NumberValue(2)})
	if prev != nil {
		t.Fatalf("expected no previous frame")
	}
	env.Set("g", NumberValue(10))
	env.Set("p", NumberValue(20))
	env.Set("fresh", NumberValue(30))

	if v, _ := env.Get("g"); v.Num() != 10 {
		t.Fatalf("expected existing global updated, got %v", v)
	}
	locals := env.Locals()
	if locals["p"].Num() != 20 || locals["fresh"].Num() != 30 {
		t.Fatalf("expected p and fresh to be locals, got %v", locals)
	}
	if _, ok := env.Globals()["fresh"]; ok {
		t.Fatalf("expected fresh to stay out of the globals")
	}

	env.leave(prev)
	if env.InFrame() || env.Locals() != nil {
		t.Fatalf("expected the frame to be gone")
	}
	if _, ok := env.Get("p"); ok {
		t.Fatalf("expected p to be unbound after leaving the frame")
	}
}

func TestEnvLocalsShadowGlobals(t *testing.T) {
	env := NewEnv()
	env.Define("x", NumberValue(1))
	prev := env.enter(map[string]Value{"x": NumberValue(2)})
	env.Set("x", NumberValue(3))
	if v, _ := env.Get("x"); v.Num() != 3 {
		t.Fatalf("expected local x, got %v", v)
	}
	env.leave(prev)
	if v, _ := env.Get("x"); v.Num() != 1 {
		t.Fatalf("expected global x untouched, got %v", v)
	}
}

func TestValueString(t *testing.T) {
	decl := &parser.ProcedureStmt{Name: "f"}
	cases := []struct {
		val  Value
		want string
	}{
		{Void, "[void]"},
		{NumberValue(3), "3"},
		{NumberValue(-0.5), "-0.5"},
		{StringValue("a\"b"), `"a\"b"`},
		{BoolValue(true), "true"},
		{ListValue(), "[]"},
		{ListValue(NumberValue(1), StringValue("a"), ListValue(BoolValue(false))), `[1, "a", [false]]`},
		{ProcedureValue(decl), "[procedure]"},
		{Value{Type: ValueType(99)}, "<unknown>"},
	}
	for _, tc := range cases {
		if got := tc.val.String(); got != tc.want {
			t.Errorf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestValueCopyIsDeep(t *testing.T) {
	inner := ListValue(NumberValue(1))
	outer := ListValue(inner, NumberValue(2))
	dup := outer.Copy()

	inner.List().Items[0] = NumberValue(9)
	outer.List().Items[1] = NumberValue(8)

	if got := dup.String(); got != "[[1], 2]" {
		t.Fatalf("expected copy unaffected by mutation, got %s", got)
	}
	if !Equal(outer, ListValue(ListValue(NumberValue(9)), NumberValue(8))) {
		t.Fatalf("expected original to reflect mutation, got %s", outer)
	}
}

func TestCyclicLists(t *testing.T) {
	a := ListValue(NumberValue(1))
	a.List().Items = append(a.List().Items, a)
	b := ListValue(NumberValue(1))
	b.List().Items = append(b.List().Items, b)

	if got := a.String(); got != "[1, [...]]" {
		t.Fatalf("expected [1, [...]], got %s", got)
	}
	dup := a.Copy()
	if dup.List() == a.List() {
		t.Fatalf("expected a new list")
	}
	if dup.List().Items[1].List() != dup.List() {
		t.Fatalf("expected the copy to contain itself")
	}
	if !Equal(a, a) || !Equal(a, b) || !Equal(a, dup) {
		t.Fatalf("expected cyclic lists of the same shape to be equal")
	}
	c := ListValue(NumberValue(2))
	c.List().Items = append(c.List().Items, c)
	if Equal(a, c) {
		t.Fatalf("expected lists with different items to differ")
	}

	env := NewEnv()
	env.Define("a", a)
	env.Define("alias", a)
	globals := env.Globals()
	if globals["a"].List() != globals["alias"].List() {
		t.Fatalf("expected shared lists to stay shared in the copy")
	}
}

func TestEqual(t *testing.T) {
	declA := &parser.ProcedureStmt{Name: "a"}
	declB := &parser.ProcedureStmt{Name: "a"}
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"void", Void, Void, true},
		{"numbers", NumberValue(1), NumberValue(1), true},
		{"different kinds", NumberValue(1), StringValue("1"), false},
		{"lists", ListValue(NumberValue(1), ListValue()), ListValue(NumberValue(1), ListValue()), true},
		{"list lengths", ListValue(NumberValue(1)), ListValue(), false},
		{"list elements beyond the first", ListValue(NumberValue(1), NumberValue(2)), ListValue(NumberValue(1), NumberValue(3)), false},
		{"same declaration", ProcedureValue(declA), ProcedureValue(declA), true},
		{"different declarations", ProcedureValue(declA), ProcedureValue(declB), false},
		{"builtins by name", BuiltinValue("X", nil), BuiltinValue("X", nil), true},
		{"builtin and user", BuiltinValue("a", nil), ProcedureValue(declA), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTypeNames(t *testing.T) {
	if TypeBool.String() != "boolean" || TypeList.String() != "list" || ValueType(42).String() != "unknown" {
		t.Fatalf("unexpected type names")
	}
}
