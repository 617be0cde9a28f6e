package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/sergev/pseudo/lang"
)

func runWith(t *testing.T, host *recordingHost, src string) (*lang.Interpreter, error) {
	t.Helper()
	in := NewInterpreter(host)
	return in, EvaluateString(context.Background(), in, src)
}

func mustRunWith(t *testing.T, host *recordingHost, src string) *lang.Interpreter {
	t.Helper()
	in, err := runWith(t, host, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return in
}

func TestDisplayProducesValuesInOrder(t *testing.T) {
	host := &recordingHost{}
	mustRunWith(t, host, "x <- 2\nDISPLAY(x)\nDISPLAY(x+1)")
	if len(host.displayed) != 2 || host.displayed[0].Num() != 2 || host.displayed[1].Num() != 3 {
		t.Fatalf("expected 2 then 3, got %q", host.output())
	}
}

func TestDisplayReturnsVoid(t *testing.T) {
	host := &recordingHost{}
	in := mustRunWith(t, host, "r <- DISPLAY(1)")
	if in.Globals()["r"].Type != lang.TypeVoid {
		t.Fatalf("expected DISPLAY to return void")
	}
}

func TestInputParsesNumbers(t *testing.T) {
	host := &recordingHost{inputs: []string{"12.5", " 7 ", "hello", "", "NaN", "1e3"}}
	in := mustRunWith(t, host, "a <- INPUT()\nb <- INPUT()\nc <- INPUT()\nd <- INPUT()\ne <- INPUT()\nf <- INPUT()")
	globals := in.Globals()
	cases := []struct {
		name string
		want string
	}{
		{"a", "12.5"},
		{"b", "7"},
		{"c", `"hello"`},
		{"d", `""`},
		{"e", `"NaN"`},
		{"f", "1000"},
	}
	for _, tc := range cases {
		if got := globals[tc.name].String(); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestListBuiltins(t *testing.T) {
	host := &recordingHost{}
	in := mustRunWith(t, host, `
l <- [1, 2, 3]
APPEND(l, 4)
removed <- REMOVE(l, 2)
INSERT(l, 1, 0)
INSERT(l, LENGTH(l) + 1, 5)
n <- LENGTH(l)
`)
	globals := in.Globals()
	if got := globals["l"].String(); got != "[0, 1, 3, 4, 5]" {
		t.Fatalf("expected [0, 1, 3, 4, 5], got %s", got)
	}
	if globals["removed"].Num() != 2 {
		t.Fatalf("expected REMOVE to return 2, got %v", globals["removed"])
	}
	if globals["n"].Num() != 5 {
		t.Fatalf("expected LENGTH 5, got %v", globals["n"])
	}
}

func TestRemoveShrinksEveryPosition(t *testing.T) {
	for i := 1; i <= 4; i++ {
		host := &recordingHost{}
		src := "l <- [10, 20, 30, 40]\nx <- REMOVE(l, " + string(rune('0'+i)) + ")\nn <- LENGTH(l)"
		in := mustRunWith(t, host, src)
		globals := in.Globals()
		if globals["n"].Num() != 3 {
			t.Fatalf("REMOVE at %d: expected length 3, got %v", i, globals["n"])
		}
		if globals["x"].Num() != float64(10*i) {
			t.Fatalf("REMOVE at %d: expected %d, got %v", i, 10*i, globals["x"])
		}
	}
}

func TestBuiltinErrorsAreAttributedToArguments(t *testing.T) {
	cases := []struct {
		src    string
		want   string
		column int
	}{
		{"APPEND(3, 1)", "must be a list", 8},
		{"x <- LENGTH(\"abc\")", "must be a list", 13},
		{"l <- [1]\nx <- REMOVE(l, 2)", "index bigger than list length", 13},
		{"l <- [1]\nx <- REMOVE(l, 0)", "must be >= 1", 16},
		{"l <- [1]\nINSERT(l, 3, 0)", "index bigger than list length", 8},
		{"l <- [1]\nINSERT(l, true, 0)", "must be a number", 11},
		{"x <- RANDOM(1.5, 2)", "must be an integer", 13},
		{"x <- RANDOM(1, \"2\")", "must be a number", 16},
		{"x <- INPUT(1)", "INPUT takes no arguments", 11},
		{"LENGTH()", "LENGTH takes 1 argument", 7},
		{"INSERT([], 1)", "INSERT takes 3 arguments", 7},
		{"x <- RANDOM(5, 1)", "RANDOM needs the first bound", 12},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := runWith(t, &recordingHost{}, tc.src)
			rerr, ok := err.(*lang.RuntimeError)
			if !ok {
				t.Fatalf("expected runtime error, got %v", err)
			}
			if !strings.Contains(rerr.Message, tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, rerr.Message)
			}
			if rerr.Pos.Column != tc.column {
				t.Fatalf("expected error at column %d, got %d", tc.column, rerr.Pos.Column)
			}
		})
	}
}

func TestRandomIsInclusiveAndSeeded(t *testing.T) {
	SeedRandom(7)
	host := &recordingHost{}
	in := mustRunWith(t, host, "seen <- []\nREPEAT 200 TIMES { APPEND(seen, RANDOM(1, 3)) }")
	counts := map[float64]int{}
	for _, v := range in.Globals()["seen"].List().Items {
		counts[v.Num()]++
	}
	for _, want := range []float64{1, 2, 3} {
		if counts[want] == 0 {
			t.Fatalf("expected %v to be drawn, got %v", want, counts)
		}
	}
	if len(counts) != 3 {
		t.Fatalf("expected only 1..3, got %v", counts)
	}

	SeedRandom(42)
	first := mustRunWith(t, &recordingHost{}, "x <- RANDOM(1, 1000000)").Globals()["x"].Num()
	SeedRandom(42)
	second := mustRunWith(t, &recordingHost{}, "x <- RANDOM(1, 1000000)").Globals()["x"].Num()
	if first != second {
		t.Fatalf("expected the same draw for the same seed, got %v and %v", first, second)
	}

	if got := mustRunWith(t, &recordingHost{}, "x <- RANDOM(4, 4)").Globals()["x"].Num(); got != 4 {
		t.Fatalf("expected RANDOM(4, 4) = 4, got %v", got)
	}
}

func TestAppendListToItself(t *testing.T) {
	host := &recordingHost{}
	in := mustRunWith(t, host, `
a <- [1]
APPEND(a, a)
DISPLAY(a)
same <- a = a
b <- [1]
b[1] <- b
c <- [b[1][1][1]]
x <- 1
`)
	if got := host.output(); !strings.Contains(got, "[1, [...]]") {
		t.Fatalf("expected the repeat to print as [...], got %q", got)
	}
	globals := in.Globals()
	if !globals["same"].Bool() {
		t.Fatalf("expected a = a")
	}
	if got := globals["b"].String(); got != "[[...]]" {
		t.Fatalf("expected [[...]], got %s", got)
	}
	if got := (&Formatter{}).Format(globals["a"]); got != "[1, [...]]" {
		t.Fatalf("expected formatter to print [1, [...]], got %s", got)
	}
}
