package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
)

func TestFormatterPlain(t *testing.T) {
	f, err := NewFormatter("")
	if err != nil {
		t.Fatalf("NewFormatter error: %v", err)
	}
	list := lang.ListValue(lang.NumberValue(1234.5), lang.StringValue("a"))
	if got := f.Display(list); got != `[1234.5, "a"]` {
		t.Fatalf("unexpected list rendering %q", got)
	}
	if got := f.Display(lang.StringValue("hi")); got != "hi" {
		t.Fatalf("expected top-level string unquoted, got %q", got)
	}
	if got := f.Format(lang.StringValue("hi")); got != `"hi"` {
		t.Fatalf("expected quoted string, got %q", got)
	}
	if got := f.Display(lang.Void); got != "[void]" {
		t.Fatalf("expected [void], got %q", got)
	}
}

func TestFormatterLocale(t *testing.T) {
	en, err := NewFormatter("en-US")
	if err != nil {
		t.Fatalf("NewFormatter error: %v", err)
	}
	if got := en.Display(lang.NumberValue(1234567.25)); got != "1,234,567.25" {
		t.Fatalf("expected en-US grouping, got %q", got)
	}
	de, err := NewFormatter("de")
	if err != nil {
		t.Fatalf("NewFormatter error: %v", err)
	}
	if got := de.Display(lang.NumberValue(1234.5)); got != "1.234,5" {
		t.Fatalf("expected German separators, got %q", got)
	}
	if _, err := NewFormatter("not a locale!"); err == nil {
		t.Fatalf("expected invalid locale error")
	}
}

func TestTraceYAML(t *testing.T) {
	var snaps []lang.Snapshot
	in := NewInterpreter(&snapshotHost{snaps: &snaps})
	stmts, err := parser.Parse("x <- [1, 2]\ny <- x[3]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if err := in.Interpret(context.Background(), stmts); err == nil {
		t.Fatalf("expected runtime error")
	}
	out, err := TraceYAML(snaps[len(snaps)-1], &Formatter{})
	if err != nil {
		t.Fatalf("TraceYAML error: %v", err)
	}
	text := string(out)
	for _, want := range []string{"running: [", "line: 2", "x: ", "[1, 2]", "index bigger than list length"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected trace to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "DISPLAY") {
		t.Fatalf("expected builtins to be left out, got:\n%s", text)
	}
}

type snapshotHost struct {
	recordingHost
	snaps *[]lang.Snapshot
}

func (h *snapshotHost) Info(snap lang.Snapshot) {
	*h.snaps = append(*h.snaps, snap)
}

func TestUserVariablesSkipsBuiltins(t *testing.T) {
	in := NewInterpreter(&recordingHost{})
	in.Env().Define("answer", lang.NumberValue(42))
	names := UserVariables(in.Globals())
	if len(names) != 1 || names[0] != "answer" {
		t.Fatalf("expected only answer, got %v", names)
	}
}
