package parser

import (
	"errors"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestParseReaderHandlesIOReturns(t *testing.T) {
	if _, err := ParseReader(failingReader{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected underlying IO error, got %v", err)
	}

	stmts, err := ParseReader(strings.NewReader("value <- 5\nDISPLAY(value)"))
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected two statements, got %d", len(stmts))
	}
}

func TestDumpYAMLDescribesNodes(t *testing.T) {
	stmts := mustParse(t, "PROCEDURE f(a) { RETURN a * 2 }\nIF (f(2) > 3) { DISPLAY(\"big\") }")
	out, err := DumpYAML(stmts)
	if err != nil {
		t.Fatalf("DumpYAML returned error: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"kind: procedure",
		"name: f",
		"parameters: [a]",
		"kind: return",
		"kind: operator",
		"kind: if\n",
		"kind: call",
		"value: big",
		"id: 1\n",
		"line: 2",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected dump to contain %q, got:\n%s", want, text)
		}
	}
}
