package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergev/pseudo/lang"
)

// recordingHost answers input from a queue and records everything else.
type recordingHost struct {
	inputs    []string
	displayed []lang.Value
	infos     int
}

func (h *recordingHost) Display(_ context.Context, v lang.Value) error {
	h.displayed = append(h.displayed, v)
	return nil
}

func (h *recordingHost) WaitForInput(context.Context) (string, error) {
	if len(h.inputs) == 0 {
		return "", nil
	}
	text := h.inputs[0]
	h.inputs = h.inputs[1:]
	return text, nil
}

func (h *recordingHost) StepPause(context.Context) error { return nil }

func (h *recordingHost) Info(lang.Snapshot) { h.infos++ }

func (h *recordingHost) output() string {
	parts := make([]string, len(h.displayed))
	for i, v := range h.displayed {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

func TestReadFileSkippingShebang(t *testing.T) {
	dir := t.TempDir()

	withShebang := filepath.Join(dir, "script.pc")
	if err := os.WriteFile(withShebang, []byte("#!/usr/bin/env pseudo\nDISPLAY(1)\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err := readFileSkippingShebang(withShebang)
	if err != nil {
		t.Fatalf("readFileSkippingShebang error: %v", err)
	}
	if string(data) != "\nDISPLAY(1)\n" {
		t.Fatalf("expected shebang to be stripped, got %q", data)
	}

	onlyShebang := filepath.Join(dir, "only_shebang.pc")
	if err := os.WriteFile(onlyShebang, []byte("#!/bin/true"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err = readFileSkippingShebang(onlyShebang)
	if err != nil {
		t.Fatalf("readFileSkippingShebang error: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty body for shebang-only script, got %q", data)
	}

	noShebang := filepath.Join(dir, "plain.pc")
	if err := os.WriteFile(noShebang, []byte(`DISPLAY("hi")`), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err = readFileSkippingShebang(noShebang)
	if err != nil {
		t.Fatalf("readFileSkippingShebang error: %v", err)
	}
	if string(data) != `DISPLAY("hi")` {
		t.Fatalf("expected content unchanged, got %q", data)
	}
}

func TestEvaluateFileKeepsLineNumbers(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "prog.pc")
	src := "#!/usr/bin/env pseudo\nPROCEDURE inc(n) {\n\tRETURN n + 1\n}\nDISPLAY(inc(41))\nDISPLAY(missing)\n"
	if err := os.WriteFile(script, []byte(src), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	host := &recordingHost{}
	in := NewInterpreter(host)
	err := EvaluateFile(context.Background(), in, script)
	rerr, ok := err.(*lang.RuntimeError)
	if !ok {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if rerr.Pos.Line != 6 {
		t.Fatalf("expected error on line 6, got %d", rerr.Pos.Line)
	}
	if host.output() != "42" {
		t.Fatalf("expected 42 before the error, got %q", host.output())
	}
}

func TestEvaluateFileMissing(t *testing.T) {
	in := NewInterpreter(&recordingHost{})
	if err := EvaluateFile(context.Background(), in, filepath.Join(t.TempDir(), "nope.pc")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEvaluateReaderAndString(t *testing.T) {
	host := &recordingHost{}
	in := NewInterpreter(host)
	if err := EvaluateReader(context.Background(), in, strings.NewReader("x <- 2\nDISPLAY(x)\nDISPLAY(x+1)")); err != nil {
		t.Fatalf("EvaluateReader error: %v", err)
	}
	if err := EvaluateString(context.Background(), in, "DISPLAY(x * 10)"); err != nil {
		t.Fatalf("EvaluateString error: %v", err)
	}
	if got := host.output(); got != "2 3 20" {
		t.Fatalf("expected 2 3 20, got %q", got)
	}
	if err := EvaluateString(context.Background(), in, "x <-"); err == nil {
		t.Fatalf("expected parse error")
	}
}
