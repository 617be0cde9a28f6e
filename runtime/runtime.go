package runtime

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
)

// NewInterpreter constructs an interpreter with the standard builtins installed.
func NewInterpreter(host lang.Host, opts ...lang.Option) *lang.Interpreter {
	in := lang.NewInterpreter(host, opts...)
	installPrimitives(in)
	return in
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			// Keep the newline so that line numbers still match the file.
			return data[idx:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// ReadSource returns the text of a program file without a leading #! line.
func ReadSource(path string) (string, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadFile parses a program file, allowing a leading #! line.
func LoadFile(path string) ([]parser.Stmt, error) {
	src, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return parser.Parse(src)
}

// EvaluateReader parses all of r and runs it.
func EvaluateReader(ctx context.Context, in *lang.Interpreter, r io.Reader) error {
	stmts, err := parser.ParseReader(r)
	if err != nil {
		return err
	}
	return in.Interpret(ctx, stmts)
}

// EvaluateString parses and runs src.
func EvaluateString(ctx context.Context, in *lang.Interpreter, src string) error {
	stmts, err := parser.Parse(src)
	if err != nil {
		return err
	}
	return in.Interpret(ctx, stmts)
}

// EvaluateFile loads and runs a program file.
func EvaluateFile(ctx context.Context, in *lang.Interpreter, path string) error {
	stmts, err := LoadFile(path)
	if err != nil {
		return err
	}
	return in.Interpret(ctx, stmts)
}
