package lang

import (
	"errors"
	"fmt"

	"github.com/sergev/pseudo/parser"
)

// ErrCancelled is returned when a run stops because the host asked it to.
var ErrCancelled = errors.New("execution cancelled")

// RuntimeError is a failure attributed to the node that caused it.
type RuntimeError struct {
	Node    parser.Node
	Pos     parser.Position
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// IsCancelled reports whether err is a cancellation rather than a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
