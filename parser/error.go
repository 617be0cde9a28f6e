package parser

import (
	"errors"
	"fmt"
)

// Error represents a tokenizer or parser failure at a source location.
type Error struct {
	Pos        Position
	Msg        string
	Incomplete bool
	Err        error // underlying cause, if any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(pos Position, msg string) error {
	return &Error{Pos: pos, Msg: msg}
}

func wrapError(pos Position, msg string, err error) error {
	return &Error{Pos: pos, Msg: msg, Err: err}
}

func newIncompleteError(pos Position, msg string) error {
	return &Error{
		Pos:        pos,
		Msg:        msg,
		Incomplete: true,
	}
}

// IsIncomplete reports whether the supplied error represents incomplete input,
// such as an unclosed block or string.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
