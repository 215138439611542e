package filter

import (
	"fmt"

	"github.com/pkg/errors"
)

// SyntaxError is returned when the expression text itself cannot be
// tokenised or parsed: unterminated quotes, unbalanced parentheses,
// malformed numeric literals.
type SyntaxError struct{ Msg string }

func (e *SyntaxError) Error() string { return "SyntaxError: " + e.Msg }

// NameError is returned when a tag reference cannot be resolved against the
// schema, or is used without a subscript its declared arity requires.
type NameError struct{ Msg string }

func (e *NameError) Error() string { return "NameError: " + e.Msg }

// TypeError is returned when an operator is applied to operands of
// incompatible types, or to vectors of mismatched length.
type TypeError struct{ Msg string }

func (e *TypeError) Error() string { return "TypeError: " + e.Msg }

// ArityError signals that the RPN program itself is malformed: a stack
// underflow, or a program that doesn't reduce to exactly one value. This
// should never surface from a program that came out of Compile.
type ArityError struct{ Msg string }

func (e *ArityError) Error() string { return "ArityError: " + e.Msg }

func syntaxErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&SyntaxError{Msg: fmt.Sprintf(format, args...)})
}

func nameErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&NameError{Msg: fmt.Sprintf(format, args...)})
}

func typeErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&TypeError{Msg: fmt.Sprintf(format, args...)})
}

func arityErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&ArityError{Msg: fmt.Sprintf(format, args...)})
}
