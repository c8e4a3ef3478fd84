package calc

import "fmt"

// LexError reports a character the tokenizer cannot classify.
type LexError struct {
	Pos  int
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("invalid syntax: unrecognized token {%c} @ index %d", e.Char, e.Pos)
}

// SyntaxError reports the first grammar violation found by the parser.
// Extraneous holds the source of tokens left over after a complete
// expression.
type SyntaxError struct {
	Msg        string
	Pos        int
	Extraneous string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s @ index %d", e.Msg, e.Pos)
}

// TypeError reports an operand whose kind an operator or cast does not accept.
// Got is empty when more than one operand is at fault.
type TypeError struct {
	Got  string
	Want string
	Pos  int
	Msg  string
}

func (e *TypeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: <%s> (must be %s) @ index %d", e.Msg, e.Got, e.Want, e.Pos)
	}
	if e.Got == "" {
		return fmt.Sprintf("one or more operands are of illegal type (must be %s) @ index %d", e.Want, e.Pos)
	}
	return fmt.Sprintf("illegal operand - passed: <%s> (must be %s) @ index %d", e.Got, e.Want, e.Pos)
}

// DivisionByZeroError points at the right operand of a '/' or '%'.
type DivisionByZeroError struct {
	Pos int
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("illegal operation - division by zero @ index %d", e.Pos)
}

type UndefinedCellError struct {
	X, Y int64
}

func (e *UndefinedCellError) Error() string {
	return fmt.Sprintf("attempting to access an undefined cell @ [%d, %d]", e.X, e.Y)
}

// InvalidAddressError is returned when a value that is not a whole-number
// address is used to address the grid.
type InvalidAddressError struct {
	Value string
	Type  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("illegal argument - passed: <%s> of type <%s> (must be Address)", e.Value, e.Type)
}

// CircularReferenceError is returned when evaluating a cell requires the value
// of a cell whose evaluation is already in progress.
type CircularReferenceError struct {
	X, Y int64
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected @ [%d, %d]", e.X, e.Y)
}
