package app

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"xsheet/internal/calc"

	"golang.org/x/exp/maps"
)

// maxInputLen caps what the cell editor accepts.
const maxInputLen = 42

var numericInput = regexp.MustCompile(`^-?[0-9]+(\.[0-9]*)?$`)

// Classify decides how raw cell text is stored. Text after a leading '=' is a
// formula; numbers, booleans and bracketed addresses are compiled as plain
// literals; anything else is kept as a string.
func Classify(text string) (calc.Expr, error) {
	if strings.HasPrefix(text, "=") && len(text) > 1 {
		return calc.Compile(text[1:])
	}

	if lower := strings.ToLower(text); lower == "true" || lower == "false" {
		return calc.Compile(lower)
	}

	if numericInput.MatchString(text) || (strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]")) {
		return calc.Compile(text)
	}

	return calc.String{Value: text, Span: calc.Span{Start: 0, End: len(text) - 1}}, nil
}

// Commit stores text into the cell at column x, row y. Empty text clears the
// cell. Text that fails to compile or evaluate leaves a short description of
// the error in the cell instead.
func (a *App) Commit(x, y int, text string) {
	a.commit(address(x, y), text)
	a.retryFailed()
}

func (a *App) commit(addr calc.Address, text string) {
	key := addr.Key()
	if text == "" {
		a.Runtime.RemoveCell(addr)
		delete(a.Sources, key)
		delete(a.failed, key)
		return
	}

	a.Sources[key] = text

	expr, err := Classify(text)
	if err == nil {
		err = a.Runtime.SetCell(addr, expr)
	}
	if err == nil {
		delete(a.failed, key)
		return
	}

	msg := Describe(err)
	a.logger.Info("cell rejected",
		slog.String("cell", calc.Format(addr)),
		slog.String("input", text),
		slog.String("error", err.Error()))

	// a string never fails to evaluate
	_ = a.Runtime.SetCell(addr, calc.String{Value: msg})
	a.failed[key] = true
	a.Message = msg
}

// retryFailed re-enters the text of every rejected cell, since the cells it
// depended on may have changed. A cell can depend on another rejected cell, so
// passes repeat until one recovers nothing.
func (a *App) retryFailed() {
	for i, n := 0, len(a.failed); i < n; i++ {
		recovered := false
		for _, key := range maps.Keys(a.failed) {
			a.commit(calc.Address{X: key[0], Y: key[1]}, a.Sources[key])
			if !a.failed[key] {
				recovered = true
			}
		}
		if !recovered {
			return
		}
	}
}

// Clear empties the cell at column x, row y.
func (a *App) Clear(x, y int) {
	a.Commit(x, y, "")
}

// Reset wipes the sheet.
func (a *App) Reset() {
	a.Runtime.Reset()
	a.Sources = map[[2]int64]string{}
	a.failed = map[[2]int64]bool{}
	a.Message = ""
}

// Describe turns an error from the calculation core into the short text shown
// in place of a rejected cell.
func Describe(err error) string {
	switch e := err.(type) {
	case *calc.LexError:
		return fmt.Sprintf("Unrecognized Token <%c> @ i=%d", e.Char, e.Pos)
	case *calc.SyntaxError:
		if e.Extraneous != "" {
			src := e.Extraneous
			if len(src) > 9 {
				src = src[:min(len(src), 11)] + ".."
			}
			return fmt.Sprintf("Invalid Source: <%s>", src)
		}
		if kind, ok := strings.CutPrefix(e.Msg, "expected token of type "); ok {
			return fmt.Sprintf("Expected <%s> @ i=%d", kind, e.Pos)
		}
		return fmt.Sprintf("Invalid Syntax @ i=%d", e.Pos)
	case *calc.TypeError:
		if e.Got == "" {
			return fmt.Sprintf("Illegal Types @ i=%d", e.Pos)
		}
		return fmt.Sprintf("<%s> @ i=%d != <%s>", e.Got, e.Pos, e.Want)
	case *calc.DivisionByZeroError:
		return fmt.Sprintf("Illegal Zero Division @ i=%d", e.Pos)
	case *calc.UndefinedCellError:
		return fmt.Sprintf("Cell [%d, %d] is undefined", e.X, e.Y)
	case *calc.InvalidAddressError:
		return fmt.Sprintf("Invalid Address <%s>", e.Value)
	case *calc.CircularReferenceError:
		return fmt.Sprintf("Circular reference @ [%d, %d]", e.X, e.Y)
	}

	return err.Error()
}

func address(x, y int) calc.Address {
	return calc.Address{X: int64(x), Y: int64(y)}
}
