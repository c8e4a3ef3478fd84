package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders a value for display: floats always keep a decimal point,
// addresses print as [x, y].
func Format(v Value) string {
	switch v := v.(type) {
	case Integer:
		return strconv.FormatInt(v.Value, 10)
	case Float:
		return formatFloat(v.Value)
	case Bool:
		return strconv.FormatBool(v.Value)
	case String:
		return v.Value
	case Address:
		return fmt.Sprintf("[%d, %d]", v.X, v.Y)
	}
	return ""
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Serialize prints an expression tree fully parenthesised, so the grouping
// the parser chose is visible.
func Serialize(node Expr) string {
	var b strings.Builder
	serialize(&b, node)
	return b.String()
}

func serialize(b *strings.Builder, node Expr) {
	switch n := node.(type) {
	case String:
		b.WriteString(strconv.Quote(n.Value))
	case Value:
		b.WriteString(Format(n))
	case *UnaryExpr:
		switch n.Op {
		case UnaryCast:
			b.WriteString(n.Operator.Value)
			b.WriteByte('(')
			serialize(b, n.Operand)
			b.WriteByte(')')
		default:
			b.WriteByte('(')
			b.WriteString(n.Operator.Value)
			serialize(b, n.Operand)
			b.WriteByte(')')
		}
	case *BinaryExpr:
		b.WriteByte('(')
		serialize(b, n.Left)
		b.WriteString(" " + n.Operator.Value + " ")
		serialize(b, n.Right)
		b.WriteByte(')')
	case *AggregateExpr:
		b.WriteString(n.Operator.Value + "(")
		serialize(b, n.From)
		b.WriteString(", ")
		serialize(b, n.To)
		b.WriteByte(')')
	case *CellLiteral:
		serializePair(b, n.X, n.Y)
	case *CellDereference:
		b.WriteByte('#')
		serializePair(b, n.X, n.Y)
	}
}

func serializePair(b *strings.Builder, x, y Expr) {
	b.WriteByte('[')
	serialize(b, x)
	b.WriteString(", ")
	serialize(b, y)
	b.WriteByte(']')
}
