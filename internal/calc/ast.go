package calc

// Span is the inclusive byte range of source text a node was parsed from.
type Span struct {
	Start int
	End   int
}

func (s Span) Pos() Span {
	return s
}

// Expr is a node of a parsed formula. The set of implementations is closed.
type Expr interface {
	Pos() Span
	exprNode()
}

// Value is what evaluating an Expr produces. Values are also Exprs, so a cell
// may hold a plain value as its formula.
type Value interface {
	Expr
	TypeName() string
	valueNode()
}

type Integer struct {
	Value int64
	Span
}

type Float struct {
	Value float64
	Span
}

type Bool struct {
	Value bool
	Span
}

// String holds text entered into a cell. The parser also uses it to carry an
// operator's symbol through the tree.
type String struct {
	Value string
	Span
}

// Address identifies a grid cell. It is only ever produced by evaluation.
type Address struct {
	X, Y int64
	Span
}

func (a Address) Key() [2]int64 {
	return [2]int64{a.X, a.Y}
}

type UnaryOp uint8

const (
	UnaryNegate UnaryOp = iota
	UnaryLogicNot
	UnaryBitwiseNot
	UnaryCast
)

type UnaryExpr struct {
	Op       UnaryOp
	Operator String
	Operand  Expr
	Span
}

type BinaryOp uint8

const (
	BinaryArithmetic BinaryOp = iota
	BinaryLogical
	BinaryBitwise
	BinaryRelational
)

type BinaryExpr struct {
	Op       BinaryOp
	Left     Expr
	Operator String
	Right    Expr
	Span
}

// AggregateExpr is a min, max, mean or sum over the rectangle spanned by two
// cell literals.
type AggregateExpr struct {
	Operator String
	From     *CellLiteral
	To       *CellLiteral
	Span
}

// CellLiteral is a bracketed address, [x, y]. It evaluates to an Address.
type CellLiteral struct {
	X, Y Expr
	Span
}

// CellDereference is #[x, y]. It evaluates to the value stored at the address.
type CellDereference struct {
	X, Y Expr
	Span
}

func (Integer) exprNode()          {}
func (Float) exprNode()            {}
func (Bool) exprNode()             {}
func (String) exprNode()           {}
func (Address) exprNode()          {}
func (*UnaryExpr) exprNode()       {}
func (*BinaryExpr) exprNode()      {}
func (*AggregateExpr) exprNode()   {}
func (*CellLiteral) exprNode()     {}
func (*CellDereference) exprNode() {}

func (Integer) valueNode() {}
func (Float) valueNode()   {}
func (Bool) valueNode()    {}
func (String) valueNode()  {}
func (Address) valueNode() {}

func (Integer) TypeName() string { return "Integer" }
func (Float) TypeName() string   { return "Float" }
func (Bool) TypeName() string    { return "Bool" }
func (String) TypeName() string  { return "String" }
func (Address) TypeName() string { return "Address" }

// withSpan returns v re-tagged with s.
func withSpan(v Value, s Span) Value {
	switch v := v.(type) {
	case Integer:
		v.Span = s
		return v
	case Float:
		v.Span = s
		return v
	case Bool:
		v.Span = s
		return v
	case String:
		v.Span = s
		return v
	case Address:
		v.Span = s
		return v
	}
	return v
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case Integer, Float:
		return true
	}
	return false
}

// toFloat widens a numeric value; ok is false for non-numeric values.
func toFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case Integer:
		return float64(v.Value), true
	case Float:
		return v.Value, true
	}
	return 0, false
}
