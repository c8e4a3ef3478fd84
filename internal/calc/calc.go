package calc

import (
	"math"
)

// Resolver gives the evaluator access to the grid.
type Resolver interface {
	// Resolve evaluates the cell stored at addr.
	Resolve(addr Address) (Value, error)
	// Within lists the defined cells inside rect in a stable order.
	Within(rect Rect) []Address
}

// Rect is a closed rectangle of addresses.
type Rect struct {
	MinX, MinY int64
	MaxX, MaxY int64
}

// NewRect spans a and b, whichever corners they are.
func NewRect(a, b Address) Rect {
	return Rect{
		MinX: min(a.X, b.X),
		MinY: min(a.Y, b.Y),
		MaxX: max(a.X, b.X),
		MaxY: max(a.Y, b.Y),
	}
}

func (r Rect) Contains(x, y int64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Evaluate reduces node to a single value. Dereferences and range aggregates
// are resolved through r; a nil r makes any cell access undefined.
func Evaluate(node Expr, r Resolver) (Value, error) {
	e := evaluator{resolver: r}
	return e.eval(node)
}

type evaluator struct {
	resolver Resolver
}

func (e *evaluator) eval(node Expr) (Value, error) {
	switch n := node.(type) {
	case Integer:
		return n, nil
	case Float:
		return n, nil
	case Bool:
		return n, nil
	case String:
		return n, nil
	case Address:
		return n, nil
	case *UnaryExpr:
		return e.unary(n)
	case *BinaryExpr:
		return e.binary(n)
	case *AggregateExpr:
		return e.aggregate(n)
	case *CellLiteral:
		return e.address(n.X, n.Y, n.Span)
	case *CellDereference:
		return e.dereference(n)
	case nil:
		return nil, &SyntaxError{Msg: "missing expression"}
	}

	return nil, &SyntaxError{Msg: "unknown expression", Pos: node.Pos().Start}
}

func (e *evaluator) unary(n *UnaryExpr) (Value, error) {
	v, err := e.eval(n.Operand)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case UnaryNegate:
		switch v := v.(type) {
		case Integer:
			return Integer{Value: -v.Value, Span: n.Span}, nil
		case Float:
			return Float{Value: -v.Value, Span: n.Span}, nil
		}
		return nil, illegal(v, "Numeric")
	case UnaryLogicNot:
		if b, ok := v.(Bool); ok {
			return Bool{Value: !b.Value, Span: n.Span}, nil
		}
		return nil, illegal(v, "Boolean")
	case UnaryBitwiseNot:
		if i, ok := v.(Integer); ok {
			return Integer{Value: ^i.Value, Span: n.Span}, nil
		}
		return nil, illegal(v, "Integer")
	default:
		return e.cast(n, v)
	}
}

// casts only go one way: to_f takes an Integer, to_i takes a Float
func (e *evaluator) cast(n *UnaryExpr, v Value) (Value, error) {
	if n.Operator.Value == "to_f" {
		i, ok := v.(Integer)
		if !ok {
			return nil, illegal(v, "Integer")
		}
		return Float{Value: float64(i.Value), Span: n.Span}, nil
	}

	f, ok := v.(Float)
	if !ok {
		return nil, illegal(v, "Float")
	}
	if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) || math.Abs(f.Value) >= math.MaxInt64 {
		return nil, &TypeError{Msg: "cannot cast out-of-range float", Got: f.TypeName(), Want: "finite Float", Pos: f.Start}
	}

	return Integer{Value: int64(f.Value), Span: n.Span}, nil
}

func (e *evaluator) binary(n *BinaryExpr) (Value, error) {
	lhs, err := e.eval(n.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := e.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case BinaryArithmetic:
		return arithmetic(n, lhs, rhs)
	case BinaryLogical:
		return logical(n, lhs, rhs)
	case BinaryBitwise:
		return bitwise(n, lhs, rhs)
	default:
		return relational(n, lhs, rhs)
	}
}

func arithmetic(n *BinaryExpr, lhs, rhs Value) (Value, error) {
	if err := bothNumeric(lhs, rhs); err != nil {
		return nil, err
	}

	op := n.Operator.Value
	if op == "/" || op == "%" {
		if f, _ := toFloat(rhs); f == 0 {
			return nil, &DivisionByZeroError{Pos: rhs.Pos().Start}
		}
	}

	a, aInt := lhs.(Integer)
	b, bInt := rhs.(Integer)
	if aInt && bInt && !(op == "**" && b.Value < 0) {
		var r int64
		switch op {
		case "+":
			r = a.Value + b.Value
		case "-":
			r = a.Value - b.Value
		case "*":
			r = a.Value * b.Value
		case "/":
			r = a.Value / b.Value
		case "%":
			r = a.Value % b.Value
		case "**":
			r = ipow(a.Value, b.Value)
		}
		return Integer{Value: r, Span: n.Span}, nil
	}

	x, _ := toFloat(lhs)
	y, _ := toFloat(rhs)
	var r float64
	switch op {
	case "+":
		r = x + y
	case "-":
		r = x - y
	case "*":
		r = x * y
	case "/":
		r = x / y
	case "%":
		r = math.Mod(x, y)
	case "**":
		r = math.Pow(x, y)
	}

	return Float{Value: r, Span: n.Span}, nil
}

func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// both sides are always evaluated; there is no short circuit
func logical(n *BinaryExpr, lhs, rhs Value) (Value, error) {
	a, aok := lhs.(Bool)
	b, bok := rhs.(Bool)
	if !aok || !bok {
		return nil, illegal(culprit(lhs, aok, rhs), "Boolean")
	}

	if n.Operator.Value == "&&" {
		return Bool{Value: a.Value && b.Value, Span: n.Span}, nil
	}
	return Bool{Value: a.Value || b.Value, Span: n.Span}, nil
}

func bitwise(n *BinaryExpr, lhs, rhs Value) (Value, error) {
	a, aok := lhs.(Integer)
	b, bok := rhs.(Integer)
	if !aok || !bok {
		return nil, illegal(culprit(lhs, aok, rhs), "Integer")
	}

	var r int64
	switch n.Operator.Value {
	case "&":
		r = a.Value & b.Value
	case "|":
		r = a.Value | b.Value
	case "^":
		r = a.Value ^ b.Value
	case "<<":
		r = shift(a.Value, b.Value)
	case ">>":
		r = shift(a.Value, -b.Value)
	}

	return Integer{Value: r, Span: n.Span}, nil
}

// shift moves v left by n bits, or right when n is negative.
func shift(v, n int64) int64 {
	if n >= 0 {
		return v << uint64(n)
	}
	if n == math.MinInt64 {
		n++
	}
	return v >> uint64(-n)
}

func relational(n *BinaryExpr, lhs, rhs Value) (Value, error) {
	if err := bothNumeric(lhs, rhs); err != nil {
		return nil, err
	}

	var cmp int
	a, aInt := lhs.(Integer)
	b, bInt := rhs.(Integer)
	if aInt && bInt {
		cmp = compare(a.Value, b.Value)
	} else {
		x, _ := toFloat(lhs)
		y, _ := toFloat(rhs)
		cmp = compare(x, y)
		if math.IsNaN(x) || math.IsNaN(y) {
			return Bool{Value: n.Operator.Value == "!=", Span: n.Span}, nil
		}
	}

	var r bool
	switch n.Operator.Value {
	case "==":
		r = cmp == 0
	case "!=":
		r = cmp != 0
	case "<":
		r = cmp < 0
	case "<=":
		r = cmp <= 0
	case ">":
		r = cmp > 0
	case ">=":
		r = cmp >= 0
	}

	return Bool{Value: r, Span: n.Span}, nil
}

func compare[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (e *evaluator) address(xe, ye Expr, span Span) (Address, error) {
	x, err := e.coordinate(xe)
	if err != nil {
		return Address{}, err
	}
	y, err := e.coordinate(ye)
	if err != nil {
		return Address{}, err
	}

	return Address{X: x, Y: y, Span: span}, nil
}

func (e *evaluator) coordinate(node Expr) (int64, error) {
	v, err := e.eval(node)
	if err != nil {
		return 0, err
	}

	switch v := v.(type) {
	case Integer:
		return v.Value, nil
	case Float:
		if v.Value != math.Trunc(v.Value) || math.Abs(v.Value) >= math.MaxInt64 {
			return 0, &InvalidAddressError{Value: Format(v), Type: v.TypeName()}
		}
		return int64(v.Value), nil
	}

	return 0, illegal(v, "Numeric")
}

func (e *evaluator) dereference(n *CellDereference) (Value, error) {
	addr, err := e.address(n.X, n.Y, n.Span)
	if err != nil {
		return nil, err
	}

	if e.resolver == nil {
		return nil, &UndefinedCellError{X: addr.X, Y: addr.Y}
	}

	v, err := e.resolver.Resolve(addr)
	if err != nil {
		return nil, err
	}

	// errors in the caller's formula point at the reference, not the definition
	return withSpan(v, n.Span), nil
}

func (e *evaluator) aggregate(n *AggregateExpr) (Value, error) {
	from, err := e.corner(n.From)
	if err != nil {
		return nil, err
	}
	to, err := e.corner(n.To)
	if err != nil {
		return nil, err
	}

	var cells []Address
	if e.resolver != nil {
		cells = e.resolver.Within(NewRect(from, to))
	}

	var acc, pivot Value
	acc = Integer{}
	for _, addr := range cells {
		v, err := e.resolver.Resolve(addr)
		if err != nil {
			return nil, err
		}
		if !isNumeric(v) {
			return nil, &TypeError{
				Msg:  "incompatible type in target area " + Format(addr),
				Got:  v.TypeName(),
				Want: "Numeric",
				Pos:  n.Start,
			}
		}

		switch n.Operator.Value {
		case "sum", "mean":
			acc = add(acc, v)
		case "min":
			if pivot == nil || less(v, pivot) {
				pivot = v
			}
		case "max":
			if pivot == nil || less(pivot, v) {
				pivot = v
			}
		}
	}

	var result Value
	switch n.Operator.Value {
	case "sum":
		result = acc
	case "mean":
		count := int64(len(cells))
		if count == 0 {
			count = 1
		}
		result = divide(acc, count)
	default:
		result = pivot
		if result == nil {
			result = Integer{}
		}
	}

	return withSpan(result, n.Span), nil
}

// corner evaluates a range endpoint to an address.
func (e *evaluator) corner(lit *CellLiteral) (Address, error) {
	v, err := e.eval(lit)
	if err != nil {
		return Address{}, err
	}

	addr, ok := v.(Address)
	if !ok {
		return Address{}, &TypeError{Got: v.TypeName(), Want: "Address", Pos: lit.Start}
	}

	return addr, nil
}

func add(a, b Value) Value {
	x, xInt := a.(Integer)
	y, yInt := b.(Integer)
	if xInt && yInt {
		return Integer{Value: x.Value + y.Value}
	}

	fa, _ := toFloat(a)
	fb, _ := toFloat(b)
	return Float{Value: fa + fb}
}

func divide(a Value, n int64) Value {
	if i, ok := a.(Integer); ok {
		return Integer{Value: i.Value / n}
	}

	f, _ := toFloat(a)
	return Float{Value: f / float64(n)}
}

func less(a, b Value) bool {
	x, xInt := a.(Integer)
	y, yInt := b.(Integer)
	if xInt && yInt {
		return x.Value < y.Value
	}

	fa, _ := toFloat(a)
	fb, _ := toFloat(b)
	return fa < fb
}

func bothNumeric(lhs, rhs Value) error {
	if !isNumeric(lhs) {
		return illegal(lhs, "Numeric")
	}
	if !isNumeric(rhs) {
		return illegal(rhs, "Numeric")
	}
	return nil
}

func culprit(lhs Value, lhsOK bool, rhs Value) Value {
	if lhsOK {
		return rhs
	}
	return lhs
}

func illegal(v Value, want string) error {
	return &TypeError{Got: v.TypeName(), Want: want, Pos: v.Pos().Start}
}
