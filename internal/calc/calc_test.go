package calc

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sheet is a fixed set of already evaluated cells.
type sheet map[[2]int64]Value

func (s sheet) Resolve(addr Address) (Value, error) {
	v, ok := s[addr.Key()]
	if !ok {
		return nil, &UndefinedCellError{X: addr.X, Y: addr.Y}
	}
	return v, nil
}

func (s sheet) Within(rect Rect) []Address {
	var out []Address
	for k := range s {
		if rect.Contains(k[0], k[1]) {
			out = append(out, Address{X: k[0], Y: k[1]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

func eval(t *testing.T, data string, r Resolver) (Value, error) {
	t.Helper()

	expr, err := Compile(data)
	require.NoError(t, err, data)

	return Evaluate(expr, r)
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		data   string
		expect Value
	}{
		{"1 + 2 * 3", Integer{Value: 9}},
		{"1 + (2 * 3)", Integer{Value: 7}},
		{"2 + 3", Integer{Value: 5}},
		{"2 + 3.0", Float{Value: 5}},
		{"7 / 2", Integer{Value: 3}},
		{"7.0 / 2", Float{Value: 3.5}},
		{"-7 / 2", Integer{Value: -3}},
		{"-7 % 3", Integer{Value: -1}},
		{"7.5 % 2", Float{Value: 1.5}},
		{"2 ** 10", Integer{Value: 1024}},
		{"2 ** 0", Integer{Value: 1}},
		{"2 ** -1", Float{Value: 0.5}},
		{"2.0 ** 3", Float{Value: 8}},
		{"6 & 3", Integer{Value: 2}},
		{"6 | 3", Integer{Value: 7}},
		{"6 ^ 3", Integer{Value: 5}},
		{"1 << 4", Integer{Value: 16}},
		{"256 >> 4", Integer{Value: 16}},
		{"1 << -1", Integer{Value: 0}},
		{"~(0)", Integer{Value: -1}},
		{"true && false", Bool{Value: false}},
		{"false || true", Bool{Value: true}},
		{"!(false)", Bool{Value: true}},
		{"2 == 2.0", Bool{Value: true}},
		{"1 < 2", Bool{Value: true}},
		{"2.5 >= 3", Bool{Value: false}},
		{"3 != 3", Bool{Value: false}},
		{"3 <= 3", Bool{Value: true}},
		{"-(2.5)", Float{Value: -2.5}},
		{"-(-4)", Integer{Value: 4}},
		{"to_f(3)", Float{Value: 3}},
		{"to_i(3.9)", Integer{Value: 3}},
		{"to_i(-3.9)", Integer{Value: -3}},
		{"[1, 2]", Address{X: 1, Y: 2}},
		{"[1.0, 2 - 3]", Address{X: 1, Y: -1}},
		{"(-8.0 ** 0.5) != 1", Bool{Value: true}},
		{"(-8.0 ** 0.5) == (-8.0 ** 0.5)", Bool{Value: false}},
	}

	for _, c := range cases {
		v, err := eval(t, c.data, nil)
		require.NoError(t, err, c.data)

		assert.Equal(t, c.expect, withSpan(v, Span{}), c.data)
	}
}

func TestEvaluateErrors(t *testing.T) {
	cases := []struct {
		data   string
		expect error
	}{
		{"5 / 0", &DivisionByZeroError{Pos: 4}},
		{"5 % 0", &DivisionByZeroError{Pos: 4}},
		{"5.0 / 0.0", &DivisionByZeroError{Pos: 6}},
		{"1 + (2 - 2) / (1 - 1)", &DivisionByZeroError{Pos: 15}},
		{"1 + true", &TypeError{Got: "Bool", Want: "Numeric", Pos: 4}},
		{"true + 1", &TypeError{Got: "Bool", Want: "Numeric", Pos: 0}},
		{"true < false", &TypeError{Got: "Bool", Want: "Numeric", Pos: 0}},
		{"1 && true", &TypeError{Got: "Integer", Want: "Boolean", Pos: 0}},
		{"1 & 1.0", &TypeError{Got: "Float", Want: "Integer", Pos: 4}},
		{"to_f(1.5)", &TypeError{Got: "Float", Want: "Integer", Pos: 5}},
		{"to_i(1)", &TypeError{Got: "Integer", Want: "Float", Pos: 5}},
		{"to_f(to_f(1))", &TypeError{Got: "Float", Want: "Integer", Pos: 5}},
		{"!(1)", &TypeError{Got: "Integer", Want: "Boolean", Pos: 2}},
		{"~(1.5)", &TypeError{Got: "Float", Want: "Integer", Pos: 2}},
		{"-(true)", &TypeError{Got: "Bool", Want: "Numeric", Pos: 2}},
		{"[true, 1]", &TypeError{Got: "Bool", Want: "Numeric", Pos: 1}},
		{"[0.5, 1]", &InvalidAddressError{Value: "0.5", Type: "Float"}},
		{"#[0, 0]", &UndefinedCellError{X: 0, Y: 0}},
	}

	for _, c := range cases {
		_, err := eval(t, c.data, nil)
		assert.Equal(t, c.expect, err, c.data)
	}
}

func TestEvaluateNil(t *testing.T) {
	_, err := Evaluate(nil, nil)

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "missing expression", syntaxErr.Msg)
}

func TestEvaluateCastOutOfRange(t *testing.T) {
	_, err := eval(t, "to_i(-8.0 ** 0.5)", nil)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "cannot cast out-of-range float", typeErr.Msg)
}

func TestEvaluateDereference(t *testing.T) {
	cells := sheet{
		{0, 0}: Integer{Value: 10},
		{1, 0}: Float{Value: 0.5},
		{2, 0}: Bool{Value: true, Span: Span{40, 44}},
		{0, 1}: Integer{Value: 1},
	}

	v, err := eval(t, "#[0, 0] + 1", cells)
	require.NoError(t, err)
	assert.Equal(t, Integer{Value: 11}, withSpan(v, Span{}))

	v, err = eval(t, "#[#[0, 1], 0]", cells)
	require.NoError(t, err)
	assert.Equal(t, Float{Value: 0.5, Span: Span{0, 12}}, v)

	// errors point at the reference in the formula being evaluated
	_, err = eval(t, "1 + #[2, 0]", cells)
	assert.Equal(t, &TypeError{Got: "Bool", Want: "Numeric", Pos: 4}, err)

	_, err = eval(t, "#[9, 9]", cells)
	assert.Equal(t, &UndefinedCellError{X: 9, Y: 9}, err)
}

func TestEvaluateAggregate(t *testing.T) {
	cells := sheet{
		{0, 0}: Integer{Value: 1},
		{1, 0}: Integer{Value: 2},
		{0, 1}: Integer{Value: 3},
		{1, 1}: Integer{Value: 4},
		{2, 0}: Float{Value: 2.5},
		{5, 5}: String{Value: "note"},
	}

	cases := []struct {
		data   string
		expect Value
	}{
		{"sum([0,0],[1,1])", Integer{Value: 10}},
		{"mean([0,0],[1,1])", Integer{Value: 2}},
		{"min([0,0],[1,1])", Integer{Value: 1}},
		{"max([0,0],[1,1])", Integer{Value: 4}},
		{"sum([1,1],[0,0])", Integer{Value: 10}},
		{"max([1,0],[0,1])", Integer{Value: 4}},
		{"sum([0,0],[2,1])", Float{Value: 12.5}},
		{"mean([0,0],[2,1])", Float{Value: 2.5}},
		{"max([0,0],[2,0])", Float{Value: 2.5}},
		{"min([1,0],[2,0])", Integer{Value: 2}},
		{"mean([6,6],[8,8])", Integer{Value: 0}},
		{"sum([6,6],[8,8])", Integer{Value: 0}},
		{"min([6,6],[8,8])", Integer{Value: 0}},
		{"sum([0,0],[0,0]) * 2", Integer{Value: 2}},
		{"sum([#[0,1] - 3, 0],[1, #[0,1]])", Integer{Value: 10}},
	}

	for _, c := range cases {
		v, err := eval(t, c.data, cells)
		require.NoError(t, err, c.data)

		assert.Equal(t, c.expect, withSpan(v, Span{}), c.data)
	}

	_, err := eval(t, "sum([4,4],[5,5])", cells)
	assert.Equal(t, &TypeError{
		Msg:  "incompatible type in target area [5, 5]",
		Got:  "String",
		Want: "Numeric",
		Pos:  0,
	}, err)

	v, err := eval(t, "mean([0,0],[1,1])", nil)
	require.NoError(t, err)
	assert.Equal(t, Integer{Value: 0, Span: Span{0, 16}}, v)
}

func TestFormat(t *testing.T) {
	cases := []struct {
		value  Value
		expect string
	}{
		{Integer{Value: -42}, "-42"},
		{Float{Value: 5}, "5.0"},
		{Float{Value: 3.5}, "3.5"},
		{Float{Value: -0.25}, "-0.25"},
		{Float{Value: 1e21}, "1000000000000000000000.0"},
		{Float{Value: math.Inf(1)}, "Infinity"},
		{Float{Value: math.NaN()}, "NaN"},
		{Bool{Value: true}, "true"},
		{String{Value: "hello world"}, "hello world"},
		{Address{X: 1, Y: -2}, "[1, -2]"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, Format(c.value))
	}
}

func TestSerializeValues(t *testing.T) {
	assert.Equal(t, `"a b"`, Serialize(String{Value: "a b"}))
	assert.Equal(t, "[3, 4]", Serialize(Address{X: 3, Y: 4}))
	assert.Equal(t, "2.0", Serialize(Float{Value: 2}))
}
