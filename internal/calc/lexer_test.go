package calc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		expect []Token
	}{
		{
			"1 + 2",
			false,
			[]Token{
				{TokenInteger, "1", 0, 0},
				{TokenPlus, "+", 2, 2},
				{TokenInteger, "2", 4, 4},
			},
		},
		{
			"1-2",
			false,
			[]Token{
				{TokenInteger, "1", 0, 0},
				{TokenInteger, "-2", 1, 2},
			},
		},
		{
			"1 - 2",
			false,
			[]Token{
				{TokenInteger, "1", 0, 0},
				{TokenMinus, "-", 2, 2},
				{TokenInteger, "2", 4, 4},
			},
		},
		{
			"2**3*4",
			false,
			[]Token{
				{TokenInteger, "2", 0, 0},
				{TokenRaise, "**", 1, 2},
				{TokenInteger, "3", 3, 3},
				{TokenAsterisk, "*", 4, 4},
				{TokenInteger, "4", 5, 5},
			},
		},
		{
			"a&&b&c",
			false,
			[]Token{
				{TokenIdentifier, "a", 0, 0},
				{TokenLogicAnd, "&&", 1, 2},
				{TokenIdentifier, "b", 3, 3},
				{TokenBitwiseAnd, "&", 4, 4},
				{TokenIdentifier, "c", 5, 5},
			},
		},
		{
			"x <= y >> 1",
			false,
			[]Token{
				{TokenIdentifier, "x", 0, 0},
				{TokenLessEqual, "<=", 2, 3},
				{TokenIdentifier, "y", 5, 5},
				{TokenRightShift, ">>", 7, 8},
				{TokenInteger, "1", 10, 10},
			},
		},
		{
			"!(true) != false",
			false,
			[]Token{
				{TokenLogicNot, "!", 0, 0},
				{TokenLeftParen, "(", 1, 1},
				{TokenBool, "true", 2, 5},
				{TokenRightParen, ")", 6, 6},
				{TokenNotEqual, "!=", 8, 9},
				{TokenBool, "false", 11, 15},
			},
		},
		{
			"#[0,1]",
			false,
			[]Token{
				{TokenHashtag, "#", 0, 0},
				{TokenLeftBracket, "[", 1, 1},
				{TokenInteger, "0", 2, 2},
				{TokenComma, ",", 3, 3},
				{TokenInteger, "1", 4, 4},
				{TokenRightBracket, "]", 5, 5},
			},
		},
		{
			"to_f(-3) || to_i(3.5)",
			false,
			[]Token{
				{TokenCastFloat, "to_f", 0, 3},
				{TokenLeftParen, "(", 4, 4},
				{TokenInteger, "-3", 5, 6},
				{TokenRightParen, ")", 7, 7},
				{TokenLogicOr, "||", 9, 10},
				{TokenCastInt, "to_i", 12, 15},
				{TokenLeftParen, "(", 16, 16},
				{TokenFloat, "3.5", 17, 19},
				{TokenRightParen, ")", 20, 20},
			},
		},
		{
			"sum mean min max",
			false,
			[]Token{
				{TokenSum, "sum", 0, 2},
				{TokenMean, "mean", 4, 7},
				{TokenMin, "min", 9, 11},
				{TokenMax, "max", 13, 15},
			},
		},
		{
			"= 3.",
			false,
			[]Token{
				{TokenFloat, "3.", 2, 3},
			},
		},
		{
			"1 == ~2",
			false,
			[]Token{
				{TokenInteger, "1", 0, 0},
				{TokenEqualTo, "==", 2, 3},
				{TokenTilde, "~", 5, 5},
				{TokenInteger, "2", 6, 6},
			},
		},
		{
			"",
			false,
			nil,
		},
		{
			"1\t2",
			true,
			nil,
		},
		{
			"TRUE",
			true,
			nil,
		},
		{
			"$",
			true,
			nil,
		},
	}

	for _, c := range cases {
		toks, err := Tokenize(c.data)
		if c.fail {
			assert.Error(t, err, c.data)
		} else {
			assert.NoError(t, err, c.data)
		}

		assert.Equal(t, c.expect, toks, c.data)
	}
}

func TestTokenizeErrorPosition(t *testing.T) {
	_, err := Tokenize("1 + é")
	assert.Equal(t, &LexError{Pos: 4, Char: 'é'}, err)

	_, err = Tokenize("1\n")
	assert.Equal(t, &LexError{Pos: 1, Char: '\n'}, err)
	assert.EqualError(t, err, "invalid syntax: unrecognized token {\n} @ index 1")
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "right_paren", TokenRightParen.String())
	assert.Equal(t, "end", TokenEOF.String())
	assert.Equal(t, "TokenKind(200)", TokenKind(200).String())
}

// Use a package-level variable to avoid compiler optimisation
var benchResult []Token

func BenchmarkTokenize(b *testing.B) {
	data := strings.Repeat("sum([0,0],[9,9]) + #[1, -2] ** to_f(3) >= 2.5 && ", 200) + "true"

	for n := 0; n < b.N; n++ {
		toks, err := Tokenize(data)
		if err != nil {
			b.Fatal(err)
		}
		benchResult = toks
	}
}
