package calc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type TokenKind uint8

const (
	TokenEOF TokenKind = iota

	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenHashtag

	TokenPlus
	TokenMinus
	TokenAsterisk
	TokenRaise
	TokenDiv
	TokenModulo
	TokenCaret
	TokenTilde
	TokenLogicNot
	TokenLogicAnd
	TokenLogicOr
	TokenBitwiseAnd
	TokenBitwiseOr
	TokenLeftShift
	TokenRightShift
	TokenEqualTo
	TokenNotEqual
	TokenLess
	TokenLessEqual
	TokenGreater
	TokenGreaterEqual

	TokenCastInt
	TokenCastFloat
	TokenMin
	TokenMax
	TokenMean
	TokenSum

	TokenInteger
	TokenFloat
	TokenBool
	TokenIdentifier
)

var tokenNames = map[TokenKind]string{
	TokenEOF:          "end",
	TokenLeftParen:    "left_paren",
	TokenRightParen:   "right_paren",
	TokenLeftBracket:  "left_bracket",
	TokenRightBracket: "right_bracket",
	TokenComma:        "comma",
	TokenHashtag:      "hashtag",
	TokenPlus:         "plus",
	TokenMinus:        "minus",
	TokenAsterisk:     "asterisk",
	TokenRaise:        "raise",
	TokenDiv:          "div",
	TokenModulo:       "modulo",
	TokenCaret:        "caret",
	TokenTilde:        "bitwise_not",
	TokenLogicNot:     "logic_not",
	TokenLogicAnd:     "logic_and",
	TokenLogicOr:      "logic_or",
	TokenBitwiseAnd:   "bitwise_and",
	TokenBitwiseOr:    "bitwise_or",
	TokenLeftShift:    "left_shift",
	TokenRightShift:   "right_shift",
	TokenEqualTo:      "equal_to",
	TokenNotEqual:     "not_equal",
	TokenLess:         "less_than",
	TokenLessEqual:    "less_equal",
	TokenGreater:      "greater_than",
	TokenGreaterEqual: "greater_equal",
	TokenCastInt:      "cast_int",
	TokenCastFloat:    "cast_float",
	TokenMin:          "min",
	TokenMax:          "max",
	TokenMean:         "mean",
	TokenSum:          "sum",
	TokenInteger:      "integer_literal",
	TokenFloat:        "float_literal",
	TokenBool:         "bool_literal",
	TokenIdentifier:   "identifier",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

var keywordTable = map[string]TokenKind{
	"to_i":  TokenCastInt,
	"to_f":  TokenCastFloat,
	"min":   TokenMin,
	"max":   TokenMax,
	"mean":  TokenMean,
	"sum":   TokenSum,
	"true":  TokenBool,
	"false": TokenBool,
}

// Two-byte operators are looked up before their one-byte prefix.
var operatorTable = map[string]TokenKind{
	"(":  TokenLeftParen,
	")":  TokenRightParen,
	"[":  TokenLeftBracket,
	"]":  TokenRightBracket,
	",":  TokenComma,
	"#":  TokenHashtag,
	"+":  TokenPlus,
	"-":  TokenMinus,
	"*":  TokenAsterisk,
	"**": TokenRaise,
	"/":  TokenDiv,
	"%":  TokenModulo,
	"^":  TokenCaret,
	"~":  TokenTilde,
	"!":  TokenLogicNot,
	"!=": TokenNotEqual,
	"<":  TokenLess,
	"<=": TokenLessEqual,
	"<<": TokenLeftShift,
	">":  TokenGreater,
	">=": TokenGreaterEqual,
	">>": TokenRightShift,
	"==": TokenEqualTo,
	"&":  TokenBitwiseAnd,
	"&&": TokenLogicAnd,
	"|":  TokenBitwiseOr,
	"||": TokenLogicOr,
}

// Token is one lexeme of a formula. Start and End are inclusive byte offsets
// into the source.
type Token struct {
	Kind   TokenKind
	Source string
	Start  int
	End    int
}

func (t Token) String() string {
	return fmt.Sprintf("Token -> [%s, %q, %d, %d]", t.Kind, t.Source, t.Start, t.End)
}

type stateFunc func(l *lexer) stateFunc

type lexer struct {
	source string
	pos    int
	start  int
	tokens []Token
	err    error
}

// Tokenize splits a formula into tokens, left to right without backtracking.
// A single space separates tokens and a lone '=' is dropped; any character
// the lexer cannot classify fails with a *LexError.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{source: source}
	for state := defaultState; state != nil; {
		state = state(l)
	}

	if l.err != nil {
		return nil, l.err
	}

	return l.tokens, nil
}

func defaultState(l *lexer) stateFunc {
	for {
		l.start = l.pos
		if l.pos >= len(l.source) {
			return nil
		}

		switch r := l.peek(); {
		case r == ' ':
			l.pos++
			continue
		case r == '-' && isDigit(l.peekAt(1)):
			return numberState
		case isDigit(r):
			return numberState
		case isLetter(r):
			return identifierState
		default:
			return operatorState
		}
	}
}

func numberState(l *lexer) stateFunc {
	if l.peek() == '-' {
		l.pos++
	}
	l.digits()

	if l.peek() != '.' {
		return l.emit(TokenInteger)
	}

	l.pos++
	l.digits()

	return l.emit(TokenFloat)
}

func identifierState(l *lexer) stateFunc {
	for isLetter(l.peek()) {
		l.pos++
	}

	if kind, ok := keywordTable[l.source[l.start:l.pos]]; ok {
		return l.emit(kind)
	}

	return l.emit(TokenIdentifier)
}

func operatorState(l *lexer) stateFunc {
	if l.pos+1 < len(l.source) {
		if kind, ok := operatorTable[l.source[l.pos:l.pos+2]]; ok {
			l.pos += 2
			return l.emit(kind)
		}
	}

	r := l.peek()
	if r == '=' {
		// assignment-style '=' carries no meaning in a formula
		l.pos++
		return defaultState
	}

	if kind, ok := operatorTable[string(r)]; ok {
		l.pos++
		return l.emit(kind)
	}

	c, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	l.err = &LexError{Pos: l.pos, Char: c}
	return nil
}

func (l *lexer) digits() {
	for isDigit(l.peek()) {
		l.pos++
	}
}

func (l *lexer) emit(kind TokenKind) stateFunc {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Source: l.source[l.start:l.pos],
		Start:  l.start,
		End:    l.pos - 1,
	})

	return defaultState
}

const eof byte = 0

func (l *lexer) peek() byte {
	return l.peekAt(0)
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.source) {
		return eof
	}
	return l.source[l.pos+offset]
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || b == '_'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// sources joins token texts, used for extraneous-token diagnostics.
func sources(toks []Token) string {
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, t.Source)
	}
	return strings.Join(parts, " ")
}
