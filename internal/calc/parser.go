package calc

import (
	"fmt"
	"strconv"
)

var binaryOperators = map[TokenKind]BinaryOp{
	TokenPlus:         BinaryArithmetic,
	TokenMinus:        BinaryArithmetic,
	TokenAsterisk:     BinaryArithmetic,
	TokenDiv:          BinaryArithmetic,
	TokenModulo:       BinaryArithmetic,
	TokenRaise:        BinaryArithmetic,
	TokenLogicAnd:     BinaryLogical,
	TokenLogicOr:      BinaryLogical,
	TokenBitwiseAnd:   BinaryBitwise,
	TokenBitwiseOr:    BinaryBitwise,
	TokenCaret:        BinaryBitwise,
	TokenLeftShift:    BinaryBitwise,
	TokenRightShift:   BinaryBitwise,
	TokenEqualTo:      BinaryRelational,
	TokenNotEqual:     BinaryRelational,
	TokenLess:         BinaryRelational,
	TokenLessEqual:    BinaryRelational,
	TokenGreater:      BinaryRelational,
	TokenGreaterEqual: BinaryRelational,
}

var unaryOperators = map[TokenKind]UnaryOp{
	TokenMinus:     UnaryNegate,
	TokenLogicNot:  UnaryLogicNot,
	TokenTilde:     UnaryBitwiseNot,
	TokenCastInt:   UnaryCast,
	TokenCastFloat: UnaryCast,
}

// Parser turns a token sequence into a single expression tree. Binary
// operators share one precedence level and fold strictly left to right.
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses one expression and requires every token to be consumed.
func Parse(tokens []Token) (Expr, error) {
	return NewParser(tokens).Run()
}

// Compile tokenizes and parses a formula body (the text after '=').
func Compile(source string) (Expr, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	return Parse(toks)
}

func (p *Parser) Run() (Expr, error) {
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.tokens) {
		rest := sources(p.tokens[p.pos:])
		return nil, &SyntaxError{
			Msg:        fmt.Sprintf("extraneous tokens <%s>", rest),
			Pos:        p.tokens[p.pos].Start,
			Extraneous: rest,
		}
	}

	return expr, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF, Start: p.cursor(), End: p.cursor()}
	}

	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if tok.Kind != TokenEOF {
		p.pos++
	}

	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if !p.check(kind) {
		return Token{}, p.errorf("expected token of type %s", kind)
	}

	return p.next(), nil
}

// cursor is the byte index the parser is looking at: the current token's
// start, or one past the last token once the input is exhausted.
func (p *Parser) cursor() int {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Start
	}
	if p.pos == 0 {
		return 0
	}

	return p.tokens[p.pos-1].End + 1
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Pos: p.cursor()}
}

func (p *Parser) expr() (Expr, error) {
	return p.binaryChain()
}

func (p *Parser) binaryChain() (Expr, error) {
	lhs, err := p.operand()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := binaryOperators[p.peek().Kind]
		if !ok {
			return lhs, nil
		}
		tok := p.next()

		rhs, err := p.operand()
		if err != nil {
			return nil, err
		}

		lhs = &BinaryExpr{
			Op:       op,
			Left:     lhs,
			Operator: operatorString(tok),
			Right:    rhs,
			Span:     Span{lhs.Pos().Start, rhs.Pos().End},
		}
	}
}

func (p *Parser) operand() (Expr, error) {
	switch p.peek().Kind {
	case TokenLeftParen:
		return p.parenthesised()
	case TokenMin, TokenMax, TokenMean, TokenSum:
		return p.aggregate()
	}

	return p.unaryOrPrimitive()
}

func (p *Parser) parenthesised() (Expr, error) {
	p.next() // (

	inner, err := p.binaryChain()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	return inner, nil
}

func (p *Parser) aggregate() (Expr, error) {
	keyword := p.next()

	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	from, err := p.cellLiteral()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}

	to, err := p.cellLiteral()
	if err != nil {
		return nil, err
	}

	closer, err := p.expect(TokenRightParen)
	if err != nil {
		return nil, err
	}

	return &AggregateExpr{
		Operator: operatorString(keyword),
		From:     from,
		To:       to,
		Span:     Span{keyword.Start, closer.End},
	}, nil
}

func (p *Parser) unaryOrPrimitive() (Expr, error) {
	tok := p.peek()
	if op, ok := unaryOperators[tok.Kind]; ok {
		return p.unary(op)
	}

	switch tok.Kind {
	case TokenHashtag:
		return p.cellDereference()
	case TokenLeftBracket:
		return p.cellLiteral()
	case TokenInteger, TokenFloat, TokenBool:
		return p.primitive()
	}

	return nil, p.errorf("expected a primitive, unary operation, or cell value")
}

// unary operators always take a parenthesised operand: -(x), !(x), to_f(x)
func (p *Parser) unary(op UnaryOp) (Expr, error) {
	tok := p.next()

	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	operand, err := p.expr()
	if err != nil {
		return nil, err
	}

	closer, err := p.expect(TokenRightParen)
	if err != nil {
		return nil, err
	}

	return &UnaryExpr{
		Op:       op,
		Operator: operatorString(tok),
		Operand:  operand,
		Span:     Span{tok.Start, closer.End},
	}, nil
}

func (p *Parser) cellDereference() (Expr, error) {
	hash := p.next()

	lit, err := p.cellLiteral()
	if err != nil {
		return nil, err
	}

	return &CellDereference{
		X:    lit.X,
		Y:    lit.Y,
		Span: Span{hash.Start, lit.End},
	}, nil
}

func (p *Parser) cellLiteral() (*CellLiteral, error) {
	opener, err := p.expect(TokenLeftBracket)
	if err != nil {
		return nil, err
	}

	x, err := p.expr()
	if err != nil {
		return nil, err
	}

	// a '-' after x is already taken as subtraction by expr
	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}

	y, err := p.expr()
	if err != nil {
		return nil, err
	}

	closer, err := p.expect(TokenRightBracket)
	if err != nil {
		return nil, err
	}

	return &CellLiteral{
		X:    x,
		Y:    y,
		Span: Span{opener.Start, closer.End},
	}, nil
}

func (p *Parser) primitive() (Expr, error) {
	tok := p.next()
	span := Span{tok.Start, tok.End}

	switch tok.Kind {
	case TokenInteger:
		v, err := strconv.ParseInt(tok.Source, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Msg: fmt.Sprintf("invalid integer literal %q", tok.Source), Pos: tok.Start}
		}
		return Integer{Value: v, Span: span}, nil
	case TokenFloat:
		v, err := strconv.ParseFloat(tok.Source, 64)
		if err != nil {
			return nil, &SyntaxError{Msg: fmt.Sprintf("invalid float literal %q", tok.Source), Pos: tok.Start}
		}
		return Float{Value: v, Span: span}, nil
	default:
		return Bool{Value: tok.Source == "true", Span: span}, nil
	}
}

func operatorString(tok Token) String {
	return String{Value: tok.Source, Span: Span{tok.Start, tok.End}}
}
