// Package expr implements the formula language used by calculated report rows.
//
// Formulas combine numeric literals, named report variables, and row-order
// references with the four arithmetic operators and parentheses:
//
//	gross_revenue - cost_of_sales
//	(@10 - @20) / @20 * 100
//	operating_income + other_income - 1500.25
//
// Operator precedence (low to high):
//  1. + -     (addition, subtraction)
//  2. * /     (multiplication, division)
//  3. ( )     (parentheses, highest)
//
// Grammar:
//
//	expr    → term (('+' | '-') term)*
//	term    → unary (('*' | '/') unary)*
//	unary   → ('+' | '-')? primary
//	primary → NUMBER | IDENT | '@' digits | '(' expr ')'
//
// Parsing and evaluation are separate: Parse produces a pure, reusable AST
// (see Cache for memoized reuse across periods and rows), and Evaluate walks
// it against a variable context. All failures are *Error values, never panics.
package expr

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Parse parses a formula into its AST. The AST is immutable and safe to
// evaluate concurrently against different contexts.
func Parse(source string) (Node, error) {
	tokens, err := NewLexer(source).ScanAll()
	if err != nil {
		return nil, err
	}

	p := &parser{source: source, tokens: tokens}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	// The whole formula must be consumed.
	if tok := p.peek(); tok.Type != EOF {
		return nil, newUnexpectedToken(p.source, tok)
	}

	return node, nil
}

type parser struct {
	source string
	tokens []Token
	pos    int
}

// parseExpr handles addition and subtraction (lowest precedence).
func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek().Type
		if op != PLUS && op != MINUS {
			break
		}

		opTok := p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &Binary{Pos: opTok.Start, Op: op, X: left, Y: right}
	}

	return left, nil
}

// parseTerm handles multiplication and division.
func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek().Type
		if op != ASTERISK && op != SLASH {
			break
		}

		opTok := p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &Binary{Pos: opTok.Start, Op: op, X: left, Y: right}
	}

	return left, nil
}

// parseUnary handles an optional leading sign.
func (p *parser) parseUnary() (Node, error) {
	op := p.peek().Type
	if op == PLUS || op == MINUS {
		opTok := p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		if op == PLUS {
			return operand, nil
		}
		return &Unary{Pos: opTok.Start, Op: MINUS, X: operand}, nil
	}

	return p.parsePrimary()
}

// parsePrimary handles literals, references, and parenthesized expressions.
func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()

	switch tok.Type {
	case NUMBER:
		p.advance()
		value, err := decimal.NewFromString(tok.Text(p.source))
		if err != nil {
			// The lexer only emits well-formed numbers; this guards against
			// values outside decimal's range.
			return nil, newUnexpectedToken(p.source, tok)
		}
		return &Number{Pos: tok.Start, Value: value}, nil

	case IDENT:
		p.advance()
		return &Variable{Pos: tok.Start, Name: tok.Text(p.source)}, nil

	case ORDER:
		p.advance()
		order, err := strconv.Atoi(tok.Text(p.source)[1:])
		if err != nil {
			return nil, newUnexpectedToken(p.source, tok)
		}
		return &OrderRef{Pos: tok.Start, Order: order}, nil

	case LPAREN:
		open := p.advance()

		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if p.peek().Type != RPAREN {
			return nil, newMissingClosingParenthesis(p.source, open.Start)
		}
		p.advance() // consume ')'

		return node, nil

	case EOF:
		return nil, newUnexpectedEnd(p.source, tok.Start)

	default:
		return nil, newUnexpectedToken(p.source, tok)
	}
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}
