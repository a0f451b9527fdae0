package expr

import (
	stdErrors "errors"
	"fmt"
)

// ErrorKind classifies expression failures so callers can recover per-row
// without string matching.
type ErrorKind uint8

const (
	// InvalidToken is returned by the lexer for an unexpected character or a
	// bare '@' with no following digits.
	InvalidToken ErrorKind = iota

	// UnexpectedToken is returned by the parser when a token cannot start or
	// continue a production.
	UnexpectedToken

	// UnexpectedEnd is returned by the parser when the formula ends mid-production.
	UnexpectedEnd

	// MissingClosingParenthesis is returned when a '(' is never closed.
	MissingClosingParenthesis

	// UndefinedVariable is returned by the evaluator when a referenced name is
	// not present in the context.
	UndefinedVariable

	// DivisionByZero is returned by the evaluator when the right operand of '/'
	// evaluates to exactly zero.
	DivisionByZero
)

var kindNames = map[ErrorKind]string{
	InvalidToken:              "invalid token",
	UnexpectedToken:           "unexpected token",
	UnexpectedEnd:             "unexpected end of expression",
	MissingClosingParenthesis: "missing closing parenthesis",
	UndefinedVariable:         "undefined variable",
	DivisionByZero:            "division by zero",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown error"
}

// Error is the single error type produced by this package. It carries enough
// context (expression text, byte offset, offending token or name) to build
// both a technical and a user-facing message without re-parsing.
type Error struct {
	Kind ErrorKind
	Expr string // Full formula text
	Pos  int    // Byte offset of the failure
	Text string // Offending token text, if any
	Name string // Referenced name, for UndefinedVariable
}

func (e *Error) Error() string {
	switch e.Kind {
	case UndefinedVariable:
		return fmt.Sprintf("%s %q in %q", e.Kind, e.Name, e.Expr)
	case UnexpectedEnd, MissingClosingParenthesis:
		return fmt.Sprintf("%s in %q", e.Kind, e.Expr)
	default:
		if e.Text != "" {
			return fmt.Sprintf("%s %q at offset %d in %q", e.Kind, e.Text, e.Pos, e.Expr)
		}
		return fmt.Sprintf("%s at offset %d in %q", e.Kind, e.Pos, e.Expr)
	}
}

// IsKind reports whether err is (or wraps) an expression Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func newInvalidToken(source string, pos int, text string) *Error {
	return &Error{Kind: InvalidToken, Expr: source, Pos: pos, Text: text}
}

func newUnexpectedToken(source string, tok Token) *Error {
	return &Error{Kind: UnexpectedToken, Expr: source, Pos: tok.Start, Text: tok.Text(source)}
}

func newUnexpectedEnd(source string, pos int) *Error {
	return &Error{Kind: UnexpectedEnd, Expr: source, Pos: pos}
}

func newMissingClosingParenthesis(source string, pos int) *Error {
	return &Error{Kind: MissingClosingParenthesis, Expr: source, Pos: pos}
}

func newUndefinedVariable(source string, pos int, name string) *Error {
	return &Error{Kind: UndefinedVariable, Expr: source, Pos: pos, Name: name}
}

func newDivisionByZero(source string, pos int) *Error {
	return &Error{Kind: DivisionByZero, Expr: source, Pos: pos}
}
