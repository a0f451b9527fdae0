package expr

import (
	"github.com/shopspring/decimal"
)

// Node is the closed set of formula AST nodes. The node method seals the
// interface so the evaluator can match exhaustively.
type Node interface {
	node()
}

// Number is a numeric literal. The value is parsed once at build time and
// stored as a decimal to avoid floating-point drift.
type Number struct {
	Pos   int
	Value decimal.Decimal
}

// Variable references a declared report variable by name.
type Variable struct {
	Pos  int
	Name string
}

// OrderRef references the computed value of the layout row with the given
// order number, written @<order> in formulas.
type OrderRef struct {
	Pos   int
	Order int
}

// Unary applies a sign to its operand. Op is PLUS or MINUS.
type Unary struct {
	Pos int
	Op  TokenType
	X   Node
}

// Binary applies an arithmetic operator to two operands. Op is one of
// PLUS, MINUS, ASTERISK, SLASH.
type Binary struct {
	Pos int
	Op  TokenType
	X   Node
	Y   Node
}

func (*Number) node()   {}
func (*Variable) node() {}
func (*OrderRef) node() {}
func (*Unary) node()    {}
func (*Binary) node()   {}

var (
	_ Node = &Number{}
	_ Node = &Variable{}
	_ Node = &OrderRef{}
	_ Node = &Unary{}
	_ Node = &Binary{}
)
