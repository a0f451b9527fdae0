package expr

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Context supplies the values formulas are evaluated against. Variable names
// map directly; row-order references are keyed "@<order>".
type Context map[string]decimal.Decimal

// OrderKey returns the context key for a row-order reference.
func OrderKey(order int) string {
	return "@" + strconv.Itoa(order)
}

// Evaluate parses and evaluates a formula against the given context.
// Callers evaluating the same formula repeatedly should use a Cache.
func Evaluate(source string, ctx Context) (decimal.Decimal, error) {
	node, err := Parse(source)
	if err != nil {
		return decimal.Zero, err
	}
	return EvaluateTree(node, source, ctx)
}

// EvaluateTree evaluates an already-parsed formula. The source text is only
// used for error reporting.
func EvaluateTree(node Node, source string, ctx Context) (decimal.Decimal, error) {
	switch n := node.(type) {
	case *Number:
		return n.Value, nil

	case *Variable:
		value, ok := ctx[n.Name]
		if !ok {
			return decimal.Zero, newUndefinedVariable(source, n.Pos, n.Name)
		}
		return value, nil

	case *OrderRef:
		key := OrderKey(n.Order)
		value, ok := ctx[key]
		if !ok {
			return decimal.Zero, newUndefinedVariable(source, n.Pos, key)
		}
		return value, nil

	case *Unary:
		value, err := EvaluateTree(n.X, source, ctx)
		if err != nil {
			return decimal.Zero, err
		}
		return value.Neg(), nil

	case *Binary:
		left, err := EvaluateTree(n.X, source, ctx)
		if err != nil {
			return decimal.Zero, err
		}
		right, err := EvaluateTree(n.Y, source, ctx)
		if err != nil {
			return decimal.Zero, err
		}

		switch n.Op {
		case PLUS:
			return left.Add(right), nil
		case MINUS:
			return left.Sub(right), nil
		case ASTERISK:
			return left.Mul(right), nil
		default: // SLASH
			if right.IsZero() {
				return decimal.Zero, newDivisionByZero(source, n.Pos)
			}
			return left.Div(right), nil
		}

	default:
		// Node is a sealed interface; this is unreachable.
		return decimal.Zero, newUnexpectedEnd(source, 0)
	}
}

// Validation is the result of statically checking a formula.
type Validation struct {
	Valid  bool
	Errors []error
}

// Validate checks a formula for lexical and syntactic errors without
// evaluating it.
func Validate(source string) Validation {
	if _, err := Parse(source); err != nil {
		return Validation{Errors: []error{err}}
	}
	return Validation{Valid: true}
}

// Dependencies returns the sorted set of names a formula references: variable
// names plus "@<order>" keys for row-order references.
func Dependencies(source string) ([]string, error) {
	node, err := Parse(source)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	collectDeps(node, seen)

	deps := make([]string, 0, len(seen))
	for name := range seen {
		deps = append(deps, name)
	}
	slices.Sort(deps)

	return deps, nil
}

func collectDeps(node Node, seen map[string]bool) {
	switch n := node.(type) {
	case *Variable:
		seen[n.Name] = true
	case *OrderRef:
		seen[OrderKey(n.Order)] = true
	case *Unary:
		collectDeps(n.X, seen)
	case *Binary:
		collectDeps(n.X, seen)
		collectDeps(n.Y, seen)
	}
}
