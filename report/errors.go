package report

import (
	"fmt"
	"strings"
)

// Error types for statement rendering. Every error carries the report id plus
// the variable name, layout order, or expression text it is attributable to,
// so both a log message and a short user-facing message can be built without
// re-deriving context.

// InvalidDefinitionError is returned when a report definition fails
// structural validation. It is detected eagerly, before any aggregation runs.
type InvalidDefinitionError struct {
	ReportID string
	Order    int // Layout order the failure is attributable to; -1 if none
	Reason   string
}

func (e *InvalidDefinitionError) Error() string {
	if e.Order >= 0 {
		return fmt.Sprintf("report %q: invalid definition at order %d: %s", e.ReportID, e.Order, e.Reason)
	}
	return fmt.Sprintf("report %q: invalid definition: %s", e.ReportID, e.Reason)
}

func newInvalidDefinition(reportID, format string, args ...any) *InvalidDefinitionError {
	return &InvalidDefinitionError{
		ReportID: reportID,
		Order:    -1,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func newInvalidDefinitionAt(reportID string, order int, format string, args ...any) *InvalidDefinitionError {
	return &InvalidDefinitionError{
		ReportID: reportID,
		Order:    order,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// VariableResolutionError wraps a failure while resolving one declared
// variable. The render is aborted; statements are never silently partial.
type VariableResolutionError struct {
	ReportID   string
	Variable   string
	Underlying error
}

func (e *VariableResolutionError) Error() string {
	return fmt.Sprintf("report %q: resolving variable %q: %v", e.ReportID, e.Variable, e.Underlying)
}

func (e *VariableResolutionError) Unwrap() error {
	return e.Underlying
}

func newVariableResolutionError(reportID, variable string, err error) *VariableResolutionError {
	return &VariableResolutionError{ReportID: reportID, Variable: variable, Underlying: err}
}

// ExpressionError wraps an expression failure attributable to one calculated
// row.
type ExpressionError struct {
	ReportID   string
	Order      int
	Expression string
	Underlying error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("report %q: evaluating row %d (%s): %v", e.ReportID, e.Order, e.Expression, e.Underlying)
}

func (e *ExpressionError) Unwrap() error {
	return e.Underlying
}

func newExpressionError(reportID string, order int, expression string, err error) *ExpressionError {
	return &ExpressionError{ReportID: reportID, Order: order, Expression: expression, Underlying: err}
}

// CircularDependencyError is returned when calculated rows reference each
// other cyclically. Chain carries the offending layout orders, ending where
// it started.
type CircularDependencyError struct {
	ReportID string
	Chain    []int
}

func (e *CircularDependencyError) Error() string {
	refs := make([]string, len(e.Chain))
	for i, order := range e.Chain {
		refs[i] = fmt.Sprintf("@%d", order)
	}
	return fmt.Sprintf("report %q: circular dependency among calculated rows: %s",
		e.ReportID, strings.Join(refs, " -> "))
}

func newCircularDependencyError(reportID string, chain []int) *CircularDependencyError {
	return &CircularDependencyError{ReportID: reportID, Chain: chain}
}
