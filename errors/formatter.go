// Package errors provides error formatting infrastructure for render errors.
// It separates error presentation from domain logic, allowing errors to be
// rendered in multiple formats (text, JSON) for different consumers.
//
// The package defines a Formatter interface and provides two implementations:
//   - TextFormatter: formats errors for command-line output, with the
//     offending expression and a caret under the failure position
//   - JSONFormatter: formats errors as structured JSON
//
// Domain-specific error types remain in their respective packages (expr,
// report); this package handles the presentation layer.
package errors

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/finstmt/finstmt/expr"
	"github.com/finstmt/finstmt/report"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format formats a single error. Expression failures render the formula with
// a caret under the failure position; everything else falls back to the
// error's own message.
func (tf *TextFormatter) Format(err error) string {
	var exprErr *expr.Error
	if stdErrors.As(err, &exprErr) {
		return formatWithSourceContext(err.Error(), exprErr.Expr, exprErr.Pos)
	}

	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// formatWithSourceContext renders the message followed by the formula and a
// caret pointing at the failure offset.
func formatWithSourceContext(message, source string, pos int) string {
	var buf bytes.Buffer

	buf.WriteString(message)
	buf.WriteString("\n\n")

	buf.WriteString("   ")
	buf.WriteString(source)
	buf.WriteByte('\n')

	if pos >= 0 && pos <= len(source) {
		buf.WriteString("   ")
		buf.WriteString(strings.Repeat(" ", pos))
		buf.WriteString("^\n")
	}

	return buf.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	errJSON := jf.toJSON(err)
	data, _ := json.Marshal(errJSON)
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	jsonErrors := jf.FormatAllToSlice(errs)
	data, _ := json.MarshalIndent(jsonErrors, "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

// toJSON converts an error to ErrorJSON, extracting details from the known
// domain error types.
func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Details: make(map[string]interface{}),
	}

	var defErr *report.InvalidDefinitionError
	var resErr *report.VariableResolutionError
	var exprRowErr *report.ExpressionError
	var cycleErr *report.CircularDependencyError
	var exprErr *expr.Error

	switch {
	case stdErrors.As(err, &defErr):
		errJSON.Details["reportId"] = defErr.ReportID
		if defErr.Order >= 0 {
			errJSON.Details["order"] = defErr.Order
		}
		errJSON.Details["reason"] = defErr.Reason

	case stdErrors.As(err, &resErr):
		errJSON.Details["reportId"] = resErr.ReportID
		errJSON.Details["variable"] = resErr.Variable

	case stdErrors.As(err, &exprRowErr):
		errJSON.Details["reportId"] = exprRowErr.ReportID
		errJSON.Details["order"] = exprRowErr.Order
		errJSON.Details["expression"] = exprRowErr.Expression

	case stdErrors.As(err, &cycleErr):
		errJSON.Details["reportId"] = cycleErr.ReportID
		errJSON.Details["chain"] = cycleErr.Chain
	}

	if stdErrors.As(err, &exprErr) {
		errJSON.Details["kind"] = exprErr.Kind.String()
		errJSON.Details["position"] = exprErr.Pos
	}

	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}

	return errJSON
}
