// Package report implements the declarative statement engine: report
// definitions are validated, their variables resolved against the fact table,
// and their ordered layout rendered into fully computed statement rows.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/finstmt/finstmt/expr"
	"github.com/finstmt/finstmt/facttable"
)

// Definition is one declarative report: named variables over the fact table
// plus an ordered layout of rows to render.
type Definition struct {
	ReportID      string                  `json:"reportId"`
	Name          string                  `json:"reportName,omitempty"`
	StatementType facttable.StatementType `json:"statementType"`
	Variables     map[string]Variable     `json:"variables"`
	Layout        []LayoutItem            `json:"layout"`
	Formatting    map[string]FormatRule   `json:"formatting,omitempty"`
}

// Variable declares how one named value is aggregated from the fact table:
// a declarative filter, an aggregate function (only "sum" is supported), and
// an optional sign multiplier for normalizing credit-balance accounts.
type Variable struct {
	Filter    facttable.Filter `json:"filter"`
	Aggregate string           `json:"aggregate,omitempty"`
	Sign      int              `json:"sign,omitempty"`
}

// SignMultiplier returns the sign as a decimal, defaulting to 1.
func (v Variable) SignMultiplier() decimal.Decimal {
	if v.Sign == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(v.Sign))
}

// LayoutType is the closed set of layout row kinds.
type LayoutType string

const (
	// LayoutVariable renders the resolved values of a declared variable.
	LayoutVariable LayoutType = "variable"

	// LayoutCalculated renders a formula evaluated over variables and
	// previously computed rows.
	LayoutCalculated LayoutType = "calculated"

	// LayoutSpacer renders an empty separator row.
	LayoutSpacer LayoutType = "spacer"

	// LayoutHeader renders a label-only section row.
	LayoutHeader LayoutType = "header"
)

// Valid reports whether the value is one of the known layout types.
func (t LayoutType) Valid() bool {
	switch t {
	case LayoutVariable, LayoutCalculated, LayoutSpacer, LayoutHeader:
		return true
	}
	return false
}

// HasAmounts reports whether rows of this type carry computed amounts and can
// therefore be targeted by order references.
func (t LayoutType) HasAmounts() bool {
	return t == LayoutVariable || t == LayoutCalculated
}

// LayoutItem is one declarative row specification. Order values are unique
// within a layout and define the display order.
type LayoutItem struct {
	Order      int        `json:"order"`
	Type       LayoutType `json:"type"`
	Label      string     `json:"label,omitempty"`
	Variable   string     `json:"variable,omitempty"`
	Expression string     `json:"expression,omitempty"`
	Format     string     `json:"format,omitempty"`
	Style      string     `json:"style,omitempty"`
	Indent     int        `json:"indent,omitempty"`
}

// Validate checks a definition structurally, before any data is touched.
// All failures are *InvalidDefinitionError. Forward and cyclic order
// references are not checked here; they surface as *CircularDependencyError
// when the dependency graph is built.
func Validate(def *Definition) error {
	if def.ReportID == "" {
		return newInvalidDefinition("", "missing reportId")
	}
	if !def.StatementType.Valid() {
		return newInvalidDefinition(def.ReportID, "unknown statement type %q", def.StatementType)
	}

	for name, v := range def.Variables {
		if name == "" {
			return newInvalidDefinition(def.ReportID, "variable with empty name")
		}
		if v.Aggregate != "" && v.Aggregate != "sum" {
			return newInvalidDefinition(def.ReportID, "variable %q: unsupported aggregate %q", name, v.Aggregate)
		}
		if v.Sign < -1 || v.Sign > 1 {
			return newInvalidDefinition(def.ReportID, "variable %q: sign must be -1, 0, or 1", name)
		}
	}

	orders := make(map[int]LayoutType, len(def.Layout))
	for _, item := range def.Layout {
		if _, dup := orders[item.Order]; dup {
			return newInvalidDefinitionAt(def.ReportID, item.Order, "duplicate layout order")
		}
		orders[item.Order] = item.Type

		if !item.Type.Valid() {
			return newInvalidDefinitionAt(def.ReportID, item.Order, "unknown layout type %q", item.Type)
		}
		if item.Indent < 0 {
			return newInvalidDefinitionAt(def.ReportID, item.Order, "negative indent")
		}

		switch item.Type {
		case LayoutVariable:
			if item.Variable == "" {
				return newInvalidDefinitionAt(def.ReportID, item.Order, "variable row without variable reference")
			}
			if _, ok := def.Variables[item.Variable]; !ok {
				return newInvalidDefinitionAt(def.ReportID, item.Order, "unknown variable %q", item.Variable)
			}
		case LayoutCalculated:
			if item.Expression == "" {
				return newInvalidDefinitionAt(def.ReportID, item.Order, "calculated row without expression")
			}
		}
	}

	// Expression checks need the complete order set, so they run second.
	for _, item := range def.Layout {
		if item.Type != LayoutCalculated {
			continue
		}

		deps, err := expr.Dependencies(item.Expression)
		if err != nil {
			return newInvalidDefinitionAt(def.ReportID, item.Order, "invalid expression %q: %v", item.Expression, err)
		}

		for _, dep := range deps {
			if order, ok := parseOrderKey(dep); ok {
				target, exists := orders[order]
				if !exists {
					return newInvalidDefinitionAt(def.ReportID, item.Order, "expression references unknown row @%d", order)
				}
				if !target.HasAmounts() {
					return newInvalidDefinitionAt(def.ReportID, item.Order, "expression references %s row @%d", target, order)
				}
				continue
			}
			if _, ok := def.Variables[dep]; !ok {
				return newInvalidDefinitionAt(def.ReportID, item.Order, "expression references unknown variable %q", dep)
			}
		}
	}

	return nil
}
