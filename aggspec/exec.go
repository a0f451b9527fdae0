package aggspec

import (
	"github.com/shopspring/decimal"

	"github.com/finstmt/finstmt/facttable"
)

// Result maps output column names to computed values.
type Result map[string]decimal.Decimal

// Execute runs a compiled spec against a fact table. Columns are computed in
// definition order, so derived columns see every column defined before them.
// A column over no matching rows yields zero, never an error.
func Execute(spec Spec, t *facttable.Table) Result {
	result := make(Result, spec.Len())

	for _, col := range spec.Columns() {
		switch col.Op {
		case SumIf:
			sum := decimal.Zero
			for i := 0; i < t.Len(); i++ {
				row := t.Row(i)
				if col.Where.Matches(row) {
					sum = sum.Add(row.Amount.Mul(col.Sign))
				}
			}
			result[col.Name] = sum

		case ReSum:
			// ReSum re-aggregates per-row columns; against a raw fact table
			// there is nothing to re-sum.
			result[col.Name] = decimal.Zero

		case Subtract:
			result[col.Name] = result[col.Left].Sub(result[col.Right])

		case PercentChange:
			result[col.Name] = Percent(result[col.Left], result[col.Right])
		}
	}

	return result
}

// ExecuteRows runs a re-aggregation spec over already-computed per-row
// columns, as produced by a previous Execute per layout row.
func ExecuteRows(spec Spec, rows []Result) Result {
	result := make(Result, spec.Len())

	for _, col := range spec.Columns() {
		switch col.Op {
		case ReSum:
			sum := decimal.Zero
			for _, row := range rows {
				sum = sum.Add(row[col.Src])
			}
			result[col.Name] = sum

		case Subtract:
			result[col.Name] = result[col.Left].Sub(result[col.Right])

		case PercentChange:
			result[col.Name] = Percent(result[col.Left], result[col.Right])

		case SumIf:
			// Raw fact sums are not available at this level.
			result[col.Name] = decimal.Zero
		}
	}

	return result
}

// Percent computes (current - prior) / |prior| * 100. It returns 0 when prior
// is exactly zero, even for a non-zero current: absence of a prior-period
// value is treated as "no change" rather than an undefined percentage.
func Percent(current, prior decimal.Decimal) decimal.Decimal {
	if prior.IsZero() {
		return decimal.Zero
	}
	return current.Sub(prior).Div(prior.Abs()).Mul(decimal.NewFromInt(100))
}
