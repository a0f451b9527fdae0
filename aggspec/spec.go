// Package aggspec compiles declarative aggregation instructions for the
// columnar table engine: which output columns to produce and how each one is
// computed from the fact rows (or from already-computed per-row columns).
//
// Builders are pure: every call returns a new Spec value and never mutates
// shared state, so specs can be composed and reused across renders. Two calls
// with the same inputs produce structurally identical specs.
package aggspec

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finstmt/finstmt/facttable"
	"github.com/finstmt/finstmt/period"
)

// Op is the closed set of aggregation operations a column can carry.
type Op uint8

const (
	// SumIf sums the sign-adjusted fact amount over rows matching the
	// column's condition. An empty condition matches every row.
	SumIf Op = iota

	// ReSum sums an already-computed per-row column (category roll-ups).
	ReSum

	// Subtract derives Left - Right from previously computed columns.
	Subtract

	// PercentChange derives (Left - Right) / |Right| * 100 from previously
	// computed columns, yielding 0 when Right is zero.
	PercentChange
)

var opNames = map[Op]string{
	SumIf:         "sum_if",
	ReSum:         "re_sum",
	Subtract:      "subtract",
	PercentChange: "percent_change",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Condition restricts a SumIf column to matching fact rows. Zero fields
// match any value.
type Condition struct {
	Year   int
	Period int
}

// Matches reports whether a fact row satisfies the condition.
func (c Condition) Matches(row facttable.Row) bool {
	if c.Year != 0 && row.Year != c.Year {
		return false
	}
	if c.Period != 0 && row.Period != c.Period {
		return false
	}
	return true
}

// Column is one aggregation instruction: a named output and the operation
// that produces it.
type Column struct {
	Name  string
	Op    Op
	Sign  decimal.Decimal // SumIf multiplier
	Where Condition       // SumIf restriction
	Src   string          // ReSum: the per-row column to re-sum
	Left  string          // Subtract/PercentChange operands
	Right string
}

// Spec is an ordered set of columns. The zero value is an empty spec.
type Spec struct {
	cols []Column
}

// With returns a new spec with the column appended. The receiver is unchanged.
func (s Spec) With(col Column) Spec {
	cols := make([]Column, len(s.cols), len(s.cols)+1)
	copy(cols, s.cols)
	return Spec{cols: append(cols, col)}
}

// Len returns the number of columns.
func (s Spec) Len() int {
	return len(s.cols)
}

// Columns returns a copy of the column list in definition order.
func (s Spec) Columns() []Column {
	cols := make([]Column, len(s.cols))
	copy(cols, s.cols)
	return cols
}

// Names returns the column names in definition order.
func (s Spec) Names() []string {
	names := make([]string, len(s.cols))
	for i, col := range s.cols {
		names[i] = col.Name
	}
	return names
}

// AmountColumn is the output column name for a comparison year.
func AmountColumn(year int) string {
	return fmt.Sprintf("amount_%d", year)
}

// MonthColumn is the output column name for the k-th month of a rolling
// window, numbered from 1 in chronological order.
func MonthColumn(k int) string {
	return fmt.Sprintf("month_%d", k)
}

// TotalColumn is the rolling-window total column name.
const TotalColumn = "ltm_total"

// VarianceAmountColumn and VariancePercentColumn are the derived comparison
// column names.
const (
	VarianceAmountColumn  = "variance_amount"
	VariancePercentColumn = "variance_percent"
)

// Normal builds the two-period comparison spec: one conditional sum of
// amount * sign per comparison year.
func Normal(priorYear, currentYear int, sign decimal.Decimal) Spec {
	return Spec{}.
		With(Column{
			Name:  AmountColumn(priorYear),
			Op:    SumIf,
			Sign:  sign,
			Where: Condition{Year: priorYear},
		}).
		With(Column{
			Name:  AmountColumn(currentYear),
			Op:    SumIf,
			Sign:  sign,
			Where: Condition{Year: currentYear},
		})
}

// LTM builds the rolling-window spec: one conditional sum per month across
// all range segments, numbered sequentially in chronological order, plus an
// unconditional ltm_total column for flow statements.
func LTM(ranges []period.Range, sign decimal.Decimal, statementType facttable.StatementType) Spec {
	spec := Spec{}

	k := 0
	for _, r := range ranges {
		for p := r.StartPeriod; p <= r.EndPeriod; p++ {
			k++
			spec = spec.With(Column{
				Name:  MonthColumn(k),
				Op:    SumIf,
				Sign:  sign,
				Where: Condition{Year: r.Year, Period: p},
			})
		}
	}

	if statementType.IsFlow() {
		spec = spec.With(Column{
			Name: TotalColumn,
			Op:   SumIf,
			Sign: sign,
		})
	}

	return spec
}

// CategoryTotals builds the spec for re-aggregating already-computed per-row
// columns up to category level: both period columns re-summed, plus derived
// variance columns.
func CategoryTotals(priorYear, currentYear int) Spec {
	prior := AmountColumn(priorYear)
	current := AmountColumn(currentYear)

	return Spec{}.
		With(Column{Name: prior, Op: ReSum, Src: prior}).
		With(Column{Name: current, Op: ReSum, Src: current}).
		With(Column{Name: VarianceAmountColumn, Op: Subtract, Left: current, Right: prior}).
		With(Column{Name: VariancePercentColumn, Op: PercentChange, Left: current, Right: prior})
}

// LTMCategoryTotals is the rolling-window analogue of CategoryTotals,
// re-summing the month columns (and the total column for flow statements)
// rather than raw fact amounts.
func LTMCategoryTotals(ranges []period.Range, statementType facttable.StatementType) Spec {
	spec := Spec{}

	months := 0
	for _, r := range ranges {
		months += r.Months()
	}
	for k := 1; k <= months; k++ {
		name := MonthColumn(k)
		spec = spec.With(Column{Name: name, Op: ReSum, Src: name})
	}

	if statementType.IsFlow() {
		spec = spec.With(Column{Name: TotalColumn, Op: ReSum, Src: TotalColumn})
	}

	return spec
}
