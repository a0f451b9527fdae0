// Package facttable holds the transactional fact table the statement engine
// computes over: one row per dimensioned monetary movement, owned by the
// data-loading collaborator and borrowed read-only here.
//
// Tables are immutable. Filtering produces a subview that shares the backing
// rows through an index list, so narrowing a table is cheap and preserves row
// order.
package facttable

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Row is a single accounting movement: dimensional attributes plus one amount.
type Row struct {
	Year          int
	Period        int // 1-12
	StatementType string
	Account       string
	AccountName   string
	Category      string
	SubCategory   string
	Amount        decimal.Decimal

	// Extra carries dimensions beyond the fixed set, keyed by attribute name.
	Extra map[string]string
}

// Attribute returns the named dimensional attribute. Year and period are
// returned as ints, everything else as strings. The second return is false
// for attributes the row does not carry.
func (r Row) Attribute(name string) (any, bool) {
	switch name {
	case "year":
		return r.Year, true
	case "period":
		return r.Period, true
	case "statement_type":
		return r.StatementType, true
	case "account":
		return r.Account, true
	case "account_name":
		return r.AccountName, true
	case "category":
		return r.Category, true
	case "sub_category":
		return r.SubCategory, true
	}
	if v, ok := r.Extra[name]; ok {
		return v, true
	}
	return nil, false
}

// Table is an ordered, immutable collection of fact rows.
type Table struct {
	rows []Row
	idx  []int // nil means the identity view over rows
}

// New creates a table over the given rows. The slice is retained; callers
// must not mutate it afterwards.
func New(rows []Row) *Table {
	return &Table{rows: rows}
}

// Len returns the number of rows in this view.
func (t *Table) Len() int {
	if t.idx != nil {
		return len(t.idx)
	}
	return len(t.rows)
}

// Row returns the i-th row of this view.
func (t *Table) Row(i int) Row {
	if t.idx != nil {
		return t.rows[t.idx[i]]
	}
	return t.rows[i]
}

// Where returns a subview containing the rows matching the filter,
// in their original order.
func (t *Table) Where(f Filter) *Table {
	return t.Select(f.Matches)
}

// Select returns a subview containing the rows for which keep returns true.
func (t *Table) Select(keep func(Row) bool) *Table {
	idx := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(t.Row(i)) {
			idx = append(idx, t.sourceIndex(i))
		}
	}
	return &Table{rows: t.rows, idx: idx}
}

func (t *Table) sourceIndex(i int) int {
	if t.idx != nil {
		return t.idx[i]
	}
	return i
}

// Years returns the distinct years present in this view, ascending.
func (t *Table) Years() []int {
	seen := map[int]bool{}
	for i := 0; i < t.Len(); i++ {
		seen[t.Row(i).Year] = true
	}

	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	slices.Sort(years)

	return years
}

// SumAmount returns the sum of all amounts in this view.
func (t *Table) SumAmount() decimal.Decimal {
	sum := decimal.Zero
	for i := 0; i < t.Len(); i++ {
		sum = sum.Add(t.Row(i).Amount)
	}
	return sum
}
