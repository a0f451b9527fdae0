package facttable

// StatementType classifies the financial statement a fact row or report
// definition belongs to.
type StatementType string

const (
	BalanceSheet    StatementType = "balance_sheet"
	IncomeStatement StatementType = "income_statement"
	CashFlow        StatementType = "cash_flow"
)

// Valid reports whether the value is one of the known statement types.
func (s StatementType) Valid() bool {
	switch s {
	case BalanceSheet, IncomeStatement, CashFlow:
		return true
	}
	return false
}

// IsFlow reports whether the statement measures flows over a period (income
// statement, cash flow) rather than a point-in-time position. Rolling-window
// totals are only meaningful for flow statements.
func (s StatementType) IsFlow() bool {
	return s == IncomeStatement || s == CashFlow
}
