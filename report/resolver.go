package report

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/finstmt/finstmt/aggspec"
	"github.com/finstmt/finstmt/facttable"
	"github.com/finstmt/finstmt/period"
)

// Mode is the resolved aggregation mode for one render call: either a
// two-period comparison or a rolling window anchored at the latest available
// period.
type Mode struct {
	LTM           bool
	StatementType facttable.StatementType

	// Two-period comparison.
	PriorYear   int
	CurrentYear int

	// Rolling window.
	Ranges       []period.Range
	Label        string
	Availability period.Availability
}

// resolveMode derives the aggregation mode from the period options and, for
// rolling mode, the latest period present in the fact table.
func resolveMode(def *Definition, facts *facttable.Table, opts period.Options) (Mode, error) {
	if opts.LTM {
		mode := Mode{LTM: true, StatementType: def.StatementType}

		if year, p, ok := period.LatestAvailable(facts); ok {
			mode.Ranges = period.CalculateLTMRange(year, p, opts.WindowLength())
		}
		mode.Label = period.Label(mode.Ranges)
		mode.Availability = period.CheckAvailability(mode.Ranges, facts.Years())

		return mode, nil
	}

	prior, current, ok := opts.PriorCurrent()
	if !ok {
		return Mode{}, newInvalidDefinition(def.ReportID, "no comparison years selected")
	}

	return Mode{
		StatementType: def.StatementType,
		PriorYear:     prior,
		CurrentYear:   current,
	}, nil
}

// PeriodKeys returns the amount column names this mode produces, in display
// order.
func (m Mode) PeriodKeys() []string {
	if !m.LTM {
		return []string{aggspec.AmountColumn(m.PriorYear), aggspec.AmountColumn(m.CurrentYear)}
	}

	months := 0
	for _, r := range m.Ranges {
		months += r.Months()
	}

	keys := make([]string, 0, months+1)
	for k := 1; k <= months; k++ {
		keys = append(keys, aggspec.MonthColumn(k))
	}
	if m.StatementType.IsFlow() {
		keys = append(keys, aggspec.TotalColumn)
	}
	return keys
}

// spec compiles the aggregation instructions for one variable in this mode.
func (m Mode) spec(v Variable) aggspec.Spec {
	if m.LTM {
		return aggspec.LTM(m.Ranges, v.SignMultiplier(), m.StatementType)
	}
	return aggspec.Normal(m.PriorYear, m.CurrentYear, v.SignMultiplier())
}

// ResolvedValues maps variable names to their per-period aggregation results.
type ResolvedValues map[string]aggspec.Result

// resolveVariable aggregates one variable: apply its filter, restrict to the
// mode's period window, and sum per comparison column. A filter matching no
// rows resolves to zeros; absence of data is a valid business value.
func resolveVariable(v Variable, facts *facttable.Table, mode Mode, opts period.Options) (aggspec.Result, error) {
	if v.Aggregate != "" && v.Aggregate != "sum" {
		return nil, fmt.Errorf("unsupported aggregate %q", v.Aggregate)
	}

	filtered := facts.Where(v.Filter)

	if mode.LTM {
		filtered = period.FilterTable(filtered, mode.Ranges)
	} else {
		filtered = filtered.Select(func(row facttable.Row) bool {
			return opts.Includes(row.Year, row.Period)
		})
	}

	return aggspec.Execute(mode.spec(v), filtered), nil
}

// resolveVariables resolves the full variable mapping in one pass, in
// deterministic name order.
func resolveVariables(def *Definition, facts *facttable.Table, mode Mode, opts period.Options) (ResolvedValues, error) {
	values := make(ResolvedValues, len(def.Variables))

	names := maps.Keys(def.Variables)
	slices.Sort(names)

	for _, name := range names {
		result, err := resolveVariable(def.Variables[name], facts, mode, opts)
		if err != nil {
			return nil, newVariableResolutionError(def.ReportID, name, err)
		}
		values[name] = result
	}

	return values, nil
}
