package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/finstmt/finstmt/aggspec"
	"github.com/finstmt/finstmt/expr"
	"github.com/finstmt/finstmt/facttable"
	"github.com/finstmt/finstmt/period"
	"github.com/finstmt/finstmt/telemetry"
)

// Renderer turns report definitions into computed statements. It owns the
// formula cache, so rendering the same definition across periods or reports
// reuses the parsed trees. A single Renderer is safe for concurrent use.
type Renderer struct {
	cache *expr.Cache
}

// NewRenderer creates a renderer with an empty formula cache.
func NewRenderer() *Renderer {
	return &Renderer{cache: expr.NewCache()}
}

// RowMetadata records which variable or expression produced a row.
type RowMetadata struct {
	Variable   string `json:"variable,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// Row is one fully computed, formatted statement row.
type Row struct {
	Order  int        `json:"order"`
	Label  string     `json:"label"`
	Type   LayoutType `json:"type"`
	Style  string     `json:"style,omitempty"`
	Indent int        `json:"indent,omitempty"`

	// Amounts holds one value per period key; nil for spacer and header rows.
	Amounts map[string]decimal.Decimal `json:"amounts,omitempty"`

	VarianceAmount  decimal.Decimal `json:"varianceAmount"`
	VariancePercent decimal.Decimal `json:"variancePercent"`

	// Formatted holds the display strings for every amount, keyed like
	// Amounts plus the variance columns.
	Formatted map[string]string `json:"formatted,omitempty"`

	Metadata RowMetadata `json:"_metadata"`
}

// Metadata describes one rendered statement.
type Metadata struct {
	ReportID      string               `json:"reportId"`
	ReportName    string               `json:"reportName,omitempty"`
	GeneratedAt   time.Time            `json:"generatedAt"`
	PeriodOptions period.Options       `json:"periodOptions"`
	PeriodKeys    []string             `json:"periodKeys"`
	LTMLabel      string               `json:"ltmLabel,omitempty"`
	Availability  *period.Availability `json:"availability,omitempty"`
}

// Statement is the rendered output: ordered rows plus metadata.
type Statement struct {
	Rows     []Row    `json:"rows"`
	Metadata Metadata `json:"metadata"`
}

// ResolveVariables resolves every declared variable against the fact table
// for the given period options, without rendering the layout.
func ResolveVariables(def *Definition, facts *facttable.Table, opts period.Options) (ResolvedValues, error) {
	mode, err := resolveMode(def, facts, opts)
	if err != nil {
		return nil, err
	}
	return resolveVariables(def, facts, mode, opts)
}

// RenderStatement validates the definition, resolves its variables, and walks
// the layout in order, evaluating calculated rows in dependency order. On any
// failure no statement is returned; statements are never partial.
//
// The context only threads telemetry; rendering never blocks on I/O.
func (r *Renderer) RenderStatement(ctx context.Context, def *Definition, facts *facttable.Table, opts period.Options) (*Statement, error) {
	timer := telemetry.FromContext(ctx).Start("render " + def.ReportID)
	defer timer.End()

	vt := timer.Child("validate")
	err := Validate(def)
	vt.End()
	if err != nil {
		return nil, err
	}

	graph, err := buildDepGraph(def, r.cache)
	if err != nil {
		return nil, err
	}
	evalOrder, cycle := graph.topoOrder()
	if cycle != nil {
		return nil, newCircularDependencyError(def.ReportID, cycle)
	}

	mode, err := resolveMode(def, facts, opts)
	if err != nil {
		return nil, err
	}

	rt := timer.Child("resolve variables")
	values, err := resolveVariables(def, facts, mode, opts)
	rt.End()
	if err != nil {
		return nil, err
	}

	et := timer.Child("evaluate layout")
	defer et.End()

	keys := mode.PeriodKeys()

	items := make(map[int]LayoutItem, len(def.Layout))
	rowValues := make(map[int]aggspec.Result, len(def.Layout))

	for _, item := range def.Layout {
		items[item.Order] = item
		if item.Type == LayoutVariable {
			rowValues[item.Order] = values[item.Variable]
		}
	}

	// Calculated rows evaluate in dependency order, one value per period key.
	for _, order := range evalOrder {
		item := items[order]
		result := make(aggspec.Result, len(keys))

		for _, key := range keys {
			evalCtx := make(expr.Context, len(values)+len(rowValues))
			for name, varResult := range values {
				evalCtx[name] = varResult[key]
			}
			for rowOrder, rowResult := range rowValues {
				evalCtx[expr.OrderKey(rowOrder)] = rowResult[key]
			}

			value, err := r.cache.Evaluate(item.Expression, evalCtx)
			if err != nil {
				return nil, newExpressionError(def.ReportID, order, item.Expression, err)
			}
			result[key] = value
		}

		rowValues[order] = result
	}

	layout := slices.Clone(def.Layout)
	slices.SortFunc(layout, func(a, b LayoutItem) int { return a.Order - b.Order })

	rows := make([]Row, 0, len(layout))
	for _, item := range layout {
		rows = append(rows, buildRow(def, item, rowValues[item.Order], keys, mode))
	}

	metadata := Metadata{
		ReportID:      def.ReportID,
		ReportName:    def.Name,
		GeneratedAt:   time.Now().UTC(),
		PeriodOptions: opts,
		PeriodKeys:    keys,
	}
	if mode.LTM {
		metadata.LTMLabel = mode.Label
		availability := mode.Availability
		metadata.Availability = &availability
	}

	return &Statement{Rows: rows, Metadata: metadata}, nil
}

func buildRow(def *Definition, item LayoutItem, result aggspec.Result, keys []string, mode Mode) Row {
	row := Row{
		Order:  item.Order,
		Label:  item.Label,
		Type:   item.Type,
		Style:  item.Style,
		Indent: item.Indent,
	}

	switch item.Type {
	case LayoutVariable:
		row.Metadata.Variable = item.Variable
	case LayoutCalculated:
		row.Metadata.Expression = item.Expression
	default:
		// Spacer and header rows pass through with null amounts.
		return row
	}

	rule := def.ruleFor(item.Format)

	row.Amounts = make(map[string]decimal.Decimal, len(keys))
	row.Formatted = make(map[string]string, len(keys)+2)
	for _, key := range keys {
		row.Amounts[key] = result[key]
		row.Formatted[key] = rule.Format(result[key])
	}

	if !mode.LTM {
		prior := result[aggspec.AmountColumn(mode.PriorYear)]
		current := result[aggspec.AmountColumn(mode.CurrentYear)]

		row.VarianceAmount = current.Sub(prior)
		row.VariancePercent = aggspec.Percent(current, prior)
		row.Formatted[aggspec.VarianceAmountColumn] = rule.Format(row.VarianceAmount)
		row.Formatted[aggspec.VariancePercentColumn] = def.ruleFor("percent").Format(row.VariancePercent)
	}

	return row
}
