package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/finstmt/finstmt/facttable"
	"github.com/finstmt/finstmt/period"
	"github.com/finstmt/finstmt/telemetry"
)

func renderTest(t *testing.T, def *Definition, opts period.Options) *Statement {
	t.Helper()
	statement, err := NewRenderer().RenderStatement(context.Background(), def, testFacts(), opts)
	assert.NoError(t, err)
	return statement
}

func TestRenderStatementNormal(t *testing.T) {
	statement := renderTest(t, testDefinition(), period.Normal(2024, 2025))

	assert.Equal(t, 8, len(statement.Rows))
	for i, want := range []int{10, 20, 30, 40, 50, 60, 70, 80} {
		assert.Equal(t, want, statement.Rows[i].Order)
	}

	header := statement.Rows[0]
	assert.Equal(t, LayoutHeader, header.Type)
	assert.Equal(t, "Income Statement", header.Label)
	assert.Zero(t, header.Amounts)
	assert.Zero(t, header.Formatted)

	spacer := statement.Rows[4]
	assert.Equal(t, LayoutSpacer, spacer.Type)
	assert.Zero(t, spacer.Amounts)

	revenue := statement.Rows[1]
	assert.Equal(t, "revenue", revenue.Metadata.Variable)
	assertAmount(t, revenue.Amounts, "amount_2024", "2000")
	assertAmount(t, revenue.Amounts, "amount_2025", "2500")
	assert.True(t, revenue.VarianceAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, revenue.VariancePercent.Equal(decimal.NewFromInt(25)))

	gross := statement.Rows[3]
	assert.Equal(t, "revenue + cogs", gross.Metadata.Expression)
	assertAmount(t, gross.Amounts, "amount_2024", "1200")
	assertAmount(t, gross.Amounts, "amount_2025", "1500")

	operating := statement.Rows[6]
	assertAmount(t, operating.Amounts, "amount_2024", "500")
	assertAmount(t, operating.Amounts, "amount_2025", "750")

	margin := statement.Rows[7]
	assertAmount(t, margin.Amounts, "amount_2024", "25")
	assertAmount(t, margin.Amounts, "amount_2025", "30")

	meta := statement.Metadata
	assert.Equal(t, "income-statement", meta.ReportID)
	assert.Equal(t, "Income Statement", meta.ReportName)
	assert.Equal(t, []string{"amount_2024", "amount_2025"}, meta.PeriodKeys)
	assert.Equal(t, "", meta.LTMLabel)
	assert.Zero(t, meta.Availability)
	assert.False(t, meta.GeneratedAt.IsZero())
}

func TestRenderStatementFormatting(t *testing.T) {
	statement := renderTest(t, testDefinition(), period.Normal(2024, 2025))

	revenue := statement.Rows[1]
	assert.Equal(t, "2,000", revenue.Formatted["amount_2024"])
	assert.Equal(t, "2,500", revenue.Formatted["amount_2025"])
	assert.Equal(t, "500", revenue.Formatted["variance_amount"])
	assert.Equal(t, "25.0%", revenue.Formatted["variance_percent"])

	cogs := statement.Rows[2]
	assert.Equal(t, "(800)", cogs.Formatted["amount_2024"])
	assert.Equal(t, "(1,000)", cogs.Formatted["amount_2025"])

	margin := statement.Rows[7]
	assert.Equal(t, "25.0%", margin.Formatted["amount_2024"])
	assert.Equal(t, "30.0%", margin.Formatted["amount_2025"])
}

func TestRenderStatementIsDeterministic(t *testing.T) {
	renderer := NewRenderer()

	first, err := renderer.RenderStatement(context.Background(), testDefinition(), testFacts(), period.Normal(2024, 2025))
	assert.NoError(t, err)
	second, err := renderer.RenderStatement(context.Background(), testDefinition(), testFacts(), period.Normal(2024, 2025))
	assert.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
}

func TestRenderStatementForwardReference(t *testing.T) {
	def := testDefinition()
	def.Layout = append(def.Layout, LayoutItem{
		Order:      15,
		Type:       LayoutCalculated,
		Label:      "Margin Preview",
		Expression: "@80 * 2",
	})

	statement := renderTest(t, def, period.Normal(2024, 2025))

	preview := statement.Rows[1]
	assert.Equal(t, 15, preview.Order)
	assertAmount(t, preview.Amounts, "amount_2024", "50")
	assertAmount(t, preview.Amounts, "amount_2025", "60")
}

func TestRenderStatementCycle(t *testing.T) {
	def := testDefinition()
	def.Layout[6].Expression = "@80 + opex"

	statement, err := NewRenderer().RenderStatement(context.Background(), def, testFacts(), period.Normal(2024, 2025))
	assert.Zero(t, statement)
	assert.Error(t, err)

	var cycleErr *CircularDependencyError
	assert.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, "income-statement", cycleErr.ReportID)
	assert.Equal(t, cycleErr.Chain[0], cycleErr.Chain[len(cycleErr.Chain)-1])
	assert.True(t, strings.Contains(err.Error(), "circular dependency"))
}

func TestRenderStatementInvalidDefinition(t *testing.T) {
	def := testDefinition()
	def.Layout[1].Variable = "turnover"

	statement, err := NewRenderer().RenderStatement(context.Background(), def, testFacts(), period.Normal(2024, 2025))
	assert.Zero(t, statement)

	var defErr *InvalidDefinitionError
	assert.True(t, errors.As(err, &defErr))
}

func TestRenderStatementDivisionByZero(t *testing.T) {
	def := testDefinition()
	def.Variables["empty"] = Variable{Filter: facttable.Filter{"category": "Nothing"}}
	def.Layout[7].Expression = "@70 / empty"

	statement, err := NewRenderer().RenderStatement(context.Background(), def, testFacts(), period.Normal(2024, 2025))
	assert.Zero(t, statement)

	var exprErr *ExpressionError
	assert.True(t, errors.As(err, &exprErr))
	assert.Equal(t, 80, exprErr.Order)
}

func TestRenderStatementLTM(t *testing.T) {
	// The margin row divides by revenue, which is zero in the window's
	// empty months, so it is dropped for rolling mode.
	def := testDefinition()
	def.Layout = def.Layout[:7]

	statement := renderTest(t, def, period.Rolling())

	meta := statement.Metadata
	assert.Equal(t, "LTM (2024 P7 - 2025 P6)", meta.LTMLabel)
	assert.NotZero(t, meta.Availability)
	assert.True(t, meta.Availability.Complete)
	assert.Equal(t, 13, len(meta.PeriodKeys))

	revenue := statement.Rows[1]
	assertAmount(t, revenue.Amounts, "month_1", "1000")
	assertAmount(t, revenue.Amounts, "month_12", "1300")
	assertAmount(t, revenue.Amounts, "ltm_total", "3500")

	// Rolling mode has no prior/current comparison, so no variance columns.
	assert.True(t, revenue.VarianceAmount.IsZero())
	_, ok := revenue.Formatted["variance_amount"]
	assert.False(t, ok)

	gross := statement.Rows[3]
	assertAmount(t, gross.Amounts, "month_12", "300")
	assertAmount(t, gross.Amounts, "ltm_total", "1700")
}

func TestRenderStatementVarianceZeroPrior(t *testing.T) {
	def := testDefinition()
	def.Layout = def.Layout[:7] // the margin row would divide by zero in 2024
	facts := facttable.New([]facttable.Row{
		{Year: 2025, Period: 3, Category: "Revenue", Amount: decimal.NewFromInt(900)},
	})

	statement, err := NewRenderer().RenderStatement(context.Background(), def, facts, period.Normal(2024, 2025))
	assert.NoError(t, err)

	revenue := statement.Rows[1]
	assert.True(t, revenue.VarianceAmount.Equal(decimal.NewFromInt(900)))
	assert.True(t, revenue.VariancePercent.IsZero())
}

func TestRenderStatementReportsTelemetry(t *testing.T) {
	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	_, err := NewRenderer().RenderStatement(ctx, testDefinition(), testFacts(), period.Normal(2024, 2025))
	assert.NoError(t, err)

	var buf bytes.Buffer
	collector.Report(&buf)

	report := buf.String()
	assert.True(t, strings.Contains(report, "render income-statement"))
	assert.True(t, strings.Contains(report, "resolve variables"))
	assert.True(t, strings.Contains(report, "evaluate layout"))
}
