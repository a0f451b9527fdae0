package report

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestFormatRule(t *testing.T) {
	tests := []struct {
		name   string
		rule   FormatRule
		amount string
		want   string
	}{
		{"currency", FormatRule{Kind: "currency"}, "1234567", "1,234,567"},
		{"currency rounds", FormatRule{Kind: "currency"}, "1234.56", "1,235"},
		{"currency negative", FormatRule{Kind: "currency"}, "-1234", "(1,234)"},
		{"currency symbol", FormatRule{Kind: "currency", Symbol: "$"}, "1234", "$1,234"},
		{"currency symbol negative", FormatRule{Kind: "currency", Symbol: "$"}, "-1234", "($1,234)"},
		{"currency decimals", FormatRule{Kind: "currency", Decimals: 2}, "1234.5", "1,234.50"},
		{"currency zero", FormatRule{Kind: "currency"}, "0", "0"},
		{"number", FormatRule{Kind: "number"}, "1000", "1,000"},
		{"number negative", FormatRule{Kind: "number"}, "-1000", "-1,000"},
		{"number small", FormatRule{Kind: "number"}, "999", "999"},
		{"percent", FormatRule{Kind: "percent", Decimals: 1}, "30", "30.0%"},
		{"percent negative", FormatRule{Kind: "percent", Decimals: 1}, "-5.25", "-5.3%"},
		{"percent grouping", FormatRule{Kind: "percent", Decimals: 1}, "1250", "1,250.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, tt.rule.Format(amount))
		})
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"1", "1"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, groupThousands(tt.in))
	}
}

func TestRuleFor(t *testing.T) {
	def := &Definition{
		Formatting: map[string]FormatRule{
			"currency": {Kind: "currency", Decimals: 2, Symbol: "€"},
		},
	}

	// Empty names use the currency rule, which the definition overrides.
	assert.Equal(t, "€1,234.00", def.ruleFor("").Format(decimal.NewFromInt(1234)))

	// Built-in fallbacks apply when the definition is silent.
	assert.Equal(t, "30.0%", def.ruleFor("percent").Format(decimal.NewFromInt(30)))

	// Unknown names format as plain numbers.
	assert.Equal(t, "-42", def.ruleFor("mystery").Format(decimal.NewFromInt(-42)))
}
