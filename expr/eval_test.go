package expr

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEvaluate(t *testing.T) {
	ctx := Context{
		"revenue":  dec("1000"),
		"costs":    dec("600"),
		"negative": dec("-250"),
		"@10":      dec("400"),
		"@20":      dec("100"),
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "number", input: "42", want: "42"},
		{name: "addition", input: "1 + 2", want: "3"},
		{name: "precedence multiply first", input: "10 + 20 * 30", want: "610"},
		{name: "parentheses override", input: "(10 + 20) * 30", want: "900"},
		{name: "division", input: "40 / 4", want: "10"},
		{name: "decimal arithmetic", input: "0.1 + 0.2", want: "0.3"},
		{name: "variable lookup", input: "revenue - costs", want: "400"},
		{name: "negative variable", input: "revenue + negative", want: "750"},
		{name: "order reference", input: "@10 - @20", want: "300"},
		{name: "margin formula", input: "(revenue - costs) / revenue * 100", want: "40"},
		{name: "unary minus", input: "-revenue", want: "-1000"},
		{name: "unary minus grouped", input: "-(revenue - costs)", want: "-400"},
		{name: "unary plus", input: "+costs", want: "600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.input, ctx)
			assert.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)))
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	ctx := Context{"revenue": dec("100")}

	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{name: "division by zero literal", input: "10 / 0", kind: DivisionByZero},
		{name: "division by zero computed", input: "revenue / (revenue - 100)", kind: DivisionByZero},
		{name: "undefined variable", input: "revenue + x", kind: UndefinedVariable},
		{name: "undefined order reference", input: "@99 + 1", kind: UndefinedVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.input, ctx)
			assert.Error(t, err)
			assert.True(t, IsKind(err, tt.kind))
		})
	}
}

func TestEvaluateUndefinedVariableDetail(t *testing.T) {
	_, err := Evaluate("revenue + x", Context{"revenue": dec("100")})

	var e *Error
	assert.True(t, asExprError(err, &e))
	assert.Equal(t, UndefinedVariable, e.Kind)
	assert.Equal(t, "x", e.Name)
	assert.Equal(t, "revenue + x", e.Expr)
}

func asExprError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "valid formula", input: "a + b * (c - 1)", valid: true},
		{name: "valid with references", input: "@10 / total", valid: true},
		{name: "syntax error", input: "a +", valid: false},
		{name: "lexical error", input: "a $ b", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if !tt.valid {
				assert.True(t, len(got.Errors) > 0)
			}
		})
	}
}

func TestDependencies(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "variables and order refs",
			input: "(revenue - costs) / @10",
			want:  []string{"@10", "costs", "revenue"},
		},
		{
			name:  "duplicates collapse",
			input: "revenue + revenue * revenue",
			want:  []string{"revenue"},
		},
		{
			name:  "literals only",
			input: "1 + 2 * 3",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Dependencies(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
