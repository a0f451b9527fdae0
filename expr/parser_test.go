package expr

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "number", input: "42"},
		{name: "decimal number", input: "42.5"},
		{name: "variable", input: "gross_revenue"},
		{name: "order reference", input: "@10"},
		{name: "addition", input: "a + b"},
		{name: "precedence chain", input: "a + b * c - d / e"},
		{name: "parentheses", input: "(a + b) * c"},
		{name: "nested parentheses", input: "((a + b) * (c - d))"},
		{name: "unary minus", input: "-a"},
		{name: "unary plus", input: "+a"},
		{name: "double negation", input: "--a"},
		{name: "mixed references", input: "(@10 - @20) / @20 * 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.input)
			assert.NoError(t, err)
			assert.NotZero(t, node)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{name: "empty input", input: "", kind: UnexpectedEnd},
		{name: "trailing operator", input: "a +", kind: UnexpectedEnd},
		{name: "missing closing paren", input: "(a + b", kind: MissingClosingParenthesis},
		{name: "unbalanced nesting", input: "((a + b)", kind: MissingClosingParenthesis},
		{name: "adjacent operands", input: "a b", kind: UnexpectedToken},
		{name: "closing paren alone", input: ")", kind: UnexpectedToken},
		{name: "operator alone", input: "*", kind: UnexpectedToken},
		{name: "trailing garbage", input: "a + b )", kind: UnexpectedToken},
		{name: "bare at sign", input: "@", kind: InvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
			assert.True(t, IsKind(err, tt.kind))
		})
	}
}

func TestParsePrecedenceShape(t *testing.T) {
	// a + b * c must parse as a + (b * c).
	node, err := Parse("a + b * c")
	assert.NoError(t, err)

	add, ok := node.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, PLUS, add.Op)

	mul, ok := add.Y.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, ASTERISK, mul.Op)
}

func TestParseOrderRef(t *testing.T) {
	node, err := Parse("@120")
	assert.NoError(t, err)

	ref, ok := node.(*OrderRef)
	assert.True(t, ok)
	assert.Equal(t, 120, ref.Order)
}
