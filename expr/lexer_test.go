package expr

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestScanAll(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "simple addition",
			input: "1 + 2",
			want:  []TokenType{NUMBER, PLUS, NUMBER, EOF},
		},
		{
			name:  "all operators",
			input: "1 + 2 - 3 * 4 / 5",
			want:  []TokenType{NUMBER, PLUS, NUMBER, MINUS, NUMBER, ASTERISK, NUMBER, SLASH, NUMBER, EOF},
		},
		{
			name:  "identifiers and numbers",
			input: "gross_revenue * 0.21",
			want:  []TokenType{IDENT, ASTERISK, NUMBER, EOF},
		},
		{
			name:  "order references",
			input: "@10 - @20",
			want:  []TokenType{ORDER, MINUS, ORDER, EOF},
		},
		{
			name:  "parentheses",
			input: "(a + b) / c",
			want:  []TokenType{LPAREN, IDENT, PLUS, IDENT, RPAREN, SLASH, IDENT, EOF},
		},
		{
			name:  "no spaces",
			input: "a+b*2",
			want:  []TokenType{IDENT, PLUS, IDENT, ASTERISK, NUMBER, EOF},
		},
		{
			name:  "underscore prefix",
			input: "_internal1",
			want:  []TokenType{IDENT, EOF},
		},
		{
			name:  "empty input",
			input: "",
			want:  []TokenType{EOF},
		},
		{
			name:  "whitespace only",
			input: "  \t ",
			want:  []TokenType{EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).ScanAll()
			assert.NoError(t, err)

			got := make([]TokenType, len(tokens))
			for i, tok := range tokens {
				got[i] = tok.Type
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanAllInvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "bare at sign", input: "@ + 1"},
		{name: "at sign before ident", input: "@revenue"},
		{name: "unexpected character", input: "a & b"},
		{name: "unexpected unicode", input: "a + ¢"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input).ScanAll()
			assert.Error(t, err)
			assert.True(t, IsKind(err, InvalidToken))
		})
	}
}

func TestTokenText(t *testing.T) {
	input := "net_income / @40"

	tokens, err := NewLexer(input).ScanAll()
	assert.NoError(t, err)

	assert.Equal(t, "net_income", tokens[0].Text(input))
	assert.Equal(t, "/", tokens[1].Text(input))
	assert.Equal(t, "@40", tokens[2].Text(input))
}

func TestScanNumberShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "integer", input: "1500", want: "1500"},
		{name: "decimal", input: "0.25", want: "0.25"},
		{name: "long fraction", input: "13.333333", want: "13.333333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).ScanAll()
			assert.NoError(t, err)
			assert.Equal(t, NUMBER, tokens[0].Type)
			assert.Equal(t, tt.want, tokens[0].Text(tt.input))
		})
	}
}
