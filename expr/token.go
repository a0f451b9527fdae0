package expr

// TokenType represents the type of token scanned from a formula.
type TokenType uint8

const (
	// EOF marks the end of the formula.
	EOF TokenType = iota

	// Literals
	NUMBER // 123 or 123.45
	IDENT  // gross_revenue
	ORDER  // @10 (row-order reference)

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /

	// Grouping
	LPAREN // (
	RPAREN // )
)

var tokenNames = map[TokenType]string{
	EOF:      "EOF",
	NUMBER:   "NUMBER",
	IDENT:    "IDENT",
	ORDER:    "ORDER",
	PLUS:     "+",
	MINUS:    "-",
	ASTERISK: "*",
	SLASH:    "/",
	LPAREN:   "(",
	RPAREN:   ")",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token with zero-copy semantics.
// Tokens store byte offsets into the formula text; the text is only
// materialized when needed.
type Token struct {
	Type  TokenType
	Start int // Byte offset into the formula
	End   int // End offset (exclusive)
}

// Text materializes the token text from the formula.
func (t Token) Text(source string) string {
	if t.Start >= len(source) || t.End > len(source) || t.Start > t.End {
		return ""
	}
	return source[t.Start:t.End]
}

// Len returns the length of the token in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}
