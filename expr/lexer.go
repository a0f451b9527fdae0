package expr

// Lexer implements a single-pass scanner for report formulas.
//
// Formulas are short single-line strings, so the lexer scans the whole input
// up front and hands the token slice to the parser. Tokens store byte offsets
// rather than strings; no allocation happens during scanning.

// Lexer tokenizes a formula.
type Lexer struct {
	source string
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given formula.
func NewLexer(source string) *Lexer {
	// Formulas are short; one token per four bytes is a generous estimate.
	return &Lexer{
		source: source,
		tokens: make([]Token, 0, len(source)/4+4),
	}
}

// ScanAll lexes the entire formula and returns all tokens, terminated by EOF.
// It returns an InvalidToken error on the first unexpected character.
func (l *Lexer) ScanAll() ([]Token, error) {
	for l.pos < len(l.source) {
		l.skipWhitespace()

		if l.pos >= len(l.source) {
			break
		}

		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
	}

	l.tokens = append(l.tokens, Token{Type: EOF, Start: l.pos, End: l.pos})

	return l.tokens, nil
}

func (l *Lexer) scanToken() (Token, error) {
	start := l.pos
	ch := l.advance()

	switch {
	case ch >= '0' && ch <= '9':
		return l.scanNumber(start), nil

	case ch == '_' || isLetter(ch):
		return l.scanIdent(start), nil

	// Order references: '@' followed by digits. A bare '@' is invalid.
	case ch == '@':
		if !l.peekIsDigit() {
			return Token{}, newInvalidToken(l.source, start, "@")
		}
		for l.peekIsDigit() {
			l.advance()
		}
		return Token{ORDER, start, l.pos}, nil

	case ch == '+':
		return Token{PLUS, start, l.pos}, nil
	case ch == '-':
		return Token{MINUS, start, l.pos}, nil
	case ch == '*':
		return Token{ASTERISK, start, l.pos}, nil
	case ch == '/':
		return Token{SLASH, start, l.pos}, nil
	case ch == '(':
		return Token{LPAREN, start, l.pos}, nil
	case ch == ')':
		return Token{RPAREN, start, l.pos}, nil

	default:
		return Token{}, newInvalidToken(l.source, start, l.source[start:l.pos])
	}
}

// scanNumber scans [0-9]+(\.[0-9]+)?
func (l *Lexer) scanNumber(start int) Token {
	for l.peekIsDigit() {
		l.advance()
	}

	// Fractional part only if the dot is followed by a digit.
	if l.peek() == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1]) {
		l.advance() // consume '.'
		for l.peekIsDigit() {
			l.advance()
		}
	}

	return Token{NUMBER, start, l.pos}
}

// scanIdent scans [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) scanIdent(start int) Token {
	for {
		ch := l.peek()
		if ch == '_' || isLetter(ch) || isDigit(ch) {
			l.advance()
			continue
		}
		break
	}
	return Token{IDENT, start, l.pos}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekIsDigit() bool {
	return l.pos < len(l.source) && isDigit(l.source[l.pos])
}

func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	return ch
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}
