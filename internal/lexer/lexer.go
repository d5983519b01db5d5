package lexer

import "fmt"

// Lexer scans Calyx source text into tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

// New creates a new lexer instance.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL represents EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next character without advancing position.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace skips blanks, tabs and line breaks.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

// skipComment consumes a // line comment or a /* block comment.
// Returns false if the character pair is not a comment opener.
func (l *Lexer) skipComment() bool {
	if l.ch != '/' {
		return false
	}
	switch l.peekChar() {
	case '/':
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		return true
	case '*':
		l.readChar()
		l.readChar()
		for {
			if l.ch == 0 {
				return true
			}
			if l.ch == '*' && l.peekChar() == '/' {
				l.readChar()
				l.readChar()
				return true
			}
			l.readChar()
		}
	}
	return false
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// readIdentifier reads an identifier: letter followed by letters, digits,
// underscores or dots (dots allow namespaced host symbols).
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a numeric literal: digits, optional fraction, optional
// exponent. A malformed exponent is reported as an error token.
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return l.input[position:l.position], false
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position], true
}

// readString reads a single-quoted string literal, handling backslash
// escapes. The closing quote must be present.
func (l *Lexer) readString() (string, bool) {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == '\'' {
			lit := l.input[position:l.position]
			l.readChar()
			return lit, true
		}
		if l.ch == 0 {
			return l.input[position:l.position], false
		}
		if l.ch == '\\' {
			l.readChar()
		}
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()
		if !l.skipComment() {
			break
		}
	}

	start := l.position

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Offset: start}
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenAddAssign, Literal: "+=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenPlus, Literal: "+", Offset: start}
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenSubAssign, Literal: "-=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenMinus, Literal: "-", Offset: start}
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenMulAssign, Literal: "*=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenMul, Literal: "*", Offset: start}
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenDivAssign, Literal: "/=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenDiv, Literal: "/", Offset: start}
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenModAssign, Literal: "%=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenMod, Literal: "%", Offset: start}
	case '^':
		l.readChar()
		return Token{Type: TokenPow, Literal: "^", Offset: start}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenEq, Literal: "==", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenEq, Literal: "=", Offset: start}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenNe, Literal: "!=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenError, Literal: "!", Offset: start}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			l.readChar()
			return Token{Type: TokenLe, Literal: "<=", Offset: start}
		case '>':
			l.readChar()
			l.readChar()
			return Token{Type: TokenNe, Literal: "<>", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenLt, Literal: "<", Offset: start}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenGe, Literal: ">=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenGt, Literal: ">", Offset: start}
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenAssign, Literal: ":=", Offset: start}
		}
		l.readChar()
		return Token{Type: TokenColon, Literal: ":", Offset: start}
	case '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Offset: start}
	case ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Offset: start}
	case '[':
		if l.peekChar() == '*' {
			// Look two ahead for the multi-switch introducer "[*]".
			if l.readPosition+1 < len(l.input) && l.input[l.readPosition+1] == ']' {
				l.readChar()
				l.readChar()
				l.readChar()
				return Token{Type: TokenMultiSwitch, Literal: "[*]", Offset: start}
			}
		}
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Offset: start}
	case ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Offset: start}
	case '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Offset: start}
	case '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Offset: start}
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Offset: start}
	case ';':
		l.readChar()
		return Token{Type: TokenSemicolon, Literal: ";", Offset: start}
	case '?':
		l.readChar()
		return Token{Type: TokenQuestion, Literal: "?", Offset: start}
	case '\'':
		lit, ok := l.readString()
		if !ok {
			return Token{Type: TokenError, Literal: fmt.Sprintf("unterminated string: '%s", lit), Offset: start}
		}
		return Token{Type: TokenString, Literal: lit, Offset: start}
	}

	if isDigit(l.ch) {
		lit, ok := l.readNumber()
		if !ok {
			return Token{Type: TokenError, Literal: fmt.Sprintf("malformed numeric literal: %s", lit), Offset: start}
		}
		return Token{Type: TokenNumber, Literal: lit, Offset: start}
	}

	if isLetter(l.ch) || l.ch == '_' {
		lit := l.readIdentifier()
		if tt, ok := keywords[foldCase(lit)]; ok {
			return Token{Type: tt, Literal: lit, Offset: start}
		}
		return Token{Type: TokenIdentifier, Literal: lit, Offset: start}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenError, Literal: fmt.Sprintf("invalid character %q", ch), Offset: start}
}

// Tokenize scans the entire input, always ending with an EOF token.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks
		}
	}
}
