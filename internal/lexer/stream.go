package lexer

// TokenStream is a fully buffered, peekable cursor over the token list
// produced by the Lexer. The parser owns exactly one stream per compile
// and relies on one-token lookahead plus limited lookahead insertion
// (used to synthesize implicit multiplication between adjacent terms).
type TokenStream struct {
	tokens []Token
	cursor int
}

// NewTokenStream tokenizes the input and positions the cursor at the
// first token.
func NewTokenStream(input string) *TokenStream {
	return &TokenStream{tokens: New(input).Tokenize()}
}

// NewTokenStreamFromTokens wraps an already materialized token list.
// The list must end with an EOF token.
func NewTokenStreamFromTokens(tokens []Token) *TokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		tokens = append(tokens, Token{Type: TokenEOF})
	}
	return &TokenStream{tokens: tokens}
}

// Current returns the token under the cursor. Once the stream is
// exhausted it keeps returning the trailing EOF token.
func (ts *TokenStream) Current() Token {
	if ts.cursor >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	return ts.tokens[ts.cursor]
}

// Peek returns the token after the cursor without advancing.
func (ts *TokenStream) Peek() Token {
	if ts.cursor+1 >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	return ts.tokens[ts.cursor+1]
}

// Next advances the cursor and returns the new current token.
func (ts *TokenStream) Next() Token {
	if ts.cursor < len(ts.tokens) {
		ts.cursor++
	}
	return ts.Current()
}

// Insert places tok immediately before the current token. The next call
// to Current returns tok.
func (ts *TokenStream) Insert(tok Token) {
	if ts.cursor >= len(ts.tokens) {
		ts.cursor = len(ts.tokens) - 1
	}
	ts.tokens = append(ts.tokens, Token{})
	copy(ts.tokens[ts.cursor+1:], ts.tokens[ts.cursor:])
	ts.tokens[ts.cursor] = tok
}
