package lexer

import (
	"fmt"
	"strconv"
)

// CheckFailure describes one defect found by a pre-parse token pass.
type CheckFailure struct {
	Token   Token
	Message string
}

// CheckBrackets verifies that (, [ and { nest and match correctly over
// the whole token list.
func CheckBrackets(tokens []Token) []CheckFailure {
	var stack []Token
	var failures []CheckFailure

	for _, tok := range tokens {
		switch {
		case tok.IsOpening():
			stack = append(stack, tok)
		case tok.IsClosing():
			if len(stack) == 0 {
				failures = append(failures, CheckFailure{
					Token:   tok,
					Message: fmt.Sprintf("unmatched closing bracket %q", tok.Literal),
				})
				continue
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if MatchingCloser(opener.Type) != tok.Type {
				failures = append(failures, CheckFailure{
					Token:   tok,
					Message: fmt.Sprintf("mismatched bracket: %q closed by %q", opener.Literal, tok.Literal),
				})
			}
		}
	}

	for _, opener := range stack {
		failures = append(failures, CheckFailure{
			Token:   opener,
			Message: fmt.Sprintf("unclosed bracket %q", opener.Literal),
		})
	}
	return failures
}

// CheckNumerics verifies that every number token converts to a value.
func CheckNumerics(tokens []Token) []CheckFailure {
	var failures []CheckFailure
	for _, tok := range tokens {
		if tok.Type != TokenNumber {
			continue
		}
		if _, err := strconv.ParseFloat(tok.Literal, 64); err != nil {
			failures = append(failures, CheckFailure{
				Token:   tok,
				Message: fmt.Sprintf("invalid numeric literal %q", tok.Literal),
			})
		}
	}
	return failures
}

// CheckSequences rejects token adjacencies that can never begin a valid
// production, catching typos before the grammar sees them.
func CheckSequences(tokens []Token) []CheckFailure {
	var failures []CheckFailure
	for i := 0; i+1 < len(tokens); i++ {
		cur, next := tokens[i], tokens[i+1]
		if invalidAdjacent(cur, next) {
			failures = append(failures, CheckFailure{
				Token:   next,
				Message: fmt.Sprintf("invalid token sequence %q %q", cur.Literal, next.Literal),
			})
		}
	}
	return failures
}

// invalidAdjacent reports pairings that are always grammatically dead.
func invalidAdjacent(cur, next Token) bool {
	if isBinaryOperator(cur.Type) && isBinaryOperatorNotSign(next.Type) {
		return true
	}
	if cur.Type == TokenComma && next.Type == TokenComma {
		return true
	}
	if cur.IsOpening() && isBinaryOperatorNotSign(next.Type) {
		return true
	}
	if isBinaryOperator(cur.Type) && next.IsClosing() {
		return true
	}
	return false
}

func isBinaryOperator(tt TokenType) bool {
	switch tt {
	case TokenPlus, TokenMinus, TokenMul, TokenDiv, TokenMod, TokenPow,
		TokenAssign, TokenAddAssign, TokenSubAssign, TokenMulAssign,
		TokenDivAssign, TokenModAssign,
		TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe:
		return true
	}
	return false
}

// isBinaryOperatorNotSign is isBinaryOperator minus the tokens that can
// also introduce a unary-signed operand.
func isBinaryOperatorNotSign(tt TokenType) bool {
	if tt == TokenPlus || tt == TokenMinus {
		return false
	}
	return isBinaryOperator(tt)
}

// JoinOperators rewrites split two-character operators that the scanner
// produced as separate tokens, joining pairs such as ">" "=" into ">="
// when they are byte-adjacent in the source.
func JoinOperators(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		cur := tokens[i]
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if cur.Offset+len(cur.Literal) == next.Offset {
				if joined, ok := joinPair(cur, next); ok {
					out = append(out, joined)
					i++
					continue
				}
			}
		}
		out = append(out, cur)
	}
	return out
}

func joinPair(cur, next Token) (Token, bool) {
	mk := func(tt TokenType, lit string) (Token, bool) {
		return Token{Type: tt, Literal: lit, Offset: cur.Offset}, true
	}
	switch {
	case cur.Type == TokenGt && next.Literal == "=":
		return mk(TokenGe, ">=")
	case cur.Type == TokenLt && next.Literal == "=":
		return mk(TokenLe, "<=")
	case cur.Literal == "=" && next.Literal == "=":
		return mk(TokenEq, "==")
	case cur.Type == TokenError && cur.Literal == "!" && next.Literal == "=":
		return mk(TokenNe, "!=")
	case cur.Type == TokenLt && next.Type == TokenGt:
		return mk(TokenNe, "<>")
	case cur.Type == TokenColon && next.Literal == "=":
		return mk(TokenAssign, ":=")
	}
	return Token{}, false
}
