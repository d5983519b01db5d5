// Package lexer implements the Calyx lexical analyzer and the peekable
// token stream consumed by the parser.
package lexer

import "fmt"

// TokenType represents the type of a token.
type TokenType int

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types.
const (
	// Special tokens.
	TokenEOF TokenType = iota
	TokenError

	// Literals.
	TokenNumber
	TokenString
	TokenIdentifier

	// Keywords.
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenRepeat
	TokenUntil
	TokenSwitch
	TokenCase
	TokenDefault
	TokenBreak
	TokenContinue
	TokenReturn
	TokenVar
	TokenSwap
	TokenNull
	TokenTrue
	TokenFalse

	// Word operators.
	TokenAnd
	TokenOr
	TokenNand
	TokenNor
	TokenXor
	TokenXnor
	TokenNot

	// Arithmetic operators.
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenMod
	TokenPow

	// Assignment operators.
	TokenAssign
	TokenAddAssign
	TokenSubAssign
	TokenMulAssign
	TokenDivAssign
	TokenModAssign

	// Comparison operators.
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe

	// Delimiters.
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenSemicolon
	TokenColon
	TokenQuestion

	// The multi-switch introducer "[*]".
	TokenMultiSwitch
)

// Token represents a lexical token with its byte offset in the source.
type Token struct {
	Type    TokenType
	Literal string
	Offset  int
}

// String returns a string representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Offset: %d}", t.Type.String(), t.Literal, t.Offset)
}

// tokenNames provides string representations for token types.
var tokenNames = map[TokenType]string{
	TokenEOF:   "EOF",
	TokenError: "ERROR",

	TokenNumber:     "NUMBER",
	TokenString:     "STRING",
	TokenIdentifier: "IDENTIFIER",

	TokenIf:       "IF",
	TokenElse:     "ELSE",
	TokenWhile:    "WHILE",
	TokenFor:      "FOR",
	TokenRepeat:   "REPEAT",
	TokenUntil:    "UNTIL",
	TokenSwitch:   "SWITCH",
	TokenCase:     "CASE",
	TokenDefault:  "DEFAULT",
	TokenBreak:    "BREAK",
	TokenContinue: "CONTINUE",
	TokenReturn:   "RETURN",
	TokenVar:      "VAR",
	TokenSwap:     "SWAP",
	TokenNull:     "NULL",
	TokenTrue:     "TRUE",
	TokenFalse:    "FALSE",

	TokenAnd:  "AND",
	TokenOr:   "OR",
	TokenNand: "NAND",
	TokenNor:  "NOR",
	TokenXor:  "XOR",
	TokenXnor: "XNOR",
	TokenNot:  "NOT",

	TokenPlus:  "PLUS",
	TokenMinus: "MINUS",
	TokenMul:   "MUL",
	TokenDiv:   "DIV",
	TokenMod:   "MOD",
	TokenPow:   "POW",

	TokenAssign:    "ASSIGN",
	TokenAddAssign: "ADD_ASSIGN",
	TokenSubAssign: "SUB_ASSIGN",
	TokenMulAssign: "MUL_ASSIGN",
	TokenDivAssign: "DIV_ASSIGN",
	TokenModAssign: "MOD_ASSIGN",

	TokenEq: "EQ",
	TokenNe: "NE",
	TokenLt: "LT",
	TokenLe: "LE",
	TokenGt: "GT",
	TokenGe: "GE",

	TokenLParen:    "LPAREN",
	TokenRParen:    "RPAREN",
	TokenLBracket:  "LBRACKET",
	TokenRBracket:  "RBRACKET",
	TokenLBrace:    "LBRACE",
	TokenRBrace:    "RBRACE",
	TokenComma:     "COMMA",
	TokenSemicolon: "SEMICOLON",
	TokenColon:     "COLON",
	TokenQuestion:  "QUESTION",

	TokenMultiSwitch: "MULTI_SWITCH",
}

// keywords maps lower-cased keyword spellings to their token types.
// Calyx keywords are case-insensitive, like every other symbol.
var keywords = map[string]TokenType{
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"for":      TokenFor,
	"repeat":   TokenRepeat,
	"until":    TokenUntil,
	"switch":   TokenSwitch,
	"case":     TokenCase,
	"default":  TokenDefault,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"return":   TokenReturn,
	"var":      TokenVar,
	"swap":     TokenSwap,
	"null":     TokenNull,
	"true":     TokenTrue,
	"false":    TokenFalse,

	"and":  TokenAnd,
	"or":   TokenOr,
	"nand": TokenNand,
	"nor":  TokenNor,
	"xor":  TokenXor,
	"xnor": TokenXnor,
	"not":  TokenNot,
}

// IsKeyword reports whether name (in any letter case) is a reserved word.
func IsKeyword(name string) bool {
	_, ok := keywords[foldCase(name)]
	return ok
}

// IsOpening reports whether the token opens a grouping construct.
func (t Token) IsOpening() bool {
	switch t.Type {
	case TokenLParen, TokenLBracket, TokenLBrace:
		return true
	}
	return false
}

// IsClosing reports whether the token closes a grouping construct.
func (t Token) IsClosing() bool {
	switch t.Type {
	case TokenRParen, TokenRBracket, TokenRBrace:
		return true
	}
	return false
}

// MatchingCloser returns the closing token type paired with an opener.
func MatchingCloser(opener TokenType) TokenType {
	switch opener {
	case TokenLParen:
		return TokenRParen
	case TokenLBracket:
		return TokenRBracket
	case TokenLBrace:
		return TokenRBrace
	}
	return TokenError
}

// foldCase lowers ASCII letters. Symbol comparison in Calyx is
// case-insensitive; folding is the single normalization point.
func foldCase(s string) string {
	needs := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needs = true
			break
		}
	}
	if !needs {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// FoldCase exposes the canonical case normalization used for all symbol
// name comparisons.
func FoldCase(s string) string { return foldCase(s) }
