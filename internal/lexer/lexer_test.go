package lexer

import "testing"

// TestNextToken tests basic token scanning.
func TestNextToken(t *testing.T) {
	input := "var x := 3.25 + y2 * (z - 'abc');"

	expected := []struct {
		typ     TokenType
		literal string
	}{
		{TokenVar, "var"},
		{TokenIdentifier, "x"},
		{TokenAssign, ":="},
		{TokenNumber, "3.25"},
		{TokenPlus, "+"},
		{TokenIdentifier, "y2"},
		{TokenMul, "*"},
		{TokenLParen, "("},
		{TokenIdentifier, "z"},
		{TokenMinus, "-"},
		{TokenString, "abc"},
		{TokenRParen, ")"},
		{TokenSemicolon, ";"},
		{TokenEOF, ""},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Fatalf("token %d: expected type %s, got %s (%q)", i, exp.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != exp.literal {
			t.Fatalf("token %d: expected literal %q, got %q", i, exp.literal, tok.Literal)
		}
	}
}

// TestOperators tests multi-character operator scanning.
func TestOperators(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{":=", TokenAssign},
		{"+=", TokenAddAssign},
		{"-=", TokenSubAssign},
		{"*=", TokenMulAssign},
		{"/=", TokenDivAssign},
		{"%=", TokenModAssign},
		{"==", TokenEq},
		{"=", TokenEq},
		{"!=", TokenNe},
		{"<>", TokenNe},
		{"<=", TokenLe},
		{">=", TokenGe},
		{"<", TokenLt},
		{">", TokenGt},
		{"^", TokenPow},
		{"[*]", TokenMultiSwitch},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.typ {
				t.Errorf("expected %s, got %s", tt.typ, tok.Type)
			}
		})
	}
}

// TestKeywordsCaseInsensitive verifies keywords fold case.
func TestKeywordsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"while", "WHILE", "While"} {
		tok := New(input).NextToken()
		if tok.Type != TokenWhile {
			t.Errorf("%q: expected WHILE, got %s", input, tok.Type)
		}
	}
}

// TestNumbers tests numeric literal scanning including exponents.
func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		literal string
		valid   bool
	}{
		{"42", "42", true},
		{"3.14159", "3.14159", true},
		{"1e10", "1e10", true},
		{"2.5E-3", "2.5E-3", true},
		{"1e", "1e", false},
		{"1e+", "1e+", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tt.valid && tok.Type != TokenNumber {
				t.Fatalf("expected NUMBER, got %s (%q)", tok.Type, tok.Literal)
			}
			if !tt.valid && tok.Type != TokenError {
				t.Fatalf("expected ERROR, got %s (%q)", tok.Type, tok.Literal)
			}
			if tt.valid && tok.Literal != tt.literal {
				t.Fatalf("expected literal %q, got %q", tt.literal, tok.Literal)
			}
		})
	}
}

// TestComments verifies both comment forms are skipped.
func TestComments(t *testing.T) {
	input := "1 // line comment\n + /* block */ 2"
	ts := NewTokenStream(input)

	want := []TokenType{TokenNumber, TokenPlus, TokenNumber, TokenEOF}
	for i, w := range want {
		if got := ts.Current().Type; got != w {
			t.Fatalf("token %d: expected %s, got %s", i, w, got)
		}
		ts.Next()
	}
}

// TestUnterminatedString verifies the error token for a missing quote.
func TestUnterminatedString(t *testing.T) {
	tok := New("'abc").NextToken()
	if tok.Type != TokenError {
		t.Fatalf("expected ERROR, got %s", tok.Type)
	}
}

// TestTokenStreamInsert verifies lookahead insertion.
func TestTokenStreamInsert(t *testing.T) {
	ts := NewTokenStream("2 x")

	if ts.Current().Type != TokenNumber {
		t.Fatalf("expected NUMBER, got %s", ts.Current().Type)
	}
	ts.Next()

	ts.Insert(Token{Type: TokenMul, Literal: "*"})
	if ts.Current().Type != TokenMul {
		t.Fatalf("expected inserted MUL, got %s", ts.Current().Type)
	}
	if ts.Next().Type != TokenIdentifier {
		t.Fatalf("expected IDENTIFIER after inserted token, got %s", ts.Current().Type)
	}
}

// TestCheckBrackets tests the bracket balance validator.
func TestCheckBrackets(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		failures int
	}{
		{"balanced", "(a + [b * {c}])", 0},
		{"unclosed", "(a + b", 1},
		{"unopened", "a + b)", 1},
		{"mismatched", "(a + b]", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckBrackets(New(tt.input).Tokenize())
			if len(got) != tt.failures {
				t.Errorf("expected %d failures, got %d: %v", tt.failures, len(got), got)
			}
		})
	}
}

// TestCheckSequences tests the adjacency validator.
func TestCheckSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		bad   bool
	}{
		{"double operator", "a + * b", true},
		{"double comma", "f(a,,b)", true},
		{"signed operand", "a + -b", false},
		{"plain", "a + b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckSequences(New(tt.input).Tokenize())
			if tt.bad && len(got) == 0 {
				t.Error("expected a sequence failure, got none")
			}
			if !tt.bad && len(got) != 0 {
				t.Errorf("expected no failures, got %v", got)
			}
		})
	}
}

// TestJoinOperators tests the operator joining pass.
func TestJoinOperators(t *testing.T) {
	toks := []Token{
		{Type: TokenIdentifier, Literal: "a", Offset: 0},
		{Type: TokenGt, Literal: ">", Offset: 1},
		{Type: TokenEq, Literal: "=", Offset: 2},
		{Type: TokenIdentifier, Literal: "b", Offset: 3},
		{Type: TokenEOF, Offset: 4},
	}
	joined := JoinOperators(toks)
	if len(joined) != 4 {
		t.Fatalf("expected 4 tokens after join, got %d", len(joined))
	}
	if joined[1].Type != TokenGe || joined[1].Literal != ">=" {
		t.Fatalf("expected >=, got %s %q", joined[1].Type, joined[1].Literal)
	}
}
