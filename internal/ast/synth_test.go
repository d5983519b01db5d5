package ast

import "testing"

// TestConstantFolding tests arithmetic folding of literal operands.
func TestConstantFolding(t *testing.T) {
	tests := []struct {
		name     string
		op       Operator
		lhs, rhs float64
		want     float64
	}{
		{"add", OpAdd, 2, 3, 5},
		{"sub", OpSub, 10, 4, 6},
		{"mul", OpMul, 6, 7, 42},
		{"div", OpDiv, 9, 2, 4.5},
		{"pow", OpPow, 2, 10, 1024},
		{"lt true", OpLt, 1, 2, 1},
		{"lt false", OpLt, 2, 1, 0},
		{"and", OpAnd, 1, 0, 0},
		{"xor", OpXor, 1, 0, 1},
	}

	s := NewSynthesizer(true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := s.Binary(tt.op, NewLiteral(tt.lhs), NewLiteral(tt.rhs))
			lit, ok := n.(*Literal)
			if !ok {
				t.Fatalf("expected folded literal, got %T", n)
			}
			if lit.Value != tt.want {
				t.Errorf("expected %v, got %v", tt.want, lit.Value)
			}
		})
	}
}

// TestNoFoldingWithoutOptimize verifies the unoptimized pass keeps the
// binary shape.
func TestNoFoldingWithoutOptimize(t *testing.T) {
	s := NewSynthesizer(false)
	n := s.Binary(OpAdd, NewLiteral(2), NewLiteral(3))
	if n.Kind() != KindBinary {
		t.Fatalf("expected BINARY, got %v", n.Kind())
	}
}

// TestStrengthReduction tests algebraic identities.
func TestStrengthReduction(t *testing.T) {
	s := NewSynthesizer(true)
	x := &Variable{Name: "x", Ref: new(float64)}

	tests := []struct {
		name string
		node Node
		want Node
	}{
		{"x+0", s.Binary(OpAdd, x, NewLiteral(0)), x},
		{"0+x", s.Binary(OpAdd, NewLiteral(0), x), x},
		{"x*1", s.Binary(OpMul, x, NewLiteral(1)), x},
		{"x/1", s.Binary(OpDiv, x, NewLiteral(1)), x},
		{"x^1", s.Binary(OpPow, x, NewLiteral(1)), x},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.node != tt.want {
				t.Errorf("expected operand reuse, got %v", tt.node)
			}
		})
	}

	if n := s.Binary(OpMul, x, NewLiteral(0)); !IsFalseConstant(n) {
		t.Errorf("x*0: expected constant zero, got %v", n)
	}
	if n := s.Binary(OpPow, x, NewLiteral(0)); n.(*Literal).Value != 1 {
		t.Errorf("x^0: expected constant one, got %v", n)
	}
}

// TestUnaryNegation verifies -x shares the variable leaf and double
// negation cancels.
func TestUnaryNegation(t *testing.T) {
	s := NewSynthesizer(true)
	x := &Variable{Name: "x", Ref: new(float64)}

	neg := s.Unary(OpNeg, x)
	u, ok := neg.(*Unary)
	if !ok || u.Op != OpNeg {
		t.Fatalf("expected unary negation, got %v", neg)
	}
	if u.Operand != Node(x) {
		t.Error("negation child is not the original variable node")
	}

	if back := s.Unary(OpNeg, neg); back != Node(x) {
		t.Errorf("double negation: expected original node, got %v", back)
	}

	if lit := s.Unary(OpNeg, NewLiteral(5)); lit.(*Literal).Value != -5 {
		t.Errorf("expected -5, got %v", lit)
	}
}

// TestTypeMismatch verifies nil synthesis for incompatible operands.
func TestTypeMismatch(t *testing.T) {
	s := NewSynthesizer(true)
	str := &StringLiteral{Value: "abc"}
	num := NewLiteral(1)

	if n := s.Binary(OpAdd, str, num); n != nil {
		t.Errorf("string+number: expected nil, got %v", n)
	}
	if n := s.Binary(OpMul, str, str); n != nil {
		t.Errorf("string*string: expected nil, got %v", n)
	}
	if n := s.Unary(OpNeg, str); n != nil {
		t.Errorf("-string: expected nil, got %v", n)
	}
	if n := s.Binary(OpLt, str, str); n == nil || n.(*Literal) == nil {
		t.Error("string<string: expected folded comparison")
	}
}

// TestStringConcatFolding tests folding of adjacent string literals.
func TestStringConcatFolding(t *testing.T) {
	s := NewSynthesizer(true)
	n := s.Binary(OpAdd, &StringLiteral{Value: "ab"}, &StringLiteral{Value: "cd"})
	sl, ok := n.(*StringLiteral)
	if !ok || sl.Value != "abcd" {
		t.Fatalf("expected 'abcd', got %v", n)
	}
}

// TestTernarySelection verifies constant conditions select a branch.
func TestTernarySelection(t *testing.T) {
	s := NewSynthesizer(true)
	a, b := NewLiteral(1), NewLiteral(2)

	if n := s.Ternary(NewLiteral(1), a, b); n != Node(a) {
		t.Errorf("true condition: expected first branch, got %v", n)
	}
	if n := s.Ternary(NewLiteral(0), a, b); n != Node(b) {
		t.Errorf("false condition: expected second branch, got %v", n)
	}

	x := &Variable{Name: "x", Ref: new(float64)}
	if n := s.Ternary(x, a, b); n.Kind() != KindTernary {
		t.Errorf("variable condition: expected ternary node, got %v", n)
	}
}

// TestAssignCompatibility tests assignment target/value kind checks.
func TestAssignCompatibility(t *testing.T) {
	s := NewSynthesizer(true)
	x := &Variable{Name: "x", Ref: new(float64)}
	sv := &StringVariable{Name: "s", Ref: new(string)}
	ro := &Variable{Name: "c", Ref: new(float64), Immutable: true}

	if n := s.Assign(OpAssign, x, NewLiteral(1)); n == nil {
		t.Error("scalar := scalar should synthesize")
	}
	if n := s.Assign(OpAssign, sv, &StringLiteral{Value: "v"}); n == nil {
		t.Error("string := string should synthesize")
	}
	if n := s.Assign(OpAssign, x, &StringLiteral{Value: "v"}); n != nil {
		t.Error("scalar := string should fail")
	}
	if n := s.Assign(OpAssign, ro, NewLiteral(1)); n != nil {
		t.Error("assignment to immutable variable should fail")
	}
	if n := s.Assign(OpMulAssign, sv, &StringLiteral{Value: "v"}); n != nil {
		t.Error("string *= should fail")
	}
	if n := s.Assign(OpAssign, NewLiteral(3), NewLiteral(1)); n != nil {
		t.Error("assignment to literal should fail")
	}
}

// TestDepth verifies structural depth computation.
func TestDepth(t *testing.T) {
	s := NewSynthesizer(false)
	x := &Variable{Name: "x", Ref: new(float64)}

	if d := Depth(x); d != 1 {
		t.Errorf("leaf depth: expected 1, got %d", d)
	}
	n := s.Binary(OpAdd, x, s.Binary(OpMul, x, x))
	if d := Depth(n); d != 3 {
		t.Errorf("nested depth: expected 3, got %d", d)
	}
}
