package ast

import "math"

// Synthesizer materializes AST nodes for the parser. With Optimize set
// it performs constant folding and algebraic strength reduction; the
// unoptimized pass constructs the same shapes verbatim. Every
// constructor returns nil when the operand kinds are incompatible with
// the operation; the parser reports that as a synthesis failure.
type Synthesizer struct {
	Optimize bool
}

// NewSynthesizer creates a synthesizer for one compile pass.
func NewSynthesizer(optimize bool) *Synthesizer {
	return &Synthesizer{Optimize: optimize}
}

// Binary builds a binary-operation node, or nil on type mismatch.
func (s *Synthesizer) Binary(op Operator, left, right Node) Node {
	if left == nil || right == nil {
		return nil
	}
	if !binaryCompatible(op, left, right) {
		return nil
	}

	if s.Optimize {
		if n := s.foldBinary(op, left, right); n != nil {
			return n
		}
		if n := s.reduceBinary(op, left, right); n != nil {
			return n
		}
	}
	return &Binary{Op: op, Left: left, Right: right}
}

// Unary builds a unary-operation node, or nil on type mismatch.
func (s *Synthesizer) Unary(op Operator, operand Node) Node {
	if operand == nil {
		return nil
	}
	if operand.Result() == ValueString {
		return nil
	}

	switch op {
	case OpPos:
		// Unary plus is the identity.
		return operand
	case OpNeg:
		if s.Optimize {
			if lit, ok := operand.(*Literal); ok {
				return NewLiteral(-lit.Value)
			}
			// Double negation cancels; the inner operand is reused
			// directly, so -(-x) resolves to the original leaf.
			if u, ok := operand.(*Unary); ok && u.Op == OpNeg {
				return u.Operand
			}
		}
		return &Unary{Op: OpNeg, Operand: operand}
	case OpNot:
		if s.Optimize {
			if lit, ok := operand.(*Literal); ok {
				return NewLiteral(boolToScalar(lit.Value == 0))
			}
		}
		return &Unary{Op: OpNot, Operand: operand}
	}
	return nil
}

// Ternary builds a ?: node; with optimization a constant condition
// selects the surviving branch.
func (s *Synthesizer) Ternary(cond, truePart, falsePart Node) Node {
	if cond == nil || truePart == nil || falsePart == nil {
		return nil
	}
	if cond.Result() == ValueString {
		return nil
	}
	if s.Optimize {
		if v, ok := ConstantValue(cond); ok {
			if v != 0 {
				return truePart
			}
			return falsePart
		}
	}
	return &Ternary{Cond: cond, True: truePart, False: falsePart}
}

// Assign builds an assignment node. The target must be a mutable
// storage reference of a kind compatible with the value.
func (s *Synthesizer) Assign(op Operator, target, value Node) Node {
	if target == nil || value == nil {
		return nil
	}
	if !assignable(target) {
		return nil
	}
	tk, vk := target.Result(), value.Result()
	switch {
	case tk == ValueString && vk != ValueString:
		return nil
	case tk != ValueString && vk == ValueString:
		return nil
	case op != OpAssign && tk == ValueString && op != OpAddAssign:
		// Strings support := and += only.
		return nil
	}
	return &Assign{Op: op, Target: target, Value: value}
}

// assignable reports whether n denotes mutable storage.
func assignable(n Node) bool {
	switch v := n.(type) {
	case *Variable:
		return !v.Immutable
	case *StringVariable:
		return !v.Immutable
	case *Vector:
		return !v.Immutable
	case *VectorElem:
		return !v.Vec.Immutable
	case *Range:
		return assignable(v.Target)
	}
	return false
}

// binaryCompatible applies the operand-kind compatibility matrix.
func binaryCompatible(op Operator, left, right Node) bool {
	lk, rk := left.Result(), right.Result()

	switch {
	case op.IsLogical():
		return lk == ValueScalar && rk == ValueScalar
	case op.IsComparison():
		if lk == ValueString || rk == ValueString {
			return lk == ValueString && rk == ValueString
		}
		return true
	case op == OpAdd:
		if lk == ValueString || rk == ValueString {
			// String concatenation.
			return lk == ValueString && rk == ValueString
		}
		return true
	case op.IsArithmetic():
		return lk != ValueString && rk != ValueString
	}
	return false
}

// foldBinary evaluates op over two constant operands.
func (s *Synthesizer) foldBinary(op Operator, left, right Node) Node {
	if ls, ok := left.(*StringLiteral); ok {
		rs, ok := right.(*StringLiteral)
		if !ok {
			return nil
		}
		return foldStringBinary(op, ls.Value, rs.Value)
	}

	lv, lok := ConstantValue(left)
	rv, rok := ConstantValue(right)
	if !lok || !rok {
		return nil
	}

	switch op {
	case OpAdd:
		return NewLiteral(lv + rv)
	case OpSub:
		return NewLiteral(lv - rv)
	case OpMul:
		return NewLiteral(lv * rv)
	case OpDiv:
		return NewLiteral(lv / rv)
	case OpMod:
		return NewLiteral(math.Mod(lv, rv))
	case OpPow:
		return NewLiteral(math.Pow(lv, rv))
	case OpEq:
		return NewLiteral(boolToScalar(lv == rv))
	case OpNe:
		return NewLiteral(boolToScalar(lv != rv))
	case OpLt:
		return NewLiteral(boolToScalar(lv < rv))
	case OpLe:
		return NewLiteral(boolToScalar(lv <= rv))
	case OpGt:
		return NewLiteral(boolToScalar(lv > rv))
	case OpGe:
		return NewLiteral(boolToScalar(lv >= rv))
	case OpAnd:
		return NewLiteral(boolToScalar(lv != 0 && rv != 0))
	case OpOr:
		return NewLiteral(boolToScalar(lv != 0 || rv != 0))
	case OpNand:
		return NewLiteral(boolToScalar(!(lv != 0 && rv != 0)))
	case OpNor:
		return NewLiteral(boolToScalar(!(lv != 0 || rv != 0)))
	case OpXor:
		return NewLiteral(boolToScalar((lv != 0) != (rv != 0)))
	case OpXnor:
		return NewLiteral(boolToScalar((lv != 0) == (rv != 0)))
	}
	return nil
}

func foldStringBinary(op Operator, l, r string) Node {
	switch op {
	case OpAdd:
		return &StringLiteral{Value: l + r}
	case OpEq:
		return NewLiteral(boolToScalar(l == r))
	case OpNe:
		return NewLiteral(boolToScalar(l != r))
	case OpLt:
		return NewLiteral(boolToScalar(l < r))
	case OpLe:
		return NewLiteral(boolToScalar(l <= r))
	case OpGt:
		return NewLiteral(boolToScalar(l > r))
	case OpGe:
		return NewLiteral(boolToScalar(l >= r))
	}
	return nil
}

// reduceBinary applies algebraic identities. Operand elimination is
// only legal when the discarded side cannot have side effects.
func (s *Synthesizer) reduceBinary(op Operator, left, right Node) Node {
	lv, lconst := ConstantValue(left)
	rv, rconst := ConstantValue(right)

	switch op {
	case OpAdd:
		if lconst && lv == 0 {
			return right
		}
		if rconst && rv == 0 {
			return left
		}
	case OpSub:
		if rconst && rv == 0 {
			return left
		}
	case OpMul:
		if lconst && lv == 1 {
			return right
		}
		if rconst && rv == 1 {
			return left
		}
		if lconst && lv == 0 && SideEffectFree(right) {
			return NewLiteral(0)
		}
		if rconst && rv == 0 && SideEffectFree(left) {
			return NewLiteral(0)
		}
	case OpDiv:
		if rconst && rv == 1 {
			return left
		}
	case OpPow:
		if rconst && rv == 1 {
			return left
		}
		if rconst && rv == 0 && SideEffectFree(left) {
			return NewLiteral(1)
		}
	}
	return nil
}

func boolToScalar(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
