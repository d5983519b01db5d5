// Package ast defines the Calyx expression tree: tagged-variant nodes
// with an explicit Kind discriminant, and the node synthesizer that
// materializes (and optionally folds) nodes for the parser.
package ast

import "fmt"

// Operator identifies a unary, binary or assignment operation.
type Operator int

// Operators.
const (
	OpUnknown Operator = iota

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow

	// Comparison.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Logical.
	OpAnd
	OpOr
	OpNand
	OpNor
	OpXor
	OpXnor

	// Unary.
	OpNeg
	OpPos
	OpNot

	// Assignment.
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
)

var operatorNames = map[Operator]string{
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpPow:       "^",
	OpEq:        "==",
	OpNe:        "!=",
	OpLt:        "<",
	OpLe:        "<=",
	OpGt:        ">",
	OpGe:        ">=",
	OpAnd:       "and",
	OpOr:        "or",
	OpNand:      "nand",
	OpNor:       "nor",
	OpXor:       "xor",
	OpXnor:      "xnor",
	OpNeg:       "-",
	OpPos:       "+",
	OpNot:       "not",
	OpAssign:    ":=",
	OpAddAssign: "+=",
	OpSubAssign: "-=",
	OpMulAssign: "*=",
	OpDivAssign: "/=",
	OpModAssign: "%=",
}

// String returns the source spelling of the operator.
func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// IsArithmetic reports whether op is an arithmetic operator.
func (op Operator) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return true
	}
	return false
}

// IsComparison reports whether op is a comparison operator.
func (op Operator) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// IsLogical reports whether op is a logical operator.
func (op Operator) IsLogical() bool {
	switch op {
	case OpAnd, OpOr, OpNand, OpNor, OpXor, OpXnor:
		return true
	}
	return false
}

// IsAssignment reports whether op is an assignment operator.
func (op Operator) IsAssignment() bool {
	switch op {
	case OpAssign, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign, OpModAssign:
		return true
	}
	return false
}
