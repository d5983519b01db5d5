package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind classifies the runtime result of evaluating a node.
type ValueKind int

// Value kinds.
const (
	ValueUnknown ValueKind = iota
	ValueScalar
	ValueString
	ValueVector
)

// String returns a string representation of the value kind.
func (vk ValueKind) String() string {
	switch vk {
	case ValueScalar:
		return "scalar"
	case ValueString:
		return "string"
	case ValueVector:
		return "vector"
	}
	return "unknown"
}

// Kind discriminates the concrete node variants.
type Kind int

// Node kinds.
const (
	KindLiteral Kind = iota
	KindStringLiteral
	KindNull
	KindVariable
	KindStringVariable
	KindVector
	KindVectorElem
	KindVectorInit
	KindUnary
	KindBinary
	KindTernary
	KindAssign
	KindCall
	KindConditional
	KindWhile
	KindRepeat
	KindFor
	KindSwitch
	KindMultiSwitch
	KindReturn
	KindBreak
	KindContinue
	KindSwap
	KindBlock
	KindRange
	KindSize
)

// Node is the interface implemented by every AST node variant.
// Introspection goes through Kind and the variant's exported fields;
// there is no downcast-style probing beyond the single type switch.
type Node interface {
	Kind() Kind
	Result() ValueKind
	Children() []Node
	String() string
}

// Depth returns the structural depth of the tree rooted at n.
func Depth(n Node) int {
	if n == nil {
		return 0
	}
	max := 0
	for _, c := range n.Children() {
		if c == nil {
			continue
		}
		if d := Depth(c); d > max {
			max = d
		}
	}
	return max + 1
}

// ====== Leaves ======

// Literal is a numeric constant.
type Literal struct {
	Value float64
}

// NewLiteral creates a numeric constant node.
func NewLiteral(v float64) *Literal { return &Literal{Value: v} }

func (n *Literal) Kind() Kind        { return KindLiteral }
func (n *Literal) Result() ValueKind { return ValueScalar }
func (n *Literal) Children() []Node  { return nil }
func (n *Literal) String() string    { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// StringLiteral is a string constant.
type StringLiteral struct {
	Value string
}

func (n *StringLiteral) Kind() Kind        { return KindStringLiteral }
func (n *StringLiteral) Result() ValueKind { return ValueString }
func (n *StringLiteral) Children() []Node  { return nil }
func (n *StringLiteral) String() string    { return fmt.Sprintf("'%s'", n.Value) }

// Null is the bare null literal; it evaluates as numeric zero and
// carries no storage linkage.
type Null struct{}

func (n *Null) Kind() Kind        { return KindNull }
func (n *Null) Result() ValueKind { return ValueScalar }
func (n *Null) Children() []Node  { return nil }
func (n *Null) String() string    { return "null" }

// Variable is a reference to scalar storage. The same Variable node is
// shared by every reference to the symbol within one compile, so leaf
// identity doubles as symbol identity.
type Variable struct {
	Name      string
	Ref       *float64
	Immutable bool
}

func (n *Variable) Kind() Kind        { return KindVariable }
func (n *Variable) Result() ValueKind { return ValueScalar }
func (n *Variable) Children() []Node  { return nil }
func (n *Variable) String() string    { return n.Name }

// StringVariable is a reference to string storage.
type StringVariable struct {
	Name      string
	Ref       *string
	Immutable bool
}

func (n *StringVariable) Kind() Kind        { return KindStringVariable }
func (n *StringVariable) Result() ValueKind { return ValueString }
func (n *StringVariable) Children() []Node  { return nil }
func (n *StringVariable) String() string    { return n.Name }

// Vector is a reference to vector storage.
type Vector struct {
	Name      string
	Ref       []float64
	Immutable bool
}

func (n *Vector) Kind() Kind        { return KindVector }
func (n *Vector) Result() ValueKind { return ValueVector }
func (n *Vector) Children() []Node  { return nil }
func (n *Vector) String() string    { return n.Name }

// Size returns the vector's declared element count.
func (n *Vector) Size() int { return len(n.Ref) }

// ====== Composites ======

// VectorElem is a single-element access into a vector.
type VectorElem struct {
	Vec   *Vector
	Index Node
}

func (n *VectorElem) Kind() Kind        { return KindVectorElem }
func (n *VectorElem) Result() ValueKind { return ValueScalar }
func (n *VectorElem) Children() []Node  { return []Node{n.Vec, n.Index} }
func (n *VectorElem) String() string    { return fmt.Sprintf("%s[%s]", n.Vec.Name, n.Index.String()) }

// VectorInit assigns an initializer list (or broadcast scalar, or
// source vector) into a declared vector.
type VectorInit struct {
	Vec       *Vector
	Values    []Node
	Broadcast bool
}

func (n *VectorInit) Kind() Kind        { return KindVectorInit }
func (n *VectorInit) Result() ValueKind { return ValueVector }
func (n *VectorInit) Children() []Node  { return append([]Node{n.Vec}, n.Values...) }
func (n *VectorInit) String() string    { return fmt.Sprintf("vecinit(%s)", n.Vec.Name) }

// Unary applies a unary operator to one operand.
type Unary struct {
	Op      Operator
	Operand Node
}

func (n *Unary) Kind() Kind        { return KindUnary }
func (n *Unary) Result() ValueKind { return n.Operand.Result() }
func (n *Unary) Children() []Node  { return []Node{n.Operand} }
func (n *Unary) String() string    { return fmt.Sprintf("(%s%s)", n.Op, n.Operand) }

// Binary applies a binary operator to two operands.
type Binary struct {
	Op    Operator
	Left  Node
	Right Node
}

func (n *Binary) Kind() Kind { return KindBinary }

func (n *Binary) Result() ValueKind {
	if n.Op.IsComparison() || n.Op.IsLogical() {
		return ValueScalar
	}
	if n.Left.Result() == ValueString || n.Right.Result() == ValueString {
		return ValueString
	}
	if n.Left.Result() == ValueVector || n.Right.Result() == ValueVector {
		return ValueVector
	}
	return ValueScalar
}

func (n *Binary) Children() []Node { return []Node{n.Left, n.Right} }
func (n *Binary) String() string   { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }

// Ternary is the ?: conditional expression.
type Ternary struct {
	Cond  Node
	True  Node
	False Node
}

func (n *Ternary) Kind() Kind { return KindTernary }

func (n *Ternary) Result() ValueKind {
	if n.True.Result() == n.False.Result() {
		return n.True.Result()
	}
	return ValueUnknown
}

func (n *Ternary) Children() []Node { return []Node{n.Cond, n.True, n.False} }
func (n *Ternary) String() string   { return fmt.Sprintf("(%s ? %s : %s)", n.Cond, n.True, n.False) }

// Assign stores a value into a target (variable, string variable,
// vector element or vector).
type Assign struct {
	Op     Operator
	Target Node
	Value  Node
}

func (n *Assign) Kind() Kind        { return KindAssign }
func (n *Assign) Result() ValueKind { return n.Target.Result() }
func (n *Assign) Children() []Node  { return []Node{n.Target, n.Value} }
func (n *Assign) String() string    { return fmt.Sprintf("(%s %s %s)", n.Target, n.Op, n.Value) }

// CallCategory identifies which function container a call resolved to.
type CallCategory int

// Call categories.
const (
	CallScalar CallCategory = iota
	CallVarArg
	CallGeneric
	CallString
	CallOverload
)

// Call invokes a host-registered function with already-built argument
// nodes. Ret is fixed at synthesis time (for overload functions it is
// the matched prototype's declared return kind).
type Call struct {
	Name      string
	Category  CallCategory
	Args      []Node
	Ret       ValueKind
	Prototype int // matched prototype index, -1 when not applicable
}

func (n *Call) Kind() Kind        { return KindCall }
func (n *Call) Result() ValueKind { return n.Ret }
func (n *Call) Children() []Node  { return n.Args }

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}

// Conditional is an if/else statement or the comma form if(c,t,f).
// Else may be nil.
type Conditional struct {
	Cond Node
	Then Node
	Else Node
}

func (n *Conditional) Kind() Kind { return KindConditional }

func (n *Conditional) Result() ValueKind {
	if n.Else != nil && n.Then.Result() == n.Else.Result() {
		return n.Then.Result()
	}
	return ValueUnknown
}

func (n *Conditional) Children() []Node { return []Node{n.Cond, n.Then, n.Else} }
func (n *Conditional) String() string   { return "if" }

// While is a pre-tested loop. RuntimeCheck marks that the host
// registered a loop runtime check for iteration limiting.
type While struct {
	Cond           Node
	Body           Node
	HasBreakOrCont bool
	RuntimeChecked bool
}

func (n *While) Kind() Kind        { return KindWhile }
func (n *While) Result() ValueKind { return ValueScalar }
func (n *While) Children() []Node  { return []Node{n.Cond, n.Body} }
func (n *While) String() string    { return "while" }

// Repeat is a post-tested repeat..until loop. Body may be nil for the
// empty-body form.
type Repeat struct {
	Body           Node
	Cond           Node
	HasBreakOrCont bool
	RuntimeChecked bool
}

func (n *Repeat) Kind() Kind        { return KindRepeat }
func (n *Repeat) Result() ValueKind { return ValueScalar }
func (n *Repeat) Children() []Node  { return []Node{n.Body, n.Cond} }
func (n *Repeat) String() string    { return "repeat" }

// For is a C-style loop; any of Init, Cond, Post may be nil.
type For struct {
	Init           Node
	Cond           Node
	Post           Node
	Body           Node
	HasBreakOrCont bool
	RuntimeChecked bool
}

func (n *For) Kind() Kind        { return KindFor }
func (n *For) Result() ValueKind { return ValueScalar }
func (n *For) Children() []Node  { return []Node{n.Init, n.Cond, n.Post, n.Body} }
func (n *For) String() string    { return "for" }

// SwitchCase pairs one case condition with its result expression.
type SwitchCase struct {
	Cond   Node
	Result Node
}

// Switch selects the first case whose condition holds; Default may be
// nil.
type Switch struct {
	Cases   []SwitchCase
	Default Node
}

func (n *Switch) Kind() Kind        { return KindSwitch }
func (n *Switch) Result() ValueKind { return ValueScalar }

func (n *Switch) Children() []Node {
	var out []Node
	for _, c := range n.Cases {
		out = append(out, c.Cond, c.Result)
	}
	return append(out, n.Default)
}

func (n *Switch) String() string { return "switch" }

// MultiSwitch executes every case whose condition holds.
type MultiSwitch struct {
	Cases []SwitchCase
}

func (n *MultiSwitch) Kind() Kind        { return KindMultiSwitch }
func (n *MultiSwitch) Result() ValueKind { return ValueScalar }

func (n *MultiSwitch) Children() []Node {
	var out []Node
	for _, c := range n.Cases {
		out = append(out, c.Cond, c.Result)
	}
	return out
}

func (n *MultiSwitch) String() string { return "[*]switch" }

// Return carries zero or more result expressions out of the compile
// unit. Signature records each argument's value kind (T/S/V letters)
// for cross-checking all returns of the unit.
type Return struct {
	Args      []Node
	Signature string
}

func (n *Return) Kind() Kind        { return KindReturn }
func (n *Return) Result() ValueKind { return ValueScalar }
func (n *Return) Children() []Node  { return n.Args }
func (n *Return) String() string    { return "return" }

// Break exits the nearest loop; Value may be nil.
type Break struct {
	Value Node
}

func (n *Break) Kind() Kind        { return KindBreak }
func (n *Break) Result() ValueKind { return ValueScalar }
func (n *Break) Children() []Node  { return []Node{n.Value} }
func (n *Break) String() string    { return "break" }

// Continue restarts the nearest loop.
type Continue struct{}

func (n *Continue) Kind() Kind        { return KindContinue }
func (n *Continue) Result() ValueKind { return ValueScalar }
func (n *Continue) Children() []Node  { return nil }
func (n *Continue) String() string    { return "continue" }

// Swap exchanges two storage locations. Scalar selects the specialized
// variable-to-variable form.
type Swap struct {
	A      Node
	B      Node
	Scalar bool
}

func (n *Swap) Kind() Kind        { return KindSwap }
func (n *Swap) Result() ValueKind { return ValueScalar }
func (n *Swap) Children() []Node  { return []Node{n.A, n.B} }
func (n *Swap) String() string    { return fmt.Sprintf("swap(%s, %s)", n.A, n.B) }

// Block is an ordered statement sequence; its result is the last
// statement's result.
type Block struct {
	Statements []Node
}

func (n *Block) Kind() Kind { return KindBlock }

func (n *Block) Result() ValueKind {
	if len(n.Statements) == 0 {
		return ValueScalar
	}
	return n.Statements[len(n.Statements)-1].Result()
}

func (n *Block) Children() []Node { return n.Statements }
func (n *Block) String() string   { return fmt.Sprintf("block(%d)", len(n.Statements)) }

// RangeBound is one bound of a [lo:hi] range: either a compile-time
// constant or a deferred sub-expression.
type RangeBound struct {
	Known bool
	Value int
	Expr  Node
}

// Range applies a [lo:hi] sub-range to a string- or vector-valued
// expression. Open bounds have neither Known nor Expr set.
type Range struct {
	Target Node
	Lo     RangeBound
	Hi     RangeBound
}

func (n *Range) Kind() Kind        { return KindRange }
func (n *Range) Result() ValueKind { return n.Target.Result() }
func (n *Range) Children() []Node  { return []Node{n.Target, n.Lo.Expr, n.Hi.Expr} }
func (n *Range) String() string    { return fmt.Sprintf("%s[:]", n.Target) }

// Size is the empty-bracket [] size query on a string or vector.
type Size struct {
	Target Node
}

func (n *Size) Kind() Kind        { return KindSize }
func (n *Size) Result() ValueKind { return ValueScalar }
func (n *Size) Children() []Node  { return []Node{n.Target} }
func (n *Size) String() string    { return fmt.Sprintf("%s[]", n.Target) }

// ====== Predicates ======

// IsConstant reports whether n is a compile-time constant leaf.
func IsConstant(n Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case KindLiteral, KindStringLiteral, KindNull:
		return true
	}
	return false
}

// IsFalseConstant reports whether n is provably the scalar zero.
func IsFalseConstant(n Node) bool {
	lit, ok := n.(*Literal)
	return ok && lit.Value == 0
}

// ConstantValue returns the numeric value of a constant scalar node.
func ConstantValue(n Node) (float64, bool) {
	switch v := n.(type) {
	case *Literal:
		return v.Value, true
	case *Null:
		return 0, true
	}
	return 0, false
}

// SideEffectFree reports whether evaluating n cannot mutate state.
// Used to gate eliminating operands during strength reduction.
func SideEffectFree(n Node) bool {
	if n == nil {
		return true
	}
	switch n.Kind() {
	case KindLiteral, KindStringLiteral, KindNull, KindVariable,
		KindStringVariable, KindVector:
		return true
	case KindUnary, KindBinary, KindTernary, KindVectorElem, KindRange, KindSize:
		for _, c := range n.Children() {
			if c != nil && !SideEffectFree(c) {
				return false
			}
		}
		return true
	}
	return false
}
