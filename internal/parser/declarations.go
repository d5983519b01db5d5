package parser

import (
	"math"
	"strconv"

	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// maxVectorSize caps declared vector element counts.
const maxVectorSize = 2000000000

// parseVarDeclaration parses the var statement forms: scalar and
// string initialization, the input-parameter form name{}, and vector
// declarations with their initializer variants. Redeclaration of an
// active local or shadowing of a host-registered symbol is rejected
// before any storage is allocated.
func (p *Parser) parseVarDeclaration() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("var") {
		p.errorToken(ErrSyntax, tok, "var declaration is disabled", "var")
		return nil
	}
	p.next()

	nameTok := p.current()
	if nameTok.Type != lexer.TokenIdentifier {
		if lexer.IsKeyword(nameTok.Literal) {
			p.errorToken(ErrSyntax, nameTok,
				"reserved word '"+nameTok.Literal+"' cannot be declared as a variable", "var")
		} else {
			p.errorToken(ErrSyntax, nameTok, "expected identifier in var declaration", "var")
		}
		return nil
	}
	name := nameTok.Literal

	if p.scope.getActiveElement(name, p.state.scopeDepth).Valid() {
		p.errorToken(ErrSyntax, nameTok, "redeclaration of local variable '"+name+"'", "var")
		return nil
	}
	if p.resolver.SymbolExists(name) {
		p.errorToken(ErrSyntax, nameTok,
			"symbol '"+name+"' is already registered with the symbol tables", "var")
		return nil
	}
	p.next()

	switch p.current().Type {
	case lexer.TokenLBracket:
		return p.parseVectorDeclaration(name, nameTok)

	case lexer.TokenLBrace:
		// Input-parameter form: var name{}.
		p.next()
		if !p.expect(lexer.TokenRBrace, "var declaration") {
			return nil
		}
		e := p.declareScalar(name, true, nameTok)
		if e == nil {
			return nil
		}
		return e.Node

	case lexer.TokenAssign:
		p.next()
		value := p.parseExpression(precLowest)
		if value == nil {
			p.errorIfEmpty(ErrSyntax, nameTok, "invalid initializer for variable '"+name+"'", "var")
			return nil
		}
		return p.declareInitialized(name, value, nameTok)

	default:
		p.errorHere(ErrSyntax, "expected ':=', '[' or '{}' in var declaration", "var")
		return nil
	}
}

// declareInitialized allocates the local whose kind the initializer
// determines and links the initial store.
func (p *Parser) declareInitialized(name string, value ast.Node, tok lexer.Token) ast.Node {
	if value.Kind() == ast.KindNull {
		// Null initializer: zero-valued scalar without store linkage.
		e := p.declareScalar(name, false, tok)
		if e == nil {
			return nil
		}
		return e.Node
	}

	switch value.Result() {
	case ast.ValueScalar:
		e := p.declareScalar(name, false, tok)
		if e == nil {
			return nil
		}
		p.state.sideEffectPresent = true
		return &ast.Assign{Op: ast.OpAssign, Target: e.Node, Value: value}

	case ast.ValueString:
		e := p.declareString(name, tok)
		if e == nil {
			return nil
		}
		p.state.sideEffectPresent = true
		return &ast.Assign{Op: ast.OpAssign, Target: e.Node, Value: value}
	}

	p.errorToken(ErrSyntax, tok,
		"invalid initializer type for variable '"+name+"'", "var")
	return nil
}

// declareScalar allocates (or reactivates) scalar storage for name.
func (p *Parser) declareScalar(name string, inputParam bool, tok lexer.Token) *ScopeElement {
	if e := p.scope.reusable(name, ElementVariable, 1, p.state.scopeDepth); e != nil {
		e.Active = true
		return e
	}

	ref := new(float64)
	e := &ScopeElement{
		Name:      name,
		Kind:      ElementVariable,
		Size:      1,
		Index:     p.scope.nextElementIndex(),
		Depth:     p.state.scopeDepth,
		Active:    true,
		ScalarRef: ref,
		Node:      &ast.Variable{Name: name, Ref: ref},
	}
	if inputParam {
		e.IPIndex = p.scope.nextInputIndex()
	}
	if !p.scope.addElement(e) {
		p.errorToken(ErrSyntax, tok, "redeclaration of local variable '"+name+"'", "var")
		return nil
	}
	return e
}

// declareString allocates (or reactivates) string storage for name.
func (p *Parser) declareString(name string, tok lexer.Token) *ScopeElement {
	if e := p.scope.reusable(name, ElementString, 1, p.state.scopeDepth); e != nil {
		e.Active = true
		return e
	}

	ref := new(string)
	e := &ScopeElement{
		Name:      name,
		Kind:      ElementString,
		Size:      1,
		Index:     p.scope.nextElementIndex(),
		Depth:     p.state.scopeDepth,
		Active:    true,
		StringRef: ref,
		Node:      &ast.StringVariable{Name: name, Ref: ref},
	}
	if !p.scope.addElement(e) {
		p.errorToken(ErrSyntax, tok, "redeclaration of local variable '"+name+"'", "var")
		return nil
	}
	return e
}

// parseVectorDeclaration parses var name[size] and its initializer
// forms: an initializer list, a broadcast scalar, a source vector, or
// null / absent for zero fill.
func (p *Parser) parseVectorDeclaration(name string, nameTok lexer.Token) ast.Node {
	p.next() // consume '['

	size, ok := p.parseVectorSize(name)
	if !ok {
		return nil
	}
	if !p.expect(lexer.TokenRBracket, "vector declaration") {
		return nil
	}

	vec, elem := p.declareVector(name, size, nameTok)
	if vec == nil {
		return nil
	}

	if !p.accept(lexer.TokenAssign) {
		// Uninitialized vectors are zero filled.
		return vec
	}

	switch p.current().Type {
	case lexer.TokenLBrace:
		p.next()
		values, ok := p.parseVectorInitializerList(name, size)
		if !ok {
			p.dropFreshElement(elem)
			return nil
		}
		p.state.sideEffectPresent = true
		return &ast.VectorInit{Vec: vec, Values: values}

	case lexer.TokenNull:
		p.next()
		return vec

	default:
		value := p.parseExpression(precLowest)
		if value == nil {
			p.errorIfEmpty(ErrSyntax, nameTok, "invalid initializer for vector '"+name+"'", "var")
			return nil
		}
		p.state.sideEffectPresent = true
		switch value.Result() {
		case ast.ValueVector:
			return &ast.Assign{Op: ast.OpAssign, Target: vec, Value: value}
		case ast.ValueScalar:
			return &ast.VectorInit{Vec: vec, Values: []ast.Node{value}, Broadcast: true}
		}
		p.errorToken(ErrSyntax, nameTok,
			"invalid initializer type for vector '"+name+"'", "var")
		return nil
	}
}

// parseVectorSize accepts a numeric literal or a registered constant:
// the size must be identical across both compile passes, so arbitrary
// expressions are not permitted.
func (p *Parser) parseVectorSize(name string) (int, bool) {
	tok := p.current()
	var value float64

	switch tok.Type {
	case lexer.TokenNumber:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorToken(ErrNumeric, tok, "failed to convert vector size '"+tok.Literal+"'", "var")
			return 0, false
		}
		value = v
	case lexer.TokenIdentifier:
		v, table := p.resolver.Variable(tok.Literal)
		if v == nil || !table.IsConstant(tok.Literal) {
			p.errorToken(ErrSyntax, tok,
				"vector size for '"+name+"' must be a constant", "var")
			return 0, false
		}
		value = *v.Ref
	default:
		p.errorToken(ErrSyntax, tok,
			"vector size for '"+name+"' must be a constant", "var")
		return 0, false
	}
	p.next()

	if value != math.Trunc(value) || value < 1 || value > maxVectorSize {
		p.errorToken(ErrSyntax, tok,
			"invalid size "+tok.Literal+" for vector '"+name+"'", "var")
		return 0, false
	}
	return int(value), true
}

// declareVector allocates (or reactivates) vector storage for name.
func (p *Parser) declareVector(name string, size int, tok lexer.Token) (*ast.Vector, *ScopeElement) {
	if e := p.scope.reusable(name, ElementVector, size, p.state.scopeDepth); e != nil {
		e.Active = true
		return e.Node.(*ast.Vector), e
	}

	storage := make([]float64, size)
	node := &ast.Vector{Name: name, Ref: storage}
	e := &ScopeElement{
		Name:      name,
		Kind:      ElementVector,
		Size:      size,
		Index:     p.scope.nextElementIndex(),
		Depth:     p.state.scopeDepth,
		Active:    true,
		VectorRef: storage,
		Node:      node,
	}
	if !p.scope.addElement(e) {
		p.errorToken(ErrSyntax, tok, "redeclaration of local vector '"+name+"'", "var")
		return nil, nil
	}
	return node, e
}

// parseVectorInitializerList parses "{expr, ...}" with at most size
// elements; the opening brace is already consumed.
func (p *Parser) parseVectorInitializerList(name string, size int) ([]ast.Node, bool) {
	var values []ast.Node
	if p.accept(lexer.TokenRBrace) {
		return values, true
	}
	for {
		value := p.parseExpression(precLowest)
		if value == nil {
			p.errorIfEmpty(ErrSyntax, p.current(),
				"invalid initializer element for vector '"+name+"'", "var")
			return nil, false
		}
		if value.Result() != ast.ValueScalar {
			p.errorHere(ErrSyntax,
				"vector initializer elements for '"+name+"' must be scalar", "var")
			return nil, false
		}
		values = append(values, value)
		if len(values) > size {
			p.errorHere(ErrSyntax,
				"too many initializers for vector '"+name+"' of size "+strconv.Itoa(size), "var")
			return nil, false
		}
		if p.accept(lexer.TokenComma) {
			continue
		}
		break
	}
	if !p.expect(lexer.TokenRBrace, "vector initializer") {
		return nil, false
	}
	return values, true
}

// dropFreshElement deactivates an element whose declaration failed
// after allocation so it cannot leak into later resolution.
func (p *Parser) dropFreshElement(e *ScopeElement) {
	if e != nil {
		e.Active = false
	}
}

// parseSwap parses swap(a, b) where each operand is a mutable
// variable, string variable, vector or vector element. The specialized
// scalar form is marked when both operands are plain variables.
func (p *Parser) parseSwap() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("swap") {
		p.errorToken(ErrSyntax, tok, "swap statement is disabled", "swap")
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenLParen, "swap statement") {
		return nil
	}

	a := p.parseSwapOperand()
	if a == nil {
		return nil
	}
	if !p.expect(lexer.TokenComma, "swap statement") {
		return nil
	}
	b := p.parseSwapOperand()
	if b == nil {
		return nil
	}
	if !p.expect(lexer.TokenRParen, "swap statement") {
		return nil
	}

	if av, aIsVec := a.(*ast.Vector); aIsVec {
		if bv, bIsVec := b.(*ast.Vector); bIsVec && av.Size() != bv.Size() {
			p.errorToken(ErrSyntax, tok,
				"cannot swap vectors '"+av.Name+"' and '"+bv.Name+"' of differing sizes", "swap")
			return nil
		}
	}
	if (a.Result() == ast.ValueString) != (b.Result() == ast.ValueString) ||
		(a.Result() == ast.ValueVector) != (b.Result() == ast.ValueVector) {
		p.errorToken(ErrSyntax, tok, "swap operands must be of the same type", "swap")
		return nil
	}

	p.state.sideEffectPresent = true
	scalar := a.Kind() == ast.KindVariable && b.Kind() == ast.KindVariable
	return &ast.Swap{A: a, B: b, Scalar: scalar}
}

// parseSwapOperand resolves one swap operand to mutable storage.
func (p *Parser) parseSwapOperand() ast.Node {
	tok := p.current()
	if tok.Type != lexer.TokenIdentifier {
		p.errorToken(ErrSyntax, tok, "swap operand must be a variable or vector element", "swap")
		return nil
	}
	name := tok.Literal

	if v, table := p.resolver.Variable(name); v != nil {
		if table.IsConstant(name) || v.Immutable {
			p.errorToken(ErrSyntax, tok, "cannot swap read-only symbol '"+name+"'", "swap")
			return nil
		}
		p.next()
		p.deps.RecordSymbol(v.Name, UseVariable)
		return v
	}

	if e := p.scope.getActiveElement(name, p.state.scopeDepth); e.Valid() {
		p.next()
		e.RefCount++
		switch e.Kind {
		case ElementVariable:
			p.deps.RecordSymbol(e.Name, UseVariable)
			return e.Node
		case ElementString:
			p.deps.RecordSymbol(e.Name, UseStringVariable)
			return e.Node
		case ElementVector:
			p.deps.RecordSymbol(e.Name, UseVector)
			return p.parseSwapVectorOperand(e.Node.(*ast.Vector))
		}
	}

	if sv, table := p.resolver.StringVariable(name); sv != nil {
		if table.Immutable() {
			p.errorToken(ErrSyntax, tok, "cannot swap read-only symbol '"+name+"'", "swap")
			return nil
		}
		p.next()
		p.deps.RecordSymbol(sv.Name, UseStringVariable)
		return sv
	}

	if vec, table := p.resolver.Vector(name); vec != nil {
		if table.Immutable() {
			p.errorToken(ErrSyntax, tok, "cannot swap read-only symbol '"+name+"'", "swap")
			return nil
		}
		p.next()
		p.deps.RecordSymbol(vec.Name, UseVector)
		return p.parseSwapVectorOperand(vec)
	}

	p.errorToken(ErrSyntax, tok, "swap operand '"+name+"' is not a variable", "swap")
	return nil
}

// parseSwapVectorOperand handles the optional element subscript on a
// vector swap operand.
func (p *Parser) parseSwapVectorOperand(vec *ast.Vector) ast.Node {
	if p.current().Type != lexer.TokenLBracket {
		return vec
	}
	open := p.current()
	p.next()

	index := p.parseExpression(precLowest)
	if index == nil {
		p.errorIfEmpty(ErrSyntax, open, "invalid vector index in swap operand", "swap")
		return nil
	}
	if !p.expect(lexer.TokenRBracket, "swap operand") {
		return nil
	}
	if value, constant := ast.ConstantValue(index); constant {
		if value != math.Trunc(value) || value < 0 || int(value) >= vec.Size() {
			p.errorToken(ErrSyntax, open,
				"vector index out of range for '"+vec.Name+"' of size "+strconv.Itoa(vec.Size()), "swap")
			return nil
		}
	}
	return &ast.VectorElem{Vec: vec, Index: index}
}
