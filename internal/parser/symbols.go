package parser

import (
	"strconv"

	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
	"github.com/calyx-lang/calyx/internal/symtab"
)

// parseSymbol resolves the identifier under the cursor through the
// fixed precedence chain: host scalar variable, active block-local,
// host string variable, the five function categories, host vector,
// then the optional unknown-symbol resolver.
func (p *Parser) parseSymbol() ast.Node {
	tok := p.current()
	name := tok.Literal

	if v, table := p.resolver.Variable(name); v != nil {
		p.next()
		p.deps.RecordSymbol(v.Name, UseVariable)
		if table.IsConstant(name) {
			// Registered constants dissolve into literals.
			return ast.NewLiteral(*v.Ref)
		}
		if table.Immutable() {
			p.recordImmutableRead(v.Name)
		}
		return v
	}

	if e := p.scope.getActiveElement(name, p.state.scopeDepth); e.Valid() {
		p.next()
		e.RefCount++
		switch e.Kind {
		case ElementVariable:
			p.deps.RecordSymbol(e.Name, UseVariable)
		case ElementString:
			p.deps.RecordSymbol(e.Name, UseStringVariable)
		case ElementVector:
			p.deps.RecordSymbol(e.Name, UseVector)
		}
		return e.Node
	}

	if sv, table := p.resolver.StringVariable(name); sv != nil {
		p.next()
		p.deps.RecordSymbol(sv.Name, UseStringVariable)
		if table.Immutable() {
			p.recordImmutableRead(sv.Name)
		}
		return sv
	}

	if f := p.resolver.ScalarFunction(name); f != nil {
		return p.parseScalarCall(f, tok)
	}
	if f := p.resolver.VarArgFunction(name); f != nil {
		return p.parseVarArgCall(f, tok)
	}
	if f := p.resolver.GenericFunction(name); f != nil {
		return p.parseCheckedCall(f.Name, f.Prototypes, ast.CallGeneric, tok)
	}
	if f := p.resolver.StringFunction(name); f != nil {
		return p.parseCheckedCall(f.Name, f.Prototypes, ast.CallString, tok)
	}
	if f := p.resolver.OverloadFunction(name); f != nil {
		return p.parseCheckedCall(f.Name, f.Prototypes, ast.CallOverload, tok)
	}

	if v, table := p.resolver.Vector(name); v != nil {
		p.next()
		p.deps.RecordSymbol(v.Name, UseVector)
		if table.Immutable() {
			p.recordImmutableRead(v.Name)
		}
		return v
	}

	if p.unknownResolver != nil {
		return p.resolveUnknownSymbol(name, tok)
	}

	p.errorToken(ErrSymtab, tok, "undefined symbol '"+name+"'", "symbol")
	return nil
}

// recordImmutableRead notes a read of an immutable-table symbol, once
// per distinct name.
func (p *Parser) recordImmutableRead(name string) {
	for _, n := range p.immutableReads {
		if n == name {
			return
		}
	}
	p.immutableReads = append(p.immutableReads, name)
}

// checkFunctionEnabled consults the settings function disable list.
func (p *Parser) checkFunctionEnabled(name string, tok lexer.Token) bool {
	if p.settings.FunctionEnabled(name) {
		return true
	}
	p.errorToken(ErrSyntax, tok, "function '"+name+"' is disabled", "function_check")
	return false
}

// parseScalarCall parses a fixed-arity numeric function invocation.
// Zero-arity functions may be invoked bare or with an empty argument
// list.
func (p *Parser) parseScalarCall(f *symtab.ScalarFunction, tok lexer.Token) ast.Node {
	if !p.checkFunctionEnabled(f.Name, tok) {
		return nil
	}
	p.next()
	p.deps.RecordSymbol(f.Name, UseFunction)
	p.state.sideEffectPresent = true

	if f.Arity == 0 {
		if p.accept(lexer.TokenLParen) && !p.expect(lexer.TokenRParen, "function call") {
			return nil
		}
		return &ast.Call{Name: f.Name, Category: ast.CallScalar, Ret: ast.ValueScalar, Prototype: -1}
	}

	args, ok := p.parseArgumentList(f.Name)
	if !ok {
		return nil
	}
	if len(args) != f.Arity {
		p.errorToken(ErrSyntax, tok,
			"invalid number of arguments for function '"+f.Name+"': expected "+
				strconv.Itoa(f.Arity)+", got "+strconv.Itoa(len(args)), "function_call")
		return nil
	}
	for _, a := range args {
		if a.Result() != ast.ValueScalar {
			p.errorToken(ErrSyntax, tok,
				"function '"+f.Name+"' accepts only scalar arguments", "function_call")
			return nil
		}
	}
	return &ast.Call{Name: f.Name, Category: ast.CallScalar, Args: args, Ret: ast.ValueScalar, Prototype: -1}
}

// parseVarArgCall parses a variable-argument numeric function
// invocation; at least one argument is required.
func (p *Parser) parseVarArgCall(f *symtab.VarArgFunction, tok lexer.Token) ast.Node {
	if !p.checkFunctionEnabled(f.Name, tok) {
		return nil
	}
	p.next()
	p.deps.RecordSymbol(f.Name, UseFunction)
	p.state.sideEffectPresent = true

	args, ok := p.parseArgumentList(f.Name)
	if !ok {
		return nil
	}
	if len(args) == 0 {
		p.errorToken(ErrSyntax, tok,
			"function '"+f.Name+"' requires at least one argument", "function_call")
		return nil
	}
	for _, a := range args {
		if a.Result() != ast.ValueScalar {
			p.errorToken(ErrSyntax, tok,
				"function '"+f.Name+"' accepts only scalar arguments", "function_call")
			return nil
		}
	}
	return &ast.Call{Name: f.Name, Category: ast.CallVarArg, Args: args, Ret: ast.ValueScalar, Prototype: -1}
}

// parseCheckedCall parses a generic, string or overloaded function
// invocation and validates the observed argument-kind sequence against
// the declared prototypes.
func (p *Parser) parseCheckedCall(name, prototypes string, category ast.CallCategory, tok lexer.Token) ast.Node {
	if !p.checkFunctionEnabled(name, tok) {
		return nil
	}

	tc, err := NewTypeChecker(prototypes, category == ast.CallOverload)
	if err != nil {
		p.errorToken(ErrSymtab, tok,
			"invalid prototype declaration for function '"+name+"': "+err.Error(), "function_call")
		return nil
	}

	p.next()
	p.deps.RecordSymbol(name, UseFunction)
	p.state.sideEffectPresent = true

	args, ok := p.parseArgumentList(name)
	if !ok {
		return nil
	}

	observed, ok := argumentSignature(args)
	if !ok {
		p.errorToken(ErrSyntax, tok,
			"unable to determine an argument type for function '"+name+"'", "function_call")
		return nil
	}
	if len(args) == 0 && tc.PrototypeCount() > 0 && !tc.AllowZeroParameters() {
		p.errorToken(ErrSyntax, tok,
			"zero-argument calls to function '"+name+"' are not allowed", "function_call")
		return nil
	}

	index, matched := tc.Verify(observed)
	if !matched {
		p.errorToken(ErrSyntax, tok, tc.Explain(name, observed), "function_call")
		return nil
	}

	ret := ast.ValueScalar
	switch category {
	case ast.CallString:
		ret = ast.ValueString
	case ast.CallOverload:
		ret = tc.ReturnKind(index)
	}
	return &ast.Call{Name: name, Category: category, Args: args, Ret: ret, Prototype: index}
}

// parseArgumentList parses a parenthesized, comma-separated argument
// list; the empty list "()" is returned as zero arguments.
func (p *Parser) parseArgumentList(name string) ([]ast.Node, bool) {
	if !p.expect(lexer.TokenLParen, "call of function '"+name+"'") {
		return nil, false
	}
	if p.accept(lexer.TokenRParen) {
		return nil, true
	}

	var args []ast.Node
	for {
		arg := p.parseExpression(precLowest)
		if arg == nil {
			p.errorIfEmpty(ErrSyntax, p.current(),
				"invalid argument in call of function '"+name+"'", "function_call")
			return nil, false
		}
		args = append(args, arg)
		if p.accept(lexer.TokenComma) {
			continue
		}
		break
	}
	if !p.expect(lexer.TokenRParen, "call of function '"+name+"'") {
		return nil, false
	}
	return args, true
}

// argumentSignature renders the argument result kinds as the
// {T,S,V} sequence the type checker consumes.
func argumentSignature(args []ast.Node) (string, bool) {
	buf := make([]byte, len(args))
	for i, a := range args {
		switch a.Result() {
		case ast.ValueScalar:
			buf[i] = 'T'
		case ast.ValueString:
			buf[i] = 'S'
		case ast.ValueVector:
			buf[i] = 'V'
		default:
			return "", false
		}
	}
	return string(buf), true
}

// resolveUnknownSymbol drives the host's unknown-symbol callback. In
// default mode the callback supplies a value and mutability and a host
// symbol is materialized in the default table; in extended mode the
// callback registers what it wants and resolution is retried once.
func (p *Parser) resolveUnknownSymbol(name string, tok lexer.Token) ast.Node {
	r := p.unknownResolver

	if r.Extended {
		if r.Process == nil {
			p.errorToken(ErrSymtab, tok,
				"extended unknown-symbol resolver has no process callback", "unknown_symbol")
			return nil
		}
		if err := r.Process(name, p.resolver.DefaultTable()); err != nil {
			p.errorToken(ErrSymtab, tok,
				"unknown-symbol resolver failed for '"+name+"': "+err.Error(), "unknown_symbol")
			return nil
		}
		// One retry with the resolver sidelined so an unproductive
		// callback cannot loop.
		p.unknownResolver = nil
		node := p.parseSymbol()
		p.unknownResolver = r
		return node
	}

	if r.Resolve == nil {
		p.errorToken(ErrSymtab, tok,
			"unknown-symbol resolver has no resolve callback", "unknown_symbol")
		return nil
	}
	value, constant, err := r.Resolve(name)
	if err != nil {
		p.errorToken(ErrSymtab, tok,
			"unknown-symbol resolver failed for '"+name+"': "+err.Error(), "unknown_symbol")
		return nil
	}

	table := p.resolver.DefaultTable()
	var added bool
	if constant {
		added = table.AddConstant(name, value)
	} else {
		added = table.AddVariable(name, value)
	}
	if !added {
		p.errorToken(ErrSymtab, tok,
			"unknown-symbol resolver could not create symbol '"+name+"'", "unknown_symbol")
		return nil
	}

	p.next()
	p.deps.RecordSymbol(name, UseVariable)
	if constant {
		return ast.NewLiteral(value)
	}
	v, _ := p.resolver.Variable(name)
	return v
}
