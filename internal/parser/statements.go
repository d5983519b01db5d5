package parser

import (
	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// parseScopedBody parses the body of a control structure inside its
// own lexical scope: either a brace-delimited statement sequence or a
// single statement.
func (p *Parser) parseScopedBody(context string) ast.Node {
	leave := p.enterScope()
	defer leave()

	if p.accept(lexer.TokenLBrace) {
		body := p.parseStatementSequence(lexer.TokenRBrace)
		if body == nil {
			return nil
		}
		if !p.expect(lexer.TokenRBrace, context) {
			return nil
		}
		return body
	}

	stmt := p.parseExpression(precLowest)
	if stmt == nil {
		p.errorIfEmpty(ErrSyntax, p.current(), "invalid "+context, context)
	}
	return stmt
}

// parseIf parses both conditional forms: the value form if(c,t,f),
// which behaves as a ternary, and the statement form with an optional
// else or else-if chain.
func (p *Parser) parseIf() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("if") {
		p.errorToken(ErrSyntax, tok, "if statement is disabled", "if")
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenLParen, "if statement") {
		return nil
	}

	cond := p.parseExpression(precLowest)
	if cond == nil {
		p.errorIfEmpty(ErrSyntax, tok, "invalid if condition", "if")
		return nil
	}

	if p.accept(lexer.TokenComma) {
		truePart := p.parseExpression(precLowest)
		if truePart == nil {
			return nil
		}
		if !p.expect(lexer.TokenComma, "conditional") {
			return nil
		}
		falsePart := p.parseExpression(precLowest)
		if falsePart == nil {
			return nil
		}
		if !p.expect(lexer.TokenRParen, "conditional") {
			return nil
		}
		if !p.checkBranchCompatibility(truePart, falsePart, tok, "conditional") {
			return nil
		}
		node := p.synth.Ternary(cond, truePart, falsePart)
		if node == nil {
			p.errorIfEmpty(ErrSyntax, tok, "failed to synthesize conditional", "if")
		}
		return node
	}

	if !p.expect(lexer.TokenRParen, "if statement") {
		return nil
	}

	then := p.parseScopedBody("if body")
	if then == nil {
		return nil
	}

	// A semicolon-terminated single-statement body may still carry an
	// else clause.
	if p.current().Type == lexer.TokenSemicolon && p.peek().Type == lexer.TokenElse {
		p.next()
	}

	var els ast.Node
	if p.accept(lexer.TokenElse) {
		if p.current().Type == lexer.TokenIf {
			els = p.parseIf()
		} else {
			els = p.parseScopedBody("else body")
		}
		if els == nil {
			return nil
		}
	}
	return &ast.Conditional{Cond: cond, Then: then, Else: els}
}

// parseWhile parses a pre-tested loop.
func (p *Parser) parseWhile() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("while") {
		p.errorToken(ErrSyntax, tok, "while loop is disabled", "while")
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenLParen, "while loop") {
		return nil
	}
	cond := p.parseExpression(precLowest)
	if cond == nil {
		p.errorIfEmpty(ErrSyntax, tok, "invalid while condition", "while")
		return nil
	}
	if !p.expect(lexer.TokenRParen, "while loop") {
		return nil
	}

	flag := new(bool)
	leaveLoop := p.enterLoop(flag)
	body := p.parseScopedBody("while loop body")
	leaveLoop()
	if body == nil {
		return nil
	}
	return &ast.While{
		Cond:           cond,
		Body:           body,
		HasBreakOrCont: *flag,
		RuntimeChecked: p.loopCheck != nil,
	}
}

// parseRepeat parses a post-tested repeat..until loop. The body may be
// empty; its locals stay in scope for the until condition.
func (p *Parser) parseRepeat() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("repeat") {
		p.errorToken(ErrSyntax, tok, "repeat loop is disabled", "repeat")
		return nil
	}
	p.next()

	flag := new(bool)
	leaveLoop := p.enterLoop(flag)
	defer leaveLoop()
	leaveScope := p.enterScope()
	defer leaveScope()

	body := p.parseStatementSequence(lexer.TokenUntil)
	if body == nil {
		return nil
	}
	if blk, isBlock := body.(*ast.Block); isBlock && len(blk.Statements) == 0 {
		body = nil
	}

	if !p.expect(lexer.TokenUntil, "repeat loop") {
		return nil
	}
	if !p.expect(lexer.TokenLParen, "repeat loop") {
		return nil
	}
	cond := p.parseExpression(precLowest)
	if cond == nil {
		p.errorIfEmpty(ErrSyntax, tok, "invalid until condition", "repeat")
		return nil
	}
	if !p.expect(lexer.TokenRParen, "repeat loop") {
		return nil
	}
	return &ast.Repeat{
		Body:           body,
		Cond:           cond,
		HasBreakOrCont: *flag,
		RuntimeChecked: p.loopCheck != nil,
	}
}

// parseFor parses a C-style loop. The header scope opens before the
// init section so a loop-declared variable spans condition, post and
// body; the body must be brace-delimited.
func (p *Parser) parseFor() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("for") {
		p.errorToken(ErrSyntax, tok, "for loop is disabled", "for")
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenLParen, "for loop") {
		return nil
	}

	leaveScope := p.enterScope()
	defer leaveScope()

	var init ast.Node
	if !p.accept(lexer.TokenSemicolon) {
		if p.current().Type == lexer.TokenVar {
			init = p.parseVarDeclaration()
		} else {
			init = p.parseExpression(precLowest)
		}
		if init == nil {
			p.errorIfEmpty(ErrSyntax, tok, "invalid for loop initializer", "for")
			return nil
		}
		if !p.expect(lexer.TokenSemicolon, "for loop") {
			return nil
		}
	}

	var cond ast.Node
	if !p.accept(lexer.TokenSemicolon) {
		cond = p.parseExpression(precLowest)
		if cond == nil {
			p.errorIfEmpty(ErrSyntax, tok, "invalid for loop condition", "for")
			return nil
		}
		if !p.expect(lexer.TokenSemicolon, "for loop") {
			return nil
		}
	}

	var post ast.Node
	if p.current().Type != lexer.TokenRParen {
		post = p.parseExpression(precLowest)
		if post == nil {
			p.errorIfEmpty(ErrSyntax, tok, "invalid for loop increment", "for")
			return nil
		}
	}
	if !p.expect(lexer.TokenRParen, "for loop") {
		return nil
	}

	if p.current().Type != lexer.TokenLBrace {
		p.errorHere(ErrSyntax, "for loop requires a brace-delimited body", "for")
		return nil
	}
	p.next()

	flag := new(bool)
	leaveLoop := p.enterLoop(flag)
	body := p.parseStatementSequence(lexer.TokenRBrace)
	leaveLoop()
	if body == nil {
		return nil
	}
	if !p.expect(lexer.TokenRBrace, "for loop body") {
		return nil
	}
	return &ast.For{
		Init:           init,
		Cond:           cond,
		Post:           post,
		Body:           body,
		HasBreakOrCont: *flag,
		RuntimeChecked: p.loopCheck != nil,
	}
}

// parseSwitch parses a first-match switch. Cases whose condition is
// provably false are eliminated at parse time; at most one default
// clause is permitted.
func (p *Parser) parseSwitch() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("switch") {
		p.errorToken(ErrSyntax, tok, "switch statement is disabled", "switch")
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenLBrace, "switch statement") {
		return nil
	}

	var cases []ast.SwitchCase
	var def ast.Node
	sawClause := false

	for {
		if p.accept(lexer.TokenCase) {
			sawClause = true
			c, r, ok := p.parseCaseClause("switch case")
			if !ok {
				return nil
			}
			if !ast.IsFalseConstant(c) {
				cases = append(cases, ast.SwitchCase{Cond: c, Result: r})
			}
			continue
		}
		if p.current().Type == lexer.TokenDefault {
			if def != nil {
				p.errorHere(ErrSyntax, "multiple default clauses in switch statement", "switch")
				return nil
			}
			p.next()
			sawClause = true
			if !p.expect(lexer.TokenColon, "switch default") {
				return nil
			}
			def = p.parseExpression(precLowest)
			if def == nil {
				p.errorIfEmpty(ErrSyntax, tok, "invalid switch default clause", "switch")
				return nil
			}
			if !p.expect(lexer.TokenSemicolon, "switch default") {
				return nil
			}
			continue
		}
		break
	}

	if !p.expect(lexer.TokenRBrace, "switch statement") {
		return nil
	}
	if !sawClause {
		p.errorToken(ErrSyntax, tok, "switch statement has no case or default clauses", "switch")
		return nil
	}
	return &ast.Switch{Cases: cases, Default: def}
}

// parseMultiSwitch parses the [*] switch, which executes every case
// whose condition holds. Default clauses are not permitted.
func (p *Parser) parseMultiSwitch() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("switch") {
		p.errorToken(ErrSyntax, tok, "switch statement is disabled", "switch")
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenLBrace, "[*] switch statement") {
		return nil
	}

	var cases []ast.SwitchCase
	for p.accept(lexer.TokenCase) {
		c, r, ok := p.parseCaseClause("[*] switch case")
		if !ok {
			return nil
		}
		if !ast.IsFalseConstant(c) {
			cases = append(cases, ast.SwitchCase{Cond: c, Result: r})
		}
	}
	if p.current().Type == lexer.TokenDefault {
		p.errorHere(ErrSyntax, "default clause not allowed in [*] switch statement", "switch")
		return nil
	}
	if !p.expect(lexer.TokenRBrace, "[*] switch statement") {
		return nil
	}
	if len(cases) == 0 {
		p.errorToken(ErrSyntax, tok, "[*] switch statement has no case clauses", "switch")
		return nil
	}
	return &ast.MultiSwitch{Cases: cases}
}

// parseCaseClause parses "condition : result ;" after the case
// keyword.
func (p *Parser) parseCaseClause(context string) (cond, result ast.Node, ok bool) {
	cond = p.parseExpression(precLowest)
	if cond == nil {
		p.errorIfEmpty(ErrSyntax, p.current(), "invalid "+context+" condition", "switch")
		return nil, nil, false
	}
	if !p.expect(lexer.TokenColon, context) {
		return nil, nil, false
	}
	result = p.parseExpression(precLowest)
	if result == nil {
		p.errorIfEmpty(ErrSyntax, p.current(), "invalid "+context+" result", "switch")
		return nil, nil, false
	}
	if !p.expect(lexer.TokenSemicolon, context) {
		return nil, nil, false
	}
	return cond, result, true
}

// parseReturn parses return[arg, ...]. Nesting a return inside a
// return's argument list is rejected, as is the bare form when the
// settings disallow it.
func (p *Parser) parseReturn() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("return") {
		p.errorToken(ErrSyntax, tok, "return statement is disabled", "return")
		return nil
	}
	if p.state.parsingReturnStmt {
		p.errorToken(ErrSyntax, tok, "return statement within a return statement", "return")
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenLBracket, "return statement") {
		return nil
	}

	restore := setFlag(&p.state.parsingReturnStmt, true)
	var args []ast.Node
	if p.current().Type != lexer.TokenRBracket {
		for {
			arg := p.parseExpression(precLowest)
			if arg == nil {
				restore()
				p.errorIfEmpty(ErrSyntax, tok, "invalid return argument", "return")
				return nil
			}
			args = append(args, arg)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	}
	restore()

	if !p.expect(lexer.TokenRBracket, "return statement") {
		return nil
	}
	if len(args) == 0 && !p.settings.AllowZeroParameterReturn {
		p.errorToken(ErrSyntax, tok, "zero-argument return statement not allowed", "return")
		return nil
	}

	sig, ok := argumentSignature(args)
	if !ok {
		p.errorToken(ErrSyntax, tok, "unable to determine a return argument type", "return")
		return nil
	}
	p.deps.RecordReturn(sig)
	p.state.sideEffectPresent = true
	return &ast.Return{Args: args, Signature: sig}
}

// parseBreak parses break or break[result]. Legal only inside a loop;
// the enclosing loop is marked as carrying a break.
func (p *Parser) parseBreak() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("break") {
		p.errorToken(ErrSyntax, tok, "break statement is disabled", "break")
		return nil
	}
	if p.state.parsingBreakStmt {
		p.errorToken(ErrSyntax, tok, "break statement within a break value", "break")
		return nil
	}
	if p.state.parsingLoopStmtCount == 0 {
		p.errorToken(ErrSyntax, tok, "break statement outside of a loop", "break")
		return nil
	}
	p.next()

	var result ast.Node
	if p.accept(lexer.TokenLBracket) {
		restore := setFlag(&p.state.parsingBreakStmt, true)
		result = p.parseExpression(precLowest)
		restore()
		if result == nil {
			p.errorIfEmpty(ErrSyntax, tok, "invalid break value", "break")
			return nil
		}
		if !p.expect(lexer.TokenRBracket, "break statement") {
			return nil
		}
	}

	*p.loopFlags[len(p.loopFlags)-1] = true
	return &ast.Break{Value: result}
}

// parseContinue parses continue; legal only inside a loop.
func (p *Parser) parseContinue() ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("continue") {
		p.errorToken(ErrSyntax, tok, "continue statement is disabled", "continue")
		return nil
	}
	if p.state.parsingLoopStmtCount == 0 {
		p.errorToken(ErrSyntax, tok, "continue statement outside of a loop", "continue")
		return nil
	}
	p.next()

	*p.loopFlags[len(p.loopFlags)-1] = true
	return &ast.Continue{}
}
