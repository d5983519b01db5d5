package parser

// parserState is the per-parse mutable state, reset at the start of
// every compile pass.
type parserState struct {
	scopeDepth int
	stackDepth int

	parsingReturnStmt bool
	parsingBreakStmt  bool

	// sideEffectPresent is sticky within a sub-expression scope; the
	// statement sequencer resets it for each independent statement.
	sideEffectPresent bool

	parsingLoopStmtCount int
}

func (s *parserState) reset() {
	*s = parserState{}
}

// enterScope opens a lexical block. The returned leave function
// deactivates every element declared at or below the block's depth and
// restores the previous depth; pair it with defer.
func (p *Parser) enterScope() func() {
	p.state.scopeDepth++
	depth := p.state.scopeDepth
	return func() {
		p.scope.deactivate(depth)
		p.state.scopeDepth--
	}
}

// enterStack is the recursion guard for expression productions. It
// returns false, raising a Parser-category error, once the configured
// ceiling is exceeded; the caller must return a nil node without
// recursing further.
func (p *Parser) enterStack() bool {
	p.state.stackDepth++
	if p.state.stackDepth > p.settings.MaxStackDepth {
		p.errorHere(ErrParser, "maximum expression nesting depth exceeded", "stack_limit")
		return false
	}
	return true
}

func (p *Parser) leaveStack() {
	p.state.stackDepth--
}

// enterLoop marks a loop-statement context and pushes the loop's
// break/continue flag. The returned leave function restores both.
func (p *Parser) enterLoop(flag *bool) func() {
	p.state.parsingLoopStmtCount++
	p.loopFlags = append(p.loopFlags, flag)
	return func() {
		p.loopFlags = p.loopFlags[:len(p.loopFlags)-1]
		p.state.parsingLoopStmtCount--
	}
}

// setFlag flips a scoped boolean and returns its restorer.
func setFlag(flag *bool, value bool) func() {
	prev := *flag
	*flag = value
	return func() { *flag = prev }
}
