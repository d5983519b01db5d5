package parser

import (
	"strconv"

	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// Binding powers for the precedence-climbing loop, lowest first.
// Assignment is right-associative (rbp == lbp); power likewise binds
// its right operand at its own level.
const (
	precLowest     = 0
	precAssign     = 1
	precOrNor      = 3
	precXor        = 4
	precAndNand    = 5
	precComparison = 7
	precAdditive   = 9
	precMultiplic  = 11
	precPower      = 13
)

// opCategory selects the disable-list diagnostic for an operator.
type opCategory int

const (
	catArithmetic opCategory = iota
	catInequality
	catLogic
	catAssignment
)

type opInfo struct {
	op       ast.Operator
	lbp, rbp int
	category opCategory
}

// binaryOp maps an operator token to its binding powers.
func binaryOp(tt lexer.TokenType) (opInfo, bool) {
	switch tt {
	case lexer.TokenAssign:
		return opInfo{ast.OpAssign, precAssign, precAssign, catAssignment}, true
	case lexer.TokenAddAssign:
		return opInfo{ast.OpAddAssign, precAssign, precAssign, catAssignment}, true
	case lexer.TokenSubAssign:
		return opInfo{ast.OpSubAssign, precAssign, precAssign, catAssignment}, true
	case lexer.TokenMulAssign:
		return opInfo{ast.OpMulAssign, precAssign, precAssign, catAssignment}, true
	case lexer.TokenDivAssign:
		return opInfo{ast.OpDivAssign, precAssign, precAssign, catAssignment}, true
	case lexer.TokenModAssign:
		return opInfo{ast.OpModAssign, precAssign, precAssign, catAssignment}, true
	case lexer.TokenOr:
		return opInfo{ast.OpOr, precOrNor, precOrNor + 1, catLogic}, true
	case lexer.TokenNor:
		return opInfo{ast.OpNor, precOrNor, precOrNor + 1, catLogic}, true
	case lexer.TokenXor:
		return opInfo{ast.OpXor, precXor, precXor + 1, catLogic}, true
	case lexer.TokenXnor:
		return opInfo{ast.OpXnor, precXor, precXor + 1, catLogic}, true
	case lexer.TokenAnd:
		return opInfo{ast.OpAnd, precAndNand, precAndNand + 1, catLogic}, true
	case lexer.TokenNand:
		return opInfo{ast.OpNand, precAndNand, precAndNand + 1, catLogic}, true
	case lexer.TokenEq:
		return opInfo{ast.OpEq, precComparison, precComparison + 1, catInequality}, true
	case lexer.TokenNe:
		return opInfo{ast.OpNe, precComparison, precComparison + 1, catInequality}, true
	case lexer.TokenLt:
		return opInfo{ast.OpLt, precComparison, precComparison + 1, catInequality}, true
	case lexer.TokenLe:
		return opInfo{ast.OpLe, precComparison, precComparison + 1, catInequality}, true
	case lexer.TokenGt:
		return opInfo{ast.OpGt, precComparison, precComparison + 1, catInequality}, true
	case lexer.TokenGe:
		return opInfo{ast.OpGe, precComparison, precComparison + 1, catInequality}, true
	case lexer.TokenPlus:
		return opInfo{ast.OpAdd, precAdditive, precAdditive + 1, catArithmetic}, true
	case lexer.TokenMinus:
		return opInfo{ast.OpSub, precAdditive, precAdditive + 1, catArithmetic}, true
	case lexer.TokenMul:
		return opInfo{ast.OpMul, precMultiplic, precMultiplic + 1, catArithmetic}, true
	case lexer.TokenDiv:
		return opInfo{ast.OpDiv, precMultiplic, precMultiplic + 1, catArithmetic}, true
	case lexer.TokenMod:
		return opInfo{ast.OpMod, precMultiplic, precMultiplic + 1, catArithmetic}, true
	case lexer.TokenPow:
		return opInfo{ast.OpPow, precPower, precPower, catArithmetic}, true
	}
	return opInfo{}, false
}

// checkOperatorEnabled consults the settings disable lists and raises
// a category-specific diagnostic for a disabled operator.
func (p *Parser) checkOperatorEnabled(info opInfo, tok lexer.Token) bool {
	if p.settings.OperatorEnabled(tok.Literal) {
		return true
	}
	var what string
	switch info.category {
	case catLogic:
		what = "logic operator"
	case catInequality:
		what = "inequality operator"
	case catAssignment:
		what = "assignment operator"
	default:
		what = "arithmetic operator"
	}
	p.errorToken(ErrSyntax, tok, what+" '"+tok.Literal+"' is disabled", "operator_check")
	return false
}

// parseExpression is the precedence-climbing driver: one branch, then
// operators whose left binding power reaches minPrec. The ternary
// conditional is recognized only at the outermost level, where the
// finished tree is also checked against the node-depth ceiling.
func (p *Parser) parseExpression(minPrec int) ast.Node {
	if !p.enterStack() {
		return nil
	}
	defer p.leaveStack()

	left := p.parseBranch()
	if left == nil {
		return nil
	}

	for {
		tok := p.current()
		info, isOp := binaryOp(tok.Type)
		if !isOp || info.lbp < minPrec {
			break
		}
		if left.Kind() == ast.KindReturn {
			p.errorToken(ErrSyntax, tok, "return statement cannot be used as a sub-expression", "expression")
			return nil
		}
		if !p.checkOperatorEnabled(info, tok) {
			return nil
		}
		p.next()

		right := p.parseExpression(info.rbp)
		if right == nil {
			p.errorIfEmpty(ErrSyntax, tok, "missing right operand for operator '"+tok.Literal+"'", "expression")
			return nil
		}
		if right.Kind() == ast.KindReturn {
			p.errorToken(ErrSyntax, tok, "return statement cannot be used as a sub-expression", "expression")
			return nil
		}

		var combined ast.Node
		if info.op.IsAssignment() {
			combined = p.synthesizeAssignment(info.op, left, right, tok)
		} else {
			combined = p.synth.Binary(info.op, left, right)
			if combined == nil {
				p.errorIfEmpty(ErrSyntax, tok,
					"failed to synthesize operation '"+tok.Literal+"': incompatible operand types", "expression")
			}
		}
		if combined == nil {
			return nil
		}
		left = combined
	}

	if minPrec == precLowest && p.current().Type == lexer.TokenQuestion {
		left = p.parseTernary(left)
		if left == nil {
			return nil
		}
	}

	if minPrec == precLowest && ast.Depth(left) > p.settings.MaxNodeDepth {
		p.errorHere(ErrSyntax, "expression tree depth exceeds the configured maximum", "expression_depth")
		return nil
	}
	return left
}

// synthesizeAssignment validates the target, records the side effect
// and builds the assignment node.
func (p *Parser) synthesizeAssignment(op ast.Operator, target, value ast.Node, tok lexer.Token) ast.Node {
	if name, immutable, isRef := storageTarget(target); isRef {
		if immutable {
			p.errorToken(ErrSyntax, tok, "cannot assign to read-only symbol '"+name+"'", "assignment")
			return nil
		}
		p.deps.RecordAssignment(name, targetUse(target))
	} else {
		p.errorToken(ErrSyntax, tok, "invalid assignment target", "assignment")
		return nil
	}

	node := p.synth.Assign(op, target, value)
	if node == nil {
		p.errorIfEmpty(ErrSyntax, tok,
			"failed to synthesize assignment '"+tok.Literal+"': incompatible operand types", "assignment")
		return nil
	}
	p.state.sideEffectPresent = true
	return node
}

// storageTarget reports whether n denotes named storage, along with
// its name and write protection.
func storageTarget(n ast.Node) (name string, immutable, ok bool) {
	switch v := n.(type) {
	case *ast.Variable:
		return v.Name, v.Immutable, true
	case *ast.StringVariable:
		return v.Name, v.Immutable, true
	case *ast.Vector:
		return v.Name, v.Immutable, true
	case *ast.VectorElem:
		return v.Vec.Name, v.Vec.Immutable, true
	case *ast.Range:
		return storageTarget(v.Target)
	}
	return "", false, false
}

func targetUse(n ast.Node) SymbolUse {
	switch n.(type) {
	case *ast.StringVariable:
		return UseStringVariable
	case *ast.Vector, *ast.VectorElem:
		return UseVector
	}
	return UseVariable
}

// parseTernary parses cond ? true-part : false-part. Branch results
// must agree on string-ness and vector-ness.
func (p *Parser) parseTernary(cond ast.Node) ast.Node {
	tok := p.current()
	if !p.settings.ControlEnabled("ternary") {
		p.errorToken(ErrSyntax, tok, "ternary conditional is disabled", "ternary")
		return nil
	}
	p.next()

	truePart := p.parseExpression(precLowest)
	if truePart == nil {
		return nil
	}
	if !p.expect(lexer.TokenColon, "ternary conditional") {
		return nil
	}
	falsePart := p.parseExpression(precLowest)
	if falsePart == nil {
		return nil
	}
	if !p.checkBranchCompatibility(truePart, falsePart, tok, "ternary conditional") {
		return nil
	}

	node := p.synth.Ternary(cond, truePart, falsePart)
	if node == nil {
		p.errorIfEmpty(ErrSyntax, tok, "failed to synthesize ternary conditional", "ternary")
	}
	return node
}

// checkBranchCompatibility enforces matching string-or-not and
// vector-or-not result kinds on the two branches of a value-producing
// conditional. Both mismatches are reported when both apply.
func (p *Parser) checkBranchCompatibility(a, b ast.Node, tok lexer.Token, context string) bool {
	ok := true
	if (a.Result() == ast.ValueString) != (b.Result() == ast.ValueString) {
		p.errorToken(ErrSyntax, tok, "branches of "+context+" differ in string result types", context)
		ok = false
	}
	if (a.Result() == ast.ValueVector) != (b.Result() == ast.ValueVector) {
		p.errorToken(ErrSyntax, tok, "branches of "+context+" differ in vector result types", context)
		ok = false
	}
	return ok
}

// parseBranch parses one operand: a literal, a symbol, a grouped
// sub-expression, a unary-signed branch or a statement construct.
func (p *Parser) parseBranch() ast.Node {
	if !p.enterStack() {
		return nil
	}
	defer p.leaveStack()

	tok := p.current()
	var node ast.Node
	adjacency := false

	switch tok.Type {
	case lexer.TokenNumber:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorToken(ErrNumeric, tok, "failed to convert numeric literal '"+tok.Literal+"'", "literal")
			return nil
		}
		p.next()
		node = ast.NewLiteral(value)
		adjacency = true

	case lexer.TokenString:
		p.next()
		node = &ast.StringLiteral{Value: tok.Literal}

	case lexer.TokenIdentifier:
		node = p.parseSymbol()
		adjacency = true

	case lexer.TokenTrue:
		p.next()
		node = ast.NewLiteral(1)

	case lexer.TokenFalse:
		p.next()
		node = ast.NewLiteral(0)

	case lexer.TokenNull:
		p.next()
		node = &ast.Null{}

	case lexer.TokenMinus:
		p.next()
		operand := p.parseBranch()
		if operand == nil {
			return nil
		}
		node = p.synth.Unary(ast.OpNeg, operand)
		if node == nil {
			p.errorIfEmpty(ErrSyntax, tok, "invalid operand for unary negation", "unary")
		}

	case lexer.TokenPlus:
		p.next()
		operand := p.parseBranch()
		if operand == nil {
			return nil
		}
		node = p.synth.Unary(ast.OpPos, operand)
		if node == nil {
			p.errorIfEmpty(ErrSyntax, tok, "invalid operand for unary plus", "unary")
		}

	case lexer.TokenNot:
		if !p.settings.OperatorEnabled("not") {
			p.errorToken(ErrSyntax, tok, "logic operator 'not' is disabled", "operator_check")
			return nil
		}
		p.next()
		operand := p.parseBranch()
		if operand == nil {
			return nil
		}
		node = p.synth.Unary(ast.OpNot, operand)
		if node == nil {
			p.errorIfEmpty(ErrSyntax, tok, "invalid operand for logical not", "unary")
		}

	case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
		node = p.parseGrouped(tok)
		adjacency = true

	case lexer.TokenIf:
		node = p.parseIf()
	case lexer.TokenWhile:
		node = p.parseWhile()
	case lexer.TokenRepeat:
		node = p.parseRepeat()
	case lexer.TokenFor:
		node = p.parseFor()
	case lexer.TokenSwitch:
		node = p.parseSwitch()
	case lexer.TokenMultiSwitch:
		node = p.parseMultiSwitch()
	case lexer.TokenVar:
		node = p.parseVarDeclaration()
	case lexer.TokenSwap:
		node = p.parseSwap()
	case lexer.TokenReturn:
		node = p.parseReturn()
	case lexer.TokenBreak:
		node = p.parseBreak()
	case lexer.TokenContinue:
		node = p.parseContinue()

	case lexer.TokenEOF:
		p.errorToken(ErrSyntax, tok, "premature end of expression", "branch")
		return nil

	default:
		if lexer.IsKeyword(tok.Literal) {
			p.errorToken(ErrSyntax, tok, "reserved word '"+tok.Literal+"' cannot be used here", "branch")
			return nil
		}
		p.errorToken(ErrSyntax, tok, "unexpected token '"+tok.Literal+"'", "branch")
		return nil
	}

	if node == nil {
		return nil
	}

	node = p.parsePostfix(node)
	if node == nil {
		return nil
	}

	if adjacency && p.current().IsOpening() {
		if !p.settings.Has(FeatureCommutativeCheck) {
			p.errorHere(ErrSyntax, "invalid adjacency: expected an operator before '"+p.current().Literal+"'", "commutative_check")
			return nil
		}
		// Synthesize the implicit multiplication between adjacent
		// terms via lookahead insertion.
		p.stream.Insert(lexer.Token{Type: lexer.TokenMul, Literal: "*", Offset: p.current().Offset})
	}
	return node
}

// parseGrouped parses a bracketed sub-expression. The three grouping
// delimiters are interchangeable at this level; the brace form also
// admits a semicolon-separated statement sequence.
func (p *Parser) parseGrouped(opener lexer.Token) ast.Node {
	closer := lexer.MatchingCloser(opener.Type)
	p.next()

	node := p.parseStatementSequence(closer)
	if node == nil {
		return nil
	}
	if !p.expect(closer, "grouped expression") {
		return nil
	}
	return node
}

// parseStatementSequence parses semicolon-separated statements up to
// (not consuming) the terminator. A single statement stays unwrapped;
// multiple statements form a block whose result is the last statement.
func (p *Parser) parseStatementSequence(terminator lexer.TokenType) ast.Node {
	var (
		stmts []ast.Node
		pure  []bool
	)

	for {
		for p.accept(lexer.TokenSemicolon) {
		}
		if p.current().Type == terminator || p.current().Type == lexer.TokenEOF {
			break
		}

		// Each independent statement starts with a clean side-effect
		// scope; the flag is sticky within the statement.
		p.state.sideEffectPresent = false

		stmt := p.parseExpression(precLowest)
		if stmt == nil {
			p.errorIfEmpty(ErrSyntax, p.current(), "invalid statement", "statement_sequence")
			return nil
		}
		stmts = append(stmts, stmt)
		pure = append(pure, !p.state.sideEffectPresent)

		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		if p.current().Type == terminator || p.current().Type == lexer.TokenEOF {
			break
		}
		if selfDelimiting(stmt) {
			continue
		}
		p.errorHere(ErrSyntax, "expected ';' between statements", "statement_sequence")
		return nil
	}

	// A non-final constant statement with no side effects contributes
	// nothing to the sequence result and is dropped.
	if len(stmts) > 1 {
		kept := make([]ast.Node, 0, len(stmts))
		for i, s := range stmts[:len(stmts)-1] {
			if pure[i] && constantStatement(s) {
				continue
			}
			kept = append(kept, s)
		}
		stmts = append(kept, stmts[len(stmts)-1])
	}

	switch len(stmts) {
	case 0:
		if terminator == lexer.TokenEOF {
			p.errorHere(ErrSyntax, "empty expression", "statement_sequence")
			return nil
		}
		return &ast.Block{}
	case 1:
		return stmts[0]
	default:
		return &ast.Block{Statements: stmts}
	}
}

// constantStatement reports whether a statement is a bare compile-time
// constant, whose evaluation cannot be observed.
func constantStatement(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindLiteral, ast.KindStringLiteral:
		return true
	}
	return false
}

// selfDelimiting reports whether a statement form terminates itself
// (brace-bodied constructs) and needs no trailing semicolon.
func selfDelimiting(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindConditional, ast.KindWhile, ast.KindRepeat, ast.KindFor,
		ast.KindSwitch, ast.KindMultiSwitch:
		return true
	}
	return false
}
