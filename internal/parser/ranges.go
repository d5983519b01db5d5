package parser

import (
	"math"
	"strconv"

	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// maxRangeApplications caps the chained [..] applications on a single
// branch.
const maxRangeApplications = 100

// parsePostfix applies any chained bracket suffixes to a string- or
// vector-valued branch: [] size query, [i] element or single-position
// range, [lo:hi] sub-range.
func (p *Parser) parsePostfix(node ast.Node) ast.Node {
	applied := 0
	for node != nil && p.current().Type == lexer.TokenLBracket {
		rk := node.Result()
		if rk != ast.ValueString && rk != ast.ValueVector {
			break
		}
		applied++
		if applied > maxRangeApplications {
			p.errorHere(ErrSyntax,
				"too many chained range applications (limit "+strconv.Itoa(maxRangeApplications)+")", "range")
			return nil
		}
		node = p.parseBracketSuffix(node)
	}
	return node
}

// parseBracketSuffix parses one [..] application on target.
func (p *Parser) parseBracketSuffix(target ast.Node) ast.Node {
	open := p.current()
	p.next()

	if p.accept(lexer.TokenRBracket) {
		return &ast.Size{Target: target}
	}

	var lo ast.RangeBound
	if p.current().Type != lexer.TokenColon {
		expr := p.parseExpression(precLowest)
		if expr == nil {
			p.errorIfEmpty(ErrSyntax, open, "invalid range expression", "range")
			return nil
		}
		bound, ok := p.rangeBound(expr, open)
		if !ok {
			return nil
		}
		lo = bound
	}

	if p.accept(lexer.TokenColon) {
		var hi ast.RangeBound
		if p.current().Type != lexer.TokenRBracket {
			expr := p.parseExpression(precLowest)
			if expr == nil {
				p.errorIfEmpty(ErrSyntax, open, "invalid range expression", "range")
				return nil
			}
			bound, ok := p.rangeBound(expr, open)
			if !ok {
				return nil
			}
			hi = bound
		}
		if !p.expect(lexer.TokenRBracket, "range") {
			return nil
		}
		if !p.checkRangeBounds(target, lo, hi, open) {
			return nil
		}
		return &ast.Range{Target: target, Lo: lo, Hi: hi}
	}

	// Single index form.
	if !p.expect(lexer.TokenRBracket, "subscript") {
		return nil
	}
	if vec, isVec := target.(*ast.Vector); isVec {
		if lo.Known && lo.Value >= vec.Size() {
			p.errorToken(ErrSyntax, open,
				"vector index "+strconv.Itoa(lo.Value)+" out of range for '"+vec.Name+
					"' of size "+strconv.Itoa(vec.Size()), "subscript")
			return nil
		}
		return &ast.VectorElem{Vec: vec, Index: boundExpr(lo)}
	}
	// A single position on any other string- or vector-valued
	// expression is the degenerate range [i:i].
	return &ast.Range{Target: target, Lo: lo, Hi: lo}
}

// rangeBound classifies a bound expression: compile-time constants are
// validated (integral, non-negative) and frozen, everything else is
// deferred to evaluation.
func (p *Parser) rangeBound(expr ast.Node, tok lexer.Token) (ast.RangeBound, bool) {
	if value, constant := ast.ConstantValue(expr); constant {
		if value != math.Trunc(value) {
			p.errorToken(ErrSyntax, tok, "range bound must be an integral value", "range")
			return ast.RangeBound{}, false
		}
		if value < 0 {
			p.errorToken(ErrSyntax, tok, "range bound must not be negative", "range")
			return ast.RangeBound{}, false
		}
		return ast.RangeBound{Known: true, Value: int(value)}, true
	}
	return ast.RangeBound{Expr: expr}, true
}

// checkRangeBounds validates what can be proven at compile time: bound
// ordering when both ends are constant, and vector upper bounds.
func (p *Parser) checkRangeBounds(target ast.Node, lo, hi ast.RangeBound, tok lexer.Token) bool {
	if lo.Known && hi.Known && lo.Value > hi.Value {
		p.errorToken(ErrSyntax, tok,
			"invalid range: lower bound "+strconv.Itoa(lo.Value)+
				" exceeds upper bound "+strconv.Itoa(hi.Value), "range")
		return false
	}
	if vec, isVec := target.(*ast.Vector); isVec && hi.Known && hi.Value >= vec.Size() {
		p.errorToken(ErrSyntax, tok,
			"range upper bound "+strconv.Itoa(hi.Value)+" out of range for '"+vec.Name+
				"' of size "+strconv.Itoa(vec.Size()), "range")
		return false
	}
	return true
}

// boundExpr returns the node form of a bound for embedding in the tree.
func boundExpr(b ast.RangeBound) ast.Node {
	if b.Known {
		return ast.NewLiteral(float64(b.Value))
	}
	return b.Expr
}
