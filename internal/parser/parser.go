// Package parser implements the Calyx recursive descent parser: the
// grammar driver, block-scoped local symbol lifecycle, multi-table
// symbol resolution, call-site type checking and structured
// diagnostics. Compile is the sole entry point.
package parser

import (
	"strings"

	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
	"github.com/calyx-lang/calyx/internal/symtab"
)

// Expression is the result of a successful compile: the optimized tree
// walked by the evaluator, the unoptimized variant consumed by
// downstream tooling, and the storage handles of every block-local
// declaration, whose ownership transfers here from the parser.
type Expression struct {
	Root            ast.Node
	UnoptimizedRoot ast.Node
	Locals          []*ScopeElement
}

// Value returns the numeric value of a fully folded constant root.
func (e *Expression) Value() (float64, bool) {
	return ast.ConstantValue(e.Root)
}

// UnknownSymbolResolver is consulted when identifier resolution
// exhausts the symbol tables. In default mode Resolve may synthesize a
// new host variable or constant on the fly; in extended mode Process
// is handed the default symbol table, may register anything, and
// resolution is retried exactly once.
type UnknownSymbolResolver struct {
	Extended bool

	// Resolve is used in default mode. constant selects between a
	// host constant and a mutable host variable.
	Resolve func(symbol string) (value float64, constant bool, err error)

	// Process is used in extended mode.
	Process func(symbol string, table *symtab.SymbolTable) error
}

// LoopRuntimeCheck is the host-registered loop iteration limiter. The
// parser only records its presence on loop nodes; enforcement happens
// in the evaluator.
type LoopRuntimeCheck struct {
	MaxIterations uint64
}

// Parser drives one compile at a time. It is not safe for concurrent
// use: scope depth, stack depth, diagnostics and scope-element storage
// are all instance-local and mutated in place. Every Compile call
// resets the transient state on entry.
type Parser struct {
	settings *Settings
	resolver *symtab.Resolver
	synth    *ast.Synthesizer
	scope    *scopeManager
	errs     *ErrorCollector
	deps     *DependentEntityCollector
	stream   *lexer.TokenStream
	state    parserState

	loopFlags       []*bool
	replacements    map[string]string
	unknownResolver *UnknownSymbolResolver
	loopCheck       *LoopRuntimeCheck

	// immutableReads records reads of immutable-table symbols for
	// downstream write protection.
	immutableReads []string
}

// New creates a parser over the given symbol resolution chain.
func New(resolver *symtab.Resolver, settings *Settings) *Parser {
	if resolver == nil {
		resolver = symtab.NewResolver()
	}
	if settings == nil {
		settings = NewSettings()
	}
	return &Parser{
		settings:     settings,
		resolver:     resolver,
		scope:        newScopeManager(),
		errs:         &ErrorCollector{},
		deps:         newDependentEntityCollector(settings),
		replacements: make(map[string]string),
	}
}

// Settings returns the parser's configuration.
func (p *Parser) Settings() *Settings {
	return p.settings
}

// Resolver returns the symbol resolution facade.
func (p *Parser) Resolver() *symtab.Resolver {
	return p.resolver
}

// Dependents returns the dependent-entity collector of the most recent
// parse pass.
func (p *Parser) Dependents() *DependentEntityCollector {
	return p.deps
}

// ImmutableReads lists the immutable-table symbols the last compile
// read, in encounter order.
func (p *Parser) ImmutableReads() []string {
	return p.immutableReads
}

// ====== Hooks ======

// ReplaceSymbol registers a pre-parse substitution of one identifier
// for another symbol or value. Rejected for reserved words and when
// the replacer feature is disabled.
func (p *Parser) ReplaceSymbol(old, replacement string) bool {
	if !p.settings.Has(FeatureReplacer) {
		return false
	}
	if lexer.IsKeyword(old) || lexer.IsKeyword(replacement) {
		return false
	}
	if old == "" || replacement == "" {
		return false
	}
	p.replacements[lexer.FoldCase(old)] = replacement
	return true
}

// RemoveReplaceSymbol drops a registered substitution.
func (p *Parser) RemoveReplaceSymbol(name string) bool {
	if !p.settings.Has(FeatureReplacer) || lexer.IsKeyword(name) {
		return false
	}
	key := lexer.FoldCase(name)
	if _, ok := p.replacements[key]; !ok {
		return false
	}
	delete(p.replacements, key)
	return true
}

// EnableUnknownSymbolResolver installs the unknown-symbol callback.
func (p *Parser) EnableUnknownSymbolResolver(r *UnknownSymbolResolver) {
	p.unknownResolver = r
}

// DisableUnknownSymbolResolver removes the unknown-symbol callback.
func (p *Parser) DisableUnknownSymbolResolver() {
	p.unknownResolver = nil
}

// RegisterLoopRuntimeCheck installs the loop iteration-limit hook.
func (p *Parser) RegisterLoopRuntimeCheck(lrc *LoopRuntimeCheck) {
	p.loopCheck = lrc
}

// ClearLoopRuntimeCheck removes the loop iteration-limit hook.
func (p *Parser) ClearLoopRuntimeCheck() {
	p.loopCheck = nil
}

// ====== Error introspection ======

// ErrorCount returns the number of diagnostics from the last compile.
func (p *Parser) ErrorCount() int {
	return p.errs.Count()
}

// Error returns the first diagnostic's text, or the no-error sentinel.
func (p *Parser) Error() string {
	return p.errs.Error()
}

// GetError returns the diagnostic at index; out of range panics.
func (p *Parser) GetError(index int) ParseError {
	return p.errs.Get(index)
}

// Errors returns the diagnostic collector.
func (p *Parser) Errors() *ErrorCollector {
	return p.errs
}

// ====== Compile ======

// Compile parses source into an Expression. The engine runs two
// strictly sequential passes over the same input: one with the
// configured optimizations, one without, sharing no AST between
// passes. On failure it returns (nil, false) with diagnostics left in
// the collector; no user-input failure surfaces as a panic.
func (p *Parser) Compile(source string) (*Expression, bool) {
	p.errs.Clear()
	p.immutableReads = nil

	if err := p.settings.Validate(); err != nil {
		p.errs.Add(ParseError{Category: ErrParser, Diagnostic: err.Error(), SourceTag: "settings"})
		return nil, false
	}

	optimized := p.parseOnce(source, p.settings.Has(FeatureStrengthReduction))
	if optimized == nil {
		p.scope.cleanup()
		p.errs.Enrich(source)
		return nil, false
	}

	// Locals from the first pass deactivate so the second pass can
	// reuse their storage via redeclaration.
	p.scope.deactivate(0)

	unoptimized := p.parseOnce(source, false)
	if unoptimized == nil {
		p.scope.cleanup()
		p.errs.Enrich(source)
		return nil, false
	}

	locals := p.scope.takeStorage()
	p.errs.Enrich(source)
	return &Expression{
		Root:            optimized,
		UnoptimizedRoot: unoptimized,
		Locals:          locals,
	}, true
}

// parseOnce runs one full parse pass and returns the tree root, or nil
// with diagnostics recorded.
func (p *Parser) parseOnce(source string, optimize bool) ast.Node {
	p.state.reset()
	p.deps.reset()
	p.loopFlags = nil
	p.synth = ast.NewSynthesizer(optimize)

	if strings.TrimSpace(source) == "" {
		p.errs.Add(ParseError{
			Category:   ErrSyntax,
			Diagnostic: "empty expression",
			SourceTag:  "compile",
		})
		return nil
	}

	tokens := lexer.New(source).Tokenize()

	lexFailed := false
	for _, tok := range tokens {
		if tok.Type == lexer.TokenError {
			p.errs.Add(ParseError{Category: ErrLexer, Token: tok, Diagnostic: tok.Literal, SourceTag: "lexer"})
			lexFailed = true
		}
	}
	if lexFailed {
		return nil
	}

	if p.settings.Has(FeatureOperatorJoiner) {
		tokens = lexer.JoinOperators(tokens)
	}
	if p.settings.Has(FeatureReplacer) && len(p.replacements) > 0 {
		tokens = p.applyReplacements(tokens)
	}
	if !p.runTokenChecks(tokens) {
		return nil
	}

	p.stream = lexer.NewTokenStreamFromTokens(tokens)

	root := p.parseStatementSequence(lexer.TokenEOF)
	if root == nil {
		if p.errs.Empty() {
			p.errs.Add(ParseError{
				Category:   ErrSyntax,
				Token:      p.current(),
				Diagnostic: "invalid expression",
				SourceTag:  "compile",
			})
		}
		return nil
	}

	if !p.checkReturnConsistency() {
		return nil
	}
	return root
}

// runTokenChecks executes the enabled pre-parse validators; each
// failure is a Token-category diagnostic.
func (p *Parser) runTokenChecks(tokens []lexer.Token) bool {
	ok := true
	report := func(failures []lexer.CheckFailure, tag string) {
		for _, f := range failures {
			p.errs.Add(ParseError{Category: ErrToken, Token: f.Token, Diagnostic: f.Message, SourceTag: tag})
			ok = false
		}
	}

	if p.settings.Has(FeatureBracketChecker) {
		report(lexer.CheckBrackets(tokens), "bracket_checker")
	}
	if p.settings.Has(FeatureNumericChecker) {
		report(lexer.CheckNumerics(tokens), "numeric_checker")
	}
	if p.settings.Has(FeatureSequenceChecker) {
		report(lexer.CheckSequences(tokens), "sequence_checker")
	}
	return ok
}

// applyReplacements rewrites identifier tokens through the registered
// symbol substitutions.
func (p *Parser) applyReplacements(tokens []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == lexer.TokenIdentifier {
			if repl, found := p.replacements[lexer.FoldCase(tok.Literal)]; found {
				sub := lexer.New(repl).NextToken()
				sub.Offset = tok.Offset
				out = append(out, sub)
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

// checkReturnConsistency cross-checks the argument-kind signatures of
// every return statement in the compile unit.
func (p *Parser) checkReturnConsistency() bool {
	sigs := p.deps.ReturnSignatures()
	for i := 1; i < len(sigs); i++ {
		if sigs[i] != sigs[0] {
			p.errs.Add(ParseError{
				Category:   ErrSyntax,
				Diagnostic: "inconsistent return statement argument types: '" + sigs[0] + "' vs '" + sigs[i] + "'",
				SourceTag:  "return_check",
			})
			return false
		}
	}
	return true
}

// ====== Token cursor helpers ======

func (p *Parser) current() lexer.Token {
	return p.stream.Current()
}

func (p *Parser) peek() lexer.Token {
	return p.stream.Peek()
}

func (p *Parser) next() lexer.Token {
	return p.stream.Next()
}

// accept consumes the current token when it has the given type.
func (p *Parser) accept(tt lexer.TokenType) bool {
	if p.current().Type == tt {
		p.next()
		return true
	}
	return false
}

// expect consumes the current token of the given type or raises a
// Syntax diagnostic naming the construct being parsed.
func (p *Parser) expect(tt lexer.TokenType, context string) bool {
	if p.accept(tt) {
		return true
	}
	p.errorHere(ErrSyntax, "expected "+tt.String()+" while parsing "+context, context)
	return false
}

// ====== Diagnostic helpers ======

// errorHere appends a diagnostic at the current token.
func (p *Parser) errorHere(cat ErrorCategory, msg, tag string) {
	p.errorToken(cat, p.current(), msg, tag)
}

// errorToken appends a diagnostic unconditionally.
func (p *Parser) errorToken(cat ErrorCategory, tok lexer.Token, msg, tag string) {
	p.errs.Add(ParseError{Category: cat, Token: tok, Diagnostic: msg, SourceTag: tag})
}

// errorIfEmpty appends a generic diagnostic only when no more specific
// one has been recorded for the same root failure ("first empty wins").
func (p *Parser) errorIfEmpty(cat ErrorCategory, tok lexer.Token, msg, tag string) {
	if p.errs.Empty() {
		p.errorToken(cat, tok, msg, tag)
	}
}
