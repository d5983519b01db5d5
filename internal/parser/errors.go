package parser

import (
	"fmt"

	"github.com/calyx-lang/calyx/internal/lexer"
	"github.com/calyx-lang/calyx/internal/position"
)

// ErrorCategory classifies a diagnostic.
type ErrorCategory int

// Error categories.
const (
	ErrUnknown ErrorCategory = iota
	ErrSyntax
	ErrToken
	ErrNumeric
	ErrSymtab
	ErrLexer
	ErrHelper
	ErrParser
)

// String returns the category name used in diagnostic dumps.
func (c ErrorCategory) String() string {
	switch c {
	case ErrSyntax:
		return "Syntax"
	case ErrToken:
		return "Token"
	case ErrNumeric:
		return "Numeric"
	case ErrSymtab:
		return "Symtab"
	case ErrLexer:
		return "Lexer"
	case ErrHelper:
		return "Helper"
	case ErrParser:
		return "Parser"
	}
	return "Unknown"
}

// ParseError is one structured diagnostic. LineNo, ColumnNo and
// ErrorLine are filled in by a post-parse enrichment pass that maps the
// token's byte offset back into the original source text.
type ParseError struct {
	Category   ErrorCategory
	Token      lexer.Token
	Diagnostic string
	SourceTag  string

	LineNo    int
	ColumnNo  int
	ErrorLine string
}

// String returns the debug dump form of the diagnostic.
func (e ParseError) String() string {
	return fmt.Sprintf("Position: %02d  Type: [%s]  Msg: %s", e.Token.Offset, e.Category, e.Diagnostic)
}

// update retrofits line/column/line-text from the source. Returns false
// and leaves the fields at their defaults when the token offset does
// not fall inside the source.
func (e *ParseError) update(source *position.SourceFile) bool {
	line, ok := source.LineAt(e.Token.Offset)
	if !ok {
		return false
	}
	pos := source.FromOffset(e.Token.Offset)
	e.LineNo = pos.Line
	e.ColumnNo = pos.Column
	e.ErrorLine = line
	return true
}

// ErrorCollector is the append-only ordered diagnostic list for one
// compile call.
type ErrorCollector struct {
	errors []ParseError
}

// Add appends a diagnostic.
func (ec *ErrorCollector) Add(e ParseError) {
	ec.errors = append(ec.errors, e)
}

// Count returns the number of collected diagnostics.
func (ec *ErrorCollector) Count() int {
	return len(ec.errors)
}

// Empty reports whether no diagnostic has been collected yet.
func (ec *ErrorCollector) Empty() bool {
	return len(ec.errors) == 0
}

// Error returns the first diagnostic's text, or the no-error sentinel.
func (ec *ErrorCollector) Error() string {
	if len(ec.errors) == 0 {
		return "No Error"
	}
	return ec.errors[0].Diagnostic
}

// Get returns the diagnostic at index. An out-of-range index is
// programmer misuse, not user input, and panics.
func (ec *ErrorCollector) Get(index int) ParseError {
	if index < 0 || index >= len(ec.errors) {
		panic(fmt.Sprintf("parser: diagnostic index %d out of range [0,%d)", index, len(ec.errors)))
	}
	return ec.errors[index]
}

// All returns the collected diagnostics in order.
func (ec *ErrorCollector) All() []ParseError {
	return ec.errors
}

// Clear drops all diagnostics; called at the start of each compile.
func (ec *ErrorCollector) Clear() {
	ec.errors = ec.errors[:0]
}

// Enrich maps every diagnostic's token offset to line/column and the
// offending source line.
func (ec *ErrorCollector) Enrich(source string) {
	sf := position.NewSourceFile(source)
	for i := range ec.errors {
		ec.errors[i].update(sf)
	}
}
