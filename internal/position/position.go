// Package position provides source position tracking for Calyx
// diagnostics: byte offset to line/column mapping and source line
// extraction for caret rendering.
package position

import "fmt"

// Position represents a single point in source code.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset in source
}

// IsValid returns true if the position is valid.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceFile wraps source text for position queries.
type SourceFile struct {
	Content string
}

// NewSourceFile creates a source file from content.
func NewSourceFile(content string) *SourceFile {
	return &SourceFile{Content: content}
}

// FromOffset converts a byte offset to a Position. An out-of-range
// offset yields the zero (invalid) Position.
func (sf *SourceFile) FromOffset(offset int) Position {
	if offset < 0 || offset > len(sf.Content) {
		return Position{}
	}

	line, column := 1, 1
	for i := 0; i < offset; i++ {
		if sf.Content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return Position{Line: line, Column: column, Offset: offset}
}

// LineAt returns the full source line containing the byte offset,
// found by scanning backward to the previous newline and forward to
// the next one. Returns false for an out-of-range offset.
func (sf *SourceFile) LineAt(offset int) (string, bool) {
	if offset < 0 || offset >= len(sf.Content) {
		return "", false
	}

	begin := offset
	for begin > 0 && sf.Content[begin-1] != '\n' {
		begin--
	}
	end := offset
	for end < len(sf.Content) && sf.Content[end] != '\n' {
		end++
	}
	return sf.Content[begin:end], true
}
