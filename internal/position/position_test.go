package position

import "testing"

// TestFromOffset tests offset to line/column mapping.
func TestFromOffset(t *testing.T) {
	sf := NewSourceFile("ab\ncde\nf")

	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{5, 2, 3},
		{7, 3, 1},
	}

	for _, tt := range tests {
		pos := sf.FromOffset(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("offset %d: expected %d:%d, got %d:%d",
				tt.offset, tt.line, tt.column, pos.Line, pos.Column)
		}
	}

	if sf.FromOffset(-1).IsValid() {
		t.Error("negative offset should be invalid")
	}
	if sf.FromOffset(100).IsValid() {
		t.Error("out-of-range offset should be invalid")
	}
}

// TestLineAt tests source line extraction.
func TestLineAt(t *testing.T) {
	sf := NewSourceFile("first\nsecond\nthird")

	line, ok := sf.LineAt(8)
	if !ok || line != "second" {
		t.Errorf("expected \"second\", got %q (%v)", line, ok)
	}
	line, ok = sf.LineAt(0)
	if !ok || line != "first" {
		t.Errorf("expected \"first\", got %q (%v)", line, ok)
	}
	if _, ok := sf.LineAt(100); ok {
		t.Error("out-of-range offset should fail")
	}
}
