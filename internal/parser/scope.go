package parser

import (
	"sort"

	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// ElementKind classifies a block-local declaration.
type ElementKind int

// Element kinds.
const (
	ElementNone ElementKind = iota
	ElementVariable
	ElementVector
	ElementVectorElem
	ElementString
)

// nullElementName poisons the sentinel element so no real symbol can
// ever match it.
const nullElementName = "\x00null\x00"

// ScopeElement is one block-local declaration: its identity, scope
// bookkeeping, owned storage and wrapper AST leaf.
type ScopeElement struct {
	Name     string
	Kind     ElementKind
	Size     int
	Index    int
	Depth    int
	IPIndex  int
	RefCount int
	Active   bool

	ScalarRef *float64
	VectorRef []float64
	StringRef *string
	Node      ast.Node
}

// Valid reports whether the element is a real declaration rather than
// the not-found sentinel.
func (e *ScopeElement) Valid() bool {
	return e != nil && e.Name != nullElementName && e.Kind != ElementNone
}

// reset returns the element to its default unused state.
func (e *ScopeElement) reset() {
	*e = ScopeElement{Name: nullElementName}
}

// scopeManager owns storage for every block-local variable, vector and
// string declared inside the compile unit. Scope exit deactivates
// elements without freeing storage; storage is released once, in bulk,
// when the compile unit is cleaned up or handed to the finished
// expression.
type scopeManager struct {
	elements   []*ScopeElement
	nextIndex  int
	inputIndex int
	sentinel   ScopeElement
}

func newScopeManager() *scopeManager {
	sm := &scopeManager{}
	sm.sentinel.reset()
	return sm
}

// sortElements re-establishes the (ip_index, depth, index, name)
// ordering invariant.
func (sm *scopeManager) sortElements() {
	sort.SliceStable(sm.elements, func(i, j int) bool {
		a, b := sm.elements[i], sm.elements[j]
		if a.IPIndex != b.IPIndex {
			return a.IPIndex < b.IPIndex
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return lexer.FoldCase(a.Name) < lexer.FoldCase(b.Name)
	})
}

// getElement scans declarations reachable from depth, matching name
// case-insensitively. Returns the sentinel when nothing matches.
func (sm *scopeManager) getElement(name string, depth int) *ScopeElement {
	key := lexer.FoldCase(name)
	for _, e := range sm.elements {
		if e.Depth <= depth && lexer.FoldCase(e.Name) == key {
			return e
		}
	}
	return &sm.sentinel
}

// getElementByIndex additionally matches the element index.
func (sm *scopeManager) getElementByIndex(name string, index, depth int) *ScopeElement {
	key := lexer.FoldCase(name)
	for _, e := range sm.elements {
		if e.Depth <= depth && e.Index == index && lexer.FoldCase(e.Name) == key {
			return e
		}
	}
	return &sm.sentinel
}

// getActiveElement is getElement restricted to active declarations.
func (sm *scopeManager) getActiveElement(name string, depth int) *ScopeElement {
	key := lexer.FoldCase(name)
	for _, e := range sm.elements {
		if e.Active && e.Depth <= depth && lexer.FoldCase(e.Name) == key {
			return e
		}
	}
	return &sm.sentinel
}

// addElement appends a declaration unless an active, depth-reachable
// element collides on (name, kind, size, index). No mutation happens
// on rejection.
func (sm *scopeManager) addElement(elem *ScopeElement) bool {
	key := lexer.FoldCase(elem.Name)
	for _, e := range sm.elements {
		if e.Active &&
			e.Depth <= elem.Depth &&
			e.Index == elem.Index &&
			e.Size == elem.Size &&
			e.Kind == elem.Kind &&
			lexer.FoldCase(e.Name) == key {
			return false
		}
	}
	sm.elements = append(sm.elements, elem)
	sm.sortElements()
	return true
}

// reusable finds a deactivated element that a redeclaration of the
// same name, kind and size at the same depth may reactivate, avoiding
// reallocation.
func (sm *scopeManager) reusable(name string, kind ElementKind, size, depth int) *ScopeElement {
	key := lexer.FoldCase(name)
	for _, e := range sm.elements {
		if !e.Active &&
			e.Depth == depth &&
			e.Kind == kind &&
			e.Size == size &&
			lexer.FoldCase(e.Name) == key {
			return e
		}
	}
	return nil
}

// deactivate flips off every element at or below the closing scope.
// Storage is intentionally left intact.
func (sm *scopeManager) deactivate(minDepth int) {
	for _, e := range sm.elements {
		if e.Depth >= minDepth {
			e.Active = false
		}
	}
}

// freeElement releases the element's owned storage and resets it.
func (sm *scopeManager) freeElement(e *ScopeElement) {
	e.ScalarRef = nil
	e.VectorRef = nil
	e.StringRef = nil
	e.Node = nil
	e.reset()
}

// cleanup releases all element storage and resets the counters; called
// when a compile fails before ownership transfers to the expression.
func (sm *scopeManager) cleanup() {
	for _, e := range sm.elements {
		sm.freeElement(e)
	}
	sm.elements = nil
	sm.nextIndex = 0
	sm.inputIndex = 0
}

// takeStorage transfers every element (and thereby its storage) to the
// finished expression and resets the manager for the next compile.
func (sm *scopeManager) takeStorage() []*ScopeElement {
	out := sm.elements
	sm.elements = nil
	sm.nextIndex = 0
	sm.inputIndex = 0
	return out
}

// getVariable recovers the live variable leaf whose storage address
// equals ref; the reverse lookup used during algebraic simplification
// of unary negation.
func (sm *scopeManager) getVariable(ref *float64) ast.Node {
	for _, e := range sm.elements {
		if e.Active && e.Kind == ElementVariable && e.ScalarRef == ref {
			return e.Node
		}
	}
	return nil
}

// nextElementIndex allocates the next declaration index.
func (sm *scopeManager) nextElementIndex() int {
	idx := sm.nextIndex
	sm.nextIndex++
	return idx
}

// nextInputIndex allocates the next input-parameter index; its order
// later orders a function's formal parameters.
func (sm *scopeManager) nextInputIndex() int {
	sm.inputIndex++
	return sm.inputIndex
}
