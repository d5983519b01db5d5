package parser

import (
	"testing"

	"github.com/calyx-lang/calyx/internal/ast"
)

func newScalarElement(name string, index, depth int) *ScopeElement {
	ref := new(float64)
	return &ScopeElement{
		Name:      name,
		Kind:      ElementVariable,
		Size:      1,
		Index:     index,
		Depth:     depth,
		Active:    true,
		ScalarRef: ref,
		Node:      &ast.Variable{Name: name, Ref: ref},
	}
}

func TestScopeElementLifecycle(t *testing.T) {
	sm := newScopeManager()
	e := newScalarElement("x", sm.nextElementIndex(), 1)
	if !sm.addElement(e) {
		t.Fatal("addElement rejected a fresh element")
	}

	if got := sm.getActiveElement("x", 1); !got.Valid() {
		t.Fatal("active element not found at its own depth")
	}
	if got := sm.getActiveElement("X", 2); !got.Valid() {
		t.Error("case-folded lookup from a deeper scope failed")
	}
	if got := sm.getActiveElement("x", 0); got.Valid() {
		t.Error("element visible above its declaration depth")
	}

	// Scope exit deactivates without releasing storage.
	sm.deactivate(1)
	if sm.getActiveElement("x", 1).Valid() {
		t.Error("deactivated element still resolves")
	}
	if e.ScalarRef == nil {
		t.Error("deactivation released storage")
	}

	// A redeclaration of the same shape reactivates the slot.
	r := sm.reusable("X", ElementVariable, 1, 1)
	if r != e {
		t.Fatalf("reusable returned %v, want the deactivated element", r)
	}
	r.Active = true
	if !sm.getActiveElement("x", 1).Valid() {
		t.Error("reactivated element does not resolve")
	}
}

func TestScopeDuplicateRejection(t *testing.T) {
	sm := newScopeManager()
	a := newScalarElement("x", 0, 1)
	if !sm.addElement(a) {
		t.Fatal("first element rejected")
	}
	dup := newScalarElement("X", 0, 1)
	if sm.addElement(dup) {
		t.Error("colliding element accepted")
	}
	if len(sm.elements) != 1 {
		t.Errorf("element count = %d after rejected add, want 1", len(sm.elements))
	}
}

func TestScopeElementOrdering(t *testing.T) {
	sm := newScopeManager()
	sm.addElement(newScalarElement("b", 1, 2))
	sm.addElement(newScalarElement("a", 0, 1))
	input := newScalarElement("p", 2, 1)
	input.IPIndex = sm.nextInputIndex()
	sm.addElement(input)

	// Sorted by (ip_index, depth, index, name): plain locals carry
	// ip_index zero and precede input parameters; within a group the
	// shallower declaration sorts first.
	got := make([]string, len(sm.elements))
	for i, e := range sm.elements {
		got[i] = e.Name
	}
	want := []string{"a", "b", "p"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element order = %v, want %v", got, want)
		}
	}
}

func TestScopeCleanup(t *testing.T) {
	sm := newScopeManager()
	e := newScalarElement("x", sm.nextElementIndex(), 1)
	sm.addElement(e)

	sm.cleanup()
	if len(sm.elements) != 0 {
		t.Errorf("elements remain after cleanup: %d", len(sm.elements))
	}
	if e.ScalarRef != nil || e.Node != nil {
		t.Error("cleanup did not release element storage")
	}
	if sm.nextElementIndex() != 0 {
		t.Error("element index not reset by cleanup")
	}
}

func TestScopeTakeStorage(t *testing.T) {
	sm := newScopeManager()
	e := newScalarElement("x", sm.nextElementIndex(), 1)
	sm.addElement(e)

	out := sm.takeStorage()
	if len(out) != 1 || out[0] != e {
		t.Fatalf("takeStorage = %v", out)
	}
	if out[0].ScalarRef == nil {
		t.Error("transferred element lost its storage")
	}
	if len(sm.elements) != 0 {
		t.Error("manager retains elements after ownership transfer")
	}
}

func TestScopeReverseVariableLookup(t *testing.T) {
	sm := newScopeManager()
	e := newScalarElement("x", sm.nextElementIndex(), 1)
	sm.addElement(e)

	if got := sm.getVariable(e.ScalarRef); got != e.Node {
		t.Errorf("getVariable = %v, want the element's node", got)
	}
	other := new(float64)
	if got := sm.getVariable(other); got != nil {
		t.Errorf("getVariable for foreign storage = %v, want nil", got)
	}
}

func TestLocalStorageSharedAcrossPasses(t *testing.T) {
	_, expr := mustCompile(t, "var x := 1; var y := 2; x + y")
	if len(expr.Locals) != 2 {
		t.Fatalf("locals = %d, want 2 (one per name across both passes)", len(expr.Locals))
	}
	names := map[string]bool{}
	for _, l := range expr.Locals {
		names[l.Name] = true
	}
	if !names["x"] || !names["y"] {
		t.Errorf("locals = %v", names)
	}
}

func TestForLoopLocalDeactivation(t *testing.T) {
	// The loop variable leaves scope with the loop but its storage
	// survives until the compile unit is released.
	_, expr := mustCompile(t, "for (var i := 0; i < 3; i += 1) { i }; 7")
	if len(expr.Locals) != 1 {
		t.Fatalf("locals = %d, want 1", len(expr.Locals))
	}
	if expr.Locals[0].ScalarRef == nil {
		t.Error("loop-local storage released before compile-unit end")
	}

	// The name is free again after the loop.
	mustCompile(t, "for (var i := 0; i < 3; i += 1) { i }; var i := 9; i")
}
