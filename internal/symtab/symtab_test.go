package symtab

import "testing"

// TestAddAndLookup tests basic registration and case-insensitive
// resolution.
func TestAddAndLookup(t *testing.T) {
	st := NewSymbolTable()

	if !st.AddVariable("Alpha", 1.5) {
		t.Fatal("AddVariable failed")
	}
	if !st.AddStringVariable("msg", "hi") {
		t.Fatal("AddStringVariable failed")
	}
	if !st.AddVector("vec", make([]float64, 4)) {
		t.Fatal("AddVector failed")
	}

	for _, name := range []string{"alpha", "ALPHA", "Alpha"} {
		v := st.Variable(name)
		if v == nil {
			t.Fatalf("Variable(%q) returned nil", name)
		}
		if *v.Ref != 1.5 {
			t.Errorf("Variable(%q) value: expected 1.5, got %v", name, *v.Ref)
		}
	}

	if st.StringVariable("MSG") == nil {
		t.Error("string variable lookup should fold case")
	}
	if st.Vector("VEC") == nil {
		t.Error("vector lookup should fold case")
	}
}

// TestSharedNodes verifies repeated lookups return the same node.
func TestSharedNodes(t *testing.T) {
	st := NewSymbolTable()
	st.AddVariable("x", 0)

	if st.Variable("x") != st.Variable("X") {
		t.Error("expected the same variable node for both lookups")
	}
}

// TestRejections tests registration failure cases.
func TestRejections(t *testing.T) {
	st := NewSymbolTable()
	st.AddVariable("x", 0)

	if st.AddVariable("x", 1) {
		t.Error("duplicate variable should be rejected")
	}
	if st.AddStringVariable("X", "v") {
		t.Error("cross-container duplicate should be rejected")
	}
	if st.AddVariable("while", 0) {
		t.Error("reserved word should be rejected")
	}
	if st.AddVariable("", 0) {
		t.Error("empty name should be rejected")
	}

	var inert *SymbolTable
	if inert.AddVariable("y", 0) {
		t.Error("inert table should reject registration")
	}
	if inert.Valid() {
		t.Error("nil table should be invalid")
	}
}

// TestConstants tests constant registration and flags.
func TestConstants(t *testing.T) {
	st := NewSymbolTable()
	st.AddConstant("pi", 3.14159)

	if !st.IsConstant("PI") {
		t.Error("IsConstant should fold case")
	}
	v := st.Variable("pi")
	if v == nil || !v.Immutable {
		t.Error("constant variable should be immutable")
	}
}

// TestImmutableTable verifies immutable tables mark their symbols.
func TestImmutableTable(t *testing.T) {
	st := NewImmutableSymbolTable()
	st.AddVariable("x", 1)
	st.AddStringVariable("s", "v")
	st.AddVector("v", make([]float64, 2))

	if !st.Variable("x").Immutable {
		t.Error("variable in immutable table should be immutable")
	}
	if !st.StringVariable("s").Immutable {
		t.Error("string in immutable table should be immutable")
	}
	if !st.Vector("v").Immutable {
		t.Error("vector in immutable table should be immutable")
	}
}

// TestResolverOrder verifies first-match-wins over the table chain.
func TestResolverOrder(t *testing.T) {
	first := NewSymbolTable()
	second := NewSymbolTable()
	first.AddVariable("x", 1)
	second.AddVariable("x", 2)
	second.AddVariable("y", 3)

	r := NewResolver(first, second)

	v, owner := r.Variable("x")
	if v == nil || *v.Ref != 1 {
		t.Fatal("expected x from the first table")
	}
	if owner != first {
		t.Error("expected the first table as owner")
	}

	v, owner = r.Variable("y")
	if v == nil || *v.Ref != 3 || owner != second {
		t.Error("expected y from the second table")
	}

	if v, _ := r.Variable("z"); v != nil {
		t.Error("missing symbol should resolve to nil")
	}
}

// TestResolverPredicates tests the existence predicates.
func TestResolverPredicates(t *testing.T) {
	st := NewSymbolTable()
	st.AddVariable("x", 0)
	st.AddStringVariable("s", "")
	st.AddVector("v", make([]float64, 2))
	st.AddScalarFunction(&ScalarFunction{Name: "f", Arity: 1})
	st.AddGenericFunction(&GenericFunction{Name: "g", Prototypes: "TT"})

	r := NewResolver(st)

	if !r.IsVariable("x") || r.IsVariable("s") {
		t.Error("IsVariable misclassified")
	}
	if !r.IsStringVariable("s") || r.IsStringVariable("x") {
		t.Error("IsStringVariable misclassified")
	}
	if !r.IsVector("v") || r.IsVector("x") {
		t.Error("IsVector misclassified")
	}
	if !r.IsFunction("f") || !r.IsFunction("g") || r.IsFunction("x") {
		t.Error("IsFunction misclassified")
	}
	if !r.SymbolExists("X") || !r.SymbolExists("while") || r.SymbolExists("nope") {
		t.Error("SymbolExists misclassified")
	}
}
