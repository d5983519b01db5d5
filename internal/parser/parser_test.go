package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/symtab"
)

func compileWith(t *testing.T, source string, tables ...*symtab.SymbolTable) (*Parser, *Expression, bool) {
	t.Helper()
	p := New(symtab.NewResolver(tables...), nil)
	expr, ok := p.Compile(source)
	return p, expr, ok
}

func mustCompile(t *testing.T, source string, tables ...*symtab.SymbolTable) (*Parser, *Expression) {
	t.Helper()
	p, expr, ok := compileWith(t, source, tables...)
	if !ok {
		t.Fatalf("compile of %q failed: %s", source, p.Error())
	}
	return p, expr
}

func mustFail(t *testing.T, source string, tables ...*symtab.SymbolTable) *Parser {
	t.Helper()
	p, _, ok := compileWith(t, source, tables...)
	if ok {
		t.Fatalf("compile of %q unexpectedly succeeded", source)
	}
	if p.ErrorCount() == 0 {
		t.Fatalf("compile of %q failed without diagnostics", source)
	}
	return p
}

func constValue(t *testing.T, expr *Expression) float64 {
	t.Helper()
	v, ok := expr.Value()
	if !ok {
		t.Fatalf("expected a constant-folded root, got %s", expr.Root)
	}
	return v
}

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 2 - 3", 5},
		{"2 ^ 3 ^ 2", 512},
		{"-3 + 5", 2},
		{"100 / 4 / 5", 5},
		{"7 % 4", 3},
		{"1 < 2 and 3 > 2", 1},
		{"1 == 1 xor 1 == 2", 1},
		{"not 0", 1},
		{"0 ? 3 : 4", 4},
		{"1 ? 3 : 4", 3},
		{"true + false", 1},
		{"2(3 + 1)", 8},
		{"(2)(3)", 6},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, expr := mustCompile(t, tt.source)
			if got := constValue(t, expr); got != tt.want {
				t.Errorf("value of %q = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestUnoptimizedTreeKeepsShape(t *testing.T) {
	_, expr := mustCompile(t, "2 + 3 * 4")
	if expr.Root.Kind() != ast.KindLiteral {
		t.Errorf("optimized root kind = %v, want literal", expr.Root.Kind())
	}
	if expr.UnoptimizedRoot.Kind() != ast.KindBinary {
		t.Errorf("unoptimized root kind = %v, want binary", expr.UnoptimizedRoot.Kind())
	}
}

func TestStringConcatenationFolds(t *testing.T) {
	_, expr := mustCompile(t, "'abc' + 'def'")
	lit, ok := expr.Root.(*ast.StringLiteral)
	if !ok {
		t.Fatalf("root = %s, want string literal", expr.Root)
	}
	if lit.Value != "abcdef" {
		t.Errorf("folded value = %q, want %q", lit.Value, "abcdef")
	}
}

func TestEmptyExpression(t *testing.T) {
	for _, source := range []string{"", "   ", "\n\t"} {
		p := mustFail(t, source)
		if p.Error() != "empty expression" {
			t.Errorf("Compile(%q) error = %q, want %q", source, p.Error(), "empty expression")
		}
		if p.GetError(0).Category != ErrSyntax {
			t.Errorf("Compile(%q) category = %v, want syntax", source, p.GetError(0).Category)
		}
	}
}

func TestUndefinedSymbol(t *testing.T) {
	p := mustFail(t, "mystery + 1")
	if p.GetError(0).Category != ErrSymtab {
		t.Errorf("category = %v, want symtab", p.GetError(0).Category)
	}
	if !strings.Contains(p.Error(), "undefined symbol 'mystery'") {
		t.Errorf("diagnostic = %q", p.Error())
	}
}

func TestHostVariables(t *testing.T) {
	st := symtab.NewSymbolTable()
	st.AddVariable("x", 5)
	st.AddConstant("half", 0.5)

	t.Run("variable reference", func(t *testing.T) {
		_, expr := mustCompile(t, "x + 1", st)
		if expr.Root.Kind() != ast.KindBinary {
			t.Errorf("root kind = %v, want binary", expr.Root.Kind())
		}
	})

	t.Run("constant folds as literal", func(t *testing.T) {
		_, expr := mustCompile(t, "half * 4", st)
		if got := constValue(t, expr); got != 2 {
			t.Errorf("value = %v, want 2", got)
		}
	})

	t.Run("assignment to constant rejected", func(t *testing.T) {
		mustFail(t, "half := 2", st)
	})

	t.Run("case-insensitive lookup", func(t *testing.T) {
		mustCompile(t, "X + HALF", st)
	})
}

func TestImmutableTable(t *testing.T) {
	st := symtab.NewImmutableSymbolTable()
	st.AddVariable("rate", 0.07)

	p, _ := mustCompile(t, "rate * 100", st)
	reads := p.ImmutableReads()
	if len(reads) != 1 || reads[0] != "rate" {
		t.Errorf("immutable reads = %v, want [rate]", reads)
	}

	p2 := mustFail(t, "rate := 2", st)
	if !strings.Contains(p2.Error(), "read-only") {
		t.Errorf("diagnostic = %q", p2.Error())
	}
}

func TestLocalVariableDeclarations(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		_, expr := mustCompile(t, "var x := 2; x + 3")
		if len(expr.Locals) != 1 {
			t.Fatalf("locals = %d, want 1", len(expr.Locals))
		}
		if expr.Locals[0].Name != "x" || expr.Locals[0].Kind != ElementVariable {
			t.Errorf("local = %+v", expr.Locals[0])
		}
	})

	t.Run("string", func(t *testing.T) {
		_, expr := mustCompile(t, "var s := 'abc'; s")
		if len(expr.Locals) != 1 || expr.Locals[0].Kind != ElementString {
			t.Fatalf("locals = %+v", expr.Locals)
		}
	})

	t.Run("null initializer", func(t *testing.T) {
		mustCompile(t, "var x := null; x + 1")
	})

	t.Run("redeclaration rejected", func(t *testing.T) {
		mustFail(t, "var x := 1; var x := 2")
	})

	t.Run("host symbol shadowing rejected", func(t *testing.T) {
		st := symtab.NewSymbolTable()
		st.AddVariable("x", 1)
		mustFail(t, "var x := 2", st)
	})

	t.Run("reserved word rejected", func(t *testing.T) {
		mustFail(t, "var while := 2")
	})
}

func TestVectorDeclarations(t *testing.T) {
	t.Run("initializer list", func(t *testing.T) {
		_, expr := mustCompile(t, "var v[3] := {1, 2, 3}; v[1]")
		if len(expr.Locals) != 1 || expr.Locals[0].Kind != ElementVector || expr.Locals[0].Size != 3 {
			t.Fatalf("locals = %+v", expr.Locals)
		}
	})

	t.Run("broadcast", func(t *testing.T) {
		mustCompile(t, "var v[4] := 7; v[0]")
	})

	t.Run("zero filled", func(t *testing.T) {
		mustCompile(t, "var v[2]; v[1]")
	})

	t.Run("too many initializers", func(t *testing.T) {
		p := mustFail(t, "var v[2] := {1, 2, 3}")
		if !strings.Contains(p.Error(), "too many initializers") {
			t.Errorf("diagnostic = %q", p.Error())
		}
	})

	t.Run("constant index out of range", func(t *testing.T) {
		p := mustFail(t, "var v[3]; v[5]")
		if !strings.Contains(p.Error(), "out of range") {
			t.Errorf("diagnostic = %q", p.Error())
		}
	})

	t.Run("invalid size", func(t *testing.T) {
		mustFail(t, "var v[0]")
	})
}

func TestRanges(t *testing.T) {
	t.Run("string range", func(t *testing.T) {
		_, expr := mustCompile(t, "var s := 'hello'; s[1:3]")
		blk := expr.Root.(*ast.Block)
		if blk.Statements[1].Kind() != ast.KindRange {
			t.Errorf("statement kind = %v, want range", blk.Statements[1].Kind())
		}
	})

	t.Run("size query", func(t *testing.T) {
		_, expr := mustCompile(t, "var s := 'hello'; s[]")
		blk := expr.Root.(*ast.Block)
		if blk.Statements[1].Kind() != ast.KindSize {
			t.Errorf("statement kind = %v, want size", blk.Statements[1].Kind())
		}
	})

	t.Run("open bounds", func(t *testing.T) {
		mustCompile(t, "var s := 'hello'; s[:]")
		mustCompile(t, "var s := 'hello'; s[2:]")
		mustCompile(t, "var s := 'hello'; s[:2]")
	})

	t.Run("inverted constant bounds rejected", func(t *testing.T) {
		mustFail(t, "var s := 'abc'; s[2:1]")
	})

	t.Run("vector range upper bound checked", func(t *testing.T) {
		mustFail(t, "var v[3]; v[0:5]")
	})
}

func TestControlStructures(t *testing.T) {
	valid := []string{
		"var x := 1; if (x > 0) { x += 1; } else { x -= 1; }",
		"var x := 1; if (x > 0) x += 1; else x -= 1;",
		"var x := 1; if (x > 0) { 1 } else if (x < 0) { 2 } else { 3 }",
		"var x := 0; if (x > 1, x, -x)",
		"var i := 0; while (i < 10) { i += 1; }",
		"var i := 0; repeat i += 1; until (i > 3)",
		"repeat until (1)",
		"for (var i := 0; i < 3; i += 1) { i }",
		"for (; 0 ;) { 1 }",
		"var x := 2; switch { case x > 1 : 10; case x > 0 : 20; default : 30; }",
		"var x := 2; [*] { case x > 1 : 10; case x > 0 : 20; }",
		"var i := 0; while (i < 10) { i += 1; if (i > 5) { break; } }",
		"var i := 0; while (i < 10) { i += 1; if (i % 2) { continue; } }",
		"var i := 0; while (i < 10) { i += 1; break[i * 2]; }",
	}
	for _, source := range valid {
		t.Run(source, func(t *testing.T) {
			mustCompile(t, source)
		})
	}

	invalid := []struct {
		name   string
		source string
	}{
		{"break outside loop", "break"},
		{"continue outside loop", "continue"},
		{"for body must be braced", "for (var i := 0; i < 3; i += 1) i"},
		{"multiple switch defaults", "switch { case 1 : 2; default : 3; default : 4; }"},
		{"default in multi switch", "[*] { case 1 : 2; default : 3; }"},
		{"empty switch", "switch { }"},
		{"conditional branch type mismatch", "if (1, 'a', 2)"},
		{"ternary branch type mismatch", "1 ? 'a' : 2"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, tt.source)
		})
	}
}

func TestLoopBreakFlag(t *testing.T) {
	_, expr := mustCompile(t, "var i := 0; while (i < 3) { i += 1; break; }")
	blk := expr.Root.(*ast.Block)
	loop, ok := blk.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("statement = %s, want while", blk.Statements[1])
	}
	if !loop.HasBreakOrCont {
		t.Error("loop does not carry the break marker")
	}

	_, expr2 := mustCompile(t, "var i := 0; while (i < 3) { i += 1; }")
	loop2 := expr2.Root.(*ast.Block).Statements[1].(*ast.While)
	if loop2.HasBreakOrCont {
		t.Error("break marker set on a loop without break or continue")
	}
}

func TestBreakCarriesValue(t *testing.T) {
	_, expr := mustCompile(t, "var i := 0; while (i < 10) { i += 1; break[i * 2]; }")
	loop := expr.Root.(*ast.Block).Statements[1].(*ast.While)
	body := loop.Body.(*ast.Block)
	brk, ok := body.Statements[1].(*ast.Break)
	if !ok {
		t.Fatalf("statement = %s, want break", body.Statements[1])
	}
	if brk.Value == nil {
		t.Fatal("break value missing")
	}
	if kids := brk.Children(); len(kids) != 1 || kids[0] != brk.Value {
		t.Errorf("break children = %v, want the value expression", kids)
	}
	if brk.Result() != ast.ValueScalar {
		t.Errorf("break result kind = %v, want scalar", brk.Result())
	}
}

func TestLoopRuntimeCheckMarking(t *testing.T) {
	p := New(symtab.NewResolver(), nil)
	p.RegisterLoopRuntimeCheck(&LoopRuntimeCheck{MaxIterations: 1000})
	expr, ok := p.Compile("var i := 0; while (i < 3) { i += 1; }")
	if !ok {
		t.Fatalf("compile failed: %s", p.Error())
	}
	loop := expr.Root.(*ast.Block).Statements[1].(*ast.While)
	if !loop.RuntimeChecked {
		t.Error("loop not marked runtime checked")
	}
}

func TestReturnStatements(t *testing.T) {
	t.Run("consistent signatures", func(t *testing.T) {
		p, _ := mustCompile(t, "return [1]; return [2]")
		if !p.Dependents().ReturnPresent() {
			t.Error("return not recorded")
		}
	})

	t.Run("mixed argument kinds", func(t *testing.T) {
		_, expr := mustCompile(t, "return [1, 'a']")
		ret := expr.Root.(*ast.Return)
		if ret.Signature != "TS" {
			t.Errorf("signature = %q, want TS", ret.Signature)
		}
	})

	t.Run("inconsistent signatures rejected", func(t *testing.T) {
		p := mustFail(t, "return [1]; return ['a']")
		if !strings.Contains(p.Error(), "inconsistent return statement") {
			t.Errorf("diagnostic = %q", p.Error())
		}
	})

	t.Run("return within return rejected", func(t *testing.T) {
		mustFail(t, "return [return [1]]")
	})

	t.Run("return as operand rejected", func(t *testing.T) {
		mustFail(t, "1 + return [2]")
	})

	t.Run("bare return honors settings", func(t *testing.T) {
		mustCompile(t, "return []")

		s := NewSettings()
		s.AllowZeroParameterReturn = false
		p := New(symtab.NewResolver(), s)
		if _, ok := p.Compile("return []"); ok {
			t.Error("bare return accepted despite settings")
		}
	})
}

func TestFunctionCalls(t *testing.T) {
	st := symtab.NewSymbolTable()
	st.AddScalarFunction(&symtab.ScalarFunction{Name: "clamp", Arity: 3})
	st.AddScalarFunction(&symtab.ScalarFunction{Name: "rnd", Arity: 0})
	st.AddVarArgFunction(&symtab.VarArgFunction{Name: "sum"})
	st.AddGenericFunction(&symtab.GenericFunction{Name: "foo", Prototypes: "TT|TS"})
	st.AddGenericFunction(&symtab.GenericFunction{Name: "any"})
	st.AddStringFunction(&symtab.StringFunction{Name: "join", Prototypes: "SS"})
	st.AddOverloadFunction(&symtab.OverloadFunction{Name: "pick", Prototypes: "T:TT|S:SS"})

	valid := []string{
		"clamp(1, 2, 3)",
		"rnd",
		"rnd()",
		"sum(1, 2, 3)",
		"foo(1, 2)",
		"foo(1, 'a')",
		"any()",
		"any(1, 'a', 2)",
		"var s := join('a', 'b'); s",
		"var s := pick('a', 'b'); s",
		"pick(1, 2) + 1",
	}
	for _, source := range valid {
		t.Run(source, func(t *testing.T) {
			mustCompile(t, source, st)
		})
	}

	t.Run("wrong arity", func(t *testing.T) {
		p := mustFail(t, "clamp(1, 2)", st)
		if !strings.Contains(p.Error(), "invalid number of arguments") {
			t.Errorf("diagnostic = %q", p.Error())
		}
	})

	t.Run("vararg needs arguments", func(t *testing.T) {
		mustFail(t, "sum()", st)
	})

	t.Run("prototype mismatch names best candidate", func(t *testing.T) {
		p := mustFail(t, "foo('a', 1)", st)
		if !strings.Contains(p.Error(), "failed parameter type check") {
			t.Errorf("diagnostic = %q", p.Error())
		}
	})

	t.Run("overload return kind", func(t *testing.T) {
		mustFail(t, "pick('a', 'b') + 1", st)
	})
}

func TestSwap(t *testing.T) {
	st := symtab.NewSymbolTable()
	st.AddVariable("a", 1)
	st.AddVariable("b", 2)
	st.AddVector("v", make([]float64, 3))
	st.AddVector("w", make([]float64, 4))

	t.Run("scalar form", func(t *testing.T) {
		_, expr := mustCompile(t, "swap(a, b)", st)
		sw := expr.Root.(*ast.Swap)
		if !sw.Scalar {
			t.Error("scalar swap not specialized")
		}
	})

	t.Run("vector elements", func(t *testing.T) {
		_, expr := mustCompile(t, "swap(v[0], v[2])", st)
		if expr.Root.(*ast.Swap).Scalar {
			t.Error("element swap wrongly marked scalar")
		}
	})

	t.Run("mismatched vector sizes", func(t *testing.T) {
		mustFail(t, "swap(v, w)", st)
	})

	t.Run("mixed operand types", func(t *testing.T) {
		mustFail(t, "swap(a, v)", st)
	})
}

func TestNestingGuards(t *testing.T) {
	t.Run("stack ceiling", func(t *testing.T) {
		deep := strings.Repeat("(", 450) + "1" + strings.Repeat(")", 450)
		p := mustFail(t, deep)
		if p.GetError(0).Category != ErrParser {
			t.Errorf("category = %v, want parser", p.GetError(0).Category)
		}
	})

	t.Run("raised ceiling admits the same input", func(t *testing.T) {
		deep := strings.Repeat("(", 450) + "1" + strings.Repeat(")", 450)
		s := NewSettings()
		s.MaxStackDepth = 4000
		p := New(symtab.NewResolver(), s)
		if _, ok := p.Compile(deep); !ok {
			t.Errorf("compile failed: %s", p.Error())
		}
	})
}

func TestSettingsDisables(t *testing.T) {
	t.Run("operator", func(t *testing.T) {
		s := NewSettings()
		s.DisableOperator("+")
		p := New(symtab.NewResolver(), s)
		if _, ok := p.Compile("1 + 2"); ok {
			t.Fatal("disabled operator accepted")
		}
		if !strings.Contains(p.Error(), "disabled") {
			t.Errorf("diagnostic = %q", p.Error())
		}
		if _, ok := p.Compile("1 - 2"); !ok {
			t.Errorf("unrelated operator rejected: %s", p.Error())
		}
	})

	t.Run("control structure", func(t *testing.T) {
		s := NewSettings()
		s.DisableControlStructure("while")
		p := New(symtab.NewResolver(), s)
		if _, ok := p.Compile("while (1) { 2 }"); ok {
			t.Fatal("disabled control structure accepted")
		}
	})

	t.Run("function", func(t *testing.T) {
		st := symtab.NewSymbolTable()
		st.AddScalarFunction(&symtab.ScalarFunction{Name: "f", Arity: 1})
		s := NewSettings()
		s.DisableBaseFunction("f")
		p := New(symtab.NewResolver(st), s)
		if _, ok := p.Compile("f(1)"); ok {
			t.Fatal("disabled function accepted")
		}
	})
}

func TestLanguageConstraint(t *testing.T) {
	s := NewSettings()
	s.LanguageConstraint = ">= 1.0.0, < 2.0.0"
	p := New(symtab.NewResolver(), s)
	if _, ok := p.Compile("1 + 1"); !ok {
		t.Fatalf("satisfiable constraint rejected: %s", p.Error())
	}

	s2 := NewSettings()
	s2.LanguageConstraint = ">= 2.0.0"
	p2 := New(symtab.NewResolver(), s2)
	if _, ok := p2.Compile("1 + 1"); ok {
		t.Fatal("unsatisfiable constraint accepted")
	}
	if p2.GetError(0).Category != ErrParser {
		t.Errorf("category = %v, want parser", p2.GetError(0).Category)
	}
}

func TestImplicitMultiplicationDisabled(t *testing.T) {
	s := NewSettings()
	s.Disable(FeatureCommutativeCheck)
	p := New(symtab.NewResolver(), s)
	if _, ok := p.Compile("2(3)"); ok {
		t.Fatal("adjacency accepted with commutative check disabled")
	}
	if !strings.Contains(p.Error(), "invalid adjacency") {
		t.Errorf("diagnostic = %q", p.Error())
	}
}

func TestSymbolReplacement(t *testing.T) {
	p := New(symtab.NewResolver(), nil)
	if !p.ReplaceSymbol("answer", "42") {
		t.Fatal("replacement registration failed")
	}
	expr, ok := p.Compile("answer / 2")
	if !ok {
		t.Fatalf("compile failed: %s", p.Error())
	}
	if got := constValue(t, expr); got != 21 {
		t.Errorf("value = %v, want 21", got)
	}

	if p.ReplaceSymbol("while", "1") {
		t.Error("reserved word accepted as replacement source")
	}
	if !p.RemoveReplaceSymbol("answer") {
		t.Error("removal of registered replacement failed")
	}
	if p.RemoveReplaceSymbol("answer") {
		t.Error("removal of unregistered replacement succeeded")
	}
}

func TestUnknownSymbolResolver(t *testing.T) {
	t.Run("default mode constant", func(t *testing.T) {
		p := New(symtab.NewResolver(), nil)
		p.EnableUnknownSymbolResolver(&UnknownSymbolResolver{
			Resolve: func(symbol string) (float64, bool, error) {
				return 7, true, nil
			},
		})
		expr, ok := p.Compile("q + 1")
		if !ok {
			t.Fatalf("compile failed: %s", p.Error())
		}
		if got := constValue(t, expr); got != 8 {
			t.Errorf("value = %v, want 8", got)
		}
	})

	t.Run("default mode variable", func(t *testing.T) {
		p := New(symtab.NewResolver(), nil)
		p.EnableUnknownSymbolResolver(&UnknownSymbolResolver{
			Resolve: func(symbol string) (float64, bool, error) {
				return 3, false, nil
			},
		})
		if _, ok := p.Compile("q * 2"); !ok {
			t.Fatalf("compile failed: %s", p.Error())
		}
		if !p.Resolver().IsVariable("q") {
			t.Error("resolved variable not registered")
		}
	})

	t.Run("resolver failure", func(t *testing.T) {
		p := New(symtab.NewResolver(), nil)
		p.EnableUnknownSymbolResolver(&UnknownSymbolResolver{
			Resolve: func(symbol string) (float64, bool, error) {
				return 0, false, errors.New("nope")
			},
		})
		if _, ok := p.Compile("q"); ok {
			t.Fatal("failing resolver accepted")
		}
		if p.GetError(0).Category != ErrSymtab {
			t.Errorf("category = %v, want symtab", p.GetError(0).Category)
		}
	})

	t.Run("extended mode", func(t *testing.T) {
		p := New(symtab.NewResolver(), nil)
		p.EnableUnknownSymbolResolver(&UnknownSymbolResolver{
			Extended: true,
			Process: func(symbol string, table *symtab.SymbolTable) error {
				table.AddStringVariable(symbol, "hi")
				return nil
			},
		})
		if _, ok := p.Compile("var s := w; s"); !ok {
			t.Fatalf("compile failed: %s", p.Error())
		}
		if !p.Resolver().IsStringVariable("w") {
			t.Error("processed symbol not registered")
		}
	})

	t.Run("disabled resolver", func(t *testing.T) {
		p := New(symtab.NewResolver(), nil)
		p.EnableUnknownSymbolResolver(&UnknownSymbolResolver{
			Resolve: func(symbol string) (float64, bool, error) { return 1, true, nil },
		})
		p.DisableUnknownSymbolResolver()
		if _, ok := p.Compile("q"); ok {
			t.Fatal("unknown symbol accepted without resolver")
		}
	})
}

func TestDependentEntityCollection(t *testing.T) {
	st := symtab.NewSymbolTable()
	st.AddVariable("x", 1)
	st.AddVariable("y", 2)
	st.AddScalarFunction(&symtab.ScalarFunction{Name: "f", Arity: 1})

	s := NewSettings()
	s.Enable(FeatureCollectVariables | FeatureCollectFunctions | FeatureCollectAssignments)
	p := New(symtab.NewResolver(st), s)
	if _, ok := p.Compile("x := y + f(x)"); !ok {
		t.Fatalf("compile failed: %s", p.Error())
	}

	symbols := p.Dependents().Symbols()
	if len(symbols) != 3 {
		t.Fatalf("symbols = %v, want x, y and f", symbols)
	}
	assignments := p.Dependents().Assignments()
	if len(assignments) != 1 || assignments[0].Name != "x" {
		t.Errorf("assignments = %v, want [x]", assignments)
	}
}

func TestErrorEnrichment(t *testing.T) {
	p := mustFail(t, "1 +\n@")
	err := p.GetError(0)
	if err.Category != ErrLexer {
		t.Fatalf("category = %v, want lexer", err.Category)
	}
	if err.LineNo != 2 || err.ColumnNo != 1 {
		t.Errorf("position = %d:%d, want 2:1", err.LineNo, err.ColumnNo)
	}
	if err.ErrorLine != "@" {
		t.Errorf("error line = %q, want %q", err.ErrorLine, "@")
	}
}

func TestErrorCollectorAccess(t *testing.T) {
	p := New(symtab.NewResolver(), nil)
	if p.Error() != "No Error" {
		t.Errorf("pristine error = %q, want sentinel", p.Error())
	}
	defer func() {
		if recover() == nil {
			t.Error("out-of-range GetError did not panic")
		}
	}()
	p.GetError(0)
}

func TestCompileReusesParser(t *testing.T) {
	p := New(symtab.NewResolver(), nil)
	if _, ok := p.Compile("1 +"); ok {
		t.Fatal("malformed input accepted")
	}
	expr, ok := p.Compile("1 + 2")
	if !ok {
		t.Fatalf("recompile failed: %s", p.Error())
	}
	if p.ErrorCount() != 0 {
		t.Errorf("stale diagnostics: %d", p.ErrorCount())
	}
	if got := constValue(t, expr); got != 3 {
		t.Errorf("value = %v, want 3", got)
	}
}

func TestConstantStatementElimination(t *testing.T) {
	t.Run("constants before the final statement drop", func(t *testing.T) {
		_, expr := mustCompile(t, "3; 'junk'; 4")
		if expr.Root.Kind() != ast.KindLiteral {
			t.Errorf("root = %s, want the final literal alone", expr.Root)
		}
		if v, ok := expr.Value(); !ok || v != 4 {
			t.Errorf("Value() = (%g, %v), want (4, true)", v, ok)
		}
	})

	t.Run("side-effecting statements survive", func(t *testing.T) {
		st := symtab.NewSymbolTable()
		st.AddVariable("x", 0)
		_, expr := mustCompile(t, "x := 2; 4", st)
		blk, ok := expr.Root.(*ast.Block)
		if !ok || len(blk.Statements) != 2 {
			t.Fatalf("root = %s, want a two-statement block", expr.Root)
		}
	})

	t.Run("declarations survive before a final constant", func(t *testing.T) {
		_, expr := mustCompile(t, "var x := 1; 9")
		blk, ok := expr.Root.(*ast.Block)
		if !ok || len(blk.Statements) != 2 {
			t.Fatalf("root = %s, want a two-statement block", expr.Root)
		}
	})
}

func TestStatementSequencing(t *testing.T) {
	t.Run("missing semicolon", func(t *testing.T) {
		mustFail(t, "1 2")
	})

	t.Run("trailing semicolons ignored", func(t *testing.T) {
		mustCompile(t, "1 + 2;;;")
	})

	t.Run("brace body needs no semicolon", func(t *testing.T) {
		mustCompile(t, "var x := 1; if (x) { 1 } x + 1")
	})
}
