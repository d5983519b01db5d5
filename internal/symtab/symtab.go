package symtab

import (
	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// SymbolTable owns host-registered symbols: scalar variables, string
// variables, vectors, and the five function categories. All name
// lookups are case-insensitive; names are stored folded. A table
// created immutable marks every contained variable, string and vector
// read-only, which the parser honors with write protection.
type SymbolTable struct {
	valid     bool
	immutable bool

	variables map[string]*ast.Variable
	strings   map[string]*ast.StringVariable
	vectors   map[string]*ast.Vector
	constants map[string]bool

	scalarFuncs   map[string]*ScalarFunction
	varargFuncs   map[string]*VarArgFunction
	genericFuncs  map[string]*GenericFunction
	stringFuncs   map[string]*StringFunction
	overloadFuncs map[string]*OverloadFunction
}

// NewSymbolTable creates a mutable symbol table.
func NewSymbolTable() *SymbolTable {
	return newTable(false)
}

// NewImmutableSymbolTable creates a table whose variables, strings and
// vectors are read-only at every call site.
func NewImmutableSymbolTable() *SymbolTable {
	return newTable(true)
}

func newTable(immutable bool) *SymbolTable {
	return &SymbolTable{
		valid:         true,
		immutable:     immutable,
		variables:     make(map[string]*ast.Variable),
		strings:       make(map[string]*ast.StringVariable),
		vectors:       make(map[string]*ast.Vector),
		constants:     make(map[string]bool),
		scalarFuncs:   make(map[string]*ScalarFunction),
		varargFuncs:   make(map[string]*VarArgFunction),
		genericFuncs:  make(map[string]*GenericFunction),
		stringFuncs:   make(map[string]*StringFunction),
		overloadFuncs: make(map[string]*OverloadFunction),
	}
}

// Valid reports whether the table has usable storage. The zero value
// is an inert placeholder that every lookup skips.
func (st *SymbolTable) Valid() bool {
	return st != nil && st.valid
}

// Immutable reports whether the table's storage is read-only.
func (st *SymbolTable) Immutable() bool {
	return st.immutable
}

// nameOK rejects empty names and reserved words.
func nameOK(name string) bool {
	return name != "" && !lexer.IsKeyword(name)
}

// AddVariable registers scalar storage under name. Returns false for a
// reserved word or a name already present in any container.
func (st *SymbolTable) AddVariable(name string, value float64) bool {
	if !st.Valid() || !nameOK(name) || st.SymbolExists(name) {
		return false
	}
	key := lexer.FoldCase(name)
	ref := new(float64)
	*ref = value
	st.variables[key] = &ast.Variable{Name: name, Ref: ref, Immutable: st.immutable}
	return true
}

// AddConstant registers a named constant; references to it are wrapped
// as literal nodes by the parser.
func (st *SymbolTable) AddConstant(name string, value float64) bool {
	if !st.AddVariable(name, value) {
		return false
	}
	key := lexer.FoldCase(name)
	st.constants[key] = true
	st.variables[key].Immutable = true
	return true
}

// AddStringVariable registers string storage under name.
func (st *SymbolTable) AddStringVariable(name string, value string) bool {
	if !st.Valid() || !nameOK(name) || st.SymbolExists(name) {
		return false
	}
	ref := new(string)
	*ref = value
	st.strings[lexer.FoldCase(name)] = &ast.StringVariable{Name: name, Ref: ref, Immutable: st.immutable}
	return true
}

// AddVector registers vector storage under name. The table aliases the
// given slice; the host retains element access.
func (st *SymbolTable) AddVector(name string, data []float64) bool {
	if !st.Valid() || !nameOK(name) || st.SymbolExists(name) || len(data) == 0 {
		return false
	}
	st.vectors[lexer.FoldCase(name)] = &ast.Vector{Name: name, Ref: data, Immutable: st.immutable}
	return true
}

// AddScalarFunction registers a fixed-arity numeric function.
func (st *SymbolTable) AddScalarFunction(f *ScalarFunction) bool {
	if !st.Valid() || f == nil || !nameOK(f.Name) || st.SymbolExists(f.Name) {
		return false
	}
	st.scalarFuncs[lexer.FoldCase(f.Name)] = f
	return true
}

// AddVarArgFunction registers a variable-argument numeric function.
func (st *SymbolTable) AddVarArgFunction(f *VarArgFunction) bool {
	if !st.Valid() || f == nil || !nameOK(f.Name) || st.SymbolExists(f.Name) {
		return false
	}
	st.varargFuncs[lexer.FoldCase(f.Name)] = f
	return true
}

// AddGenericFunction registers a generic function.
func (st *SymbolTable) AddGenericFunction(f *GenericFunction) bool {
	if !st.Valid() || f == nil || !nameOK(f.Name) || st.SymbolExists(f.Name) {
		return false
	}
	st.genericFuncs[lexer.FoldCase(f.Name)] = f
	return true
}

// AddStringFunction registers a string-valued generic function.
func (st *SymbolTable) AddStringFunction(f *StringFunction) bool {
	if !st.Valid() || f == nil || !nameOK(f.Name) || st.SymbolExists(f.Name) {
		return false
	}
	st.stringFuncs[lexer.FoldCase(f.Name)] = f
	return true
}

// AddOverloadFunction registers an overloaded function.
func (st *SymbolTable) AddOverloadFunction(f *OverloadFunction) bool {
	if !st.Valid() || f == nil || !nameOK(f.Name) || st.SymbolExists(f.Name) {
		return false
	}
	st.overloadFuncs[lexer.FoldCase(f.Name)] = f
	return true
}

// Variable returns the shared variable node for name, or nil.
func (st *SymbolTable) Variable(name string) *ast.Variable {
	if !st.Valid() {
		return nil
	}
	return st.variables[lexer.FoldCase(name)]
}

// StringVariable returns the shared string-variable node, or nil.
func (st *SymbolTable) StringVariable(name string) *ast.StringVariable {
	if !st.Valid() {
		return nil
	}
	return st.strings[lexer.FoldCase(name)]
}

// Vector returns the shared vector node, or nil.
func (st *SymbolTable) Vector(name string) *ast.Vector {
	if !st.Valid() {
		return nil
	}
	return st.vectors[lexer.FoldCase(name)]
}

// ScalarFunction returns the registered scalar function, or nil.
func (st *SymbolTable) ScalarFunction(name string) *ScalarFunction {
	if !st.Valid() {
		return nil
	}
	return st.scalarFuncs[lexer.FoldCase(name)]
}

// VarArgFunction returns the registered vararg function, or nil.
func (st *SymbolTable) VarArgFunction(name string) *VarArgFunction {
	if !st.Valid() {
		return nil
	}
	return st.varargFuncs[lexer.FoldCase(name)]
}

// GenericFunction returns the registered generic function, or nil.
func (st *SymbolTable) GenericFunction(name string) *GenericFunction {
	if !st.Valid() {
		return nil
	}
	return st.genericFuncs[lexer.FoldCase(name)]
}

// StringFunction returns the registered string function, or nil.
func (st *SymbolTable) StringFunction(name string) *StringFunction {
	if !st.Valid() {
		return nil
	}
	return st.stringFuncs[lexer.FoldCase(name)]
}

// OverloadFunction returns the registered overload function, or nil.
func (st *SymbolTable) OverloadFunction(name string) *OverloadFunction {
	if !st.Valid() {
		return nil
	}
	return st.overloadFuncs[lexer.FoldCase(name)]
}

// IsConstant reports whether name denotes a registered constant.
func (st *SymbolTable) IsConstant(name string) bool {
	if !st.Valid() {
		return false
	}
	return st.constants[lexer.FoldCase(name)]
}

// SymbolExists reports whether name is present in any container.
func (st *SymbolTable) SymbolExists(name string) bool {
	if !st.Valid() {
		return false
	}
	key := lexer.FoldCase(name)
	if _, ok := st.variables[key]; ok {
		return true
	}
	if _, ok := st.strings[key]; ok {
		return true
	}
	if _, ok := st.vectors[key]; ok {
		return true
	}
	return st.functionExists(key)
}

func (st *SymbolTable) functionExists(key string) bool {
	if _, ok := st.scalarFuncs[key]; ok {
		return true
	}
	if _, ok := st.varargFuncs[key]; ok {
		return true
	}
	if _, ok := st.genericFuncs[key]; ok {
		return true
	}
	if _, ok := st.stringFuncs[key]; ok {
		return true
	}
	_, ok := st.overloadFuncs[key]
	return ok
}

// VariableCount returns the number of registered scalar variables.
func (st *SymbolTable) VariableCount() int {
	if !st.Valid() {
		return 0
	}
	return len(st.variables)
}
