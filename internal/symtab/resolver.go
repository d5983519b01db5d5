package symtab

import (
	"github.com/calyx-lang/calyx/internal/ast"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// Resolver is the ordered multi-table lookup facade. Tables are scanned
// in registration order and the first valid table with a match wins.
// Lookups never fail hard: a miss returns nil.
type Resolver struct {
	tables []*SymbolTable
}

// NewResolver creates a resolver over the given table chain.
func NewResolver(tables ...*SymbolTable) *Resolver {
	return &Resolver{tables: tables}
}

// AddTable appends a table to the chain.
func (r *Resolver) AddTable(st *SymbolTable) {
	r.tables = append(r.tables, st)
}

// Tables returns the table chain in lookup order.
func (r *Resolver) Tables() []*SymbolTable {
	return r.tables
}

// DefaultTable returns the first valid table, creating one if the
// chain is empty. Used by the unknown-symbol resolver's default mode
// to materialize new host symbols.
func (r *Resolver) DefaultTable() *SymbolTable {
	for _, st := range r.tables {
		if st.Valid() {
			return st
		}
	}
	st := NewSymbolTable()
	r.tables = append(r.tables, st)
	return st
}

// Variable resolves a scalar variable and the table that owns it.
func (r *Resolver) Variable(name string) (*ast.Variable, *SymbolTable) {
	for _, st := range r.tables {
		if v := st.Variable(name); v != nil {
			return v, st
		}
	}
	return nil, nil
}

// StringVariable resolves a string variable and its owning table.
func (r *Resolver) StringVariable(name string) (*ast.StringVariable, *SymbolTable) {
	for _, st := range r.tables {
		if v := st.StringVariable(name); v != nil {
			return v, st
		}
	}
	return nil, nil
}

// Vector resolves a vector and its owning table.
func (r *Resolver) Vector(name string) (*ast.Vector, *SymbolTable) {
	for _, st := range r.tables {
		if v := st.Vector(name); v != nil {
			return v, st
		}
	}
	return nil, nil
}

// ScalarFunction resolves a fixed-arity numeric function.
func (r *Resolver) ScalarFunction(name string) *ScalarFunction {
	for _, st := range r.tables {
		if f := st.ScalarFunction(name); f != nil {
			return f
		}
	}
	return nil
}

// VarArgFunction resolves a variable-argument function.
func (r *Resolver) VarArgFunction(name string) *VarArgFunction {
	for _, st := range r.tables {
		if f := st.VarArgFunction(name); f != nil {
			return f
		}
	}
	return nil
}

// GenericFunction resolves a generic function.
func (r *Resolver) GenericFunction(name string) *GenericFunction {
	for _, st := range r.tables {
		if f := st.GenericFunction(name); f != nil {
			return f
		}
	}
	return nil
}

// StringFunction resolves a string-valued generic function.
func (r *Resolver) StringFunction(name string) *StringFunction {
	for _, st := range r.tables {
		if f := st.StringFunction(name); f != nil {
			return f
		}
	}
	return nil
}

// OverloadFunction resolves an overloaded function.
func (r *Resolver) OverloadFunction(name string) *OverloadFunction {
	for _, st := range r.tables {
		if f := st.OverloadFunction(name); f != nil {
			return f
		}
	}
	return nil
}

// IsVariable reports whether name resolves to a scalar variable.
func (r *Resolver) IsVariable(name string) bool {
	v, _ := r.Variable(name)
	return v != nil
}

// IsStringVariable reports whether name resolves to a string variable.
func (r *Resolver) IsStringVariable(name string) bool {
	v, _ := r.StringVariable(name)
	return v != nil
}

// IsVector reports whether name resolves to a vector.
func (r *Resolver) IsVector(name string) bool {
	v, _ := r.Vector(name)
	return v != nil
}

// IsFunction reports whether name resolves to any function category.
func (r *Resolver) IsFunction(name string) bool {
	return r.ScalarFunction(name) != nil ||
		r.VarArgFunction(name) != nil ||
		r.GenericFunction(name) != nil ||
		r.StringFunction(name) != nil ||
		r.OverloadFunction(name) != nil
}

// IsConstantNode reports whether name resolves to a registered
// constant in its owning table.
func (r *Resolver) IsConstantNode(name string) bool {
	for _, st := range r.tables {
		if st.Variable(name) != nil {
			return st.IsConstant(name)
		}
	}
	return false
}

// SymbolExists reports whether name is present in any valid table, or
// is a reserved word.
func (r *Resolver) SymbolExists(name string) bool {
	if lexer.IsKeyword(name) {
		return true
	}
	for _, st := range r.tables {
		if st.SymbolExists(name) {
			return true
		}
	}
	return false
}
