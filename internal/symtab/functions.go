// Package symtab implements the Calyx symbol table storage engine and
// the ordered multi-table resolution facade used by the parser.
package symtab

// ScalarFunction is a fixed-arity numeric function.
type ScalarFunction struct {
	Name  string
	Arity int
	Fn    func(args ...float64) float64
}

// VarArgFunction accepts any number of numeric arguments.
type VarArgFunction struct {
	Name string
	Fn   func(args []float64) float64
}

// GenericFunction accepts mixed scalar/string/vector arguments,
// validated against its declared parameter-sequence prototypes.
// An empty prototype list accepts any call.
type GenericFunction struct {
	Name       string
	Prototypes string
}

// StringFunction is a generic function whose result is a string.
type StringFunction struct {
	Name       string
	Prototypes string
}

// OverloadFunction declares per-prototype return kinds using the
// "T:"/"S:" prefix in its prototype list.
type OverloadFunction struct {
	Name       string
	Prototypes string
}
