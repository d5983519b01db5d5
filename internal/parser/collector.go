package parser

import "sort"

// SymbolUse classifies a collected symbol reference.
type SymbolUse int

// Symbol use kinds.
const (
	UseVariable SymbolUse = iota
	UseStringVariable
	UseVector
	UseFunction
)

// String returns a short name for the use kind.
func (u SymbolUse) String() string {
	switch u {
	case UseVariable:
		return "variable"
	case UseStringVariable:
		return "string"
	case UseVector:
		return "vector"
	case UseFunction:
		return "function"
	}
	return "unknown"
}

// Entity is one collected (name, kind) reference.
type Entity struct {
	Name string
	Use  SymbolUse
}

// DependentEntityCollector records, when the corresponding collection
// features are enabled, every symbol the compile unit references,
// every assignment target, and the signature of every return
// statement.
type DependentEntityCollector struct {
	collectSymbols     bool
	collectFunctions   bool
	collectAssignments bool

	symbols     map[Entity]bool
	assignments map[Entity]bool

	returnPresent    bool
	returnSignatures []string
}

func newDependentEntityCollector(s *Settings) *DependentEntityCollector {
	return &DependentEntityCollector{
		collectSymbols:     s.Has(FeatureCollectVariables),
		collectFunctions:   s.Has(FeatureCollectFunctions),
		collectAssignments: s.Has(FeatureCollectAssignments),
		symbols:            make(map[Entity]bool),
		assignments:        make(map[Entity]bool),
	}
}

// RecordSymbol notes a referenced symbol.
func (dc *DependentEntityCollector) RecordSymbol(name string, use SymbolUse) {
	if use == UseFunction {
		if !dc.collectFunctions {
			return
		}
	} else if !dc.collectSymbols {
		return
	}
	dc.symbols[Entity{Name: name, Use: use}] = true
}

// RecordAssignment notes an assignment target.
func (dc *DependentEntityCollector) RecordAssignment(name string, use SymbolUse) {
	if !dc.collectAssignments {
		return
	}
	dc.assignments[Entity{Name: name, Use: use}] = true
}

// RecordReturn notes a return statement and its argument signature.
func (dc *DependentEntityCollector) RecordReturn(signature string) {
	dc.returnPresent = true
	dc.returnSignatures = append(dc.returnSignatures, signature)
}

// Symbols returns the unique referenced symbols, sorted by name.
func (dc *DependentEntityCollector) Symbols() []Entity {
	return sortedEntities(dc.symbols)
}

// Assignments returns the unique assignment targets, sorted by name.
func (dc *DependentEntityCollector) Assignments() []Entity {
	return sortedEntities(dc.assignments)
}

// ReturnPresent reports whether a return statement was encountered.
func (dc *DependentEntityCollector) ReturnPresent() bool {
	return dc.returnPresent
}

// ReturnSignatures returns each return statement's argument signature
// in encounter order.
func (dc *DependentEntityCollector) ReturnSignatures() []string {
	return dc.returnSignatures
}

// reset clears all records for the next parse pass.
func (dc *DependentEntityCollector) reset() {
	dc.symbols = make(map[Entity]bool)
	dc.assignments = make(map[Entity]bool)
	dc.returnPresent = false
	dc.returnSignatures = nil
}

func sortedEntities(set map[Entity]bool) []Entity {
	out := make([]Entity, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Use < out[j].Use
	})
	return out
}
