package parser

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/calyx-lang/calyx/internal/lexer"
)

// LanguageVersion is the Calyx language level implemented by this
// front end, checked against a settings language constraint.
const LanguageVersion = "1.4.0"

// Feature is a bitmask of optional parser passes.
type Feature uint32

// Features.
const (
	FeatureReplacer Feature = 1 << iota
	FeatureBracketChecker
	FeatureNumericChecker
	FeatureSequenceChecker
	FeatureOperatorJoiner
	FeatureCommutativeCheck
	FeatureStrengthReduction
	FeatureCollectVariables
	FeatureCollectFunctions
	FeatureCollectAssignments
)

// DefaultFeatures enables every validation and optimization pass; the
// dependency-collection passes are opt-in.
const DefaultFeatures = FeatureReplacer |
	FeatureBracketChecker |
	FeatureNumericChecker |
	FeatureSequenceChecker |
	FeatureOperatorJoiner |
	FeatureCommutativeCheck |
	FeatureStrengthReduction

// Default guard ceilings.
const (
	DefaultMaxStackDepth = 400
	DefaultMaxNodeDepth  = 10000
)

// Settings is the immutable-per-compile parser configuration. It is
// threaded explicitly through every production that consults it; there
// is no ambient global state.
type Settings struct {
	Features      Feature
	MaxStackDepth int
	MaxNodeDepth  int

	// AllowZeroParameterReturn permits the bare "return[]" form.
	AllowZeroParameterReturn bool

	// LanguageConstraint optionally restricts the accepted language
	// level, e.g. ">= 1.2.0".
	LanguageConstraint string

	disabledOperators map[string]bool
	disabledControls  map[string]bool
	disabledFunctions map[string]bool
}

// NewSettings returns settings with all defaults.
func NewSettings() *Settings {
	return &Settings{
		Features:                 DefaultFeatures,
		MaxStackDepth:            DefaultMaxStackDepth,
		MaxNodeDepth:             DefaultMaxNodeDepth,
		AllowZeroParameterReturn: true,
		disabledOperators:        make(map[string]bool),
		disabledControls:         make(map[string]bool),
		disabledFunctions:        make(map[string]bool),
	}
}

// Has reports whether every given feature bit is enabled.
func (s *Settings) Has(f Feature) bool {
	return s.Features&f == f
}

// Enable sets feature bits.
func (s *Settings) Enable(f Feature) *Settings {
	s.Features |= f
	return s
}

// Disable clears feature bits.
func (s *Settings) Disable(f Feature) *Settings {
	s.Features &^= f
	return s
}

// DisableOperator disables an operator by source spelling ("+", "and",
// ":=", "<=", ...).
func (s *Settings) DisableOperator(spelling string) *Settings {
	s.disabledOperators[lexer.FoldCase(spelling)] = true
	return s
}

// OperatorEnabled reports whether the operator spelling is enabled.
func (s *Settings) OperatorEnabled(spelling string) bool {
	return !s.disabledOperators[lexer.FoldCase(spelling)]
}

// DisableControlStructure disables a control structure by keyword
// ("if", "while", "for", "repeat", "switch", "return", "break",
// "continue", "swap", "var", "ternary").
func (s *Settings) DisableControlStructure(name string) *Settings {
	s.disabledControls[lexer.FoldCase(name)] = true
	return s
}

// ControlEnabled reports whether the control structure is enabled.
func (s *Settings) ControlEnabled(name string) bool {
	return !s.disabledControls[lexer.FoldCase(name)]
}

// DisableBaseFunction disables a built-in or registered function name.
func (s *Settings) DisableBaseFunction(name string) *Settings {
	s.disabledFunctions[lexer.FoldCase(name)] = true
	return s
}

// FunctionEnabled reports whether calls to name are permitted.
func (s *Settings) FunctionEnabled(name string) bool {
	return !s.disabledFunctions[lexer.FoldCase(name)]
}

// Validate checks internal consistency, including the optional
// language-level constraint against LanguageVersion.
func (s *Settings) Validate() error {
	if s.MaxStackDepth < 1 {
		return fmt.Errorf("settings: max stack depth must be positive, got %d", s.MaxStackDepth)
	}
	if s.MaxNodeDepth < 1 {
		return fmt.Errorf("settings: max node depth must be positive, got %d", s.MaxNodeDepth)
	}
	if s.LanguageConstraint != "" {
		c, err := semver.NewConstraint(s.LanguageConstraint)
		if err != nil {
			return fmt.Errorf("settings: invalid language constraint %q: %w", s.LanguageConstraint, err)
		}
		v := semver.MustParse(LanguageVersion)
		if !c.Check(v) {
			return fmt.Errorf("settings: language constraint %q not satisfied by version %s",
				s.LanguageConstraint, LanguageVersion)
		}
	}
	return nil
}
