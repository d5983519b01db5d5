package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/calyx-lang/calyx/internal/parser"
)

// settingsFile is the YAML shape of an exprc settings file.
type settingsFile struct {
	// Language optionally constrains the accepted language level,
	// e.g. ">= 1.2.0".
	Language string `yaml:"language"`

	MaxStackDepth            int   `yaml:"max_stack_depth"`
	MaxNodeDepth             int   `yaml:"max_node_depth"`
	AllowZeroParameterReturn *bool `yaml:"allow_zero_parameter_return"`

	DisabledFeatures  []string `yaml:"disabled_features"`
	DisabledOperators []string `yaml:"disabled_operators"`
	DisabledControls  []string `yaml:"disabled_control_structures"`
	DisabledFunctions []string `yaml:"disabled_functions"`
}

// featureNames maps settings-file feature names to their bits.
var featureNames = map[string]parser.Feature{
	"replacer":            parser.FeatureReplacer,
	"bracket_checker":     parser.FeatureBracketChecker,
	"numeric_checker":     parser.FeatureNumericChecker,
	"sequence_checker":    parser.FeatureSequenceChecker,
	"operator_joiner":     parser.FeatureOperatorJoiner,
	"commutative_check":   parser.FeatureCommutativeCheck,
	"strength_reduction":  parser.FeatureStrengthReduction,
	"collect_variables":   parser.FeatureCollectVariables,
	"collect_functions":   parser.FeatureCollectFunctions,
	"collect_assignments": parser.FeatureCollectAssignments,
}

// loadSettings builds parser settings from an optional YAML file path;
// an empty path yields the defaults.
func loadSettings(path string) (*parser.Settings, error) {
	settings := parser.NewSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var sf settingsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	settings.LanguageConstraint = sf.Language
	if sf.MaxStackDepth > 0 {
		settings.MaxStackDepth = sf.MaxStackDepth
	}
	if sf.MaxNodeDepth > 0 {
		settings.MaxNodeDepth = sf.MaxNodeDepth
	}
	if sf.AllowZeroParameterReturn != nil {
		settings.AllowZeroParameterReturn = *sf.AllowZeroParameterReturn
	}

	for _, name := range sf.DisabledFeatures {
		bit, known := featureNames[name]
		if !known {
			return nil, fmt.Errorf("settings %s: unknown feature %q", path, name)
		}
		settings.Disable(bit)
	}
	for _, op := range sf.DisabledOperators {
		settings.DisableOperator(op)
	}
	for _, cs := range sf.DisabledControls {
		settings.DisableControlStructure(cs)
	}
	for _, fn := range sf.DisabledFunctions {
		settings.DisableBaseFunction(fn)
	}
	return settings, nil
}
