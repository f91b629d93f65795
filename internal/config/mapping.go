package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule kinds accepted in a mapping file.
const (
	RuleConstant   = "constant"
	RuleCopy       = "copy"
	RuleDateFormat = "date_format"
	RuleSplit      = "split"
)

// MappingConfig is a rule table read from a mapping file.
//
// Example:
//
//	rules:
//	  - kind: constant
//	    target: SOCIEDAD
//	    value: "666"
//	  - kind: copy
//	    source: Expense ID
//	    target: ORDEN
//	  - kind: date_format
//	    source: Document Date
//	    target: FECHA.FRA
//	    layout: "02/01/2006"
//	  - kind: split
//	    source: Account Code
//	    delimiter: "-"
//	    targets: [CTA_GASTO, SCTA_GASTO]
type MappingConfig struct {
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig declares how one destination column (or a pair, for split)
// is derived.
type RuleConfig struct {
	Kind      string   `yaml:"kind"`
	Target    string   `yaml:"target,omitempty"`
	Targets   []string `yaml:"targets,omitempty"`
	Source    string   `yaml:"source,omitempty"`
	Value     string   `yaml:"value,omitempty"`
	Layout    string   `yaml:"layout,omitempty"`
	Delimiter string   `yaml:"delimiter,omitempty"`
}

// LoadMappingConfig reads and validates a mapping file.
func LoadMappingConfig(path string) (*MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return ParseMappingConfig(data)
}

// ParseMappingConfig parses and validates mapping file bytes.
func ParseMappingConfig(data []byte) (*MappingConfig, error) {
	var config MappingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}

	if len(config.Rules) == 0 {
		return nil, fmt.Errorf("mapping file declares no rules")
	}

	for i := range config.Rules {
		applyRuleDefaults(&config.Rules[i])
		if err := validateRule(config.Rules[i]); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
	}

	return &config, nil
}

func applyRuleDefaults(rule *RuleConfig) {
	rule.Kind = strings.ToLower(strings.TrimSpace(rule.Kind))
	switch rule.Kind {
	case RuleDateFormat:
		if rule.Layout == "" {
			rule.Layout = "02/01/2006"
		}
	case RuleSplit:
		if rule.Delimiter == "" {
			rule.Delimiter = "-"
		}
	}
}

func validateRule(rule RuleConfig) error {
	switch rule.Kind {
	case RuleConstant:
		if rule.Target == "" {
			return fmt.Errorf("constant rule needs a target")
		}
	case RuleCopy, RuleDateFormat:
		if rule.Target == "" || rule.Source == "" {
			return fmt.Errorf("%s rule needs a source and a target", rule.Kind)
		}
	case RuleSplit:
		if rule.Source == "" {
			return fmt.Errorf("split rule needs a source")
		}
		if len(rule.Targets) != 2 {
			return fmt.Errorf("split rule needs exactly two targets, got %d", len(rule.Targets))
		}
	case "":
		return fmt.Errorf("missing kind")
	default:
		return fmt.Errorf("unknown kind %q", rule.Kind)
	}
	return nil
}
