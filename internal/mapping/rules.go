// =============================================================================
// Payhawk Bundle Converter - Mapping Rules
// =============================================================================
//
// This module declares how each destination column is derived from the
// Payhawk export. A rule is one of:
//   - constant:    every row gets a literal value
//   - copy:        row i gets the i-th cell of a source column
//   - date_format: the source cell is parsed as a date and reformatted
//   - split:       the source cell is cut on the first delimiter into a pair
//                  of destination columns
//
// The built-in table is returned by DefaultRules. Operators can replace it
// with a YAML rule file (see config.LoadMappingConfig and FromConfig).
//
// =============================================================================

package mapping

import (
	"fmt"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/config"
)

// =============================================================================
// RULE TYPES
// =============================================================================

// Kind identifies how a rule derives its destination values.
type Kind string

const (
	KindConstant   Kind = config.RuleConstant
	KindCopy       Kind = config.RuleCopy
	KindDateFormat Kind = config.RuleDateFormat
	KindSplit      Kind = config.RuleSplit
)

// OutputDateLayout is the DD/MM/YYYY layout expected by the accounting import.
const OutputDateLayout = "02/01/2006"

// Rule is one entry of the mapping table.
type Rule struct {
	Kind Kind

	// Targets are the destination columns the rule writes. Split rules have
	// exactly two; every other kind has one.
	Targets []string

	// Source is the source column read by copy, date_format and split.
	Source string

	// Value is the literal written by a constant rule.
	Value string

	// Layout is the output layout of a date_format rule.
	Layout string

	// Delimiter is the separator of a split rule.
	Delimiter string
}

// Constant returns a rule that fills target with value.
func Constant(target, value string) Rule {
	return Rule{Kind: KindConstant, Targets: []string{target}, Value: value}
}

// Copy returns a rule that copies source into target.
func Copy(source, target string) Rule {
	return Rule{Kind: KindCopy, Targets: []string{target}, Source: source}
}

// DateFormat returns a rule that reformats the dates of source into target.
func DateFormat(source, target, layout string) Rule {
	return Rule{Kind: KindDateFormat, Targets: []string{target}, Source: source, Layout: layout}
}

// Split returns a rule that cuts source on the first delimiter into first
// and second.
func Split(source, delimiter, first, second string) Rule {
	return Rule{Kind: KindSplit, Targets: []string{first, second}, Source: source, Delimiter: delimiter}
}

// needsSource reports whether the rule reads a source column.
func (r Rule) needsSource() bool {
	return r.Kind != KindConstant
}

func (r Rule) String() string {
	switch r.Kind {
	case KindConstant:
		return fmt.Sprintf("constant(%s=%q)", r.Targets[0], r.Value)
	case KindSplit:
		return fmt.Sprintf("split(%s on %q -> %s, %s)", r.Source, r.Delimiter, r.Targets[0], r.Targets[1])
	default:
		return fmt.Sprintf("%s(%s -> %s)", r.Kind, r.Source, r.Targets[0])
	}
}

// =============================================================================
// BUILT-IN PAYHAWK TABLE
// =============================================================================

// DefaultRules returns the built-in Payhawk mapping table. A fresh slice is
// returned on each call.
func DefaultRules() []Rule {
	return []Rule{
		// Constant fills.
		Constant("SOCIEDAD", "666"),
		Constant("CODIGO", "4444"),
		Constant("DIARIO_CONTB", "1"),
		Constant("OP.ALQ", "N"),
		Constant("D347", "S"),
		Constant("TIPO.FRA", "F"),
		Constant("DIARIO1", "1"),
		Constant("CARACTERISTICA", "Facturas payhawk"),
		Constant("RUTA", "1"),
		Constant("ETAPA", "PRODUCCIÓN"),

		// Direct copies.
		Copy("Expense ID", "ORDEN"),
		Copy("Document Number", "NUM.FRA"),
		Copy("Net Amount (EUR)", "IMP.BRUTO"),
		Copy("Total Amount (EUR)", "TOTAL"),
		Copy("Net Amount (EUR)", "BASE1"),
		Copy("Tax Rate %", "IVA1"),
		Copy("Tax Amount (EUR)", "CUOTA1"),
		Copy("Promoción External ID", "PROYECTO"),
		Copy("Net Amount (EUR)", "IMPORTE_GASTO"),
		Copy("File Name 1", "NOMBRE"),

		// Derived fields.
		DateFormat("Document Date", "FECHA.FRA", OutputDateLayout),
		Split("Account Code", "-", "CTA_GASTO", "SCTA_GASTO"),
	}
}

// FromConfig converts a validated rule file into mapping rules.
func FromConfig(cfg *config.MappingConfig) ([]Rule, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mapping config is nil")
	}

	rules := make([]Rule, 0, len(cfg.Rules))
	for i, rc := range cfg.Rules {
		switch rc.Kind {
		case config.RuleConstant:
			rules = append(rules, Constant(rc.Target, rc.Value))
		case config.RuleCopy:
			rules = append(rules, Copy(rc.Source, rc.Target))
		case config.RuleDateFormat:
			rules = append(rules, DateFormat(rc.Source, rc.Target, rc.Layout))
		case config.RuleSplit:
			if len(rc.Targets) != 2 {
				return nil, fmt.Errorf("rule %d: split rule needs exactly two targets", i+1)
			}
			rules = append(rules, Split(rc.Source, rc.Delimiter, rc.Targets[0], rc.Targets[1]))
		default:
			return nil, fmt.Errorf("rule %d: unknown kind %q", i+1, rc.Kind)
		}
	}

	return rules, nil
}
