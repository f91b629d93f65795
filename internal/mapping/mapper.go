// =============================================================================
// Payhawk Bundle Converter - Field Mapper
// =============================================================================
//
// This module populates the destination table from the source export.
//
// MAPPING PROCESS:
//   1. Allocate a blank table: schema columns, source row count
//   2. Apply every rule in table order
//   3. Leave every cell no rule covered as ""
//
// FAILURE HANDLING:
//   - A rule whose source column is missing blanks its destination column(s)
//     and produces one Warning. The run continues.
//   - A date that cannot be parsed blanks that row only, silently.
//   - A split cell that is not valid text blanks that row's pair and produces
//     a TransformError. The run continues.
//   - Rules whose destination columns are all outside the schema are skipped.
//
// Map never mutates its inputs and holds no state between calls.
//
// =============================================================================

package mapping

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/types"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Warning records a rule that could not run because its source column is
// missing. Its destination columns were left blank.
type Warning struct {
	Source  string
	Targets []string
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// ErrNotText is wrapped by TransformError when a cell is not valid text.
var ErrNotText = errors.New("cell is not valid UTF-8 text")

// TransformError reports a single cell that could not be transformed.
type TransformError struct {
	Rule  string
	Row   int
	Value string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: row %d: %v", e.Rule, e.Row+1, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// Result is the outcome of Map.
type Result struct {
	Table      *types.DestinationTable
	Warnings   []Warning
	CellErrors []*TransformError
}

// =============================================================================
// MAPPER
// =============================================================================

// Map builds the destination table for schema from source using rules.
//
// PARAMETERS:
//   - source: The parsed export. Nil is treated as an empty table.
//   - schema: The destination column contract.
//   - rules: The mapping table, usually DefaultRules().
//
// RETURNS:
//   - The populated table with its warnings and per-cell errors.
func Map(source *types.SourceTable, schema types.DestinationSchema, rules []Rule) *Result {
	if source == nil {
		source = &types.SourceTable{}
	}

	result := &Result{
		Table:      types.NewDestinationTable(schema, source.RowCount),
		Warnings:   []Warning{},
		CellErrors: []*TransformError{},
	}

	for _, rule := range rules {
		applyRule(result, source, rule)
	}

	return result
}

func applyRule(result *Result, source *types.SourceTable, rule Rule) {
	table := result.Table

	if !targetsPresent(table, rule.Targets) {
		return
	}

	if rule.Kind == KindConstant {
		table.Fill(rule.Targets[0], rule.Value)
		return
	}

	cells, ok := source.Column(rule.Source)
	if !ok {
		result.Warnings = append(result.Warnings, missingSourceWarning(rule))
		return
	}

	switch rule.Kind {
	case KindCopy:
		for row, cell := range cells {
			table.Set(rule.Targets[0], row, cell)
		}

	case KindDateFormat:
		for row, cell := range cells {
			table.Set(rule.Targets[0], row, FormatDate(cell, rule.Layout))
		}

	case KindSplit:
		for row, cell := range cells {
			first, second, err := splitCell(cell, rule.Delimiter)
			if err != nil {
				result.CellErrors = append(result.CellErrors, &TransformError{
					Rule:  rule.String(),
					Row:   row,
					Value: cell,
					Err:   err,
				})
				first, second = "", ""
			}
			table.Set(rule.Targets[0], row, first)
			table.Set(rule.Targets[1], row, second)
		}
	}
}

// splitCell cuts cell on the first delimiter. The second part is "" when
// the delimiter does not occur.
func splitCell(cell, delimiter string) (string, string, error) {
	if !utf8.ValidString(cell) {
		return "", "", ErrNotText
	}
	if delimiter == "" {
		return cell, "", nil
	}
	first, second, _ := strings.Cut(cell, delimiter)
	return first, second, nil
}

// targetsPresent reports whether at least one target is a schema column.
func targetsPresent(table *types.DestinationTable, targets []string) bool {
	for _, t := range targets {
		if table.Has(t) {
			return true
		}
	}
	return false
}

func missingSourceWarning(rule Rule) Warning {
	return Warning{
		Source:  rule.Source,
		Targets: append([]string(nil), rule.Targets...),
		Message: fmt.Sprintf(
			"source column %q not found; destination column(s) %s left blank",
			rule.Source, strings.Join(rule.Targets, ", "),
		),
	}
}
