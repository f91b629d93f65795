// =============================================================================
// Payhawk Bundle Converter - Structural Validator
// =============================================================================
//
// This module decides whether a bundle may be converted at all. It runs
// before any field is mapped and checks:
//   1. The bundle contains a tabular export (CSV)
//   2. The bundle contains at least one invoice document (PDF)
//   3. The destination schema declares every required column
//
// VALIDATION STRATEGY:
//   - Every check always runs; problems are collected, never short-circuited,
//     so the caller sees the whole list in one pass
//   - All missing required columns are reported together in one message
//   - Validate is pure: no I/O, no logging
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// =============================================================================
// REQUIRED COLUMNS
// =============================================================================

// requiredColumns is the fixed column list a destination schema must contain.
var requiredColumns = []string{
	"SOCIEDAD",
	"ORDEN",
	"CODIGO",
	"TOTAL",
	"OP.ALQ",
	"D347",
	"TIPO.FRA",
	"DIARIO1",
	"BASE1",
	"IVA1",
	"CUOTA1",
	"PROYECTO",
	"IMPORTE_GASTO",
	"CTA_GASTO",
	"SCTA_GASTO",
	"NOMBRE",
	"CARACTERISTICA",
	"RUTA",
	"ETAPA",
}

// RequiredColumns returns a copy of the required destination columns.
func RequiredColumns() []string {
	return append([]string(nil), requiredColumns...)
}

// Fixed problem descriptions.
const (
	MissingTabularMessage   = "the archive does not contain the required CSV expense export"
	MissingDocumentsMessage = "the archive does not contain any PDF invoice documents (at least one is required)"
)

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the structural preconditions of a conversion.
//
// PARAMETERS:
//   - tabularFound: Whether the bundle held a CSV export.
//   - documentsFound: Whether the bundle held at least one PDF.
//   - destinationColumns: The destination schema's columns as declared.
//
// RETURNS:
//   - The problems found, in check order. An empty list means "proceed".
func Validate(tabularFound, documentsFound bool, destinationColumns []string) []string {
	problems := []string{}

	if !tabularFound {
		problems = append(problems, MissingTabularMessage)
	}

	if !documentsFound {
		problems = append(problems, MissingDocumentsMessage)
	}

	if missing := MissingColumns(destinationColumns); len(missing) > 0 {
		problems = append(problems, fmt.Sprintf(
			"the destination schema is missing required columns: %s",
			strings.Join(missing, ", "),
		))
	}

	return problems
}

// MissingColumns returns the required columns absent from columns, in
// required-list order. Columns are compared after trimming whitespace.
func MissingColumns(columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[strings.TrimSpace(c)] = true
	}

	var missing []string
	for _, required := range requiredColumns {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	return missing
}

// =============================================================================
// VALIDATION FAILURE
// =============================================================================

// Failure is returned when Validate reports problems. It carries all of them.
type Failure struct {
	Problems []string
}

func (f *Failure) Error() string {
	if len(f.Problems) == 1 {
		return "validation failed: " + f.Problems[0]
	}
	return fmt.Sprintf("validation failed with %d problems: %s", len(f.Problems), strings.Join(f.Problems, "; "))
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatProblems formats problems for display, one numbered line each.
func FormatProblems(problems []string) string {
	if len(problems) == 0 {
		return "No validation problems."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation found %d problem(s):\n", len(problems)))

	for i, p := range problems {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, p))
	}

	return builder.String()
}
