// =============================================================================
// Payhawk Bundle Converter - Destination Schema Parser
// =============================================================================
//
// This module reads the destination schema template. The template is a
// spreadsheet whose first sheet's first row lists, in order, the columns the
// accounting import expects:
//
//   | Column A | Column B | Column C | ... | Column S |
//   |----------|----------|----------|-----|----------|
//   | SOCIEDAD | ORDEN    | CODIGO   | ... | ETAPA    |
//
// Rows below the header are ignored. Column names are kept exactly as written
// (including stray whitespace); lookups trim them later.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a schema template from disk.
func Parse(templatePath string) (types.DestinationSchema, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return types.DestinationSchema{}, fmt.Errorf("failed to read template file: %w", err)
	}
	return ParseBytes(data, filepath.Base(templatePath))
}

// ParseBytes reads a schema template held in memory.
//
// PARAMETERS:
//   - data: The raw bytes of the .xlsx template.
//   - fileName: The template's file name. The schema is named after it,
//     without extension.
//
// RETURNS:
//   - The destination schema.
//   - An error if the workbook cannot be opened, has no sheets or no header.
func ParseBytes(data []byte, fileName string) (types.DestinationSchema, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return types.DestinationSchema{}, fmt.Errorf("failed to open template file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return types.DestinationSchema{}, fmt.Errorf("template file has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return types.DestinationSchema{}, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 || isRowEmpty(rows[0]) {
		return types.DestinationSchema{}, fmt.Errorf("template sheet %q has no header row", sheetName)
	}

	columns, err := headerColumns(rows[0])
	if err != nil {
		return types.DestinationSchema{}, err
	}

	return types.DestinationSchema{
		Name:    SchemaName(fileName),
		Columns: columns,
	}, nil
}

// headerColumns turns the header row into column names. Blank cells between
// named columns are kept as "Unnamed: <index>" so positions do not shift.
func headerColumns(header []string) ([]string, error) {
	// Drop trailing blank cells.
	end := len(header)
	for end > 0 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}

	columns := make([]string, end)
	seen := make(map[string]bool, end)
	for i := 0; i < end; i++ {
		name := header[i]
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		key := strings.TrimSpace(name)
		if seen[key] {
			return nil, fmt.Errorf("template declares column %q more than once", key)
		}
		seen[key] = true
		columns[i] = name
	}

	return columns, nil
}

// SchemaName derives the schema name from a template file name.
func SchemaName(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "Sheet1"
	}
	return name
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
