// =============================================================================
// Payhawk Bundle Converter - Shared Types
// =============================================================================
//
// This package contains the tables and maps that flow between the pipeline
// stages. Types defined here are used by:
//   - csvparser   (builds SourceTable)
//   - xlsxparser  (builds DestinationSchema)
//   - mapping     (fills DestinationTable)
//   - xlsxwriter  (serializes DestinationTable)
//   - archive     (builds and packs DocumentMap)
//
// Every value is created fresh per invocation and never shared between runs.
//
// =============================================================================

package types

import (
	"sort"
	"strings"
)

// =============================================================================
// SOURCE TABLE
// =============================================================================

// Column is a single named column of the source export.
type Column struct {
	// Name is the header as found in the file, whitespace-trimmed.
	Name string

	// Cells holds one value per data row.
	Cells []string
}

// SourceTable is the parsed tabular export, columns kept in file order.
type SourceTable struct {
	// Columns in the order they appear in the export.
	Columns []Column

	// RowCount is the number of data rows. Every column has this many cells.
	RowCount int

	// SourceFile is the base name of the entry the table was parsed from.
	SourceFile string
}

// Column returns the cells of the column whose trimmed name equals name.
// The second result is false when the export has no such column.
func (t *SourceTable) Column(name string) ([]string, bool) {
	key := strings.TrimSpace(name)
	for _, col := range t.Columns {
		if strings.TrimSpace(col.Name) == key {
			return col.Cells, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in file order.
func (t *SourceTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// =============================================================================
// DESTINATION SCHEMA
// =============================================================================

// DestinationSchema is the ordered column contract of the output table.
type DestinationSchema struct {
	// Name identifies the schema. The output sheet is named after it.
	Name string

	// Columns are the header cells exactly as declared in the template.
	Columns []string
}

// TrimmedColumns returns the column names with surrounding whitespace removed.
func (s DestinationSchema) TrimmedColumns() []string {
	trimmed := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		trimmed[i] = strings.TrimSpace(c)
	}
	return trimmed
}

// =============================================================================
// DESTINATION TABLE
// =============================================================================

// DestinationTable holds exactly the schema's columns. Cells are stored
// column-major and are never nil: a blank cell is the empty string.
type DestinationTable struct {
	Name    string
	Columns []string

	cells [][]string
	index map[string]int
	rows  int
}

// NewDestinationTable allocates a blank table for schema with rows rows.
func NewDestinationTable(schema DestinationSchema, rows int) *DestinationTable {
	t := &DestinationTable{
		Name:    schema.Name,
		Columns: append([]string(nil), schema.Columns...),
		cells:   make([][]string, len(schema.Columns)),
		index:   make(map[string]int, len(schema.Columns)),
		rows:    rows,
	}
	for i, c := range schema.Columns {
		t.cells[i] = make([]string, rows)
		key := strings.TrimSpace(c)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t
}

// RowCount returns the number of rows.
func (t *DestinationTable) RowCount() int {
	return t.rows
}

// Has reports whether the table has a column with the given trimmed name.
func (t *DestinationTable) Has(name string) bool {
	_, ok := t.index[strings.TrimSpace(name)]
	return ok
}

// Set writes value into row of column name. Unknown columns are ignored:
// the table never grows beyond its schema.
func (t *DestinationTable) Set(name string, row int, value string) {
	i, ok := t.index[strings.TrimSpace(name)]
	if !ok || row < 0 || row >= t.rows {
		return
	}
	t.cells[i][row] = value
}

// Fill writes value into every row of column name.
func (t *DestinationTable) Fill(name, value string) {
	i, ok := t.index[strings.TrimSpace(name)]
	if !ok {
		return
	}
	for r := range t.cells[i] {
		t.cells[i][r] = value
	}
}

// Column returns a copy of the cells of column name.
func (t *DestinationTable) Column(name string) ([]string, bool) {
	i, ok := t.index[strings.TrimSpace(name)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), t.cells[i]...), true
}

// Row returns row r in column order.
func (t *DestinationTable) Row(r int) []string {
	row := make([]string, len(t.Columns))
	if r < 0 || r >= t.rows {
		return row
	}
	for i := range t.cells {
		row[i] = t.cells[i][r]
	}
	return row
}

// Rows returns every row in column order.
func (t *DestinationTable) Rows() [][]string {
	rows := make([][]string, t.rows)
	for r := range rows {
		rows[r] = t.Row(r)
	}
	return rows
}

// =============================================================================
// DOCUMENT MAP
// =============================================================================

// DocumentMap maps a document's base filename to its raw content.
type DocumentMap map[string][]byte

// Names returns the document names in sorted order.
func (m DocumentMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
