// =============================================================================
// Payhawk Bundle Converter - CSV Parser Module
// =============================================================================
//
// This module parses the tabular expense export taken out of the bundle into
// a column-ordered SourceTable. It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - UTF-8 exports with or without a byte order mark
//   - ISO-8859-1 and Windows-1252 exports (decoded to UTF-8)
//   - Rows shorter than the header (padded with blanks)
//   - Blank lines (skipped)
//
// Header names are trimmed of surrounding whitespace. Cell values are kept as
// text; no type inference happens here.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/config"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/types"
)

// utf8BOM is stripped from the start of UTF-8 exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV export held in memory.
//
// PARAMETERS:
//   - data: The raw bytes of the CSV entry.
//   - name: The entry's base name, recorded on the table.
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - The parsed SourceTable.
//   - An error if the bytes cannot be decoded or parsed as CSV.
func Parse(data []byte, name string, settings config.CSVSettings) (*types.SourceTable, error) {
	reader, err := decode(data, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[0])
	dataRows := extractDataRows(allRows[1:], len(headers))

	table := &types.SourceTable{
		Columns:    make([]types.Column, len(headers)),
		RowCount:   len(dataRows),
		SourceFile: name,
	}
	for c, header := range headers {
		cells := make([]string, len(dataRows))
		for r, row := range dataRows {
			cells[r] = row[c]
		}
		table.Columns[c] = types.Column{Name: header, Cells: cells}
	}

	return table, nil
}

// decode wraps data in a reader producing UTF-8.
func decode(data []byte, encoding string) (io.Reader, error) {
	switch config.NormalizeEncoding(encoding) {
	case "utf-8":
		return bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)), nil
	case "iso-8859-1":
		return transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252":
		return transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Exports are not always rectangular.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// Delimiter resolves a configured delimiter name to the separator rune.
func Delimiter(setting string) rune {
	switch setting {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon", "SEMICOLON":
		return ';'
	default:
		if r := []rune(setting); len(r) > 0 {
			return r[0]
		}
		return ','
	}
}

// cleanHeaders trims headers and names blank ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows drops blank rows and pads or truncates each row to width.
func extractDataRows(rows [][]string, width int) [][]string {
	dataRows := make([][]string, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		cells := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			cells[i] = strings.TrimSpace(row[i])
		}
		dataRows = append(dataRows, cells)
	}

	return dataRows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
