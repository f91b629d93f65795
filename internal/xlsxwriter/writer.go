// =============================================================================
// Payhawk Bundle Converter - Spreadsheet Writer
// =============================================================================
//
// This module serializes a populated destination table into an .xlsx
// workbook holding a single sheet:
//
//   | SOCIEDAD | ORDEN | ... | ETAPA      |   <- header row, schema order
//   |----------|-------|-----|------------|
//   | 666      | E1    | ... | PRODUCCIÓN |   <- one row per source row
//
// There is no index column. Cells holding plain decimal numbers are written
// as numbers so the accounting import reads amounts as amounts; everything
// else, codes with leading zeros included, is written as text. Blank cells
// are written as empty strings.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/types"
)

// maxSheetNameLength is the longest sheet name a workbook accepts.
const maxSheetNameLength = 31

// =============================================================================
// WRITER
// =============================================================================

// Write serializes table into a workbook and returns its bytes.
//
// PARAMETERS:
//   - table: The populated destination table.
//   - sheetName: The sheet name. It is sanitized with SheetName.
//
// RETURNS:
//   - The .xlsx bytes.
//   - An error if the workbook cannot be built.
func Write(table *types.DestinationTable, sheetName string) ([]byte, error) {
	if table == nil {
		return nil, fmt.Errorf("no table to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	name := SheetName(sheetName)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	if len(table.Columns) > 0 {
		if err := styleHeader(f, name, len(table.Columns)); err != nil {
			return nil, err
		}
	}

	for r, row := range table.Rows() {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = CellValue(cell)
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// =============================================================================
// CELL TYPING
// =============================================================================

// CellValue returns the value to store for cell: a float64 for plain
// decimal numbers, the string itself otherwise.
func CellValue(cell string) interface{} {
	if d, ok := plainDecimal(cell); ok {
		return d.InexactFloat64()
	}
	return cell
}

// plainDecimal parses numbers written the way amounts and rates are
// exported: optional minus sign, digits, optional fraction. Leading zeros
// (account sub-codes like "001"), exponents and thousands separators are
// not numbers here.
func plainDecimal(cell string) (decimal.Decimal, bool) {
	s := strings.TrimPrefix(cell, "-")
	if s == "" || len(s) > 15 {
		return decimal.Decimal{}, false
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) || (hasFrac && (frac == "" || !allDigits(frac))) {
		return decimal.Decimal{}, false
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(cell)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// SHEET NAMING
// =============================================================================

// SheetName makes name usable as a sheet name: characters a workbook
// rejects become "_", it is cut to 31 characters, and blank names become
// "Sheet1".
func SheetName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")

	if utf8.RuneCountInString(name) > maxSheetNameLength {
		name = string([]rune(name)[:maxSheetNameLength])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}
