package xlsxparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an .xlsx with the given rows on its first sheet.
func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseBytes_HeaderRowInOrder(t *testing.T) {
	data := workbook(t,
		[]interface{}{"SOCIEDAD", " ORDEN ", "FECHA.FRA"},
		[]interface{}{"ignored", "rows", "below"},
	)

	schema, err := ParseBytes(data, "PLANTILLA A3.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "PLANTILLA A3", schema.Name)
	assert.Equal(t, []string{"SOCIEDAD", " ORDEN ", "FECHA.FRA"}, schema.Columns)
	assert.Equal(t, []string{"SOCIEDAD", "ORDEN", "FECHA.FRA"}, schema.TrimmedColumns())
}

func TestParseBytes_BlankCellsInsideHeader(t *testing.T) {
	data := workbook(t, []interface{}{"A", "", "C", "", ""})

	schema, err := ParseBytes(data, "t.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Unnamed: 1", "C"}, schema.Columns)
}

func TestParseBytes_DuplicateColumn(t *testing.T) {
	data := workbook(t, []interface{}{"A", "B", " A"})

	_, err := ParseBytes(data, "t.xlsx")
	assert.Error(t, err)
}

func TestParseBytes_NoHeader(t *testing.T) {
	_, err := ParseBytes(workbook(t), "t.xlsx")
	assert.Error(t, err)
}

func TestParseBytes_NotAWorkbook(t *testing.T) {
	_, err := ParseBytes([]byte("plain text"), "t.xlsx")
	assert.Error(t, err)
}

func TestParse_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "destination.xlsx")
	require.NoError(t, os.WriteFile(path, workbook(t, []interface{}{"X", "Y"}), 0o644))

	schema, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "destination", schema.Name)
	assert.Equal(t, []string{"X", "Y"}, schema.Columns)
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "plantilla", SchemaName("/tmp/plantilla.xlsx"))
	assert.Equal(t, "Sheet1", SchemaName(".xlsx"))
}
