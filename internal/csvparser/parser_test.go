package csvparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/config"
)

var defaultSettings = config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"}

func TestParse_OrderedColumnsAndTrimmedHeaders(t *testing.T) {
	data := "Expense ID , Total Amount (EUR),Account Code\nE1,10.50,570-001\nE2,3,600\n"

	table, err := Parse([]byte(data), "export.csv", defaultSettings)
	require.NoError(t, err)

	assert.Equal(t, "export.csv", table.SourceFile)
	assert.Equal(t, 2, table.RowCount)
	assert.Equal(t, []string{"Expense ID", "Total Amount (EUR)", "Account Code"}, table.ColumnNames())

	ids, ok := table.Column("Expense ID")
	require.True(t, ok)
	assert.Equal(t, []string{"E1", "E2"}, ids)

	codes, ok := table.Column("  Account Code ")
	require.True(t, ok)
	assert.Equal(t, []string{"570-001", "600"}, codes)
}

func TestParse_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Expense ID\nE1\n")...)

	table, err := Parse(data, "bom.csv", defaultSettings)
	require.NoError(t, err)

	_, ok := table.Column("Expense ID")
	assert.True(t, ok)
}

func TestParse_QuotedFieldsAndRaggedRows(t *testing.T) {
	data := "A,B,C\n\"x, y\",2\n\n1,2,3,4\n"

	table, err := Parse([]byte(data), "ragged.csv", defaultSettings)
	require.NoError(t, err)

	require.Equal(t, 2, table.RowCount)
	a, _ := table.Column("A")
	c, _ := table.Column("C")
	assert.Equal(t, []string{"x, y", "1"}, a)
	assert.Equal(t, []string{"", "3"}, c)
	for _, col := range table.Columns {
		assert.Len(t, col.Cells, table.RowCount)
	}
}

func TestParse_BlankHeaderGetsPositionalName(t *testing.T) {
	table, err := Parse([]byte("A,,C\n1,2,3\n"), "x.csv", defaultSettings)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Column_2", "C"}, table.ColumnNames())
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := Parse([]byte("A,B\n"), "x.csv", defaultSettings)
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount)
	assert.Len(t, table.Columns, 2)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil, "empty.csv", defaultSettings)
	assert.Error(t, err)
}

func TestParse_SemicolonLatin1(t *testing.T) {
	// "Promoción" encoded as ISO-8859-1.
	data := []byte("Promoci\xf3n External ID;Net Amount (EUR)\nP-1;12,5\n")
	settings := config.CSVSettings{Delimiter: "semicolon", Encoding: "ISO-8859-1"}

	table, err := Parse(data, "latin.csv", settings)
	require.NoError(t, err)

	cells, ok := table.Column("Promoción External ID")
	require.True(t, ok)
	assert.Equal(t, []string{"P-1"}, cells)

	net, _ := table.Column("Net Amount (EUR)")
	assert.Equal(t, []string{"12,5"}, net)
}

func TestParse_UnsupportedEncoding(t *testing.T) {
	_, err := Parse([]byte("A\n1\n"), "x.csv", config.CSVSettings{Encoding: "EBCDIC"})
	assert.Error(t, err)
}

func TestDelimiter(t *testing.T) {
	assert.Equal(t, ',', Delimiter(""))
	assert.Equal(t, '\t', Delimiter("tab"))
	assert.Equal(t, '|', Delimiter("pipe"))
	assert.Equal(t, ';', Delimiter(";"))
	assert.Equal(t, '#', Delimiter("#"))
}
