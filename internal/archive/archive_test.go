package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildZip writes the given name/content pairs in order.
func buildZip(t *testing.T, entries ...[2]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e[0])
		require.NoError(t, err)
		_, err = f.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestUnpack_ClassifiesEntries(t *testing.T) {
	data := buildZip(t,
		[2]string{"export/expenses.CSV", "a,b\n1,2\n"},
		[2]string{"invoices/inv-1.pdf", "%PDF-1"},
		[2]string{"inv-2.Pdf", "%PDF-2"},
		[2]string{"readme.txt", "hello"},
	)

	got, err := Unpack(data)
	require.NoError(t, err)

	require.True(t, got.HasTabular())
	assert.Equal(t, "expenses.CSV", got.Tabular.Name)
	assert.Equal(t, "a,b\n1,2\n", string(got.Tabular.Data))

	assert.True(t, got.HasDocuments())
	assert.Equal(t, []string{"inv-1.pdf", "inv-2.Pdf"}, got.Documents.Names())
	assert.Equal(t, []string{"readme.txt"}, got.Skipped)
}

func TestUnpack_LastTabularWins(t *testing.T) {
	data := buildZip(t,
		[2]string{"first.csv", "x\n1\n"},
		[2]string{"second.csv", "y\n2\n"},
	)

	got, err := Unpack(data)
	require.NoError(t, err)

	assert.Equal(t, "second.csv", got.Tabular.Name)
	assert.Equal(t, []string{"first.csv"}, got.ShadowedTabular)
}

func TestUnpack_DuplicateDocumentBaseNameOverwrites(t *testing.T) {
	data := buildZip(t,
		[2]string{"a/invoice.pdf", "old"},
		[2]string{"b/invoice.pdf", "new"},
	)

	got, err := Unpack(data)
	require.NoError(t, err)

	require.Len(t, got.Documents, 1)
	assert.Equal(t, "new", string(got.Documents["invoice.pdf"]))
	assert.Equal(t, []string{"invoice.pdf"}, got.OverwrittenDocuments)
}

func TestUnpack_AbsenceIsNotAnError(t *testing.T) {
	got, err := Unpack(buildZip(t, [2]string{"notes.txt", "nothing"}))
	require.NoError(t, err)

	assert.False(t, got.HasTabular())
	assert.False(t, got.HasDocuments())
}

func TestUnpack_IgnoresMacOSMetadataAndDirectories(t *testing.T) {
	data := buildZip(t,
		[2]string{"bundle/", ""},
		[2]string{"__MACOSX/bundle/._invoice.pdf", "junk"},
		[2]string{"bundle/invoice.pdf", "real"},
	)

	got, err := Unpack(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"invoice.pdf"}, got.Documents.Names())
	assert.Equal(t, "real", string(got.Documents["invoice.pdf"]))
}

func TestUnpack_CorruptArchive(t *testing.T) {
	_, err := Unpack([]byte("this is not a zip"))
	require.Error(t, err)

	var formatErr *FormatError
	assert.True(t, errors.As(err, &formatErr))
	assert.ErrorIs(t, err, zip.ErrFormat)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindTabular, Classify("x.csv"))
	assert.Equal(t, KindTabular, Classify("X.CsV"))
	assert.Equal(t, KindDocument, Classify("scan.PDF"))
	assert.Equal(t, KindOther, Classify("sheet.xlsx"))
	assert.Equal(t, KindOther, Classify("csv"))
}

func TestPack_RoundTripsThroughUnpack(t *testing.T) {
	out, err := Pack([]File{
		{Name: "result.xlsx", Data: []byte("sheet")},
		{Name: "documents/a.pdf", Data: []byte("A")},
		{Name: "documents/b.pdf", Data: []byte("B")},
	})
	require.NoError(t, err)

	got, err := Unpack(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, got.Documents.Names())
	assert.Equal(t, []string{"result.xlsx"}, got.Skipped)
}

func TestPack_IsDeterministic(t *testing.T) {
	files := []File{{Name: "a.txt", Data: []byte("same")}}

	first, err := Pack(files)
	require.NoError(t, err)
	second, err := Pack(files)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPack_RejectsDuplicateNames(t *testing.T) {
	_, err := Pack([]File{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)
}
