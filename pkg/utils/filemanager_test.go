package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestDiscoverInputFiles_ZipOnly(t *testing.T) {
	fm := newTestManager(t)
	for _, name := range []string{"b.zip", "a.zip", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(fm.InputDir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.zip"), 0o755))

	files, err := fm.DiscoverInputFiles("")
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "a.zip", filepath.Base(files[0]))
	assert.Equal(t, "b.zip", filepath.Base(files[1]))
}

func TestArchiveInputAndOutput(t *testing.T) {
	fm := newTestManager(t)
	in := filepath.Join(fm.InputDir, "bundle.zip")
	out := filepath.Join(fm.OutputDir, "bundle_out.zip")
	require.NoError(t, os.WriteFile(in, []byte("in"), 0o644))
	require.NoError(t, os.WriteFile(out, []byte("out"), 0o644))

	archivedIn, err := fm.ArchiveInputFile(in)
	require.NoError(t, err)
	assert.False(t, FileExists(in))
	assert.True(t, FileExists(archivedIn))

	archivedOut, err := fm.ArchiveOutputFile(out)
	require.NoError(t, err)
	assert.True(t, FileExists(out))
	data, err := os.ReadFile(archivedOut)
	require.NoError(t, err)
	assert.Equal(t, "out", string(data))
}

func TestArchive_Disabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveOnSuccess = false
	in := filepath.Join(fm.InputDir, "bundle.zip")
	require.NoError(t, os.WriteFile(in, []byte("in"), 0o644))

	path, err := fm.ArchiveInputFile(in)
	require.NoError(t, err)
	assert.Equal(t, in, path)
	assert.True(t, FileExists(in))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{original}_{date}", map[string]string{"original": "march"})
	assert.True(t, strings.HasPrefix(name, "march_"+time.Now().Format("2006")))
	assert.True(t, strings.HasSuffix(name, ".zip"))

	assert.Equal(t, "fixed.ZIP", GenerateOutputFileName("fixed.ZIP", nil))
	assert.Equal(t, "plain.zip", GenerateOutputFileName("plain", nil))
	assert.Len(t, GenerateOutputFileName("{uuid}", nil), 36+len(".zip"))
}

func TestBaseNameAndIsBundle(t *testing.T) {
	assert.Equal(t, "march", BaseName("/in/march.zip"))
	assert.True(t, IsBundle("x.ZIP"))
	assert.False(t, IsBundle("x.csv"))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "bundle.zip",
		ErrorType:    "ValidationFailure",
		ErrorMessage: "the archive does not contain any PDF invoice documents",
		RowNumber:    2,
		FieldName:    "CTA_GASTO",
	}}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "ValidationFailure")
	assert.Contains(t, string(data), "Row Number:     2")
	assert.Contains(t, string(data), "Field:          CTA_GASTO")
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Now()

	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalRows:       3,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.zip", OutputFile: "a_out.zip", Rows: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.zip", ErrorType: "ArchiveFormatError", ErrorMessage: "invalid archive"}},
	}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Total Bundles:      2")
	assert.Contains(t, out, "a_out.zip")
	assert.Contains(t, out, "ArchiveFormatError")
}
