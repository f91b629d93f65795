// =============================================================================
// Payhawk Bundle Converter - Archive Unpacker
// =============================================================================
//
// This module opens the uploaded zip bundle and sorts its entries into:
//   - the tabular export (.csv, case-insensitive)
//   - the invoice documents (.pdf, case-insensitive)
//
// POLICIES:
//   - Several CSV entries: the last one in archive order wins. The names
//     it replaced are kept in Unpacked.ShadowedTabular for the caller to log.
//   - Documents are keyed by base name. Two entries with the same base name
//     in different folders collide and the later one wins; the replaced
//     names are kept in Unpacked.OverwrittenDocuments.
//   - Missing CSV or PDFs is not an error here. The validator decides.
//   - A container that cannot be read is a FormatError.
//
// =============================================================================

package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/types"
)

// maxEntryBytes caps a single decompressed entry.
const maxEntryBytes = int64(100 * 1024 * 1024)

// macOSMetadataDir holds resource-fork copies added by the Finder.
const macOSMetadataDir = "__MACOSX/"

// =============================================================================
// ERRORS
// =============================================================================

// FormatError reports an archive that cannot be opened or read as a zip.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid archive: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// =============================================================================
// UNPACK RESULT
// =============================================================================

// Entry is a named file taken out of the archive.
type Entry struct {
	Name string
	Data []byte
}

// Unpacked is the classified content of a bundle.
type Unpacked struct {
	// Tabular is the CSV export, nil when the bundle has none.
	Tabular *Entry

	// Documents maps base filename to PDF bytes.
	Documents types.DocumentMap

	// ShadowedTabular lists CSV entries replaced by a later CSV entry.
	ShadowedTabular []string

	// OverwrittenDocuments lists document base names seen more than once.
	OverwrittenDocuments []string

	// Skipped lists entries that are neither CSV nor PDF.
	Skipped []string
}

// HasTabular reports whether a CSV export was found.
func (u *Unpacked) HasTabular() bool {
	return u.Tabular != nil
}

// HasDocuments reports whether at least one PDF was found.
func (u *Unpacked) HasDocuments() bool {
	return len(u.Documents) > 0
}

// =============================================================================
// UNPACK
// =============================================================================

// Unpack reads every entry of the zip held in data.
//
// RETURNS:
//   - The classified entries.
//   - A *FormatError when the container or one of its entries is corrupt.
func Unpack(data []byte) (*Unpacked, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &FormatError{Err: err}
	}

	result := &Unpacked{Documents: make(types.DocumentMap)}

	for _, file := range reader.File {
		name := normalizeName(file.Name)
		if file.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			continue
		}
		if strings.HasPrefix(name, macOSMetadataDir) || strings.Contains(name, "/"+macOSMetadataDir) {
			continue
		}

		base := path.Base(name)
		kind := Classify(base)
		if kind == KindOther {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		payload, err := readZipFile(file)
		if err != nil {
			return nil, &FormatError{Err: fmt.Errorf("read %s: %w", name, err)}
		}

		switch kind {
		case KindTabular:
			if result.Tabular != nil {
				result.ShadowedTabular = append(result.ShadowedTabular, result.Tabular.Name)
			}
			result.Tabular = &Entry{Name: base, Data: payload}
		case KindDocument:
			if _, exists := result.Documents[base]; exists {
				result.OverwrittenDocuments = append(result.OverwrittenDocuments, base)
			}
			result.Documents[base] = payload
		}
	}

	return result, nil
}

// Kind is the classification of an archive entry.
type Kind int

const (
	KindOther Kind = iota
	KindTabular
	KindDocument
)

// Classify decides the kind of an entry from its extension, ignoring case.
func Classify(name string) Kind {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return KindTabular
	case ".pdf":
		return KindDocument
	default:
		return KindOther
	}
}

// normalizeName turns Windows separators into zip separators.
func normalizeName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

func readZipFile(file *zip.File) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()
	payload, err := io.ReadAll(io.LimitReader(reader, maxEntryBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > maxEntryBytes {
		return nil, fmt.Errorf("zip entry too large")
	}
	return payload, nil
}
