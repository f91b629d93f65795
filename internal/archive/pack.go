package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// deterministicTimestamp keeps repeated packs of the same files byte-identical.
var deterministicTimestamp = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// File is an entry to write into an output archive.
type File struct {
	Name string
	Data []byte
}

// Pack writes files into a new zip, in the given order.
func Pack(files []File) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate archive entry %q", f.Name)
		}
		seen[f.Name] = true

		header := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: deterministicTimestamp,
		}
		entry, err := w.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
