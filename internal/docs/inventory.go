// Package docs inspects the invoice documents carried in a bundle.
//
// Documents are passed through to the output unchanged. The inventory only
// reports what was carried: size, page count, and whether the PDF could be
// opened at all. An unreadable document never fails a conversion.
package docs

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/types"
)

// Info describes one document.
type Info struct {
	Name     string `json:"name"`
	Size     int    `json:"size"`
	Pages    int    `json:"pages"`
	Readable bool   `json:"readable"`
	Problem  string `json:"problem,omitempty"`
}

// Inventory inspects every document, in name order.
func Inventory(documents types.DocumentMap) []Info {
	infos := make([]Info, 0, len(documents))
	for _, name := range documents.Names() {
		infos = append(infos, Inspect(name, documents[name]))
	}
	return infos
}

// Inspect opens a single PDF and counts its pages.
func Inspect(name string, data []byte) Info {
	info := Info{Name: name, Size: len(data)}

	pages, err := pageCount(data)
	if err != nil {
		info.Problem = err.Error()
		return info
	}

	info.Pages = pages
	info.Readable = true
	return info
}

// Unreadable returns the names of the documents that could not be opened.
func Unreadable(infos []Info) []string {
	var names []string
	for _, info := range infos {
		if !info.Readable {
			names = append(names, info.Name)
		}
	}
	return names
}

// pageCount opens data with the PDF library. The library panics on some
// malformed inputs, so panics are turned into errors.
func pageCount(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	if len(data) == 0 {
		return 0, fmt.Errorf("document is empty")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("not a readable PDF: %w", err)
	}

	pages = r.NumPage()
	if pages == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pages, nil
}
