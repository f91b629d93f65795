// Package fixtures builds in-memory bundles, schema templates and PDFs for
// tests.
package fixtures

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/archive"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/validation"
)

// ExpenseCSV is a three-row Payhawk export with the columns the end-to-end
// scenario uses.
const ExpenseCSV = "Expense ID,Total Amount (EUR),Document Date,Account Code\n" +
	"EXP-001,121.00,2024-03-15,570-001\n" +
	"EXP-002,60.50,2024-03-18,629\n" +
	"EXP-003,10,not a date,600-12\n"

// Bundle zips name/content pairs in order.
func Bundle(entries ...archive.File) ([]byte, error) {
	return archive.Pack(entries)
}

// StandardBundle is ExpenseCSV plus two one-page invoices.
func StandardBundle() ([]byte, error) {
	return Bundle(
		archive.File{Name: "payhawk/expenses.csv", Data: []byte(ExpenseCSV)},
		archive.File{Name: "payhawk/invoices/EXP-001.pdf", Data: PDF(1)},
		archive.File{Name: "payhawk/invoices/EXP-002.pdf", Data: PDF(2)},
	)
}

// PayhawkColumns is every required column plus FECHA.FRA.
func PayhawkColumns() []string {
	return append(validation.RequiredColumns(), "FECHA.FRA")
}

// Schema builds a template workbook whose header row is columns.
func Schema(columns ...string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF builds a PDF with the given number of empty pages and a correct
// cross-reference table.
func PDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	buf.WriteString("%PDF-1.4\n")

	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	object("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	for i := 0; i < pages; i++ {
		object("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}
