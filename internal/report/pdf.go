package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const pdfFontFamily = "payouts"

// PDFOptions selects the font. Without a TTF file the core Helvetica font
// is used, which cannot show Cyrillic names.
type PDFOptions struct {
	FontFile string
}

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Employee", 62, "L"},
	{"Completed", 22, "R"},
	{"Revenue", 26, "R"},
	{"Per record", 20, "R"},
	{"Fixed", 20, "R"},
	{"%", 12, "R"},
	{"Total", 28, "R"},
}

func RenderPDF(doc Document, opts PDFOptions) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := func(s string) string { return s }
	if opts.FontFile != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", opts.FontFile)
		pdf.AddUTF8Font(pdfFontFamily, "B", opts.FontFile)
		family = pdfFontFamily
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font: %w", err)
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, tr("Payouts "+doc.Period.String()))
	pdf.Ln(10)
	pdf.SetFont(family, "", 9)
	pdf.Cell(0, 6, tr("Generated "+doc.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont(family, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, r := range doc.Rows {
		cells := []string{
			r.Name,
			strconv.Itoa(r.Completed),
			money(r.Revenue),
			strconv.FormatInt(r.PerRecordRate, 10),
			strconv.FormatInt(r.FixedRate, 10),
			strconv.FormatInt(r.PercentRate, 10),
			strconv.FormatInt(r.Total, 10),
		}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	completed, revenue := doc.Totals()
	pdf.SetFont(family, "B", 9)
	totals := []string{"Total", strconv.Itoa(completed), money(revenue), "", "", "", strconv.FormatInt(doc.Total, 10)}
	for i, c := range pdfColumns {
		pdf.CellFormat(c.width, 7, tr(totals[i]), "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
