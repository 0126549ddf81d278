package document

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	ticketWidth     = 80.0
	ticketMargin    = 4.0
	ticketMinHeight = 120.0
	a4Margin        = 15.0
	lineHeight      = 4.5
)

// Render draws page as a PDF. The PDF metadata dates are pinned to page.Date,
// so rendering the same page twice yields the same bytes.
func Render(page Page) ([]byte, error) {
	pdf := newDocument(page)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	cw := width - left - right
	ticket := page.Layout.Format == FormatTicket

	base := 10.0
	if ticket {
		base = 8.0
	}
	align := "L"
	if ticket {
		align = "C"
	}

	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", base+4)
	pdf.CellFormat(cw, lineHeight+2, tr(page.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", base+1)
	for i, line := range page.Issuer {
		if i == 1 {
			pdf.SetFont("Helvetica", "", base)
		}
		pdf.CellFormat(cw, lineHeight, tr(fit(pdf, line, cw)), "", 1, align, false, 0, "")
	}
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "", base)
	pdf.CellFormat(cw, lineHeight, tr("No. "+page.Reference), "", 1, align, false, 0, "")
	pdf.CellFormat(cw, lineHeight, tr("Date: "+page.Date.Format(dateLayout)), "", 1, align, false, 0, "")
	for _, line := range page.Party {
		pdf.CellFormat(cw, lineHeight, tr(fit(pdf, line, cw)), "", 1, align, false, 0, "")
	}
	pdf.Ln(2)

	// Lines
	pdf.SetFont("Helvetica", "B", base)
	for _, col := range page.Columns {
		pdf.CellFormat(cw*col.Width, lineHeight+1, tr(col.Header), "B", 0, col.Align, false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", base)
	for _, row := range page.Rows {
		for i, col := range page.Columns {
			text := ""
			if i < len(row) {
				text = fit(pdf, row[i], cw*col.Width-1)
			}
			pdf.CellFormat(cw*col.Width, lineHeight+1, tr(text), "", 0, col.Align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.CellFormat(cw, 1, "", "T", 1, "", false, 0, "")

	// Totals
	labelWidth := cw * 0.65
	for _, t := range page.Totals {
		style := ""
		if t.Bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, base)
		pdf.CellFormat(labelWidth, lineHeight+1, tr(t.Label), "", 0, "R", false, 0, "")
		pdf.CellFormat(cw-labelWidth, lineHeight+1, tr(t.Value), "", 1, "R", false, 0, "")
	}

	// Fiscal box
	if page.Fiscal != nil {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", base)
		pdf.CellFormat(cw, lineHeight+1, tr("FISCAL INVOICE No. "+page.Fiscal.Number), "LTR", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", base)
		if page.Fiscal.IssuerID != "" {
			pdf.CellFormat(cw, lineHeight, tr("Issuer tax ID: "+page.Fiscal.IssuerID), "LR", 1, "C", false, 0, "")
		}
		pdf.CellFormat(cw, lineHeight+1, tr("Issued: "+page.Fiscal.IssuedAt), "LBR", 1, "C", false, 0, "")
	}

	// Footer
	if len(page.Footer) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", base-1)
		for _, line := range page.Footer {
			pdf.MultiCell(cw, lineHeight, tr(line), "", "C", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", page.Reference, err)
	}
	return buf.Bytes(), nil
}

func newDocument(page Page) *fpdf.Fpdf {
	var pdf *fpdf.Fpdf
	if page.Layout.Format == FormatTicket {
		pdf = fpdf.NewCustom(&fpdf.InitType{
			UnitStr: "mm",
			Size:    fpdf.SizeType{Wd: ticketWidth, Ht: ticketHeight(page)},
		})
		pdf.SetMargins(ticketMargin, ticketMargin, ticketMargin)
		pdf.SetAutoPageBreak(false, 0)
	} else {
		pdf = fpdf.New("P", "mm", "A4", "")
		pdf.SetMargins(a4Margin, a4Margin, a4Margin)
		pdf.SetAutoPageBreak(true, a4Margin)
	}
	pdf.SetCreationDate(page.Date)
	pdf.SetModificationDate(page.Date)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(page.Title+" "+page.Reference, true)
	pdf.SetCreator("saas-commerce", true)
	return pdf
}

// ticketHeight sizes the roll so the whole receipt fits on one page.
func ticketHeight(page Page) float64 {
	lines := 2 + len(page.Issuer) + 2 + len(page.Party) + 1 + len(page.Rows) + len(page.Totals)
	h := float64(lines)*(lineHeight+1) + 2*ticketMargin + 10
	if page.Fiscal != nil {
		h += 3*(lineHeight+1) + 3
	}
	for _, f := range page.Footer {
		h += float64(len(f)/40+1)*lineHeight + 3
	}
	if h < ticketMinHeight {
		return ticketMinHeight
	}
	return h
}

// fit cuts s so it fits in w at the current font.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > w {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
