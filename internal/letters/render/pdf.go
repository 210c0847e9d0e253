package render

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ledgerdesk/ledgerdesk-backend/pkg/config"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

// Renderer converts populated letter text into document buffers. The
// branding header comes from the practice configuration; the footer carries
// the template name and generation timestamp.
type Renderer struct {
	practice *config.PracticeConfig
	now      func() time.Time
}

// New creates a renderer
func New(practice *config.PracticeConfig) *Renderer {
	return &Renderer{practice: practice, now: time.Now}
}

// RenderPDF renders the letter text to a PDF buffer. Inline emphasis is not
// parsed for PDF; paragraphs render as plain styled blocks.
func (r *Renderer) RenderPDF(text, templateName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	r.pdfHeader(pdf)

	var paragraph []string
	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5.5, strings.Join(paragraph, "\n"), "", "L", false)
		pdf.Ln(3)
		paragraph = paragraph[:0]
	}

	for _, raw := range strings.Split(text, "\n") {
		line := ClassifyLine(raw)
		switch line.Kind {
		case LineBlank:
			flush()
		case LineTitle:
			flush()
			pdf.SetFont("Helvetica", "B", 16)
			pdf.MultiCell(0, 8, line.Text, "", "L", false)
			pdf.Ln(2)
		case LineHeading:
			flush()
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 7, line.Text, "", "L", false)
			pdf.Ln(1)
		case LineSubHeading:
			// sub-headings are a DOCX refinement; PDF treats them as text
			paragraph = append(paragraph, line.Text)
		case LineDate:
			flush()
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 5.5, line.Text, "", "R", false)
			pdf.Ln(2)
		default:
			paragraph = append(paragraph, line.Text)
		}
	}
	flush()

	r.pdfFooter(pdf, templateName)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.DocumentGenerationFailed(err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) pdfHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 7, r.practice.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	for _, line := range r.headerLines() {
		pdf.CellFormat(0, 4.5, line, "", 1, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	pdf.Ln(4)
	x, y := pdf.GetXY()
	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(20, y, 190, y)
	pdf.SetXY(x, y+6)
}

func (r *Renderer) pdfFooter(pdf *fpdf.Fpdf, templateName string) {
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(0, 4, r.footerText(templateName), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (r *Renderer) headerLines() []string {
	var address []string
	for _, part := range []string{r.practice.AddressLine1, r.practice.AddressLine2, r.practice.City, r.practice.Postcode} {
		if part != "" {
			address = append(address, part)
		}
	}

	var contact []string
	if r.practice.Phone != "" {
		contact = append(contact, "Tel: "+r.practice.Phone)
	}
	if r.practice.Email != "" {
		contact = append(contact, r.practice.Email)
	}
	if r.practice.Website != "" {
		contact = append(contact, r.practice.Website)
	}

	var lines []string
	if len(address) > 0 {
		lines = append(lines, strings.Join(address, ", "))
	}
	if len(contact) > 0 {
		lines = append(lines, strings.Join(contact, "  |  "))
	}
	return lines
}

func (r *Renderer) footerText(templateName string) string {
	return templateName + " - generated " + r.now().Format("02/01/2006 15:04")
}
