package render

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

// RenderDOCX renders the letter text to a DOCX buffer. Unlike PDF, inline
// **bold** spans become bold runs and "### " sub-headings get their own
// style.
func (r *Renderer) RenderDOCX(text, templateName string) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	r.docxHeader(doc)

	var paragraph []string
	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		for _, line := range paragraph {
			p := doc.AddParagraph()
			for _, seg := range BoldSegments(line) {
				run := p.AddText(seg.Text)
				run.Size("22")
				if seg.Bold {
					run.Bold()
				}
			}
		}
		paragraph = paragraph[:0]
	}

	for _, raw := range strings.Split(text, "\n") {
		line := ClassifyLine(raw)
		switch line.Kind {
		case LineBlank:
			flush()
			doc.AddParagraph()
		case LineTitle:
			flush()
			doc.AddParagraph().AddText(line.Text).Size("32").Bold()
		case LineHeading:
			flush()
			doc.AddParagraph().AddText(line.Text).Size("26").Bold()
		case LineSubHeading:
			flush()
			doc.AddParagraph().AddText(line.Text).Size("24").Bold()
		case LineDate:
			flush()
			p := doc.AddParagraph()
			p.AddText(line.Text).Size("22").Italic()
			p.Justification("right")
		default:
			paragraph = append(paragraph, line.Text)
		}
	}
	flush()

	r.docxFooter(doc, templateName)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, errors.DocumentGenerationFailed(err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) docxHeader(doc *docx.Docx) {
	p := doc.AddParagraph()
	p.AddText(r.practice.Name).Size("28").Bold()
	p.Justification("center")

	for _, line := range r.headerLines() {
		lp := doc.AddParagraph()
		lp.AddText(line).Size("18").Color("5A5A5A")
		lp.Justification("center")
	}
	doc.AddParagraph()
}

func (r *Renderer) docxFooter(doc *docx.Docx, templateName string) {
	doc.AddParagraph()
	p := doc.AddParagraph()
	p.AddText(r.footerText(templateName)).Size("16").Color("828282")
	p.Justification("center")
}
