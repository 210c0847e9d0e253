package render

import (
	"strings"
)

// LineKind classifies one line of populated letter text. The same rules feed
// both renderers so a template body lays out identically in PDF and DOCX.
type LineKind int

const (
	LineBlank LineKind = iota
	LineTitle
	LineHeading
	LineSubHeading
	LineDate
	LineText
)

// Line is one classified line with its marker stripped
type Line struct {
	Kind LineKind
	Text string
}

// ClassifyLine applies the fixed markup convention: "# " title, "## "
// heading, "### " sub-heading, a trimmed line starting "date:" is the
// distinguished date line, blank flushes the paragraph buffer.
func ClassifyLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return Line{Kind: LineBlank}
	case strings.HasPrefix(trimmed, "### "):
		return Line{Kind: LineSubHeading, Text: strings.TrimSpace(trimmed[4:])}
	case strings.HasPrefix(trimmed, "## "):
		return Line{Kind: LineHeading, Text: strings.TrimSpace(trimmed[3:])}
	case strings.HasPrefix(trimmed, "# "):
		return Line{Kind: LineTitle, Text: strings.TrimSpace(trimmed[2:])}
	case strings.HasPrefix(strings.ToLower(trimmed), "date:"):
		return Line{Kind: LineDate, Text: trimmed}
	default:
		return Line{Kind: LineText, Text: raw}
	}
}

// Segment is a run of paragraph text with its emphasis flag
type Segment struct {
	Text string
	Bold bool
}

// BoldSegments splits a line on inline **bold** markers. An unterminated
// marker renders literally.
func BoldSegments(line string) []Segment {
	var segments []Segment
	for line != "" {
		open := strings.Index(line, "**")
		if open < 0 {
			segments = append(segments, Segment{Text: line})
			break
		}
		close := strings.Index(line[open+2:], "**")
		if close < 0 {
			segments = append(segments, Segment{Text: line})
			break
		}
		if open > 0 {
			segments = append(segments, Segment{Text: line[:open]})
		}
		segments = append(segments, Segment{Text: line[open+2 : open+2+close], Bold: true})
		line = line[open+2+close+2:]
	}
	return segments
}
