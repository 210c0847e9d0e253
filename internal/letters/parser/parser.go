package parser

import (
	"strings"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
)

// SpanKind classifies a scanned {{...}} span
type SpanKind int

const (
	SpanSimple SpanKind = iota
	SpanTyped
	SpanIfOpen
	SpanListOpen
	SpanEndIf
	SpanEndList
)

// Span is one {{...}} occurrence with its offsets into the original text.
// Start points at the opening brace, End one past the closing brace.
type Span struct {
	Start   int
	End     int
	Content string
	Kind    SpanKind

	// For SpanIfOpen / SpanListOpen the block key; for SpanTyped the
	// parsed type/key/format triple.
	Key    string
	Type   domain.PlaceholderType
	Format string
}

// ScanSpans scans the text left to right and returns every {{...}} span in
// document order. Unterminated braces at the tail are ignored.
func ScanSpans(text string) []Span {
	var spans []Span
	for i := 0; i < len(text); {
		open := strings.Index(text[i:], "{{")
		if open < 0 {
			break
		}
		open += i
		close := strings.Index(text[open+2:], "}}")
		if close < 0 {
			break
		}
		close += open + 2
		span := classify(Span{
			Start:   open,
			End:     close + 2,
			Content: strings.TrimSpace(text[open+2 : close]),
		})
		spans = append(spans, span)
		i = span.End
	}
	return spans
}

func classify(s Span) Span {
	switch {
	case s.Content == "endif":
		s.Kind = SpanEndIf
	case s.Content == "endlist":
		s.Kind = SpanEndList
	case strings.HasPrefix(s.Content, "if:"):
		s.Kind = SpanIfOpen
		s.Key = strings.TrimSpace(strings.TrimPrefix(s.Content, "if:"))
		s.Type = domain.PlaceholderConditional
	case strings.HasPrefix(s.Content, "list:"):
		s.Kind = SpanListOpen
		s.Key = strings.TrimSpace(strings.TrimPrefix(s.Content, "list:"))
		s.Type = domain.PlaceholderList
	case strings.Count(s.Content, ":") == 2:
		parts := strings.SplitN(s.Content, ":", 3)
		s.Kind = SpanTyped
		s.Type = normalizeType(parts[0])
		s.Key = strings.TrimSpace(parts[1])
		s.Format = strings.TrimSpace(parts[2])
	default:
		s.Kind = SpanSimple
		s.Key = s.Content
	}
	return s
}

func normalizeType(raw string) domain.PlaceholderType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DATE":
		return domain.PlaceholderDate
	case "CURRENCY":
		return domain.PlaceholderCurrency
	case "NUMBER":
		return domain.PlaceholderNumber
	case "EMAIL":
		return domain.PlaceholderEmail
	case "PHONE":
		return domain.PlaceholderPhone
	case "ADDRESS":
		return domain.PlaceholderAddress
	case "LIST":
		return domain.PlaceholderList
	default:
		return domain.PlaceholderText
	}
}

// ExtractPlaceholders parses raw template text into its deduplicated,
// document-ordered placeholder set. Re-parsing identical text yields an
// identical result; repeated keys keep the first occurrence's metadata.
func ExtractPlaceholders(text string) []domain.TemplatePlaceholder {
	var out []domain.TemplatePlaceholder
	seen := make(map[string]bool)

	for _, span := range ScanSpans(text) {
		var ph domain.TemplatePlaceholder
		switch span.Kind {
		case SpanEndIf, SpanEndList:
			continue
		case SpanIfOpen:
			ph = domain.TemplatePlaceholder{
				Key:  span.Key,
				Type: domain.PlaceholderConditional,
			}
		case SpanListOpen:
			ph = domain.TemplatePlaceholder{
				Key:  span.Key,
				Type: domain.PlaceholderList,
			}
		case SpanTyped:
			ph = domain.TemplatePlaceholder{
				Key:    span.Key,
				Type:   span.Type,
				Format: span.Format,
			}
		default:
			ph = domain.TemplatePlaceholder{
				Key:  span.Key,
				Type: InferType(span.Key),
			}
		}
		if ph.Key == "" || seen[ph.Key] {
			continue
		}
		seen[ph.Key] = true

		ph.Label = Labelize(ph.Key)
		ph.Source = InferSource(ph.Key)
		ph.SourcePath = deriveSourcePath(ph.Key, ph.Source)
		out = append(out, ph)
	}
	return out
}
