package engine

import (
	"sort"
	"strings"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/format"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/parser"
)

// Legacy is the bracket-block evaluator: {{if:}}/{{endif}} conditionals,
// {{list:}}/{{endlist}} repetition, then plain substitution.
type Legacy struct{}

// NewLegacy creates the legacy evaluator
func NewLegacy() *Legacy {
	return &Legacy{}
}

// replacement is one planned splice over the original body. Replacements are
// applied from the highest offset down so earlier offsets stay valid.
type replacement struct {
	start int
	end   int
	text  string
}

func applyPlan(body string, plan []replacement) string {
	sort.Slice(plan, func(i, j int) bool { return plan[i].start > plan[j].start })
	for _, r := range plan {
		body = body[:r.start] + r.text + body[r.end:]
	}
	return body
}

// Evaluate runs the three passes in order: conditionals, lists, simple
// substitution
func (l *Legacy) Evaluate(body string, values map[string]interface{}) (string, error) {
	body = l.evaluateBlocks(body, values, parser.SpanIfOpen, parser.SpanEndIf, l.renderConditional)
	body = l.evaluateBlocks(body, values, parser.SpanListOpen, parser.SpanEndList, l.renderList)
	body = l.substitute(body, values)
	return body, nil
}

// evaluateBlocks pairs the Nth opener with the Nth terminator of the same
// kind, in document order. Nesting is not supported; interleaved blocks pair
// positionally.
func (l *Legacy) evaluateBlocks(body string, values map[string]interface{}, open, terminator parser.SpanKind, render func(key, inner string, values map[string]interface{}) string) string {
	spans := parser.ScanSpans(body)

	var openers, closers []parser.Span
	for _, s := range spans {
		switch s.Kind {
		case open:
			openers = append(openers, s)
		case terminator:
			closers = append(closers, s)
		}
	}

	var plan []replacement
	for i := 0; i < len(openers) && i < len(closers); i++ {
		o, c := openers[i], closers[i]
		if c.Start < o.End {
			continue
		}
		inner := body[o.End:c.Start]
		plan = append(plan, replacement{
			start: o.Start,
			end:   c.End,
			text:  render(o.Key, inner, values),
		})
	}
	return applyPlan(body, plan)
}

func (l *Legacy) renderConditional(key, inner string, values map[string]interface{}) string {
	if truthy(values[key]) {
		return inner
	}
	return ""
}

func (l *Legacy) renderList(key, inner string, values map[string]interface{}) string {
	items, ok := values[key].([]interface{})
	if !ok || len(items) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(items))
	for _, item := range items {
		if fields, ok := item.(map[string]interface{}); ok {
			row := inner
			for name, v := range fields {
				row = strings.ReplaceAll(row, "{{"+name+"}}", format.Text(v))
			}
			rendered = append(rendered, row)
		} else {
			rendered = append(rendered, strings.ReplaceAll(inner, "{{item}}", format.Text(item)))
		}
	}
	return strings.Join(rendered, "\n")
}

// substitute replaces the remaining simple and typed spans. Array and map
// values are skipped here; block passes own those.
func (l *Legacy) substitute(body string, values map[string]interface{}) string {
	var plan []replacement
	for _, s := range parser.ScanSpans(body) {
		if s.Kind != parser.SpanSimple && s.Kind != parser.SpanTyped {
			continue
		}
		value, ok := values[s.Key]
		if !ok {
			continue
		}
		switch value.(type) {
		case []interface{}, map[string]interface{}:
			continue
		}

		text := format.Text(value)
		if s.Kind == parser.SpanTyped {
			text = format.Apply(domain.TemplatePlaceholder{Type: s.Type, Format: s.Format}, value)
		}
		plan = append(plan, replacement{start: s.Start, end: s.End, text: text})
	}
	return applyPlan(body, plan)
}

// truthy mirrors the block-condition rules: booleans as-is, collections
// non-empty, numbers non-zero, otherwise non-nil and non-empty.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
