package engine

import (
	"html"
	"math"
	"strings"
	"time"

	"github.com/aymerick/raymond"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/format"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

// nowFunc is swapped out in tests
var nowFunc = time.Now

// Handlebars is the Handlebars-compatible evaluator with the fixed helper
// library. Date and currency helpers share the legacy formatter so both
// syntaxes stay interchangeable within one template family.
type Handlebars struct{}

// NewHandlebars creates the Handlebars-compatible evaluator
func NewHandlebars() *Handlebars {
	return &Handlebars{}
}

// Evaluate parses and executes the body against the value map. Letters are
// plain text, so the HTML entity escaping the engine applies is undone on
// the way out.
func (h *Handlebars) Evaluate(body string, values map[string]interface{}) (string, error) {
	tpl, err := raymond.Parse(body)
	if err != nil {
		return "", errors.TemplateParsingFailed("", err)
	}
	tpl.RegisterHelpers(helpers())

	out, err := tpl.Exec(values)
	if err != nil {
		return "", errors.DocumentGenerationFailed(err)
	}
	return html.UnescapeString(out), nil
}

func helpers() map[string]interface{} {
	return map[string]interface{}{
		"formatDate": func(value interface{}, layout string) string {
			return format.Date(value, layout)
		},
		"today": func(layout string) string {
			return format.Date(nowFunc(), layout)
		},
		"daysUntilDue": func(value interface{}) int {
			due, ok := format.ParseDate(value)
			if !ok {
				return 0
			}
			return int(math.Floor(due.Sub(nowFunc()).Hours() / 24))
		},
		"currency":       func(value interface{}) string { return format.Currency(value) },
		"formatCurrency": func(value interface{}) string { return format.Currency(value) },
		"calculateAnnualTotal": func(value interface{}) string {
			items, ok := value.([]interface{})
			if !ok {
				return "0.00"
			}
			var total float64
			for _, item := range items {
				fields, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if n, ok := toNumber(fields["annualized"]); ok {
					total += n
				} else if n, ok := toNumber(fields["fee"]); ok {
					total += n
				}
			}
			return format.Number(total, "0.00")
		},

		"eq":  func(a, b interface{}) bool { return compare(a, b) == 0 },
		"ne":  func(a, b interface{}) bool { return compare(a, b) != 0 },
		"lt":  func(a, b interface{}) bool { return compare(a, b) < 0 },
		"lte": func(a, b interface{}) bool { return compare(a, b) <= 0 },
		"gt":  func(a, b interface{}) bool { return compare(a, b) > 0 },
		"gte": func(a, b interface{}) bool { return compare(a, b) >= 0 },

		"and": func(a, b interface{}) bool { return truthy(a) && truthy(b) },
		"or":  func(a, b interface{}) bool { return truthy(a) || truthy(b) },
		"not": func(a interface{}) bool { return !truthy(a) },

		"uppercase": func(value interface{}) string { return strings.ToUpper(format.Text(value)) },
		"lowercase": func(value interface{}) string { return strings.ToLower(format.Text(value)) },
		"capitalize": func(value interface{}) string {
			s := format.Text(value)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"default": func(value, fallback interface{}) interface{} {
			if truthy(value) {
				return value
			}
			return fallback
		},

		"add":      func(a, b interface{}) float64 { return num(a) + num(b) },
		"subtract": func(a, b interface{}) float64 { return num(a) - num(b) },
		"multiply": func(a, b interface{}) float64 { return num(a) * num(b) },
		"divide": func(a, b interface{}) float64 {
			if num(b) == 0 {
				return 0
			}
			return num(a) / num(b)
		},

		"length": func(value interface{}) int {
			switch v := value.(type) {
			case []interface{}:
				return len(v)
			case map[string]interface{}:
				return len(v)
			case string:
				return len(v)
			}
			return 0
		},
		"join": func(value interface{}, sep string) string {
			items, ok := value.([]interface{})
			if !ok {
				return format.Text(value)
			}
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = format.Text(item)
			}
			return strings.Join(parts, sep)
		},
	}
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func num(value interface{}) float64 {
	n, _ := toNumber(value)
	return n
}

// compare orders two values numerically when both parse as numbers,
// lexically otherwise
func compare(a, b interface{}) int {
	na, aok := toNumber(a)
	nb, bok := toNumber(b)
	if aok && bok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(format.Text(a), format.Text(b))
}
