package format

import (
	"fmt"
	"regexp"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateValue runs the type-specific syntactic check plus any declared
// constraints against a non-empty resolved value. It returns every problem
// found, not just the first.
func ValidateValue(ph domain.TemplatePlaceholder, value interface{}) []string {
	var problems []string

	text := Text(value)
	switch ph.Type {
	case domain.PlaceholderEmail:
		if !emailPattern.MatchString(text) {
			problems = append(problems, fmt.Sprintf("%s is not a valid email address", ph.Label))
		}
	case domain.PlaceholderPhone:
		if len(digitsOnly(text)) < 10 {
			problems = append(problems, fmt.Sprintf("%s is not a valid phone number", ph.Label))
		}
	case domain.PlaceholderDate:
		if _, ok := ParseDate(value); !ok {
			problems = append(problems, fmt.Sprintf("%s is not a valid date", ph.Label))
		}
	case domain.PlaceholderNumber, domain.PlaceholderCurrency:
		if _, ok := toFloat(value); !ok {
			problems = append(problems, fmt.Sprintf("%s is not a valid number", ph.Label))
		}
	}

	if ph.Validation != nil {
		problems = append(problems, checkConstraints(ph, text, value)...)
	}
	return problems
}

func checkConstraints(ph domain.TemplatePlaceholder, text string, value interface{}) []string {
	var problems []string
	rules := ph.Validation

	if rules.MinLength != nil && len(text) < *rules.MinLength {
		problems = append(problems, fmt.Sprintf("%s must be at least %d characters", ph.Label, *rules.MinLength))
	}
	if rules.MaxLength != nil && len(text) > *rules.MaxLength {
		problems = append(problems, fmt.Sprintf("%s must be at most %d characters", ph.Label, *rules.MaxLength))
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s has an invalid validation pattern", ph.Label))
		} else if !re.MatchString(text) {
			problems = append(problems, fmt.Sprintf("%s does not match the required format", ph.Label))
		}
	}
	if rules.Min != nil || rules.Max != nil {
		if n, ok := toFloat(value); ok {
			if rules.Min != nil && n < *rules.Min {
				problems = append(problems, fmt.Sprintf("%s must be at least %v", ph.Label, *rules.Min))
			}
			if rules.Max != nil && n > *rules.Max {
				problems = append(problems, fmt.Sprintf("%s must be at most %v", ph.Label, *rules.Max))
			}
		}
	}
	return problems
}

// Apply formats a resolved value according to the placeholder's type
func Apply(ph domain.TemplatePlaceholder, value interface{}) string {
	switch ph.Type {
	case domain.PlaceholderDate:
		return Date(value, ph.Format)
	case domain.PlaceholderCurrency:
		return Currency(value)
	case domain.PlaceholderNumber:
		return Number(value, ph.Format)
	case domain.PlaceholderPhone:
		return Phone(value)
	case domain.PlaceholderEmail:
		return Email(value)
	case domain.PlaceholderAddress:
		return Address(value)
	default:
		return Text(value)
	}
}
