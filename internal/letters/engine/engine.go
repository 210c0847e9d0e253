package engine

import (
	"strings"
)

// Engine populates a template body from a resolved value map
type Engine interface {
	Evaluate(body string, values map[string]interface{}) (string, error)
}

// handlebarsMarkers are the syntax fragments that select the
// Handlebars-compatible strategy
var handlebarsMarkers = []string{
	"{{#if", "{{#each", "{{#unless", "{{#with",
	"{{/if}}", "{{/each}}", "{{else}}",
}

// IsHandlebars sniffs the raw body for Handlebars block syntax
func IsHandlebars(body string) bool {
	for _, marker := range handlebarsMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// Select picks the evaluation strategy for a template body. The choice is
// made once per body, before any substitution runs.
func Select(body string) Engine {
	if IsHandlebars(body) {
		return NewHandlebars()
	}
	return NewLegacy()
}
