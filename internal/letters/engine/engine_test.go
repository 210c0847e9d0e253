package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	assert.IsType(t, &Handlebars{}, Select("Dear {{name}}, {{#if isCompany}}Co{{/if}}"))
	assert.IsType(t, &Handlebars{}, Select("{{#each items}}{{this}}{{/each}}"))
	assert.IsType(t, &Legacy{}, Select("Dear {{name}}, {{if:isCompany}}Co{{endif}}"))
	assert.IsType(t, &Legacy{}, Select("plain {{name}}"))
}

func TestLegacy_ConditionalTruthy(t *testing.T) {
	out, err := NewLegacy().Evaluate(
		"Dear {{name}}, {{if:isCompany}}your company{{endif}} records",
		map[string]interface{}{"name": "Jane", "isCompany": true},
	)
	require.NoError(t, err)
	assert.Equal(t, "Dear Jane, your company records", out)
	assert.NotContains(t, out, "{{if:")
	assert.NotContains(t, out, "{{endif}}")
}

func TestLegacy_ConditionalFalsy(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"false", false},
		{"nil", nil},
		{"empty string", ""},
		{"zero", 0},
		{"empty slice", []interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewLegacy().Evaluate(
				"A{{if:cond}} hidden{{endif}}B",
				map[string]interface{}{"cond": tt.value},
			)
			require.NoError(t, err)
			assert.Equal(t, "AB", out)
		})
	}
}

func TestLegacy_MultipleConditionals(t *testing.T) {
	body := "{{if:a}}one{{endif}} {{if:b}}two{{endif}} {{if:c}}three{{endif}}"
	out, err := NewLegacy().Evaluate(body, map[string]interface{}{
		"a": true, "b": false, "c": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "one  three", out)
}

func TestLegacy_ListOfObjects(t *testing.T) {
	body := "Directors:\n{{list:directors}}- {{name}} ({{role}}){{endlist}}"
	out, err := NewLegacy().Evaluate(body, map[string]interface{}{
		"directors": []interface{}{
			map[string]interface{}{"name": "Jane Smith", "role": "Director"},
			map[string]interface{}{"name": "John Doe", "role": "Secretary"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Directors:\n- Jane Smith (Director)\n- John Doe (Secretary)", out)
}

func TestLegacy_ListOfPrimitives(t *testing.T) {
	out, err := NewLegacy().Evaluate(
		"{{list:services}}* {{item}}{{endlist}}",
		map[string]interface{}{"services": []interface{}{"VAT", "Payroll"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "* VAT\n* Payroll", out)
}

func TestLegacy_EmptyListRendersNothing(t *testing.T) {
	for name, value := range map[string]interface{}{
		"empty":     []interface{}{},
		"non-array": "oops",
		"missing":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			out, err := NewLegacy().Evaluate(
				"A{{list:items}}x{{endlist}}B",
				map[string]interface{}{"items": value},
			)
			require.NoError(t, err)
			assert.Equal(t, "AB", out)
		})
	}
}

func TestLegacy_TypedSpanFormatsOnSubstitution(t *testing.T) {
	out, err := NewLegacy().Evaluate(
		"Fee: {{currency:annualFee:}} due {{date:dueDate:DD MMMM YYYY}}",
		map[string]interface{}{"annualFee": 1500, "dueDate": "2025-11-25"},
	)
	require.NoError(t, err)
	assert.Equal(t, "Fee: £1,500 due 25 November 2025", out)
}

func TestLegacy_SkipsCollectionsInSimpleSubstitution(t *testing.T) {
	out, err := NewLegacy().Evaluate(
		"{{directors}} and {{name}}",
		map[string]interface{}{
			"directors": []interface{}{"A"},
			"name":      "Jane",
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "{{directors}} and Jane", out)
}

func TestLegacy_UnresolvedKeyLeftInPlace(t *testing.T) {
	out, err := NewLegacy().Evaluate("Hello {{missing}}", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "Hello {{missing}}", out)
}

func TestHandlebars_IfElse(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"Dear {{name}}, {{#if isCompany}}Company{{else}}Individual{{/if}}",
		map[string]interface{}{"name": "John", "isCompany": true},
	)
	require.NoError(t, err)
	assert.Equal(t, "Dear John, Company", out)

	out, err = NewHandlebars().Evaluate(
		"Dear {{name}}, {{#if isCompany}}Company{{else}}Individual{{/if}}",
		map[string]interface{}{"name": "John", "isCompany": false},
	)
	require.NoError(t, err)
	assert.Equal(t, "Dear John, Individual", out)
}

func TestHandlebars_Each(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{#each items}}{{this}},{{/each}}",
		map[string]interface{}{"items": []interface{}{"A", "B", "C"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "A,B,C,", out)
}

func TestHandlebars_CalculateAnnualTotal(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{calculateAnnualTotal services}}",
		map[string]interface{}{"services": []interface{}{
			map[string]interface{}{"annualized": 1000},
			map[string]interface{}{"annualized": 500},
		}},
	)
	require.NoError(t, err)
	assert.Equal(t, "1500.00", out)
}

func TestHandlebars_CalculateAnnualTotalFeeFallback(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{calculateAnnualTotal services}}",
		map[string]interface{}{"services": []interface{}{
			map[string]interface{}{"fee": 250.5},
			map[string]interface{}{"annualized": 100},
		}},
	)
	require.NoError(t, err)
	assert.Equal(t, "350.50", out)
}

func TestHandlebars_DateAndCurrencyMatchLegacyFormatting(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{formatDate dueDate \"DD/MM/YYYY\"}} for {{currency fee}}",
		map[string]interface{}{"dueDate": "2025-11-25", "fee": 1500},
	)
	require.NoError(t, err)
	assert.Equal(t, "25/11/2025 for £1,500", out)
}

func TestHandlebars_DaysUntilDue(t *testing.T) {
	restore := nowFunc
	nowFunc = func() time.Time { return time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = restore }()

	out, err := NewHandlebars().Evaluate(
		"{{daysUntilDue dueDate}} days",
		map[string]interface{}{"dueDate": "2025-11-25"},
	)
	require.NoError(t, err)
	assert.Equal(t, "5 days", out)
}

func TestHandlebars_CaseAndDefaultHelpers(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{uppercase name}} {{lowercase name}} {{capitalize word}} {{default missing \"n/a\"}}",
		map[string]interface{}{"name": "Jane", "word": "hello"},
	)
	require.NoError(t, err)
	assert.Equal(t, "JANE jane Hello n/a", out)
}

func TestHandlebars_CollectionHelpers(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{length items}} items: {{join items \", \"}}",
		map[string]interface{}{"items": []interface{}{"VAT", "Payroll"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "2 items: VAT, Payroll", out)
}

func TestHandlebars_ComparisonInsideIf(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{#if (gt fee 1000)}}premium{{else}}standard{{/if}}",
		map[string]interface{}{"fee": 1500},
	)
	require.NoError(t, err)
	assert.Equal(t, "premium", out)
}

func TestHandlebars_UnescapesEntities(t *testing.T) {
	out, err := NewHandlebars().Evaluate(
		"{{name}}",
		map[string]interface{}{"name": "Smith & Sons"},
	)
	require.NoError(t, err)
	assert.Equal(t, "Smith & Sons", out)
}

func TestHandlebars_ParseErrorSurfaces(t *testing.T) {
	_, err := NewHandlebars().Evaluate("{{#if broken", map[string]interface{}{})
	assert.Error(t, err)
}
