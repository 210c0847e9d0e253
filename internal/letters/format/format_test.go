package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		format string
		want   string
	}{
		{"default format", "2025-11-25", "", "25/11/2025"},
		{"explicit DD/MM/YYYY", "2025-11-25", "DD/MM/YYYY", "25/11/2025"},
		{"long month", "2025-11-25", "DD MMMM YYYY", "25 November 2025"},
		{"short month and year", "2025-11-25", "DD MMM YY", "25 Nov 25"},
		{"time.Time input", time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), "YYYY-MM-DD", "2025-03-07"},
		{"unparseable passthrough", "not a date", "", "not a date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.value, tt.format))
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"round trip 1500", 1500, "£1,500"},
		{"zero", 0, "£0"},
		{"float rounds", 1234.56, "£1,235"},
		{"negative uses absolute", -250, "£250"},
		{"numeric string", "1000000", "£1,000,000"},
		{"non-numeric strips trailing .00", "POA.00", "POA"},
		{"plain text passthrough", "on request", "on request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.value))
		})
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "42", Number(42.4, ""))
	assert.Equal(t, "42.40", Number(42.4, "0.00"))
	assert.Equal(t, "7.000", Number(7, "#.000"))
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"44 prefixed", "447700900123", "+44 7700 900123"},
		{"44 prefixed with symbols", "+44 7700 900123", "+44 7700 900123"},
		{"0 prefixed", "07700900123", "07700 900123"},
		{"landline", "02079460000", "02079 460000"},
		{"other passthrough", "12345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.value))
		})
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "jane@example.co.uk", Email(" Jane@Example.CO.UK "))
}

func TestAddress(t *testing.T) {
	addr := map[string]interface{}{
		"line1":    "1 High Street",
		"line2":    "",
		"city":     "Leeds",
		"postcode": "LS1 1AA",
		"country":  "United Kingdom",
	}
	assert.Equal(t, "1 High Street\nLeeds\nLS1 1AA\nUnited Kingdom", Address(addr))
	assert.Equal(t, "plain", Address("plain"))
}

func TestValidateValue(t *testing.T) {
	t.Run("email", func(t *testing.T) {
		ph := domain.TemplatePlaceholder{Key: "contactEmail", Label: "Contact Email", Type: domain.PlaceholderEmail}
		assert.Empty(t, ValidateValue(ph, "jane@example.com"))
		assert.Len(t, ValidateValue(ph, "not-an-email"), 1)
	})

	t.Run("phone digit count", func(t *testing.T) {
		ph := domain.TemplatePlaceholder{Key: "phone", Label: "Phone", Type: domain.PlaceholderPhone}
		assert.Empty(t, ValidateValue(ph, "07700900123"))
		assert.Len(t, ValidateValue(ph, "12345"), 1)
	})

	t.Run("declared constraints accumulate", func(t *testing.T) {
		min := 5
		maxVal := 100.0
		ph := domain.TemplatePlaceholder{
			Key: "companyNumber", Label: "Company Number", Type: domain.PlaceholderNumber,
			Validation: &domain.ValidationRules{MinLength: &min, Max: &maxVal},
		}
		problems := ValidateValue(ph, "999")
		assert.Len(t, problems, 2)
	})
}

func TestApply(t *testing.T) {
	assert.Equal(t, "£1,500", Apply(domain.TemplatePlaceholder{Type: domain.PlaceholderCurrency}, 1500))
	assert.Equal(t, "25/11/2025", Apply(domain.TemplatePlaceholder{Type: domain.PlaceholderDate}, "2025-11-25"))
	assert.Equal(t, "hello", Apply(domain.TemplatePlaceholder{Type: domain.PlaceholderText}, "hello"))
}
