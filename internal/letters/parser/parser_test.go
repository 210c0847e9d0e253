package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
)

func TestExtractPlaceholders_Simple(t *testing.T) {
	text := "Dear {{clientName}},\n\nYour reference is {{clientReference}}."

	placeholders := ExtractPlaceholders(text)
	require.Len(t, placeholders, 2)

	assert.Equal(t, "clientName", placeholders[0].Key)
	assert.Equal(t, "Client Name", placeholders[0].Label)
	assert.Equal(t, domain.PlaceholderText, placeholders[0].Type)
	assert.Equal(t, domain.SourceClient, placeholders[0].Source)
	assert.Equal(t, "name", placeholders[0].SourcePath)

	assert.Equal(t, "clientReference", placeholders[1].Key)
	assert.Equal(t, "reference", placeholders[1].SourcePath)
}

func TestExtractPlaceholders_Typed(t *testing.T) {
	text := "Due on {{date:serviceDueDate:DD/MM/YYYY}} for {{currency:annualFee:}}"

	placeholders := ExtractPlaceholders(text)
	require.Len(t, placeholders, 2)

	assert.Equal(t, "serviceDueDate", placeholders[0].Key)
	assert.Equal(t, domain.PlaceholderDate, placeholders[0].Type)
	assert.Equal(t, "DD/MM/YYYY", placeholders[0].Format)
	assert.Equal(t, domain.SourceService, placeholders[0].Source)

	assert.Equal(t, "annualFee", placeholders[1].Key)
	assert.Equal(t, domain.PlaceholderCurrency, placeholders[1].Type)
}

func TestExtractPlaceholders_Blocks(t *testing.T) {
	text := "{{if:isCompany}}Ltd{{endif}} {{list:directors}}{{name}}{{endlist}}"

	placeholders := ExtractPlaceholders(text)
	require.Len(t, placeholders, 3)

	assert.Equal(t, "isCompany", placeholders[0].Key)
	assert.Equal(t, domain.PlaceholderConditional, placeholders[0].Type)

	assert.Equal(t, "directors", placeholders[1].Key)
	assert.Equal(t, domain.PlaceholderList, placeholders[1].Type)

	// inner token is still a placeholder, terminators are not
	assert.Equal(t, "name", placeholders[2].Key)
}

func TestExtractPlaceholders_DedupeFirstWins(t *testing.T) {
	text := "{{date:dueDate:DD/MM/YYYY}} then {{dueDate}} again"

	placeholders := ExtractPlaceholders(text)
	require.Len(t, placeholders, 1)
	assert.Equal(t, domain.PlaceholderDate, placeholders[0].Type)
	assert.Equal(t, "DD/MM/YYYY", placeholders[0].Format)
}

func TestExtractPlaceholders_Idempotent(t *testing.T) {
	text := "{{clientName}} {{if:hasVAT}}{{vatNumber}}{{endif}} {{clientName}}"

	first := ExtractPlaceholders(text)
	second := ExtractPlaceholders(text)
	assert.Equal(t, first, second)
}

func TestExtractPlaceholders_DotPath(t *testing.T) {
	placeholders := ExtractPlaceholders("{{client.address.postcode}}")
	require.Len(t, placeholders, 1)

	assert.Equal(t, "client.address.postcode", placeholders[0].Key)
	assert.Equal(t, domain.SourceClient, placeholders[0].Source)
	assert.Equal(t, "address.postcode", placeholders[0].SourcePath)
	assert.Equal(t, domain.PlaceholderAddress, placeholders[0].Type)
}

func TestInferType(t *testing.T) {
	tests := []struct {
		key  string
		want domain.PlaceholderType
	}{
		{"startDate", domain.PlaceholderDate},
		{"submittedAt", domain.PlaceholderDate},
		{"annualFee", domain.PlaceholderCurrency},
		{"paymentAmount", domain.PlaceholderCurrency},
		{"employeeCount", domain.PlaceholderNumber},
		{"payrollQty", domain.PlaceholderNumber},
		{"contactEmail", domain.PlaceholderEmail},
		{"mobileNumber", domain.PlaceholderPhone},
		{"phoneNumber", domain.PlaceholderPhone},
		{"telNumber", domain.PlaceholderPhone},
		{"registeredAddress", domain.PlaceholderAddress},
		{"directors", domain.PlaceholderList},
		{"companyName", domain.PlaceholderText},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.key))
		})
	}
}

func TestInferSource(t *testing.T) {
	tests := []struct {
		key  string
		want domain.PlaceholderSource
	}{
		{"clientName", domain.SourceClient},
		{"companyNumber", domain.SourceClient},
		{"serviceFrequency", domain.SourceService},
		{"engagementStart", domain.SourceService},
		{"advisorName", domain.SourceUser},
		{"practiceName", domain.SourcePractice},
		{"currentDate", domain.SourceSystem},
		{"todayFormatted", domain.SourceSystem},
		{"profileTitle", domain.SourceProfile},
		{"salutation", domain.SourceManual},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, InferSource(tt.key))
		})
	}
}

func TestLabelize(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"clientName", "Client Name"},
		{"annual_fee", "Annual Fee"},
		{"vatNumber", "Vat Number"},
		{"client.address.postcode", "Client Address Postcode"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Labelize(tt.key))
		})
	}
}

func TestScanSpans_UnterminatedTail(t *testing.T) {
	spans := ScanSpans("Hello {{name}} trailing {{broken")
	require.Len(t, spans, 1)
	assert.Equal(t, "name", spans[0].Key)
}
