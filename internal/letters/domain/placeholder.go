package domain

// PlaceholderType classifies what kind of value a placeholder expects
type PlaceholderType string

const (
	PlaceholderText        PlaceholderType = "TEXT"
	PlaceholderDate        PlaceholderType = "DATE"
	PlaceholderCurrency    PlaceholderType = "CURRENCY"
	PlaceholderNumber      PlaceholderType = "NUMBER"
	PlaceholderEmail       PlaceholderType = "EMAIL"
	PlaceholderPhone       PlaceholderType = "PHONE"
	PlaceholderAddress     PlaceholderType = "ADDRESS"
	PlaceholderList        PlaceholderType = "LIST"
	PlaceholderConditional PlaceholderType = "CONDITIONAL"
)

// PlaceholderSource identifies which data bundle a placeholder resolves from
type PlaceholderSource string

const (
	SourceClient   PlaceholderSource = "CLIENT"
	SourceService  PlaceholderSource = "SERVICE"
	SourceUser     PlaceholderSource = "USER"
	SourcePractice PlaceholderSource = "PRACTICE"
	SourceSystem   PlaceholderSource = "SYSTEM"
	SourceProfile  PlaceholderSource = "PROFILE"
	SourceManual   PlaceholderSource = "MANUAL"
	SourceDefault  PlaceholderSource = "DEFAULT"
)

// ValidationRules holds optional declared constraints for a placeholder value
type ValidationRules struct {
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// TemplatePlaceholder describes one named slot extracted from template text.
// Keys are unique within a template; the first occurrence's metadata wins.
type TemplatePlaceholder struct {
	Key          string            `json:"key"`
	Label        string            `json:"label"`
	Type         PlaceholderType   `json:"type"`
	Required     bool              `json:"required"`
	Format       string            `json:"format,omitempty"`
	Source       PlaceholderSource `json:"source,omitempty"`
	SourcePath   string            `json:"source_path,omitempty"`
	DefaultValue interface{}       `json:"default_value,omitempty"`
	Validation   *ValidationRules  `json:"validation,omitempty"`
}

// PlaceholderContext carries the identifiers and manual overrides for one
// generation call
type PlaceholderContext struct {
	ClientID     string                 `json:"client_id"`
	ServiceID    string                 `json:"service_id,omitempty"`
	UserID       string                 `json:"user_id"`
	ManualValues map[string]interface{} `json:"manual_values,omitempty"`
}

// ResolvedPlaceholder is the outcome of resolving a single placeholder
type ResolvedPlaceholder struct {
	Key            string            `json:"key"`
	Value          interface{}       `json:"value"`
	FormattedValue string            `json:"formatted_value"`
	Source         PlaceholderSource `json:"source"`
	Type           PlaceholderType   `json:"type"`
}

// PlaceholderError describes one problem found during resolution
type PlaceholderError struct {
	Key     string `json:"key"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Resolution error codes
const (
	ErrCodeRequiredMissing  = "REQUIRED_FIELD_MISSING"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeBundleFetch      = "BUNDLE_FETCH_FAILED"
)

// PlaceholderResolutionResult is the authoritative verdict for whether a
// generation may proceed. Every placeholder key appears in Placeholders even
// when its resolution failed.
type PlaceholderResolutionResult struct {
	Placeholders    map[string]*ResolvedPlaceholder `json:"placeholders"`
	MissingRequired []string                        `json:"missing_required"`
	Errors          []PlaceholderError              `json:"errors"`
}

// OK reports whether generation may proceed
func (r *PlaceholderResolutionResult) OK() bool {
	return len(r.MissingRequired) == 0 && len(r.Errors) == 0
}

// ValueMap flattens the result into the key -> value map the evaluation
// engines consume: raw values for booleans, numbers, slices and maps,
// formatted strings for everything else.
func (r *PlaceholderResolutionResult) ValueMap() map[string]interface{} {
	values := make(map[string]interface{}, len(r.Placeholders))
	for key, rp := range r.Placeholders {
		switch rp.Value.(type) {
		case bool, int, int64, float64, []interface{}, map[string]interface{}:
			values[key] = rp.Value
		default:
			values[key] = rp.FormattedValue
		}
	}
	return values
}
