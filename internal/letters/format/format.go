package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultDateFormat is applied when a DATE placeholder carries no format
const DefaultDateFormat = "DD/MM/YYYY"

var monthsLong = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2 January 2006",
}

// ParseDate parses a date from the value shapes placeholders arrive in
func ParseDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Date renders a date through the token formatter. Supported tokens are
// YYYY, YY, MMMM, MMM, MM and DD; unknown text passes through verbatim.
func Date(value interface{}, format string) string {
	t, ok := ParseDate(value)
	if !ok {
		return Text(value)
	}
	if format == "" {
		format = DefaultDateFormat
	}

	month := monthsLong[t.Month()-1]
	year := fmt.Sprintf("%04d", t.Year())

	// longest token first so MMMM is not eaten by MM
	r := strings.NewReplacer(
		"YYYY", year,
		"YY", year[2:],
		"MMMM", month,
		"MMM", month[:3],
		"MM", fmt.Sprintf("%02d", int(t.Month())),
		"DD", fmt.Sprintf("%02d", t.Day()),
	)
	return r.Replace(format)
}

// Currency renders an amount as pound sterling with grouped thousands and no
// decimals. Non-numeric text falls back to the input with a trailing ".00"
// stripped.
func Currency(value interface{}) string {
	n, ok := toFloat(value)
	if !ok {
		s := Text(value)
		return strings.TrimSuffix(s, ".00")
	}
	return "£" + groupThousands(int64(math.Round(math.Abs(n))))
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Number renders a numeric value. The decimal-place count is taken from the
// format string's fractional digits ("0.00" means two places); without a
// format the value renders as an integer string.
func Number(value interface{}, format string) string {
	n, ok := toFloat(value)
	if !ok {
		return Text(value)
	}
	decimals := 0
	if i := strings.Index(format, "."); i >= 0 {
		decimals = len(format) - i - 1
	}
	return strconv.FormatFloat(n, 'f', decimals, 64)
}

// Phone applies UK grouping: a 44-prefixed 12-digit number becomes
// "+44 XXXX XXXXXX", a 0-prefixed 11-digit number "0XXXX XXXXXX"; anything
// else passes through untouched.
func Phone(value interface{}) string {
	s := Text(value)
	digits := digitsOnly(s)
	switch {
	case strings.HasPrefix(digits, "44") && len(digits) == 12:
		return "+44 " + digits[2:6] + " " + digits[6:]
	case strings.HasPrefix(digits, "0") && len(digits) == 11:
		return digits[:5] + " " + digits[5:]
	default:
		return s
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Email lower-cases the address
func Email(value interface{}) string {
	return strings.ToLower(strings.TrimSpace(Text(value)))
}

// addressPartOrder is the fixed rendering order for address maps
var addressPartOrder = []string{"line1", "line2", "city", "county", "postcode", "country"}

// Address joins the non-empty parts of an address map with newlines, in
// fixed order. Non-map values render as plain text.
func Address(value interface{}) string {
	m, ok := value.(map[string]interface{})
	if !ok {
		return Text(value)
	}
	var parts []string
	for _, key := range addressPartOrder {
		if v, ok := m[key]; ok {
			if s := strings.TrimSpace(Text(v)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// Text coerces any value to its string form; nil renders empty
func Text(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return Date(v, DefaultDateFormat)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}
