package parser

import (
	"strings"
	"unicode"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
)

// typeRule maps a key-name predicate to a placeholder type. Rules are
// evaluated top to bottom; the first match wins, so new heuristics are
// additive rather than branch rewrites.
type typeRule struct {
	match func(key string) bool
	typ   domain.PlaceholderType
}

func containsAny(subs ...string) func(string) bool {
	return func(key string) bool {
		for _, s := range subs {
			if strings.Contains(key, s) {
				return true
			}
		}
		return false
	}
}

func hasSuffixAny(subs ...string) func(string) bool {
	return func(key string) bool {
		for _, s := range subs {
			if strings.HasSuffix(key, s) {
				return true
			}
		}
		return false
	}
}

var typeRules = []typeRule{
	{containsAny("date", "time"), domain.PlaceholderDate},
	{hasSuffixAny("at", "on"), domain.PlaceholderDate},
	{containsAny("fee", "price", "cost", "amount", "payment"), domain.PlaceholderCurrency},
	{containsAny("email"), domain.PlaceholderEmail},
	// phone outranks number: keys like "mobileNumber" name a phone
	{containsAny("phone", "mobile", "tel"), domain.PlaceholderPhone},
	{containsAny("number", "count", "qty"), domain.PlaceholderNumber},
	{containsAny("address", "postcode"), domain.PlaceholderAddress},
	{containsAny("directors", "shareholders", "items", "list"), domain.PlaceholderList},
}

// InferType guesses a placeholder's type from its key name
func InferType(key string) domain.PlaceholderType {
	lower := strings.ToLower(key)
	for _, rule := range typeRules {
		if rule.match(lower) {
			return rule.typ
		}
	}
	return domain.PlaceholderText
}

// sourceRule maps a key-name predicate to a data source, same ordered-table
// shape as typeRules.
type sourceRule struct {
	match  func(key string) bool
	source domain.PlaceholderSource
}

var sourceRules = []sourceRule{
	{containsAny("profile"), domain.SourceProfile},
	{containsAny("client", "company"), domain.SourceClient},
	{containsAny("service", "engagement", "fee", "due"), domain.SourceService},
	{containsAny("user", "advisor", "preparedby", "accountant"), domain.SourceUser},
	{containsAny("practice"), domain.SourcePractice},
	{func(key string) bool {
		return strings.Contains(key, "system") ||
			strings.HasPrefix(key, "current") ||
			strings.HasPrefix(key, "today")
	}, domain.SourceSystem},
}

// sourcePrefixes are the key-name roots stripped when deriving a source path
var sourcePrefixes = map[domain.PlaceholderSource][]string{
	domain.SourceProfile:  {"profile"},
	domain.SourceClient:   {"client", "company"},
	domain.SourceService:  {"service", "engagement"},
	domain.SourceUser:     {"user", "advisor", "accountant"},
	domain.SourcePractice: {"practice"},
	domain.SourceSystem:   {"system"},
}

// InferSource guesses which data bundle a placeholder resolves from. A
// dot-path key is judged by its root segment alone.
func InferSource(key string) domain.PlaceholderSource {
	lower := strings.ToLower(key)
	if i := strings.Index(lower, "."); i > 0 {
		lower = lower[:i]
	}
	for _, rule := range sourceRules {
		if rule.match(lower) {
			return rule.source
		}
	}
	return domain.SourceManual
}

// deriveSourcePath strips the source's key-name prefix and lower-cases the
// first remaining character, so "clientCompanyName" under CLIENT becomes
// "companyName" and "client.name" becomes "name".
func deriveSourcePath(key string, source domain.PlaceholderSource) string {
	prefixes, ok := sourcePrefixes[source]
	if !ok {
		return key
	}
	lower := strings.ToLower(key)
	for _, prefix := range prefixes {
		if i := strings.Index(lower, "."); i > 0 && lower[:i] == prefix {
			return key[i+1:]
		}
		if strings.HasPrefix(lower, prefix) && len(key) > len(prefix) {
			return lowerFirst(key[len(prefix):])
		}
	}
	return key
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Labelize turns a camelCase or snake_case key into space-separated,
// title-cased words for user-facing validation messages.
func Labelize(key string) string {
	// dotted keys label by their leaf segment's path context
	key = strings.ReplaceAll(key, ".", " ")
	key = strings.ReplaceAll(key, "_", " ")

	var b strings.Builder
	var prev rune
	for _, r := range key {
		if unicode.IsUpper(r) && prev != 0 && !unicode.IsUpper(prev) && prev != ' ' {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
