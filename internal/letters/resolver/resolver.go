package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/format"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/config"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
)

// BundleFetcher supplies the per-generation data bundles. Each bundle is a
// flat-ish map keyed by field name, with nested maps for dotted lookups.
type BundleFetcher interface {
	ClientBundle(ctx context.Context, clientID string) (map[string]interface{}, error)
	ServiceBundle(ctx context.Context, serviceID string) (map[string]interface{}, error)
	UserBundle(ctx context.Context, userID string) (map[string]interface{}, error)
}

// Resolver resolves a parsed placeholder set against the data bundles for
// one generation call
type Resolver struct {
	fetcher  BundleFetcher
	practice *config.PracticeConfig
	logger   *logger.Logger
	now      func() time.Time
}

// New creates a resolver
func New(fetcher BundleFetcher, practice *config.PracticeConfig, log *logger.Logger) *Resolver {
	return &Resolver{
		fetcher:  fetcher,
		practice: practice,
		logger:   log,
		now:      time.Now,
	}
}

// bundles holds everything fetched once per generation
type bundles struct {
	client   map[string]interface{}
	service  map[string]interface{}
	user     map[string]interface{}
	practice map[string]interface{}
	system   map[string]interface{}
}

// Resolve produces the resolution result for every placeholder. It always
// runs to completion: failures become entries in Errors/MissingRequired, and
// every key stays present in the output map even when it resolved to nil.
func (r *Resolver) Resolve(ctx context.Context, placeholders []domain.TemplatePlaceholder, pctx domain.PlaceholderContext) *domain.PlaceholderResolutionResult {
	result := &domain.PlaceholderResolutionResult{
		Placeholders: make(map[string]*domain.ResolvedPlaceholder, len(placeholders)),
	}

	b := r.fetchBundles(ctx, pctx, result)

	for _, ph := range placeholders {
		value, source := r.resolveValue(ph, pctx, b)

		rp := &domain.ResolvedPlaceholder{
			Key:    ph.Key,
			Value:  value,
			Source: source,
			Type:   ph.Type,
		}

		if isEmpty(value) {
			if ph.Required {
				result.MissingRequired = append(result.MissingRequired, ph.Key)
				result.Errors = append(result.Errors, domain.PlaceholderError{
					Key:     ph.Key,
					Code:    domain.ErrCodeRequiredMissing,
					Message: fmt.Sprintf("%s is required", ph.Label),
				})
			}
			result.Placeholders[ph.Key] = rp
			continue
		}

		for _, problem := range format.ValidateValue(ph, value) {
			result.Errors = append(result.Errors, domain.PlaceholderError{
				Key:     ph.Key,
				Code:    domain.ErrCodeValidationFailed,
				Message: problem,
			})
		}

		rp.FormattedValue = format.Apply(ph, value)
		result.Placeholders[ph.Key] = rp
	}

	return result
}

// fetchBundles fetches every bundle the context names, once. A failed fetch
// is recorded as a placeholder-independent error; placeholders that do not
// depend on that bundle still resolve.
func (r *Resolver) fetchBundles(ctx context.Context, pctx domain.PlaceholderContext, result *domain.PlaceholderResolutionResult) bundles {
	b := bundles{
		practice: r.practiceBundle(),
		system:   r.systemBundle(),
	}

	if pctx.ClientID != "" {
		client, err := r.fetcher.ClientBundle(ctx, pctx.ClientID)
		if err != nil {
			r.logger.WithError(err).Warn().Str("client_id", pctx.ClientID).Msg("Client bundle fetch failed")
			result.Errors = append(result.Errors, domain.PlaceholderError{
				Code:    domain.ErrCodeBundleFetch,
				Message: "client data could not be loaded",
			})
		} else {
			b.client = client
		}
	}

	if pctx.ServiceID != "" {
		service, err := r.fetcher.ServiceBundle(ctx, pctx.ServiceID)
		if err != nil {
			r.logger.WithError(err).Warn().Str("service_id", pctx.ServiceID).Msg("Service bundle fetch failed")
			result.Errors = append(result.Errors, domain.PlaceholderError{
				Code:    domain.ErrCodeBundleFetch,
				Message: "service data could not be loaded",
			})
		} else {
			b.service = service
		}
	}

	if pctx.UserID != "" {
		user, err := r.fetcher.UserBundle(ctx, pctx.UserID)
		if err != nil {
			r.logger.WithError(err).Warn().Str("user_id", pctx.UserID).Msg("User bundle fetch failed")
			result.Errors = append(result.Errors, domain.PlaceholderError{
				Code:    domain.ErrCodeBundleFetch,
				Message: "user data could not be loaded",
			})
		} else {
			b.user = user
		}
	}

	return b
}

// resolveValue walks the precedence chain: manual value, explicit
// source+path lookup, key-name scan, declared default, nil.
func (r *Resolver) resolveValue(ph domain.TemplatePlaceholder, pctx domain.PlaceholderContext, b bundles) (interface{}, domain.PlaceholderSource) {
	if v, ok := pctx.ManualValues[ph.Key]; ok && v != nil {
		return v, domain.SourceManual
	}

	if bundle := b.forSource(ph.Source); bundle != nil && ph.SourcePath != "" {
		if v, ok := lookupPath(bundle, ph.SourcePath); ok && !isEmpty(v) {
			return v, ph.Source
		}
	}

	scan := []struct {
		bundle map[string]interface{}
		source domain.PlaceholderSource
	}{
		{b.client, domain.SourceClient},
		{b.service, domain.SourceService},
		{b.system, domain.SourceSystem},
	}
	for _, s := range scan {
		if s.bundle == nil {
			continue
		}
		if v, ok := s.bundle[ph.Key]; ok && !isEmpty(v) {
			return v, s.source
		}
		if v, ok := s.bundle[strings.ToLower(ph.Key)]; ok && !isEmpty(v) {
			return v, s.source
		}
	}

	if ph.DefaultValue != nil {
		return ph.DefaultValue, domain.SourceDefault
	}
	return nil, ph.Source
}

func (b bundles) forSource(source domain.PlaceholderSource) map[string]interface{} {
	switch source {
	case domain.SourceClient, domain.SourceProfile:
		return b.client
	case domain.SourceService:
		return b.service
	case domain.SourceUser:
		return b.user
	case domain.SourcePractice:
		return b.practice
	case domain.SourceSystem:
		return b.system
	}
	return nil
}

func (r *Resolver) practiceBundle() map[string]interface{} {
	if r.practice == nil {
		return nil
	}
	return map[string]interface{}{
		"name":    r.practice.Name,
		"phone":   r.practice.Phone,
		"email":   r.practice.Email,
		"website": r.practice.Website,
		"address": map[string]interface{}{
			"line1":    r.practice.AddressLine1,
			"line2":    r.practice.AddressLine2,
			"city":     r.practice.City,
			"postcode": r.practice.Postcode,
		},
	}
}

func (r *Resolver) systemBundle() map[string]interface{} {
	now := r.now()
	return map[string]interface{}{
		"currentDate":  now,
		"currentYear":  now.Year(),
		"currentMonth": now.Month().String(),
		"today":        now,
		"date":         format.Date(now, ""),
	}
}

// lookupPath follows a dotted path through nested maps
func lookupPath(bundle map[string]interface{}, path string) (interface{}, bool) {
	current := interface{}(bundle)
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return false
	default:
		return false
	}
}
