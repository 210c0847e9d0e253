// Package clients adapts the client, service and user lookups into the data
// bundles the placeholder resolver consumes.
package clients

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/clients/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/clients/repository"
)

// BundleProvider builds resolver data bundles from the lookup repositories.
// Each bundle is fetched once per generation.
type BundleProvider struct {
	clients  *repository.ClientRepository
	services *repository.ServiceRepository
	users    *repository.UserRepository
}

// NewBundleProvider creates a bundle provider
func NewBundleProvider(clients *repository.ClientRepository, services *repository.ServiceRepository, users *repository.UserRepository) *BundleProvider {
	return &BundleProvider{clients: clients, services: services, users: users}
}

// ClientBundle fetches a client and flattens it into a lookup bundle
func (p *BundleProvider) ClientBundle(ctx context.Context, clientID string) (map[string]interface{}, error) {
	client, err := p.clients.FindOne(ctx, clientID)
	if err != nil {
		return nil, err
	}

	bundle := map[string]interface{}{
		"name":        client.Name,
		"clientName":  client.Name,
		"type":        client.Type,
		"isCompany":   client.IsCompany(),
		"companyName": deref(client.CompanyName),
		"status":      client.Status,
		"address": map[string]interface{}{
			"line1":    deref(client.AddressLine1),
			"line2":    deref(client.AddressLine2),
			"city":     deref(client.City),
			"county":   deref(client.County),
			"postcode": deref(client.Postcode),
			"country":  deref(client.Country),
		},
	}

	putIf(bundle, "companyNumber", client.CompanyNumber)
	putIf(bundle, "contactName", client.ContactName)
	putIf(bundle, "email", client.Email)
	putIf(bundle, "phone", client.Phone)
	putIf(bundle, "mobile", client.Mobile)
	putIf(bundle, "vatNumber", client.VATNumber)
	putIf(bundle, "utrNumber", client.UTRNumber)
	putIf(bundle, "payeReference", client.PAYEReference)
	if client.AccountingPeriodEnd != nil {
		bundle["accountingPeriodEnd"] = *client.AccountingPeriodEnd
	}
	if client.IncorporationDate != nil {
		bundle["incorporationDate"] = *client.IncorporationDate
	}

	return bundle, nil
}

// ServiceBundle fetches a service and flattens it into a lookup bundle
func (p *BundleProvider) ServiceBundle(ctx context.Context, serviceID string) (map[string]interface{}, error) {
	service, err := p.services.FindOne(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	bundle := map[string]interface{}{
		"name":      service.Name,
		"kind":      service.Kind,
		"frequency": service.Frequency,
		"status":    service.Status,
	}
	if service.Fee != nil {
		bundle["fee"] = *service.Fee
	}
	if service.AnnualizedFee != nil {
		bundle["annualized"] = *service.AnnualizedFee
	}
	if service.DueDate != nil {
		bundle["dueDate"] = *service.DueDate
	}
	return bundle, nil
}

// UserBundle fetches a staff member and flattens it into a lookup bundle
func (p *BundleProvider) UserBundle(ctx context.Context, userID string) (map[string]interface{}, error) {
	user, err := p.users.FindOne(ctx, userID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"name":     user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"jobTitle": deref(user.JobTitle),
	}, nil
}

// FindClient exposes the raw client lookup for the generation pipeline
func (p *BundleProvider) FindClient(ctx context.Context, clientID string) (*domain.Client, error) {
	return p.clients.FindOne(ctx, clientID)
}

// FindService exposes the raw service lookup
func (p *BundleProvider) FindService(ctx context.Context, serviceID string) (*domain.Service, error) {
	return p.services.FindOne(ctx, serviceID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func putIf(bundle map[string]interface{}, key string, value *string) {
	if value != nil && *value != "" {
		bundle[key] = *value
	}
}
