package repository

import (
	"context"
	"database/sql"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/clients/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/database"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

// ClientRepository is the read-only client lookup used by letter generation
type ClientRepository struct {
	db *database.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *database.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindOne fetches a client by id
func (r *ClientRepository) FindOne(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	query := `
		SELECT id, type, name, company_name, company_number, contact_name,
		       email, phone, mobile,
		       address_line1, address_line2, city, county, postcode, country,
		       vat_number, utr_number, paye_reference,
		       accounting_period_end, incorporation_date,
		       status, created_at, updated_at
		FROM clients
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &client, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ClientNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// ServiceRepository is the read-only service lookup
type ServiceRepository struct {
	db *database.DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *database.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// FindOne fetches a service by id
func (r *ServiceRepository) FindOne(ctx context.Context, id string) (*domain.Service, error) {
	var service domain.Service
	query := `
		SELECT id, client_id, name, kind, frequency, fee, annualized_fee,
		       due_date, status, created_at, updated_at
		FROM client_services
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &service, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ServiceNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// UserRepository is the read-only staff lookup
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindOne fetches a user by id
func (r *UserRepository) FindOne(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, name, email, role, job_title, created_at
		FROM users
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
