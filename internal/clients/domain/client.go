package domain

import (
	"time"
)

// Client types
const (
	ClientTypeCompany    = "company"
	ClientTypeIndividual = "individual"
)

// Client is a practice client record. Lookup is read-only from the letter
// pipeline's point of view.
type Client struct {
	ID            string     `json:"id" db:"id"`
	Type          string     `json:"type" db:"type"`
	Name          string     `json:"name" db:"name"`
	CompanyName   *string    `json:"company_name,omitempty" db:"company_name"`
	CompanyNumber *string    `json:"company_number,omitempty" db:"company_number"`
	ContactName   *string    `json:"contact_name,omitempty" db:"contact_name"`
	Email         *string    `json:"email,omitempty" db:"email"`
	Phone         *string    `json:"phone,omitempty" db:"phone"`
	Mobile        *string    `json:"mobile,omitempty" db:"mobile"`

	AddressLine1 *string `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty" db:"address_line2"`
	City         *string `json:"city,omitempty" db:"city"`
	County       *string `json:"county,omitempty" db:"county"`
	Postcode     *string `json:"postcode,omitempty" db:"postcode"`
	Country      *string `json:"country,omitempty" db:"country"`

	VATNumber     *string `json:"vat_number,omitempty" db:"vat_number"`
	UTRNumber     *string `json:"utr_number,omitempty" db:"utr_number"`
	PAYEReference *string `json:"paye_reference,omitempty" db:"paye_reference"`

	AccountingPeriodEnd *time.Time `json:"accounting_period_end,omitempty" db:"accounting_period_end"`
	IncorporationDate   *time.Time `json:"incorporation_date,omitempty" db:"incorporation_date"`

	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsCompany reports whether the client is a company
func (c *Client) IsCompany() bool {
	return c.Type == ClientTypeCompany
}

// Service is an engaged service for a client (VAT returns, payroll, annual
// accounts and so on)
type Service struct {
	ID            string     `json:"id" db:"id"`
	ClientID      string     `json:"client_id" db:"client_id"`
	Name          string     `json:"name" db:"name"`
	Kind          string     `json:"kind" db:"kind"`
	Frequency     string     `json:"frequency" db:"frequency"`
	Fee           *float64   `json:"fee,omitempty" db:"fee"`
	AnnualizedFee *float64   `json:"annualized_fee,omitempty" db:"annualized_fee"`
	DueDate       *time.Time `json:"due_date,omitempty" db:"due_date"`
	Status        string     `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// User is a practice staff member
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	JobTitle  *string   `json:"job_title,omitempty" db:"job_title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
