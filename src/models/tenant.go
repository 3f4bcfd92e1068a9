package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a customer organization on the platform.
type Tenant struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Plan            string     `json:"plan"`
	Status          string     `json:"status"`
	LastActivityAt  *time.Time `json:"last_activity_at,omitempty"`
	OpenTickets     int        `json:"open_tickets"`
	OverdueInvoices int        `json:"overdue_invoices"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TenantHealth is the derived health view of a tenant.
type TenantHealth struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Score    int       `json:"score"`
	Grade    string    `json:"grade"`
}
