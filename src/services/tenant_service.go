package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
)

var tenantUpdatable = map[string]bool{
	"name": true,
	"plan": true,
}

// TenantService manages customer tenants and their derived health view.
type TenantService struct {
	pool *pgxpool.Pool
}

// NewTenantService creates a new tenant service
func NewTenantService(pool *pgxpool.Pool) *TenantService {
	return &TenantService{pool: pool}
}

// CreateTenantInput carries the fields accepted on tenant creation.
type CreateTenantInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
	Plan string `json:"plan"`
}

// CreateTenant registers a tenant; slugs are unique.
func (ts *TenantService) CreateTenant(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	if input.Plan == "" {
		input.Plan = "free"
	}

	var exists bool
	if err := ts.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM tenants WHERE slug = $1)", input.Slug).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check tenant slug: %w", err)
	}
	if exists {
		return nil, ErrDuplicateKey
	}

	t := &models.Tenant{Name: input.Name, Slug: input.Slug, Plan: input.Plan}
	err := ts.pool.QueryRow(ctx, `
		INSERT INTO tenants (name, slug, plan, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING id, status, open_tickets, overdue_invoices, created_at, updated_at
	`, input.Name, input.Slug, input.Plan,
	).Scan(&t.ID, &t.Status, &t.OpenTickets, &t.OverdueInvoices, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return t, nil
}

// ListTenants returns tenants, optionally filtered by status.
func (ts *TenantService) ListTenants(ctx context.Context, status string) ([]*models.Tenant, error) {
	query := `
		SELECT id, name, slug, plan, status, last_activity_at, open_tickets,
			overdue_invoices, created_at, updated_at
		FROM tenants`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := ts.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Plan, &t.Status, &t.LastActivityAt,
			&t.OpenTickets, &t.OverdueInvoices, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}
	return tenants, rows.Err()
}

// GetTenant fetches one tenant by id.
func (ts *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := ts.pool.QueryRow(ctx, `
		SELECT id, name, slug, plan, status, last_activity_at, open_tickets,
			overdue_invoices, created_at, updated_at
		FROM tenants WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Slug, &t.Plan, &t.Status, &t.LastActivityAt,
		&t.OpenTickets, &t.OverdueInvoices, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tenant: %w", err)
	}
	return &t, nil
}

// UpdateTenant updates tenant metadata through the column allow-list.
func (ts *TenantService) UpdateTenant(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Tenant, error) {
	query, args, err := buildUpdate("tenants", tenantUpdatable, fields, id)
	if err != nil {
		return nil, err
	}
	tag, err := ts.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return ts.GetTenant(ctx, id)
}

// SetTenantStatus suspends or reactivates a tenant.
func (ts *TenantService) SetTenantStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != models.TenantActive && status != models.TenantSuspended {
		return fmt.Errorf("%w: unknown tenant status %q", ErrValidation, status)
	}
	tag, err := ts.pool.Exec(ctx,
		"UPDATE tenants SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to set tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Health derives the health view for one tenant.
func (ts *TenantService) Health(ctx context.Context, id uuid.UUID) (*models.TenantHealth, error) {
	t, err := ts.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	score := ComputeHealthScore(t.LastActivityAt, t.OpenTickets, t.OverdueInvoices, time.Now())
	return &models.TenantHealth{TenantID: t.ID, Score: score, Grade: HealthGrade(score)}, nil
}

// ComputeHealthScore derives a 0-100 tenant health score from activity
// recency, open ticket load, and overdue invoices. Pure.
func ComputeHealthScore(lastActivity *time.Time, openTickets, overdueInvoices int, now time.Time) int {
	score := 100

	switch {
	case lastActivity == nil:
		score -= 40
	case now.Sub(*lastActivity) > 30*24*time.Hour:
		score -= 40
	case now.Sub(*lastActivity) > 7*24*time.Hour:
		score -= 20
	}

	ticketPenalty := openTickets * 5
	if ticketPenalty > 30 {
		ticketPenalty = 30
	}
	score -= ticketPenalty

	invoicePenalty := overdueInvoices * 15
	if invoicePenalty > 30 {
		invoicePenalty = 30
	}
	score -= invoicePenalty

	if score < 0 {
		score = 0
	}
	return score
}

// HealthGrade buckets a health score for display.
func HealthGrade(score int) string {
	switch {
	case score >= 80:
		return "healthy"
	case score >= 50:
		return "at_risk"
	default:
		return "critical"
	}
}
