package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
)

// TicketService manages support tickets.
type TicketService struct {
	pool *pgxpool.Pool
}

// NewTicketService creates a new ticket service
func NewTicketService(pool *pgxpool.Pool) *TicketService {
	return &TicketService{pool: pool}
}

// CreateTicketInput carries the fields accepted on ticket creation.
type CreateTicketInput struct {
	TenantID *uuid.UUID `json:"tenant_id"`
	Subject  string     `json:"subject" binding:"required"`
	Body     string     `json:"body"`
	Priority string     `json:"priority"`
}

// CreateTicket opens a new ticket.
func (ts *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*models.Ticket, error) {
	if input.Priority == "" {
		input.Priority = models.PriorityNormal
	}
	if !models.ValidPriority(input.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, input.Priority)
	}

	t := &models.Ticket{TenantID: input.TenantID, Subject: input.Subject, Body: input.Body, Priority: input.Priority}
	err := ts.pool.QueryRow(ctx, `
		INSERT INTO tickets (tenant_id, subject, body, status, priority)
		VALUES ($1, $2, $3, 'open', $4)
		RETURNING id, status, created_at, updated_at
	`, input.TenantID, input.Subject, input.Body, input.Priority,
	).Scan(&t.ID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return t, nil
}

// ListTickets returns tickets filtered by status/priority/tenant, newest first.
func (ts *TicketService) ListTickets(ctx context.Context, status, priority string, tenantID *uuid.UUID) ([]*models.Ticket, error) {
	query := `
		SELECT id, tenant_id, subject, body, status, priority, assigned_to, created_at, updated_at
		FROM tickets WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if priority != "" {
		args = append(args, priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if tenantID != nil {
		args = append(args, *tenantID)
		query += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := ts.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Subject, &t.Body, &t.Status,
			&t.Priority, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

// GetTicket fetches one ticket by id.
func (ts *TicketService) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var t models.Ticket
	err := ts.pool.QueryRow(ctx, `
		SELECT id, tenant_id, subject, body, status, priority, assigned_to, created_at, updated_at
		FROM tickets WHERE id = $1
	`, id).Scan(&t.ID, &t.TenantID, &t.Subject, &t.Body, &t.Status,
		&t.Priority, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch ticket: %w", err)
	}
	return &t, nil
}

// UpdateStatus moves a ticket through its status machine, rejecting
// disallowed transitions.
func (ts *TicketService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Ticket, error) {
	t, err := ts.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(t.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, status)
	}

	_, err = ts.pool.Exec(ctx,
		"UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}
	t.Status = status
	return t, nil
}

// Assign sets or clears the assignee.
func (ts *TicketService) Assign(ctx context.Context, id uuid.UUID, adminID *uuid.UUID) error {
	tag, err := ts.pool.Exec(ctx,
		"UPDATE tickets SET assigned_to = $1, updated_at = NOW() WHERE id = $2", adminID, id)
	if err != nil {
		return fmt.Errorf("failed to assign ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
