package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
)

// AlertService manages operational alerts.
type AlertService struct {
	pool *pgxpool.Pool
}

// NewAlertService creates a new alert service
func NewAlertService(pool *pgxpool.Pool) *AlertService {
	return &AlertService{pool: pool}
}

// CreateAlertInput carries the fields accepted on alert creation.
type CreateAlertInput struct {
	Source   string `json:"source" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Severity string `json:"severity"`
}

// Create raises a new active alert.
func (als *AlertService) Create(ctx context.Context, input CreateAlertInput) (*models.Alert, error) {
	if input.Severity == "" {
		input.Severity = "warning"
	}

	a := &models.Alert{Source: input.Source, Message: input.Message, Severity: input.Severity}
	err := als.pool.QueryRow(ctx, `
		INSERT INTO alerts (source, message, severity, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING id, status, created_at
	`, input.Source, input.Message, input.Severity,
	).Scan(&a.ID, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	return a, nil
}

// List returns alerts, optionally filtered by status, newest first.
func (als *AlertService) List(ctx context.Context, status string) ([]*models.Alert, error) {
	query := `
		SELECT id, source, message, severity, status, acknowledged_by,
			acknowledged_at, resolved_at, created_at
		FROM alerts`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := als.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Source, &a.Message, &a.Severity, &a.Status,
			&a.AcknowledgedBy, &a.AcknowledgedAt, &a.ResolvedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// Acknowledge marks an active alert as seen by an admin.
func (als *AlertService) Acknowledge(ctx context.Context, id uuid.UUID, adminID uuid.UUID) error {
	tag, err := als.pool.Exec(ctx, `
		UPDATE alerts
		SET status = 'acknowledged', acknowledged_by = $1, acknowledged_at = NOW()
		WHERE id = $2 AND status = 'active'
	`, adminID, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Resolve closes an alert from either active or acknowledged state.
func (als *AlertService) Resolve(ctx context.Context, id uuid.UUID) error {
	tag, err := als.pool.Exec(ctx, `
		UPDATE alerts
		SET status = 'resolved', resolved_at = NOW()
		WHERE id = $1 AND status IN ('active', 'acknowledged')
	`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
