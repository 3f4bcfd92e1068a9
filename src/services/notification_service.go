package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
)

// NotificationService manages in-app notifications.
type NotificationService struct {
	pool *pgxpool.Pool
}

// NewNotificationService creates a new notification service
func NewNotificationService(pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{pool: pool}
}

// CreateNotificationInput carries the fields accepted on creation.
type CreateNotificationInput struct {
	Audience string `json:"audience"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	Severity string `json:"severity"`
}

// Create inserts a notification.
func (ns *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	if input.Audience == "" {
		input.Audience = "admins"
	}
	if input.Severity == "" {
		input.Severity = "info"
	}

	n := &models.Notification{Audience: input.Audience, Title: input.Title, Body: input.Body, Severity: input.Severity}
	err := ns.pool.QueryRow(ctx, `
		INSERT INTO notifications (audience, title, body, severity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`, input.Audience, input.Title, input.Body, input.Severity,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// List returns notifications for an audience, newest first.
func (ns *NotificationService) List(ctx context.Context, audience string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, audience, title, body, severity, is_read, created_at
		FROM notifications WHERE 1=1`
	args := []any{}
	if audience != "" {
		args = append(args, audience)
		query += fmt.Sprintf(" AND audience = $%d", len(args))
	}
	if unreadOnly {
		query += " AND is_read = false"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := ns.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var items []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Audience, &n.Title, &n.Body, &n.Severity, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

// MarkRead flags one notification as read.
func (ns *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := ns.pool.Exec(ctx, "UPDATE notifications SET is_read = true WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCount returns the number of unread notifications for an audience.
func (ns *NotificationService) UnreadCount(ctx context.Context, audience string) (int, error) {
	var count int
	err := ns.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE audience = $1 AND is_read = false", audience,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
