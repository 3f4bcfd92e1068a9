package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
)

var webhookUpdatable = map[string]bool{
	"name":        true,
	"url":         true,
	"events":      true,
	"secret":      true,
	"description": true,
	"is_active":   true,
}

// WebhookService manages webhook subscriptions. The lifecycle mirrors API
// keys: secret visible once at creation, masked afterwards, rotatable only
// through a full update.
type WebhookService struct {
	pool *pgxpool.Pool
}

// NewWebhookService creates a new webhook service
func NewWebhookService(pool *pgxpool.Pool) *WebhookService {
	return &WebhookService{pool: pool}
}

// CreateWebhookInput carries the fields accepted on webhook creation.
type CreateWebhookInput struct {
	Name        string   `json:"name" binding:"required"`
	URL         string   `json:"url" binding:"required"`
	Events      []string `json:"events" binding:"required"`
	Secret      string   `json:"secret"`
	Description string   `json:"description"`
}

// CreateWebhook registers a webhook. A secret is generated unless the caller
// supplies one; either way it appears in plaintext only in this response.
func (ws *WebhookService) CreateWebhook(ctx context.Context, input CreateWebhookInput) (*models.Webhook, error) {
	secret := input.Secret
	if secret == "" {
		generated, err := GenerateWebhookSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
	}

	eventsJSON, err := json.Marshal(input.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}

	wh := &models.Webhook{
		Name:          input.Name,
		URL:           input.URL,
		Events:        input.Events,
		RawSecret:     secret,
		DisplaySecret: MaskSecret(secret),
		Description:   input.Description,
	}

	err = ws.pool.QueryRow(ctx, `
		INSERT INTO webhooks (name, url, events, secret, description, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, is_active, created_at, updated_at
	`, input.Name, input.URL, string(eventsJSON), secret, input.Description,
	).Scan(&wh.ID, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}

	return wh, nil
}

// ListWebhooks returns all webhooks with masked secrets.
func (ws *WebhookService) ListWebhooks(ctx context.Context) ([]*models.Webhook, error) {
	rows, err := ws.pool.Query(ctx, `
		SELECT id, name, url, events, secret, description, is_active, last_delivery, created_at, updated_at
		FROM webhooks
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}
	defer rows.Close()

	var hooks []*models.Webhook
	for rows.Next() {
		wh, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, wh)
	}
	return hooks, rows.Err()
}

// GetWebhook returns one webhook, masked.
func (ws *WebhookService) GetWebhook(ctx context.Context, id uuid.UUID) (*models.Webhook, error) {
	row := ws.pool.QueryRow(ctx, `
		SELECT id, name, url, events, secret, description, is_active, last_delivery, created_at, updated_at
		FROM webhooks WHERE id = $1
	`, id)

	wh, err := scanWebhook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return wh, nil
}

func scanWebhook(row pgx.Row) (*models.Webhook, error) {
	var wh models.Webhook
	var secret, eventsJSON string
	err := row.Scan(
		&wh.ID, &wh.Name, &wh.URL, &eventsJSON, &secret, &wh.Description,
		&wh.IsActive, &wh.LastDelivery, &wh.CreatedAt, &wh.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	wh.DisplaySecret = MaskSecret(secret)
	if err := json.Unmarshal([]byte(eventsJSON), &wh.Events); err != nil {
		wh.Events = []string{}
	}
	return &wh, nil
}

// UpdateWebhookInput carries the fields a full update may replace, including
// the secret.
type UpdateWebhookInput struct {
	Name        *string   `json:"name"`
	URL         *string   `json:"url"`
	Events      *[]string `json:"events"`
	Secret      *string   `json:"secret"`
	Description *string   `json:"description"`
	IsActive    *bool     `json:"is_active"`
}

// UpdateWebhook applies a partial update through the column allow-list. When
// a new secret is supplied, the response carries its plaintext once.
func (ws *WebhookService) UpdateWebhook(ctx context.Context, id uuid.UUID, input UpdateWebhookInput) (*models.Webhook, error) {
	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.URL != nil {
		fields["url"] = *input.URL
	}
	if input.Events != nil {
		data, err := json.Marshal(*input.Events)
		if err != nil {
			return nil, fmt.Errorf("failed to encode events: %w", err)
		}
		fields["events"] = string(data)
	}
	if input.Secret != nil && *input.Secret != "" {
		fields["secret"] = *input.Secret
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	query, args, err := buildUpdate("webhooks", webhookUpdatable, fields, id)
	if err != nil {
		return nil, err
	}

	tag, err := ws.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	wh, err := ws.GetWebhook(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Secret != nil && *input.Secret != "" {
		wh.RawSecret = *input.Secret
	}
	return wh, nil
}

// SoftDeleteWebhook deactivates a webhook, appending the reason to its
// description for later inspection.
func (ws *WebhookService) SoftDeleteWebhook(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := ws.pool.Exec(ctx, `
		UPDATE webhooks
		SET is_active = false,
			description = CASE WHEN $1 = '' THEN description
				ELSE description || ' [deactivated: ' || $1 || ']' END,
			updated_at = NOW()
		WHERE id = $2
	`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordTestDelivery stamps last_delivery for an active webhook and returns
// the refreshed record. No other state changes.
func (ws *WebhookService) RecordTestDelivery(ctx context.Context, id uuid.UUID) (*models.Webhook, error) {
	tag, err := ws.pool.Exec(ctx,
		"UPDATE webhooks SET last_delivery = NOW() WHERE id = $1 AND is_active = true", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record test delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return ws.GetWebhook(ctx, id)
}
