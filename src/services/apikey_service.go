package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
)

const defaultKeyPrefix = "sk"

var apiKeyUpdatable = map[string]bool{
	"key_name":    true,
	"description": true,
	"permissions": true,
	"expires_at":  true,
}

// APIKeyService manages the platform API key lifecycle: generate, update
// metadata, rotate, revoke. The raw key leaves this service exactly once per
// generation or rotation.
type APIKeyService struct {
	pool *pgxpool.Pool
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(pool *pgxpool.Pool) *APIKeyService {
	return &APIKeyService{pool: pool}
}

// GenerateKeyInput carries the fields accepted when generating a key.
type GenerateKeyInput struct {
	KeyName       string   `json:"key_name" binding:"required"`
	Permissions   []string `json:"permissions"`
	Prefix        string   `json:"prefix"`
	ExpiresInDays int      `json:"expires_in_days"`
	Description   string   `json:"description"`
}

// GenerateKey creates a new active API key. The returned model carries the
// plaintext key in RawKey; it is never retrievable again.
func (aks *APIKeyService) GenerateKey(ctx context.Context, input GenerateKeyInput) (*models.APIKey, error) {
	prefix := input.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	rawKey, err := GenerateAPIKey(prefix)
	if err != nil {
		return nil, err
	}

	permissions := input.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	permissionsJSON, err := json.Marshal(permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode permissions: %w", err)
	}

	var expiresAt *time.Time
	if input.ExpiresInDays > 0 {
		t := time.Now().AddDate(0, 0, input.ExpiresInDays)
		expiresAt = &t
	}

	key := &models.APIKey{
		KeyName:     input.KeyName,
		RawKey:      rawKey,
		DisplayKey:  MaskSecret(rawKey),
		KeyPrefix:   prefix,
		Permissions: permissions,
		Description: input.Description,
		ExpiresAt:   expiresAt,
	}

	err = aks.pool.QueryRow(ctx, `
		INSERT INTO api_keys (key_name, api_key, key_prefix, permissions, description, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, is_active, created_at, updated_at
	`, input.KeyName, rawKey, prefix, string(permissionsJSON), input.Description, expiresAt,
	).Scan(&key.ID, &key.IsActive, &key.CreatedAt, &key.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	return key, nil
}

// ListKeys returns all API keys with masked display values only.
func (aks *APIKeyService) ListKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := aks.pool.Query(ctx, `
		SELECT id, key_name, api_key, key_prefix, permissions, description,
			expires_at, is_active, revoked_at, revoke_reason, created_at, updated_at
		FROM api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query API keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// GetKey returns one API key, masked.
func (aks *APIKeyService) GetKey(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	row := aks.pool.QueryRow(ctx, `
		SELECT id, key_name, api_key, key_prefix, permissions, description,
			expires_at, is_active, revoked_at, revoke_reason, created_at, updated_at
		FROM api_keys WHERE id = $1
	`, id)

	key, err := scanAPIKey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return key, nil
}

// scanAPIKey reads a key row and masks the secret immediately; the raw value
// never leaves the scan for read paths.
func scanAPIKey(row pgx.Row) (*models.APIKey, error) {
	var key models.APIKey
	var rawKey, permissionsJSON string
	err := row.Scan(
		&key.ID, &key.KeyName, &rawKey, &key.KeyPrefix, &permissionsJSON,
		&key.Description, &key.ExpiresAt, &key.IsActive, &key.RevokedAt,
		&key.RevokeReason, &key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	key.DisplayKey = MaskSecret(rawKey)
	if err := json.Unmarshal([]byte(permissionsJSON), &key.Permissions); err != nil {
		key.Permissions = []string{}
	}
	return &key, nil
}

// UpdateKeyInput carries the metadata fields an update may touch. The secret
// itself is only changed through rotation.
type UpdateKeyInput struct {
	KeyName       *string   `json:"key_name"`
	Description   *string   `json:"description"`
	Permissions   *[]string `json:"permissions"`
	ExpiresInDays *int      `json:"expires_in_days"`
}

// UpdateKey updates key metadata through the column allow-list.
func (aks *APIKeyService) UpdateKey(ctx context.Context, id uuid.UUID, input UpdateKeyInput) (*models.APIKey, error) {
	fields := map[string]any{}
	if input.KeyName != nil {
		fields["key_name"] = *input.KeyName
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Permissions != nil {
		data, err := json.Marshal(*input.Permissions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode permissions: %w", err)
		}
		fields["permissions"] = string(data)
	}
	if input.ExpiresInDays != nil {
		if *input.ExpiresInDays > 0 {
			fields["expires_at"] = time.Now().AddDate(0, 0, *input.ExpiresInDays)
		} else {
			fields["expires_at"] = nil
		}
	}

	query, args, err := buildUpdate("api_keys", apiKeyUpdatable, fields, id)
	if err != nil {
		return nil, err
	}

	tag, err := aks.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return aks.GetKey(ctx, id)
}

// RotateKey replaces the stored secret in place. The old value is invalid the
// moment the update commits; the new plaintext is returned exactly once.
func (aks *APIKeyService) RotateKey(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	var prefix string
	err := aks.pool.QueryRow(ctx,
		"SELECT key_prefix FROM api_keys WHERE id = $1 AND is_active = true", id,
	).Scan(&prefix)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read API key: %w", err)
	}

	rawKey, err := GenerateAPIKey(prefix)
	if err != nil {
		return nil, err
	}

	tag, err := aks.pool.Exec(ctx,
		"UPDATE api_keys SET api_key = $1, updated_at = NOW() WHERE id = $2 AND is_active = true",
		rawKey, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	key, err := aks.GetKey(ctx, id)
	if err != nil {
		return nil, err
	}
	key.RawKey = rawKey
	key.DisplayKey = MaskSecret(rawKey)
	return key, nil
}

// RevokeKey deactivates a key permanently, recording the reason. There is no
// un-revoke.
func (aks *APIKeyService) RevokeKey(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := aks.pool.Exec(ctx, `
		UPDATE api_keys
		SET is_active = false, revoked_at = NOW(), revoke_reason = $1, updated_at = NOW()
		WHERE id = $2
	`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
