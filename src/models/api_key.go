package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a managed platform API key. RawKey is populated only by
// generation and rotation, so the plaintext serializes exactly once; every
// other read carries only DisplayKey.
type APIKey struct {
	ID           uuid.UUID  `json:"id"`
	KeyName      string     `json:"key_name"`
	RawKey       string     `json:"api_key,omitempty"`
	DisplayKey   string     `json:"display_key"`
	KeyPrefix    string     `json:"key_prefix"`
	Permissions  []string   `json:"permissions"`
	Description  string     `json:"description,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	RevokeReason *string    `json:"revoke_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsExpired reports whether the key has passed its expiry time.
func (k *APIKey) IsExpired() bool {
	return k.ExpiresAt != nil && time.Now().After(*k.ExpiresAt)
}
