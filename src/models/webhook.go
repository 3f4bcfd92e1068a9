package models

import (
	"time"

	"github.com/google/uuid"
)

// Webhook is an outbound webhook subscription. RawSecret is populated only
// on creation or secret rotation, so the plaintext serializes exactly once;
// listings carry the masked DisplaySecret.
type Webhook struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Events        []string   `json:"events"`
	RawSecret     string     `json:"secret,omitempty"`
	DisplaySecret string     `json:"display_secret"`
	Description   string     `json:"description,omitempty"`
	IsActive      bool       `json:"is_active"`
	LastDelivery  *time.Time `json:"last_delivery,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
