package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one admin action. Writes are best-effort; a failed audit
// insert never fails the request that triggered it.
type AuditLog struct {
	ID        uuid.UUID `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
