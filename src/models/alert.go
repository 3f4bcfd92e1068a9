package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert is an operational alert surfaced to the back-office.
type Alert struct {
	ID             uuid.UUID  `json:"id"`
	Source         string     `json:"source"`
	Message        string     `json:"message"`
	Severity       string     `json:"severity"`
	Status         string     `json:"status"`
	AcknowledgedBy *uuid.UUID `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
