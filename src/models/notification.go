package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for back-office users.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Audience  string    `json:"audience"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Severity  string    `json:"severity"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
