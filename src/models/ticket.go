package models

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is a support ticket raised for a tenant.
type Ticket struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body,omitempty"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ticketTransitions lists the allowed status moves. Resolved tickets may be
// reopened; closed is terminal.
var ticketTransitions = map[string][]string{
	TicketOpen:       {TicketInProgress, TicketResolved, TicketClosed},
	TicketInProgress: {TicketOpen, TicketResolved, TicketClosed},
	TicketResolved:   {TicketOpen, TicketClosed},
	TicketClosed:     {},
}

// CanTransition reports whether a ticket may move from one status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range ticketTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is a known ticket priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
