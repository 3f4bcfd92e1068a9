package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(TicketOpen, TicketInProgress))
	assert.True(t, CanTransition(TicketOpen, TicketResolved))
	assert.True(t, CanTransition(TicketOpen, TicketClosed))
	assert.True(t, CanTransition(TicketInProgress, TicketOpen))
	assert.True(t, CanTransition(TicketResolved, TicketOpen), "resolved tickets may reopen")

	// Closed is terminal
	assert.False(t, CanTransition(TicketClosed, TicketOpen))
	assert.False(t, CanTransition(TicketClosed, TicketInProgress))
	assert.False(t, CanTransition(TicketClosed, TicketResolved))

	// No self-transitions or unknown states
	assert.False(t, CanTransition(TicketOpen, TicketOpen))
	assert.False(t, CanTransition("bogus", TicketOpen))
	assert.False(t, CanTransition(TicketOpen, "bogus"))
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent} {
		assert.True(t, ValidPriority(p), p)
	}
	assert.False(t, ValidPriority("critical"))
	assert.False(t, ValidPriority(""))
}
