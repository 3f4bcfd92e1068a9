package services

import (
	"context"
	"errors"
	"testing"

	"github.com/opsboard/backoffice/src/models"
)

func TestTicketLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ts := NewTicketService(pool)

	created, err := ts.CreateTicket(ctx, CreateTicketInput{Subject: "Billing question"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != models.TicketOpen {
		t.Fatalf("status = %q, want open", created.Status)
	}
	if created.Priority != models.PriorityNormal {
		t.Fatalf("priority = %q, want normal default", created.Priority)
	}

	// open -> in_progress -> resolved -> closed
	for _, next := range []string{models.TicketInProgress, models.TicketResolved, models.TicketClosed} {
		updated, err := ts.UpdateStatus(ctx, created.ID, next)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("status = %q, want %q", updated.Status, next)
		}
	}

	// Closed is terminal
	if _, err := ts.UpdateStatus(ctx, created.ID, models.TicketOpen); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from closed, got %v", err)
	}
}

func TestCreateTicket_UnknownPriority(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ts := NewTicketService(pool)
	_, err := ts.CreateTicket(context.Background(), CreateTicketInput{
		Subject: "bad", Priority: "critical",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
