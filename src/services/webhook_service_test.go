package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateWebhook_AutoSecret(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ws := NewWebhookService(pool)

	created, err := ws.CreateWebhook(ctx, CreateWebhookInput{
		Name: "billing-sync", URL: "https://example.com/hook", Events: []string{"invoice.paid"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.HasPrefix(created.RawSecret, "whsec_") {
		t.Fatalf("raw secret = %q, want whsec_ prefix", created.RawSecret)
	}

	// Later reads are masked
	fetched, err := ws.GetWebhook(ctx, created.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if fetched.RawSecret != "" {
		t.Fatal("fetched webhook leaked plaintext secret")
	}
	if !strings.HasPrefix(fetched.DisplaySecret, "whsec_...") {
		t.Fatalf("display secret = %q, want masked form", fetched.DisplaySecret)
	}
}

func TestCreateWebhook_CallerSecret(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ws := NewWebhookService(pool)
	created, err := ws.CreateWebhook(context.Background(), CreateWebhookInput{
		Name: "custom", URL: "https://example.com/hook",
		Events: []string{"ticket.created"}, Secret: "whsec_caller_supplied_secret",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.RawSecret != "whsec_caller_supplied_secret" {
		t.Fatalf("raw secret = %q, want caller-supplied value", created.RawSecret)
	}
}

func TestUpdateWebhook_SecretRotation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ws := NewWebhookService(pool)

	created, err := ws.CreateWebhook(ctx, CreateWebhookInput{
		Name: "rotate", URL: "https://example.com/hook", Events: []string{"alert.raised"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newSecret := "whsec_rotated_secret_value"
	updated, err := ws.UpdateWebhook(ctx, created.ID, UpdateWebhookInput{Secret: &newSecret})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.RawSecret != newSecret {
		t.Fatalf("rotated secret = %q, want new plaintext once", updated.RawSecret)
	}

	// A metadata-only update must not re-expose the secret
	name := "rotate-renamed"
	updated, err = ws.UpdateWebhook(ctx, created.ID, UpdateWebhookInput{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.RawSecret != "" {
		t.Fatal("metadata update re-exposed the secret")
	}
}

func TestSoftDeleteWebhook(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ws := NewWebhookService(pool)

	created, err := ws.CreateWebhook(ctx, CreateWebhookInput{
		Name: "doomed", URL: "https://example.com/hook",
		Events: []string{"tenant.suspended"}, Description: "original",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := ws.SoftDeleteWebhook(ctx, created.ID, "superseded"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	fetched, err := ws.GetWebhook(ctx, created.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if fetched.IsActive {
		t.Fatal("webhook still active after soft delete")
	}
	if !strings.Contains(fetched.Description, "superseded") {
		t.Fatalf("description = %q, want deactivation reason recorded", fetched.Description)
	}

	// Test deliveries only touch active webhooks
	if _, err := ws.RecordTestDelivery(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on deactivated webhook, got %v", err)
	}
}

func TestRecordTestDelivery(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ws := NewWebhookService(pool)

	created, err := ws.CreateWebhook(ctx, CreateWebhookInput{
		Name: "pingable", URL: "https://example.com/hook", Events: []string{"report.completed"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.LastDelivery != nil {
		t.Fatal("fresh webhook should have no delivery timestamp")
	}

	delivered, err := ws.RecordTestDelivery(ctx, created.ID)
	if err != nil {
		t.Fatalf("test delivery failed: %v", err)
	}
	if delivered.LastDelivery == nil {
		t.Fatal("test delivery did not record a timestamp")
	}
}
